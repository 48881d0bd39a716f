package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"recruit-service/internal/api/handlers"
	"recruit-service/internal/api/middleware"
	"recruit-service/internal/realtime"
	"recruit-service/internal/repository"
	"recruit-service/internal/service"
)

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	presenceHandler     *handlers.PresenceHandler
	notificationHandler *handlers.NotificationHandler
	chatHandler         *handlers.ChatHandler
	authMW              *middleware.AuthMiddleware
}

func NewRouter(
	hub *realtime.Hub,
	chat *realtime.ChatRouter,
	tracker *realtime.PresenceTracker,
	dispatcher *realtime.NotificationDispatcher,
	db *gorm.DB,
	redisClient *redis.Client,
	jwtSecret string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	presenceRepo := repository.NewPresenceRepository(redisClient)

	presenceService := service.NewPresenceService(tracker, presenceRepo)
	notificationService := service.NewNotificationService(notificationRepo, dispatcher)

	return &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(hub),
		presenceHandler:     handlers.NewPresenceHandler(presenceService),
		notificationHandler: handlers.NewNotificationHandler(notificationService),
		chatHandler:         handlers.NewChatHandler(chat, conversationRepo, messageRepo),
		authMW:              middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint; token travels as a query parameter.
	api.GET("/ws", r.authMW.WSAuth(), r.wsHandler.HandleWebSocket)

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		presence := auth.Group("/presence")
		{
			presence.GET("/online", r.presenceHandler.GetOnlineUsers)
			presence.GET("/users/:id", r.presenceHandler.GetUserStatus)
			presence.GET("/filter", r.presenceHandler.FilterOnline)
		}

		notifications := auth.Group("/notifications")
		{
			notifications.GET("", r.notificationHandler.ListNotifications)
			notifications.POST("", r.notificationHandler.CreateNotification)
			notifications.POST("/broadcast", r.notificationHandler.Broadcast)
			notifications.POST("/:id/read", r.notificationHandler.MarkNotificationRead)
			notifications.POST("/unread-count/push", r.notificationHandler.PushUnreadCount)
		}

		conversations := auth.Group("/conversations")
		{
			conversations.POST("", r.chatHandler.StartConversation)
			conversations.GET("", r.chatHandler.ListConversations)
			conversations.POST("/:id/messages", r.chatHandler.SendMessage)
			conversations.GET("/:id/messages", r.chatHandler.ListMessages)
			conversations.POST("/:id/messages/read", r.chatHandler.MarkMessagesRead)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
