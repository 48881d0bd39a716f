package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"recruit-service/internal/service"
)

type PresenceHandler struct {
	presence *service.PresenceService
}

func NewPresenceHandler(presence *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// GetOnlineUsers returns every user id with a live connection on this node.
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	userIDs := h.presence.OnlineUserIDs()
	c.JSON(http.StatusOK, gin.H{
		"count": len(userIDs),
		"users": userIDs,
	})
}

// GetUserStatus answers whether one user is online anywhere on the platform,
// consulting the cross-process presence mirror for users not connected here.
func (h *PresenceHandler) GetUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	status, err := h.presence.Status(c.Request.Context(), uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query presence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"status": status,
		"online": status == "online",
	})
}

// FilterOnline takes ?ids=1,2,3 and returns the subset currently online,
// consulting the cross-process presence mirror.
func (h *PresenceHandler) FilterOnline(c *gin.Context) {
	raw := c.Query("ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids parameter is required"})
		return
	}

	var userIDs []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id: " + part})
			return
		}
		userIDs = append(userIDs, uint(id))
	}

	online, err := h.presence.OnlineAmong(c.Request.Context(), userIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query presence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}
