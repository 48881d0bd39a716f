package models

import (
	"time"
)

// Message is a single chat message. Immutable once created except for the
// read flag.
type Message struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ConversationID uint      `gorm:"index" json:"conversationId"`
	SenderID       uint      `gorm:"index" json:"senderId"`
	Text           string    `gorm:"type:text" json:"text"`
	SentAt         time.Time `json:"sentAt"`
	Read           bool      `gorm:"default:false" json:"read"`
}
