package models

import (
	"time"
)

// Conversation is a two-party chat thread, typically a candidate and the
// recruiter handling their application.
type Conversation struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	ParticipantOneID uint      `gorm:"index" json:"participantOneId"`
	ParticipantTwoID uint      `gorm:"index" json:"participantTwoId"`
	LastMessageAt    time.Time `json:"lastMessageAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// OtherParticipant returns the participant that is not userID. Callers must
// check HasParticipant first.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.ParticipantOneID == userID {
		return c.ParticipantTwoID
	}
	return c.ParticipantOneID
}
