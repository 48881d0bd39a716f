package models

import (
	"time"
)

// NotificationKind identifies the related entity a notification points at.
type NotificationKind string

const (
	NotificationApplication NotificationKind = "application"
	NotificationInterview   NotificationKind = "interview"
	NotificationMessage     NotificationKind = "message"
	NotificationSystem      NotificationKind = "system"
)

// Notification is an immutable payload pushed to a single user. It is always
// persisted before any dispatch happens.
type Notification struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	UserID    uint             `gorm:"index" json:"userId"`
	Title     string           `gorm:"size:255" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	Kind      NotificationKind `gorm:"size:32" json:"kind"`
	RelatedID uint             `json:"relatedId"`
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
