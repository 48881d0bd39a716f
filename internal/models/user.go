package models

import (
	"time"
)

// UserRole distinguishes the two sides of the platform.
type UserRole string

const (
	RoleCandidate UserRole = "candidate"
	RoleRecruiter UserRole = "recruiter"
)

// User is the authenticated principal. The identity itself is owned by the
// auth service; this row only carries what the real-time layer needs.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	FullName  string    `gorm:"size:255" json:"fullName"`
	Role      UserRole  `gorm:"size:32" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
