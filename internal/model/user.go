package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User represents a hostel resident or administrator.
// RoomID is the single record of room membership; a room's occupants are
// the users pointing at it.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	CNIC         string     `json:"cnic" gorm:"column:cnic;uniqueIndex;size:20;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string     `json:"phone" gorm:"size:30"`
	FullName     string     `json:"full_name" gorm:"size:255;index"`
	Avatar       string     `json:"avatar" gorm:"size:512"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'student'"`
	RoomID       *uuid.UUID `json:"room_id" gorm:"type:char(36);index"`
	PaymentID    *uuid.UUID `json:"payment_id,omitempty" gorm:"type:char(36)"`
	RefreshToken *string    `json:"-" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Room    *Room    `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
}

// BeforeCreate sets UUID and default role before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// InRoom reports whether the user occupies the given room.
func (u *User) InRoom(roomID uuid.UUID) bool {
	return u.RoomID != nil && *u.RoomID == roomID
}
