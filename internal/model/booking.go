package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus represents the status of a booking.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking reserves a room for a student between two dates. The schema is
// migrated but no endpoint writes it yet.
type Booking struct {
	ID        uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	StudentID uuid.UUID     `json:"student_id" gorm:"type:char(36);index"`
	RoomID    uuid.UUID     `json:"room_id" gorm:"type:char(36);index"`
	FromDate  *time.Time    `json:"from_date,omitempty"`
	ToDate    *time.Time    `json:"to_date,omitempty"`
	Status    BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
