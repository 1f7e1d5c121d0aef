package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Room represents a hostel room. IsFull is derived from the occupant count
// and recomputed on every save.
type Room struct {
	ID         uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	RoomNumber string           `json:"room_number" gorm:"size:50;not null;uniqueIndex:idx_room_number_floor,priority:1"`
	Floor      int              `json:"floor" gorm:"not null;uniqueIndex:idx_room_number_floor,priority:2"`
	Capacity   int              `json:"capacity" gorm:"not null"`
	Rent       *decimal.Decimal `json:"rent,omitempty" gorm:"type:decimal(20,2)"`
	IsFull     bool             `json:"is_full" gorm:"not null;default:false"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Relations
	Occupants []User `json:"occupants" gorm:"foreignKey:RoomID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave recomputes IsFull from the users currently pointing at the room,
// inside the same transaction as the save.
func (r *Room) BeforeSave(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.IsFull = r.Capacity <= 0
		return nil
	}
	var count int64
	if err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&User{}).
		Where("room_id = ?", r.ID).
		Count(&count).Error; err != nil {
		return err
	}
	r.IsFull = OccupancyFull(int(count), r.Capacity)
	return nil
}

// OccupancyFull is the isFull rule shared by hooks and services.
func OccupancyFull(occupants, capacity int) bool {
	return occupants >= capacity
}

// MonthlyRent returns the configured rent or fallback when none is set.
func (r *Room) MonthlyRent(fallback decimal.Decimal) decimal.Decimal {
	if r != nil && r.Rent != nil && r.Rent.IsPositive() {
		return *r.Rent
	}
	return fallback
}
