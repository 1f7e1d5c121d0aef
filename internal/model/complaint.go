package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintStatus represents the status of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

// Complaint is a student-raised issue. Migrated, not yet exposed.
type Complaint struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	StudentID   uuid.UUID       `json:"student_id" gorm:"type:char(36);index"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Status      ComplaintStatus `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
