package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentLog records one attempt to settle a monthly record.
// All attempts are logged regardless of success or failure; the raw request
// values are kept so rejected input can be inspected.
type PaymentLog struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	PaymentID    *uuid.UUID `json:"payment_id,omitempty" gorm:"type:char(36);index"`
	CNIC         string     `json:"cnic" gorm:"column:cnic;size:20;index"`
	Amount       string     `json:"amount" gorm:"size:50"`
	Method       string     `json:"method" gorm:"size:20"`
	Month        int        `json:"month"`
	Year         int        `json:"year"`
	Accepted     bool       `json:"accepted" gorm:"index"`
	ErrorCode    string     `json:"error_code,omitempty" gorm:"size:64"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (pl *PaymentLog) BeforeCreate(tx *gorm.DB) error {
	if pl.ID == uuid.Nil {
		pl.ID = uuid.New()
	}
	return nil
}
