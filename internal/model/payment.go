package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// paymentTransitions lists the statuses reachable from each status.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPaid},
	PaymentStatusPaid:    {},
}

// CanTransitionTo reports whether a payment may move from s to target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// UnpaidStatuses are the statuses counted as unpaid.
var UnpaidStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusFailed}

// PaymentMethod is how a payment was settled.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
)

// ParsePaymentMethod normalizes s and reports whether it is a known method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline:
		return m, true
	}
	return "", false
}

// Payment is a monthly rent record for one student in one room.
// (StudentID, Month, Year) is unique: one record per student per period.
type Payment struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	StudentID uuid.UUID       `json:"student_id" gorm:"type:char(36);not null;uniqueIndex:idx_payment_period,priority:1"`
	RoomID    uuid.UUID       `json:"room_id" gorm:"type:char(36);not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Method    PaymentMethod   `json:"method" gorm:"type:varchar(20);not null"`
	Status    PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Month     int             `json:"month" gorm:"not null;uniqueIndex:idx_payment_period,priority:2"`
	Year      int             `json:"year" gorm:"not null;uniqueIndex:idx_payment_period,priority:3"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relations
	Student *User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Room    *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsPaid reports whether the record is settled.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}
