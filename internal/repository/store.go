package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Users() UserRepository
	Rooms() RoomRepository
	Payments() PaymentRepository
	PaymentLogs() PaymentLogRepository
	// WithinTransaction runs fn with a Store bound to a single database
	// transaction. Returning an error from fn rolls every write back.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository             { return &userRepository{db: s.db} }
func (s *gormStore) Rooms() RoomRepository             { return &roomRepository{db: s.db} }
func (s *gormStore) Payments() PaymentRepository       { return &paymentRepository{db: s.db} }
func (s *gormStore) PaymentLogs() PaymentLogRepository { return &paymentLogRepository{db: s.db} }

// WithinTransaction executes a function within a database transaction.
func (s *gormStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}
