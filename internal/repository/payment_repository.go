package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel/internal/model"
)

// PaymentQuery filters payment listings. Zero values mean unfiltered.
type PaymentQuery struct {
	Statuses []model.PaymentStatus
	Month    int
	Year     int
	Before   *model.Period // strictly earlier periods only
	After    *model.Period // strictly later periods only
}

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// CreateIfAbsent inserts the payment unless one already exists for the
	// same student and period. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, payment *model.Payment) (bool, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// FindOpenForUpdate locks the not-yet-paid record of a student in a room for a period.
	FindOpenForUpdate(ctx context.Context, studentID, roomID uuid.UUID, period model.Period) (*model.Payment, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, q PaymentQuery) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
}

func (r *paymentRepository) CreateIfAbsent(ctx context.Context, payment *model.Payment) (bool, error) {
	res := r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(payment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update updates an existing payment record.
func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

// Delete removes a payment record.
func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Payment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a payment by ID with the student and room loaded.
func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Preload("Student").Preload("Room").
		Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindOpenForUpdate(ctx context.Context, studentID, roomID uuid.UUID, period model.Period) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND room_id = ? AND month = ? AND year = ? AND status <> ?",
			studentID, roomID, period.Month, period.Year, string(model.PaymentStatusPaid)).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByStudent lists a student's payments, newest period first.
func (r *paymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := r.db.WithContext(ctx).Preload("Student").Preload("Room").
		Where("student_id = ?", studentID).
		Order("year DESC, month DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// List lists payments matching q with the student and room loaded.
func (r *paymentRepository) List(ctx context.Context, q PaymentQuery) ([]model.Payment, error) {
	tx := r.db.WithContext(ctx).Preload("Student").Preload("Room")
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			statuses[i] = string(st)
		}
		tx = tx.Where("status IN ?", statuses)
	}
	if q.Month != 0 {
		tx = tx.Where("month = ?", q.Month)
	}
	if q.Year != 0 {
		tx = tx.Where("year = ?", q.Year)
	}
	if q.Before != nil {
		tx = tx.Where("(year < ? OR (year = ? AND month < ?))", q.Before.Year, q.Before.Year, q.Before.Month)
	}
	if q.After != nil {
		tx = tx.Where("(year > ? OR (year = ? AND month > ?))", q.After.Year, q.After.Year, q.After.Month)
	}

	var payments []model.Payment
	if err := tx.Order("year, month, created_at").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// PaymentLogRepository defines payment log persistence operations.
type PaymentLogRepository interface {
	Create(ctx context.Context, log *model.PaymentLog) error
	CreateBatch(ctx context.Context, logs []model.PaymentLog) error
	// ListByCNIC returns the newest attempts first.
	ListByCNIC(ctx context.Context, cnic string, limit int) ([]model.PaymentLog, error)
}

type paymentLogRepository struct {
	db *gorm.DB
}

// NewPaymentLogRepository creates a new payment log repository.
func NewPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &paymentLogRepository{db: db}
}

// Create creates a new payment log entry.
func (r *paymentLogRepository) Create(ctx context.Context, log *model.PaymentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CreateBatch creates multiple payment log entries in a single statement batch.
func (r *paymentLogRepository) CreateBatch(ctx context.Context, logs []model.PaymentLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

func (r *paymentLogRepository) ListByCNIC(ctx context.Context, cnic string, limit int) ([]model.PaymentLog, error) {
	var logs []model.PaymentLog
	tx := r.db.WithContext(ctx).Where("cnic = ?", cnic).Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
