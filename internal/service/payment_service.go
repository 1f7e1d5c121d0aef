package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hostel/internal/errors"
	"hostel/internal/events"
	"hostel/internal/export"
	"hostel/internal/metrics"
	"hostel/internal/model"
	"hostel/internal/repository"
)

// StatusKind selects paid or unpaid payments.
type StatusKind string

const (
	StatusKindPaid   StatusKind = "paid"
	StatusKindUnpaid StatusKind = "unpaid"
)

// TimeFilter places a payment period relative to a reference month.
type TimeFilter string

const (
	TimeFilterAll    TimeFilter = ""
	TimeFilterThis   TimeFilter = "this"
	TimeFilterBefore TimeFilter = "before"
	TimeFilterAfter  TimeFilter = "after"
)

// RecordPaymentInput is a student's settlement of one monthly record.
type RecordPaymentInput struct {
	CNIC       string
	Amount     string
	Method     string
	RoomNumber string
	Month      int
	Year       int
}

// RosterFilter narrows an export. Zero values mean unfiltered.
type RosterFilter struct {
	Month  int
	Year   int
	Status string
}

// PaymentService manages monthly rent records.
type PaymentService interface {
	RecordPayment(ctx context.Context, in RecordPaymentInput) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByCNIC(ctx context.Context, cnic string) ([]model.Payment, error)
	List(ctx context.Context) ([]model.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByStatus lists paid or unpaid records, optionally limited to periods
	// before, equal to or after the month containing now.
	ListByStatus(ctx context.Context, kind StatusKind, filter TimeFilter, now time.Time) ([]model.Payment, error)
	// GenerateNextPeriod creates a pending record for every housed student who
	// has none for the period and returns how many were created.
	GenerateNextPeriod(ctx context.Context, period model.Period) (int, error)
	ExportRoster(ctx context.Context, filter RosterFilter) ([]export.RosterRow, error)
	// Attempts lists a student's recorded payment attempts, newest first.
	Attempts(ctx context.Context, cnic string) ([]model.PaymentLog, error)
	// Close flushes pending attempt logs.
	Close()
}

type paymentService struct {
	store       repository.Store
	publisher   events.Publisher
	defaultRent decimal.Decimal
	logger      *paymentLogger
	now         func() time.Time
}

// NewPaymentService creates a new payment service. defaultRent is charged
// for rooms without their own rent.
func NewPaymentService(store repository.Store, publisher events.Publisher, defaultRent decimal.Decimal) PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &paymentService{
		store:       store,
		publisher:   publisher,
		defaultRent: defaultRent,
		logger:      newPaymentLogger(store.PaymentLogs()),
		now:         time.Now,
	}
}

// RecordPayment marks the open record of the period as paid. Checks run in
// order and the first failure is returned.
func (s *paymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (payment *model.Payment, err error) {
	defer func() {
		entry := model.PaymentLog{
			CNIC:     strings.TrimSpace(in.CNIC),
			Amount:   strings.TrimSpace(in.Amount),
			Method:   strings.TrimSpace(in.Method),
			Month:    in.Month,
			Year:     in.Year,
			Accepted: err == nil,
		}
		if err == nil {
			entry.PaymentID = &payment.ID
		} else {
			httpErr := errors.MapErrorToHTTP(err)
			entry.ErrorCode, entry.ErrorMessage = httpErr.Code, httpErr.Message
		}
		s.logger.record(entry)

		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			metrics.PaymentsRejected.WithLabelValues(domainErr.Code).Inc()
		}
	}()

	if strings.TrimSpace(in.CNIC) == "" || strings.TrimSpace(in.Amount) == "" || strings.TrimSpace(in.Method) == "" {
		return nil, errors.ErrValidation.WithDetails("cnic, amount, and method are required")
	}

	user, err := s.store.Users().FindByCNIC(ctx, strings.TrimSpace(in.CNIC))
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	method, ok := model.ParsePaymentMethod(in.Method)
	if !ok {
		return nil, errors.ErrInvalidMethod
	}

	period := model.Period{Month: in.Month, Year: in.Year}
	if !period.Valid() {
		return nil, errors.ErrInvalidPeriod
	}

	rooms, err := s.store.Rooms().FindByNumber(ctx, strings.TrimSpace(in.RoomNumber))
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil, errors.ErrRoomNotFound
	}
	var room *model.Room
	for i := range rooms {
		if user.InRoom(rooms[i].ID) {
			room = &rooms[i]
			break
		}
	}
	if room == nil {
		return nil, errors.ErrRoomMismatch
	}

	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		open, err := tx.Payments().FindOpenForUpdate(ctx, user.ID, room.ID, period)
		if err != nil {
			return notFound(err, errors.ErrNoOpenPayment)
		}
		if amount.LessThan(open.Amount) {
			return errors.ErrInsufficientAmount.Withf("the amount is insufficient. Required amount is %s", open.Amount.StringFixed(2))
		}
		if !open.Status.CanTransitionTo(model.PaymentStatusPaid) {
			return errors.ErrNoOpenPayment
		}

		paidAt := s.now()
		open.Amount = amount
		open.Method = method
		open.Status = model.PaymentStatusPaid
		open.PaidAt = &paidAt
		if err := tx.Payments().Update(ctx, open); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		payment, err = tx.Payments().FindByID(ctx, open.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(method)).Inc()
	_ = s.publisher.Publish(ctx, events.QueuePaymentRecorded, events.PaymentRecorded{
		PaymentID:  payment.ID.String(),
		StudentID:  user.ID.String(),
		RoomNumber: room.RoomNumber,
		Amount:     payment.Amount,
		Method:     string(payment.Method),
		Month:      payment.Month,
		Year:       payment.Year,
		PaidAt:     *payment.PaidAt,
	})
	return payment, nil
}

const attemptsLimit = 100

func (s *paymentService) Attempts(ctx context.Context, cnic string) ([]model.PaymentLog, error) {
	cnic = strings.TrimSpace(cnic)
	if cnic == "" {
		return nil, errors.ErrValidation.WithDetails("cnic is required")
	}
	logs, err := s.store.PaymentLogs().ListByCNIC(ctx, cnic, attemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("list payment logs: %w", err)
	}
	return logs, nil
}

func (s *paymentService) Close() {
	s.logger.close()
}

func (s *paymentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrPaymentNotFound)
	}
	return payment, nil
}

func (s *paymentService) GetByCNIC(ctx context.Context, cnic string) ([]model.Payment, error) {
	user, err := s.store.Users().FindByCNIC(ctx, strings.TrimSpace(cnic))
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	payments, err := s.store.Payments().FindByStudent(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, errors.ErrPaymentNotFound
	}
	return payments, nil
}

func (s *paymentService) List(ctx context.Context) ([]model.Payment, error) {
	payments, err := s.store.Payments().List(ctx, repository.PaymentQuery{})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Payments().Delete(ctx, id); err != nil {
		return notFound(err, errors.ErrPaymentNotFound)
	}
	return nil
}

func (s *paymentService) ListByStatus(ctx context.Context, kind StatusKind, filter TimeFilter, now time.Time) ([]model.Payment, error) {
	var q repository.PaymentQuery
	switch kind {
	case StatusKindPaid:
		q.Statuses = []model.PaymentStatus{model.PaymentStatusPaid}
	case StatusKindUnpaid:
		q.Statuses = model.UnpaidStatuses
	default:
		return nil, errors.ErrInvalidFilter.Withf("unknown payment status %q", kind)
	}

	current := model.PeriodOf(now)
	switch filter {
	case TimeFilterAll:
	case TimeFilterThis:
		q.Month, q.Year = current.Month, current.Year
	case TimeFilterBefore:
		q.Before = &current
	case TimeFilterAfter:
		q.After = &current
	default:
		return nil, errors.ErrInvalidFilter.Withf("unknown time filter %q", filter)
	}

	payments, err := s.store.Payments().List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, errors.ErrPaymentNotFound.Withf("no %s payments found for the specified filter", kind)
	}
	return payments, nil
}

func (s *paymentService) GenerateNextPeriod(ctx context.Context, period model.Period) (int, error) {
	if !period.Valid() {
		return 0, errors.ErrInvalidPeriod
	}

	created := 0
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		users, err := tx.Users().ListWithRoom(ctx)
		if err != nil {
			return fmt.Errorf("list housed users: %w", err)
		}
		for _, u := range users {
			inserted, err := tx.Payments().CreateIfAbsent(ctx, &model.Payment{
				StudentID: u.ID,
				RoomID:    *u.RoomID,
				Amount:    u.Room.MonthlyRent(s.defaultRent),
				Method:    model.PaymentMethodCash,
				Status:    model.PaymentStatusPending,
				Month:     period.Month,
				Year:      period.Year,
			})
			if err != nil {
				return fmt.Errorf("create pending payment for %s: %w", u.ID, err)
			}
			if inserted {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.PendingGenerated.Add(float64(created))
	_ = s.publisher.Publish(ctx, events.QueuePaymentsGenerated, events.PaymentsGenerated{
		Month:   period.Month,
		Year:    period.Year,
		Created: created,
	})
	return created, nil
}

// ExportRoster projects matching payments into spreadsheet rows.
func (s *paymentService) ExportRoster(ctx context.Context, filter RosterFilter) ([]export.RosterRow, error) {
	q := repository.PaymentQuery{Month: filter.Month, Year: filter.Year}
	if filter.Month != 0 && (filter.Month < 1 || filter.Month > 12) {
		return nil, errors.ErrInvalidPeriod
	}
	if filter.Year != 0 && filter.Year < 1900 {
		return nil, errors.ErrInvalidPeriod
	}

	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case "":
	case "paid":
		q.Statuses = []model.PaymentStatus{model.PaymentStatusPaid}
	case "unpaid", "pending":
		q.Statuses = []model.PaymentStatus{model.PaymentStatusPending}
	case "failed":
		q.Statuses = []model.PaymentStatus{model.PaymentStatusFailed}
	default:
		return nil, errors.ErrInvalidFilter.Withf("unknown payment status %q", filter.Status)
	}

	payments, err := s.store.Payments().List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	rows := make([]export.RosterRow, 0, len(payments))
	for i, p := range payments {
		rows = append(rows, rosterRow(i+1, &p))
	}
	return rows, nil
}

const notAvailable = "N/A"

func rosterRow(no int, p *model.Payment) export.RosterRow {
	row := export.RosterRow{
		No:          no,
		StudentName: notAvailable,
		Email:       notAvailable,
		Phone:       notAvailable,
		Amount:      p.Amount.String(),
		Method:      string(p.Method),
		Status:      "Unpaid",
		Month:       p.Month,
		Year:        p.Year,
		CNIC:        notAvailable,
		RoomNumber:  notAvailable,
		Floor:       notAvailable,
		Capacity:    notAvailable,
		Full:        notAvailable,
	}
	if p.IsPaid() {
		row.Status = "Paid"
	}
	if st := p.Student; st != nil {
		row.StudentName = orNotAvailable(st.Username)
		row.Email = orNotAvailable(st.Email)
		row.Phone = orNotAvailable(st.Phone)
		row.CNIC = orNotAvailable(st.CNIC)
	}
	if r := p.Room; r != nil {
		row.RoomNumber = orNotAvailable(r.RoomNumber)
		row.Floor = strconv.Itoa(r.Floor)
		row.Capacity = strconv.Itoa(r.Capacity)
		row.Full = "No"
		if r.IsFull {
			row.Full = "Yes"
		}
	}
	return row
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
