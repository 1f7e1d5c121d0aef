package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostel/internal/model"
	"hostel/internal/testutil"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	return NewStore(testutil.NewDB(t))
}

func seedUser(t *testing.T, s Store, cnic string, roomID *uuid.UUID) *model.User {
	t.Helper()
	u := &model.User{
		Username:     "user-" + cnic,
		Email:        cnic + "@hostel.test",
		CNIC:         cnic,
		PasswordHash: "x",
		RoomID:       roomID,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestRoomRepository_IsFullRecomputedOnSave(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	room := &model.Room{RoomNumber: "101", Floor: 1, Capacity: 2}
	require.NoError(t, s.Rooms().Create(ctx, room))
	assert.False(t, room.IsFull)

	seedUser(t, s, "1001", &room.ID)
	seedUser(t, s, "1002", &room.ID)

	// IsFull cannot be set directly: the hook recounts occupants.
	room.IsFull = false
	require.NoError(t, s.Rooms().Update(ctx, room))
	assert.True(t, room.IsFull)

	loaded, err := s.Rooms().FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsFull)
	assert.Len(t, loaded.Occupants, 2)

	require.NoError(t, s.Users().ClearRoom(ctx, room.ID))
	room.IsFull = true
	require.NoError(t, s.Rooms().Update(ctx, room))
	assert.False(t, room.IsFull)
}

func TestRoomRepository_FindDuplicateExcludesSelf(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r101 := &model.Room{RoomNumber: "101", Floor: 1, Capacity: 2}
	r102 := &model.Room{RoomNumber: "102", Floor: 1, Capacity: 2}
	require.NoError(t, s.Rooms().Create(ctx, r101))
	require.NoError(t, s.Rooms().Create(ctx, r102))

	_, err := s.Rooms().FindDuplicate(ctx, "101", 1, r101.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	dup, err := s.Rooms().FindDuplicate(ctx, "102", 1, r101.ID)
	require.NoError(t, err)
	assert.Equal(t, r102.ID, dup.ID)

	_, err = s.Rooms().FindDuplicate(ctx, "102", 2, r101.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindConflicting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "2001", nil)

	found, err := s.Users().FindConflicting(ctx, "someone", "", "2001", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.Users().FindConflicting(ctx, u.Username, u.Email, u.CNIC, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = s.Users().FindConflicting(ctx, "", "", "", uuid.Nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindByLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "3001", nil)

	byName, err := s.Users().FindByLogin(ctx, u.Username, "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.Users().FindByLogin(ctx, "", u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.Users().FindByLogin(ctx, "", "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPaymentRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	room := &model.Room{RoomNumber: "201", Floor: 2, Capacity: 1}
	require.NoError(t, s.Rooms().Create(ctx, room))
	u := seedUser(t, s, "4001", &room.ID)

	newPending := func() *model.Payment {
		return &model.Payment{
			StudentID: u.ID, RoomID: room.ID, Amount: decimal.NewFromInt(10000),
			Method: model.PaymentMethodCash, Status: model.PaymentStatusPending, Month: 6, Year: 2024,
		}
	}

	created, err := s.Payments().CreateIfAbsent(ctx, newPending())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Payments().CreateIfAbsent(ctx, newPending())
	require.NoError(t, err)
	assert.False(t, created)

	all, err := s.Payments().List(ctx, PaymentQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPaymentRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	room := &model.Room{RoomNumber: "301", Floor: 3, Capacity: 4}
	require.NoError(t, s.Rooms().Create(ctx, room))
	u := seedUser(t, s, "5001", &room.ID)

	add := func(month, year int, status model.PaymentStatus) {
		require.NoError(t, s.Payments().Create(ctx, &model.Payment{
			StudentID: u.ID, RoomID: room.ID, Amount: decimal.NewFromInt(100),
			Method: model.PaymentMethodCash, Status: status, Month: month, Year: year,
		}))
	}
	add(12, 2023, model.PaymentStatusPaid)
	add(4, 2024, model.PaymentStatusFailed)
	add(5, 2024, model.PaymentStatusPaid)
	add(6, 2024, model.PaymentStatusPending)
	add(1, 2025, model.PaymentStatusPending)

	ref := model.Period{Month: 5, Year: 2024}

	before, err := s.Payments().List(ctx, PaymentQuery{Before: &ref})
	require.NoError(t, err)
	assert.Len(t, before, 2)

	after, err := s.Payments().List(ctx, PaymentQuery{After: &ref, Statuses: model.UnpaidStatuses})
	require.NoError(t, err)
	assert.Len(t, after, 2)

	exact, err := s.Payments().List(ctx, PaymentQuery{Month: 5, Year: 2024, Statuses: []model.PaymentStatus{model.PaymentStatusPaid}})
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, u.ID, exact[0].Student.ID)
	assert.Equal(t, room.ID, exact[0].Room.ID)

	open, err := s.Payments().FindOpenForUpdate(ctx, u.ID, room.ID, model.Period{Month: 4, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, open.Status)

	_, err = s.Payments().FindOpenForUpdate(ctx, u.ID, room.ID, ref)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStore_WithinTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithinTransaction(ctx, func(ctx context.Context, tx Store) error {
		if err := tx.Rooms().Create(ctx, &model.Room{RoomNumber: "401", Floor: 4, Capacity: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	rooms, err := s.Rooms().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestPaymentLogRepository_ListByCNIC(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.PaymentLogs().CreateBatch(ctx, []model.PaymentLog{
		{CNIC: "A-1", Amount: "100", ErrorCode: "INSUFFICIENT_AMOUNT", CreatedAt: base},
		{CNIC: "A-1", Amount: "5000", Accepted: true, CreatedAt: base.Add(time.Minute)},
		{CNIC: "B-2", Amount: "1", CreatedAt: base},
	}))
	require.NoError(t, s.PaymentLogs().CreateBatch(ctx, nil))

	logs, err := s.PaymentLogs().ListByCNIC(ctx, "A-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Accepted)
	assert.Equal(t, "INSUFFICIENT_AMOUNT", logs[1].ErrorCode)

	limited, err := s.PaymentLogs().ListByCNIC(ctx, "A-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
