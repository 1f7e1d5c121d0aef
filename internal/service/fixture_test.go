package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hostel/internal/cache"
	"hostel/internal/events"
	"hostel/internal/model"
	"hostel/internal/repository"
	"hostel/internal/testutil"
)

var errUploadFailed = errors.New("upload failed")

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, filename string, file io.Reader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	return f.url + filename, nil
}

type fixture struct {
	ctx      context.Context
	store    repository.Store
	redis    *miniredis.Miniredis
	cache    *cache.Client
	events   *events.Recorder
	uploader *fakeUploader
	rooms    RoomService
	payments *paymentService
	users    UserService
}

var fixedNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := repository.NewStore(testutil.NewDB(t))
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	rec := &events.Recorder{}
	up := &fakeUploader{url: "https://cdn.hostel.test/"}

	payments := NewPaymentService(store, rec, decimal.NewFromInt(10000)).(*paymentService)
	payments.now = func() time.Time { return fixedNow }
	t.Cleanup(payments.Close)

	users := NewUserService(store, c, up, rec).(*userService)
	users.now = func() time.Time { return fixedNow }

	return &fixture{
		ctx:      context.Background(),
		store:    store,
		redis:    mr,
		cache:    c,
		events:   rec,
		uploader: up,
		rooms:    NewRoomService(store, c, rec),
		payments: payments,
		users:    users,
	}
}

func (f *fixture) room(t *testing.T, number string, floor, capacity int) *model.Room {
	t.Helper()
	room, err := f.rooms.Create(f.ctx, CreateRoomInput{RoomNumber: number, Floor: floor, Capacity: capacity})
	require.NoError(t, err)
	return room
}

func (f *fixture) student(t *testing.T, cnic string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     "student-" + cnic,
		Email:        cnic + "@hostel.test",
		CNIC:         cnic,
		PasswordHash: "x",
		Phone:        "0300-" + cnic,
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) housed(t *testing.T, cnic string, room *model.Room) *model.User {
	t.Helper()
	u := f.student(t, cnic)
	_, err := f.rooms.Assign(f.ctx, room.ID, cnic)
	require.NoError(t, err)
	reloaded, err := f.store.Users().FindByID(f.ctx, u.ID)
	require.NoError(t, err)
	return reloaded
}

func (f *fixture) payment(t *testing.T, user *model.User, room *model.Room, amount int64, status model.PaymentStatus, month, year int) *model.Payment {
	t.Helper()
	p := &model.Payment{
		StudentID: user.ID,
		RoomID:    room.ID,
		Amount:    decimal.NewFromInt(amount),
		Method:    model.PaymentMethodCash,
		Status:    status,
		Month:     month,
		Year:      year,
	}
	require.NoError(t, f.store.Payments().Create(f.ctx, p))
	return p
}

func (f *fixture) userByID(t *testing.T, id uuid.UUID) *model.User {
	t.Helper()
	u, err := f.store.Users().FindByID(f.ctx, id)
	require.NoError(t, err)
	return u
}
