package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"hostel/internal/export"
	"hostel/internal/model"
	"hostel/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, email, password string) (*service.TokenPair, *model.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*service.TokenPair), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, accessExpiresAt time.Time) error {
	args := m.Called(ctx, userID, accessTokenID, accessExpiresAt)
	return args.Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, in service.RegisterInput, avatar *service.Avatar) (*model.User, error) {
	return m.user(m.Called(ctx, in, avatar))
}

func (m *MockUserService) Me(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	return m.Called(ctx, id, oldPassword, newPassword).Error(0)
}

func (m *MockUserService) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*model.User, error) {
	return m.user(m.Called(ctx, id, fullName, email))
}

func (m *MockUserService) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*model.User, error) {
	return m.user(m.Called(ctx, id, username))
}

func (m *MockUserService) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar *service.Avatar) (*model.User, error) {
	return m.user(m.Called(ctx, id, avatar))
}

func (m *MockUserService) DeleteSelf(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) DeleteByCNIC(ctx context.Context, cnic string) (*model.User, error) {
	return m.user(m.Called(ctx, cnic))
}

func (m *MockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	return m.user(m.Called(ctx, id, role))
}

func (m *MockUserService) UpdateCredentials(ctx context.Context, id uuid.UUID, in service.UpdateCredentialsInput) (*model.User, error) {
	return m.user(m.Called(ctx, id, in))
}

func (m *MockUserService) CreateAdmin(ctx context.Context, in service.AdminInput) (*model.User, error) {
	return m.user(m.Called(ctx, in))
}

// MockRoomService is a mock implementation of service.RoomService.
type MockRoomService struct {
	mock.Mock
}

func (m *MockRoomService) room(args mock.Arguments) (*model.Room, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockRoomService) Create(ctx context.Context, in service.CreateRoomInput) (*model.Room, error) {
	return m.room(m.Called(ctx, in))
}

func (m *MockRoomService) List(ctx context.Context) ([]model.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Room), args.Error(1)
}

func (m *MockRoomService) Get(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return m.room(m.Called(ctx, id))
}

func (m *MockRoomService) GetByNumber(ctx context.Context, roomNumber string) ([]model.Room, error) {
	args := m.Called(ctx, roomNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Room), args.Error(1)
}

func (m *MockRoomService) Occupants(ctx context.Context, id uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockRoomService) Update(ctx context.Context, id uuid.UUID, in service.UpdateRoomInput) (*model.Room, error) {
	return m.room(m.Called(ctx, id, in))
}

func (m *MockRoomService) Delete(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return m.room(m.Called(ctx, id))
}

func (m *MockRoomService) Assign(ctx context.Context, roomID uuid.UUID, userIdentifier string) (*model.Room, error) {
	return m.room(m.Called(ctx, roomID, userIdentifier))
}

func (m *MockRoomService) AssignByNumber(ctx context.Context, roomNumber string, userID uuid.UUID) (*model.Room, error) {
	return m.room(m.Called(ctx, roomNumber, userID))
}

func (m *MockRoomService) Toggle(ctx context.Context, roomID uuid.UUID, cnic string) (*model.Room, error) {
	return m.room(m.Called(ctx, roomID, cnic))
}

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) payments(args mock.Arguments) ([]model.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, in service.RecordPaymentInput) (*model.Payment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) GetByCNIC(ctx context.Context, cnic string) ([]model.Payment, error) {
	return m.payments(m.Called(ctx, cnic))
}

func (m *MockPaymentService) List(ctx context.Context) ([]model.Payment, error) {
	return m.payments(m.Called(ctx))
}

func (m *MockPaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPaymentService) ListByStatus(ctx context.Context, kind service.StatusKind, filter service.TimeFilter, now time.Time) ([]model.Payment, error) {
	return m.payments(m.Called(ctx, kind, filter, now))
}

func (m *MockPaymentService) GenerateNextPeriod(ctx context.Context, period model.Period) (int, error) {
	args := m.Called(ctx, period)
	return args.Int(0), args.Error(1)
}

func (m *MockPaymentService) ExportRoster(ctx context.Context, filter service.RosterFilter) ([]export.RosterRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]export.RosterRow), args.Error(1)
}

func (m *MockPaymentService) Attempts(ctx context.Context, cnic string) ([]model.PaymentLog, error) {
	args := m.Called(ctx, cnic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentLog), args.Error(1)
}

func (m *MockPaymentService) Close() {}
