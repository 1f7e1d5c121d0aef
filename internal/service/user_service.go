package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostel/internal/cache"
	"hostel/internal/errors"
	"hostel/internal/events"
	"hostel/internal/model"
	"hostel/internal/repository"
	"hostel/internal/storage"
)

// Avatar is an uploaded image file.
type Avatar struct {
	Filename string
	Content  io.Reader
}

// RegisterInput carries a new student's profile, the room they move into
// and the payment made for the first month.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	Phone         string
	FullName      string
	CNIC          string
	RoomNumber    string
	Floor         *int
	PaymentAmount string
	PaymentMethod string
	PaymentMonth  int
	PaymentYear   int
}

// UpdateCredentialsInput is an admin edit of a user's profile and room.
// An empty RoomNumber leaves the room unchanged.
type UpdateCredentialsInput struct {
	Username   string
	Email      string
	Phone      string
	FullName   string
	CNIC       string
	RoomNumber string
	Floor      *int
}

// AdminInput describes an administrator account.
type AdminInput struct {
	Username string
	Email    string
	Password string
	FullName string
	CNIC     string
}

// UserService exposes account and administration operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput, avatar *Avatar) (*model.User, error)
	Me(ctx context.Context, id uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*model.User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar *Avatar) (*model.User, error)
	DeleteSelf(ctx context.Context, id uuid.UUID) error
	DeleteByCNIC(ctx context.Context, cnic string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, in UpdateCredentialsInput) (*model.User, error)
	// CreateAdmin bootstraps an administrator without a room.
	CreateAdmin(ctx context.Context, in AdminInput) (*model.User, error)
}

type userService struct {
	store    repository.Store
	uploader storage.Uploader
	notifier occupancyNotifier
	now      func() time.Time
}

// NewUserService builds a UserService.
func NewUserService(store repository.Store, cache *cache.Client, uploader storage.Uploader, publisher events.Publisher) UserService {
	return &userService{
		store:    store,
		uploader: uploader,
		notifier: occupancyNotifier{store: store, cache: cache, publisher: publisher},
		now:      time.Now,
	}
}

// Register creates a student, moves them into their room and records the
// first month as paid, all in one transaction. The avatar is uploaded first
// so a failed upload leaves nothing behind.
func (s *userService) Register(ctx context.Context, in RegisterInput, avatar *Avatar) (*model.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.CNIC = strings.TrimSpace(in.CNIC)

	var missing []string
	for field, value := range map[string]string{
		"username": in.Username, "email": in.Email, "password": in.Password,
		"phone": in.Phone, "fullName": in.FullName, "cnic": in.CNIC, "roomNumber": in.RoomNumber,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field+" is required")
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.ErrValidation.WithDetails(missing...)
	}
	if !strings.Contains(in.Email, "@") {
		return nil, errors.ErrValidation.WithDetails("invalid email format")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(in.PaymentAmount))
	if err != nil || !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	method, ok := model.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, errors.ErrInvalidMethod
	}
	period := model.Period{Month: in.PaymentMonth, Year: in.PaymentYear}
	if !period.Valid() {
		return nil, errors.ErrInvalidPeriod
	}

	if err := s.checkConflicts(ctx, in.Username, in.Email, in.CNIC, uuid.Nil); err != nil {
		return nil, err
	}

	if avatar == nil || avatar.Content == nil {
		return nil, errors.ErrAvatarRequired
	}
	avatarURL, err := s.uploader.Upload(ctx, avatar.Filename, avatar.Content)
	if err != nil {
		return nil, errors.ErrAvatarUpload
	}

	room, err := s.findRoom(ctx, s.store, in.RoomNumber, in.Floor)
	if err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		CNIC:         in.CNIC,
		PasswordHash: passwordHash,
		Phone:        strings.TrimSpace(in.Phone),
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       avatarURL,
		Role:         model.RoleStudent,
	}

	var change occupancyChange
	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		locked, err := tx.Rooms().FindByIDForUpdate(ctx, room.ID)
		if err != nil {
			return notFound(err, errors.ErrRoomNotFound)
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		if change, err = joinRoom(ctx, tx, user, locked); err != nil {
			return err
		}

		paidAt := s.now()
		payment := &model.Payment{
			StudentID: user.ID,
			RoomID:    locked.ID,
			Amount:    amount,
			Method:    method,
			Status:    model.PaymentStatusPaid,
			Month:     period.Month,
			Year:      period.Year,
			PaidAt:    &paidAt,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		user.PaymentID = &payment.ID
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("link payment: %w", err)
		}
		user.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.notify(ctx, change)
	return user, nil
}

func (s *userService) Me(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return errors.ErrValidation.WithDetails("new password is required")
	}
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return notFound(err, errors.ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.ErrWrongPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Room = nil
	return s.store.Users().Update(ctx, user)
}

func (s *userService) UpdateAccount(ctx context.Context, id uuid.UUID, fullName, email string) (*model.User, error) {
	fullName, email = strings.TrimSpace(fullName), strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, errors.ErrValidation.WithDetails("fullName and email are required")
	}
	if err := s.checkConflicts(ctx, "", email, "", id); err != nil {
		return nil, err
	}
	return s.updateUser(ctx, id, func(u *model.User) {
		u.FullName = fullName
		u.Email = email
	})
}

func (s *userService) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.ErrValidation.WithDetails("username is required")
	}
	if err := s.checkConflicts(ctx, username, "", "", id); err != nil {
		return nil, err
	}
	return s.updateUser(ctx, id, func(u *model.User) { u.Username = username })
}

func (s *userService) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar *Avatar) (*model.User, error) {
	if avatar == nil || avatar.Content == nil {
		return nil, errors.ErrAvatarRequired
	}
	if _, err := s.store.Users().FindByID(ctx, id); err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	url, err := s.uploader.Upload(ctx, avatar.Filename, avatar.Content)
	if err != nil {
		return nil, errors.ErrAvatarUpload
	}
	return s.updateUser(ctx, id, func(u *model.User) { u.Avatar = url })
}

func (s *userService) DeleteSelf(ctx context.Context, id uuid.UUID) error {
	_, err := s.deleteUser(ctx, func(ctx context.Context, tx repository.Store) (*model.User, error) {
		user, err := tx.Users().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, notFound(err, errors.ErrUserNotFound)
		}
		return user, nil
	})
	return err
}

func (s *userService) DeleteByCNIC(ctx context.Context, cnic string) (*model.User, error) {
	return s.deleteUser(ctx, func(ctx context.Context, tx repository.Store) (*model.User, error) {
		user, err := tx.Users().FindByCNIC(ctx, strings.TrimSpace(cnic))
		if err != nil {
			return nil, notFound(err, errors.ErrUserNotFound)
		}
		return tx.Users().FindByIDForUpdate(ctx, user.ID)
	})
}

// deleteUser removes a user and recomputes the room they occupied in the
// same transaction. Their payment history is kept.
func (s *userService) deleteUser(ctx context.Context, load userLoader) (*model.User, error) {
	var (
		deleted *model.User
		change  occupancyChange
		left    bool
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := load(ctx, tx)
		if err != nil {
			return err
		}
		roomID := user.RoomID
		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			return notFound(err, errors.ErrUserNotFound)
		}
		if roomID != nil {
			if err := recomputeRoom(ctx, tx, *roomID); err != nil {
				return err
			}
			change, left = occupancyChange{roomID: *roomID, userID: user.ID}, true
		}
		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	if left {
		s.notifier.notify(ctx, change)
	}
	return deleted, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, errors.ErrInvalidRole
	}
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	if user.Role == role {
		return nil, errors.ErrRoleUnchanged.Withf("user is already a %s", role)
	}
	return s.updateUser(ctx, id, func(u *model.User) { u.Role = role })
}

// UpdateCredentials rewrites a user's profile and, when a different room is
// named, moves them through the occupancy rules.
func (s *userService) UpdateCredentials(ctx context.Context, id uuid.UUID, in UpdateCredentialsInput) (*model.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.CNIC = strings.TrimSpace(in.CNIC)
	if in.Username == "" || in.Email == "" || in.CNIC == "" || strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, errors.ErrValidation.WithDetails("username, email, phone, fullName and cnic are required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, errors.ErrValidation.WithDetails("invalid email format")
	}
	if err := s.checkConflicts(ctx, in.Username, in.Email, in.CNIC, id); err != nil {
		return nil, err
	}

	var changes []occupancyChange
	var updated *model.User
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrUserNotFound)
		}
		user.Username = in.Username
		user.Email = in.Email
		user.CNIC = in.CNIC
		user.Phone = strings.TrimSpace(in.Phone)
		user.FullName = strings.TrimSpace(in.FullName)

		if strings.TrimSpace(in.RoomNumber) != "" {
			target, err := s.findRoom(ctx, tx, in.RoomNumber, in.Floor)
			if err != nil {
				return err
			}
			if !user.InRoom(target.ID) {
				locked, err := tx.Rooms().FindByIDForUpdate(ctx, target.ID)
				if err != nil {
					return notFound(err, errors.ErrRoomNotFound)
				}
				left, moved, err := leaveRoom(ctx, tx, user)
				if err != nil {
					return err
				}
				if moved {
					changes = append(changes, left)
				}
				joined, err := joinRoom(ctx, tx, user, locked)
				if err != nil {
					return err
				}
				changes = append(changes, joined)
			}
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.ErrUserExists
			}
			return fmt.Errorf("update user: %w", err)
		}
		updated, err = tx.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.notify(ctx, changes...)
	return updated, nil
}

func (s *userService) CreateAdmin(ctx context.Context, in AdminInput) (*model.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.CNIC = strings.TrimSpace(in.CNIC)
	if in.Username == "" || in.Email == "" || in.Password == "" || in.CNIC == "" {
		return nil, errors.ErrValidation.WithDetails("username, email, password and cnic are required")
	}
	if err := s.checkConflicts(ctx, in.Username, in.Email, in.CNIC, uuid.Nil); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		CNIC:         in.CNIC,
		FullName:     in.FullName,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUserExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

func (s *userService) updateUser(ctx context.Context, id uuid.UUID, apply func(*model.User)) (*model.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	apply(user)
	room := user.Room
	user.Room = nil
	if err := s.store.Users().Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	user.Room = room
	// Cached rooms embed their occupants' profiles.
	if user.RoomID != nil {
		_ = s.notifier.cache.Delete(ctx, roomCacheKey(*user.RoomID))
	}
	return user, nil
}

// checkConflicts fails with ErrUserExists when another user holds any of the
// non-empty values.
func (s *userService) checkConflicts(ctx context.Context, username, email, cnic string, excludeID uuid.UUID) error {
	_, err := s.store.Users().FindConflicting(ctx, username, email, cnic, excludeID)
	if err == nil {
		return errors.ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check user existence: %w", err)
	}
	return nil
}

// findRoom resolves a room by number, narrowed to floor when given. Without
// a floor the lowest floor carrying the number wins.
func (s *userService) findRoom(ctx context.Context, store repository.Store, roomNumber string, floor *int) (*model.Room, error) {
	rooms, err := store.Rooms().FindByNumber(ctx, strings.TrimSpace(roomNumber))
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	for i := range rooms {
		if floor == nil || rooms[i].Floor == *floor {
			return &rooms[i], nil
		}
	}
	return nil, errors.ErrRoomNotFound
}
