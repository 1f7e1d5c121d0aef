package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hostel/internal/cache"
	"hostel/internal/errors"
	"hostel/internal/events"
	"hostel/internal/model"
	"hostel/internal/repository"
)

// CreateRoomInput describes a new room.
type CreateRoomInput struct {
	RoomNumber string
	Floor      int
	Capacity   int
	Rent       *decimal.Decimal
}

// UpdateRoomInput holds optional room changes; nil fields are left as is.
type UpdateRoomInput struct {
	RoomNumber *string
	Floor      *int
	Capacity   *int
	Rent       *decimal.Decimal
}

// RoomService manages rooms and who occupies them.
type RoomService interface {
	Create(ctx context.Context, in CreateRoomInput) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Room, error)
	GetByNumber(ctx context.Context, roomNumber string) ([]model.Room, error)
	Occupants(ctx context.Context, id uuid.UUID) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateRoomInput) (*model.Room, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Room, error)
	// Assign adds the user identified by cnic or ID to the room.
	Assign(ctx context.Context, roomID uuid.UUID, userIdentifier string) (*model.Room, error)
	// AssignByNumber adds a user to the lowest-floor room carrying roomNumber.
	AssignByNumber(ctx context.Context, roomNumber string, userID uuid.UUID) (*model.Room, error)
	// Toggle removes the user from the room if they occupy it, otherwise adds them.
	Toggle(ctx context.Context, roomID uuid.UUID, cnic string) (*model.Room, error)
}

type roomService struct {
	store    repository.Store
	cache    *cache.Client
	notifier occupancyNotifier
}

// NewRoomService creates a new room service.
func NewRoomService(store repository.Store, cache *cache.Client, publisher events.Publisher) RoomService {
	return &roomService{
		store:    store,
		cache:    cache,
		notifier: occupancyNotifier{store: store, cache: cache, publisher: publisher},
	}
}

func (s *roomService) Create(ctx context.Context, in CreateRoomInput) (*model.Room, error) {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	if in.RoomNumber == "" {
		return nil, errors.ErrValidation.WithDetails("room number is required")
	}
	if in.Capacity <= 0 {
		return nil, errors.ErrInvalidCapacity
	}
	if in.Rent != nil && !in.Rent.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	if _, err := s.store.Rooms().FindDuplicate(ctx, in.RoomNumber, in.Floor, uuid.Nil); err == nil {
		return nil, errors.ErrRoomExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check room existence: %w", err)
	}

	room := &model.Room{
		RoomNumber: in.RoomNumber,
		Floor:      in.Floor,
		Capacity:   in.Capacity,
		Rent:       in.Rent,
	}
	if err := s.store.Rooms().Create(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrRoomExists
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	room.Occupants = []model.User{}
	return room, nil
}

func (s *roomService) List(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Get returns a room with occupants, served from cache when possible.
func (s *roomService) Get(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var cached model.Room
	if s.cache.GetJSON(ctx, roomCacheKey(id), &cached) {
		return &cached, nil
	}

	room, err := s.store.Rooms().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrRoomNotFound)
	}
	_ = s.cache.SetJSON(ctx, roomCacheKey(id), room, roomCacheTTL)
	return room, nil
}

func (s *roomService) GetByNumber(ctx context.Context, roomNumber string) ([]model.Room, error) {
	rooms, err := s.store.Rooms().FindByNumber(ctx, strings.TrimSpace(roomNumber))
	if err != nil {
		return nil, fmt.Errorf("find rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil, errors.ErrRoomNotFound
	}
	return rooms, nil
}

func (s *roomService) Occupants(ctx context.Context, id uuid.UUID) ([]model.User, error) {
	room, err := s.store.Rooms().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrRoomNotFound)
	}
	return room.Occupants, nil
}

// Update applies changes after checking that no other room holds the
// resulting (number, floor) pair and that current occupants still fit.
func (s *roomService) Update(ctx context.Context, id uuid.UUID, in UpdateRoomInput) (*model.Room, error) {
	if in.Capacity != nil && *in.Capacity <= 0 {
		return nil, errors.ErrInvalidCapacity
	}
	if in.Rent != nil && !in.Rent.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	var updated *model.Room
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		room, err := tx.Rooms().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, errors.ErrRoomNotFound)
		}

		number, floor := room.RoomNumber, room.Floor
		if in.RoomNumber != nil && strings.TrimSpace(*in.RoomNumber) != "" {
			number = strings.TrimSpace(*in.RoomNumber)
		}
		if in.Floor != nil {
			floor = *in.Floor
		}

		if _, err := tx.Rooms().FindDuplicate(ctx, number, floor, room.ID); err == nil {
			return errors.ErrRoomExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check room existence: %w", err)
		}

		if in.Capacity != nil {
			count, err := tx.Users().CountByRoom(ctx, room.ID)
			if err != nil {
				return fmt.Errorf("count occupants: %w", err)
			}
			if int64(*in.Capacity) < count {
				return errors.ErrCapacityBelowOccupancy
			}
			room.Capacity = *in.Capacity
		}
		room.RoomNumber, room.Floor = number, floor
		if in.Rent != nil {
			room.Rent = in.Rent
		}

		if err := tx.Rooms().Update(ctx, room); err != nil {
			return fmt.Errorf("update room: %w", err)
		}
		updated, err = tx.Rooms().FindByID(ctx, room.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, roomCacheKey(id))
	return updated, nil
}

// Delete removes the room and detaches its occupants in one transaction.
func (s *roomService) Delete(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var deleted *model.Room
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Rooms().FindByIDForUpdate(ctx, id); err != nil {
			return notFound(err, errors.ErrRoomNotFound)
		}
		room, err := tx.Rooms().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Users().ClearRoom(ctx, id); err != nil {
			return fmt.Errorf("clear occupants: %w", err)
		}
		if err := tx.Rooms().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		deleted = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes := make([]occupancyChange, 0, len(deleted.Occupants))
	for _, u := range deleted.Occupants {
		changes = append(changes, occupancyChange{roomID: id, userID: u.ID})
	}
	s.notifier.notify(ctx, changes...)
	_ = s.cache.Delete(ctx, roomCacheKey(id))
	return deleted, nil
}

func (s *roomService) Assign(ctx context.Context, roomID uuid.UUID, userIdentifier string) (*model.Room, error) {
	return s.assign(ctx, func(ctx context.Context, tx repository.Store) (*model.Room, error) {
		room, err := tx.Rooms().FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return nil, notFound(err, errors.ErrRoomNotFound)
		}
		return room, nil
	}, func(ctx context.Context, tx repository.Store) (*model.User, error) {
		return findUserForUpdate(ctx, tx, userIdentifier)
	})
}

func (s *roomService) AssignByNumber(ctx context.Context, roomNumber string, userID uuid.UUID) (*model.Room, error) {
	return s.assign(ctx, func(ctx context.Context, tx repository.Store) (*model.Room, error) {
		rooms, err := tx.Rooms().FindByNumber(ctx, strings.TrimSpace(roomNumber))
		if err != nil {
			return nil, fmt.Errorf("find rooms: %w", err)
		}
		if len(rooms) == 0 {
			return nil, errors.ErrRoomNotFound
		}
		return tx.Rooms().FindByIDForUpdate(ctx, rooms[0].ID)
	}, func(ctx context.Context, tx repository.Store) (*model.User, error) {
		user, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return nil, notFound(err, errors.ErrUserNotFound)
		}
		return user, nil
	})
}

type (
	roomLoader func(ctx context.Context, tx repository.Store) (*model.Room, error)
	userLoader func(ctx context.Context, tx repository.Store) (*model.User, error)
)

func (s *roomService) assign(ctx context.Context, loadRoom roomLoader, loadUser userLoader) (*model.Room, error) {
	var (
		result *model.Room
		change occupancyChange
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		room, err := loadRoom(ctx, tx)
		if err != nil {
			return err
		}
		user, err := loadUser(ctx, tx)
		if err != nil {
			return err
		}
		if change, err = joinRoom(ctx, tx, user, room); err != nil {
			return err
		}
		result, err = tx.Rooms().FindByID(ctx, room.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.notify(ctx, change)
	return result, nil
}

func (s *roomService) Toggle(ctx context.Context, roomID uuid.UUID, cnic string) (*model.Room, error) {
	var (
		result *model.Room
		change occupancyChange
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		room, err := tx.Rooms().FindByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFound(err, errors.ErrRoomNotFound)
		}
		user, err := findUserForUpdate(ctx, tx, cnic)
		if err != nil {
			return err
		}

		if user.InRoom(room.ID) {
			change, _, err = leaveRoom(ctx, tx, user)
		} else {
			change, err = joinRoom(ctx, tx, user, room)
		}
		if err != nil {
			return err
		}
		result, err = tx.Rooms().FindByID(ctx, room.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.notify(ctx, change)
	return result, nil
}

// findUserForUpdate resolves a user by ID or cnic and locks the row.
func findUserForUpdate(ctx context.Context, tx repository.Store, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.ErrValidation.WithDetails("cnic is required")
	}

	var (
		user *model.User
		err  error
	)
	if id, parseErr := uuid.Parse(identifier); parseErr == nil {
		user, err = tx.Users().FindByID(ctx, id)
	} else {
		user, err = tx.Users().FindByCNIC(ctx, identifier)
	}
	if err != nil {
		return nil, notFound(err, errors.ErrUserNotFound)
	}
	return tx.Users().FindByIDForUpdate(ctx, user.ID)
}
