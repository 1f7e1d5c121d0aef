package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hostel/internal/cache"
	"hostel/internal/errors"
	"hostel/internal/events"
	"hostel/internal/metrics"
	"hostel/internal/model"
	"hostel/internal/repository"
)

const roomCacheTTL = 5 * time.Minute

func roomCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("room:%s", id)
}

// notFound translates a missing row into the given domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// occupancyChange is a committed join or leave, reported after the transaction.
type occupancyChange struct {
	roomID uuid.UUID
	userID uuid.UUID
	joined bool
}

// joinRoom moves a room-less user into room. The room row must already be
// locked by the caller's transaction.
func joinRoom(ctx context.Context, tx repository.Store, user *model.User, room *model.Room) (occupancyChange, error) {
	if user.InRoom(room.ID) {
		return occupancyChange{}, errors.ErrAlreadyInRoom
	}
	if user.RoomID != nil {
		return occupancyChange{}, errors.ErrAssignedElsewhere
	}

	count, err := tx.Users().CountByRoom(ctx, room.ID)
	if err != nil {
		return occupancyChange{}, fmt.Errorf("count occupants: %w", err)
	}
	if model.OccupancyFull(int(count), room.Capacity) {
		return occupancyChange{}, errors.ErrRoomFull
	}

	user.RoomID = &room.ID
	user.Room = nil
	if err := tx.Users().Update(ctx, user); err != nil {
		return occupancyChange{}, fmt.Errorf("update user: %w", err)
	}
	if err := tx.Rooms().Update(ctx, room); err != nil {
		return occupancyChange{}, fmt.Errorf("update room: %w", err)
	}
	return occupancyChange{roomID: room.ID, userID: user.ID, joined: true}, nil
}

// leaveRoom clears the user's room and recomputes the room it left.
func leaveRoom(ctx context.Context, tx repository.Store, user *model.User) (occupancyChange, bool, error) {
	if user.RoomID == nil {
		return occupancyChange{}, false, nil
	}
	roomID := *user.RoomID

	user.RoomID = nil
	user.Room = nil
	if err := tx.Users().Update(ctx, user); err != nil {
		return occupancyChange{}, false, fmt.Errorf("update user: %w", err)
	}
	if err := recomputeRoom(ctx, tx, roomID); err != nil {
		return occupancyChange{}, false, err
	}
	return occupancyChange{roomID: roomID, userID: user.ID, joined: false}, true, nil
}

// recomputeRoom re-saves a room so its IsFull flag reflects current occupants.
// A room that no longer exists is ignored.
func recomputeRoom(ctx context.Context, tx repository.Store, roomID uuid.UUID) error {
	room, err := tx.Rooms().FindByIDForUpdate(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find room: %w", err)
	}
	if err := tx.Rooms().Update(ctx, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// occupancyNotifier reports committed occupancy changes to the cache,
// metrics and the event bus.
type occupancyNotifier struct {
	store     repository.Store
	cache     *cache.Client
	publisher events.Publisher
}

func (n occupancyNotifier) notify(ctx context.Context, changes ...occupancyChange) {
	for _, ch := range changes {
		_ = n.cache.Delete(ctx, roomCacheKey(ch.roomID))

		direction := metrics.DirectionLeave
		if ch.joined {
			direction = metrics.DirectionJoin
		}
		metrics.OccupancyChanges.WithLabelValues(direction).Inc()

		if n.publisher == nil {
			continue
		}
		event := events.OccupancyChanged{RoomID: ch.roomID.String(), UserID: ch.userID.String(), Joined: ch.joined}
		if room, err := n.store.Rooms().FindByID(ctx, ch.roomID); err == nil {
			event.Occupants = len(room.Occupants)
			event.IsFull = room.IsFull
		}
		_ = n.publisher.Publish(ctx, events.QueueOccupancyChanged, event)
	}
}
