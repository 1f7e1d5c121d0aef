package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel/internal/model"
)

// RoomRepository defines room persistence operations.
// Saves never touch occupants; membership lives on the user rows.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByNumber(ctx context.Context, roomNumber string) ([]model.Room, error)
	// FindDuplicate returns a room other than excludeID with the same number and floor.
	FindDuplicate(ctx context.Context, roomNumber string, floor int, excludeID uuid.UUID) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create creates a new room.
func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error
}

// Update saves room fields; IsFull is recomputed by the model hook.
func (r *roomRepository) Update(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(room).Error
}

// Delete removes a room.
func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Room{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a room by ID with its occupants.
func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Preload("Occupants").Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDForUpdate finds a room by ID with row-level lock for update.
func (r *roomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByNumber lists rooms with the given number across floors.
func (r *roomRepository) FindByNumber(ctx context.Context, roomNumber string) ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.WithContext(ctx).Preload("Occupants").
		Where("room_number = ?", roomNumber).
		Order("floor").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) FindDuplicate(ctx context.Context, roomNumber string, floor int, excludeID uuid.UUID) (*model.Room, error) {
	q := r.db.WithContext(ctx).Where("room_number = ? AND floor = ?", roomNumber, floor)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var room model.Room
	if err := q.First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// List lists all rooms with occupants.
func (r *roomRepository) List(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.WithContext(ctx).Preload("Occupants").
		Order("floor, room_number").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}
