package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByCNIC(ctx context.Context, cnic string) (*model.User, error)
	FindByLogin(ctx context.Context, username, email string) (*model.User, error)
	// FindConflicting returns a user other than excludeID holding any of the
	// given username, email or cnic values. Empty values are ignored.
	FindConflicting(ctx context.Context, username, email, cnic string, excludeID uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListWithRoom(ctx context.Context) ([]model.User, error)
	CountByRoom(ctx context.Context, roomID uuid.UUID) (int64, error)
	ClearRoom(ctx context.Context, roomID uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Room").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate finds a user by ID with row-level lock for update.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByCNIC(ctx context.Context, cnic string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("cnic = ?", cnic).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByLogin(ctx context.Context, username, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("(username = ? AND ? <> '') OR (email = ? AND ? <> '')", username, username, email, email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindConflicting(ctx context.Context, username, email, cnic string, excludeID uuid.UUID) (*model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	cond := r.db.Where("1 = 0")
	if username != "" {
		cond = cond.Or("username = ?", username)
	}
	if email != "" {
		cond = cond.Or("email = ?", email)
	}
	if cnic != "" {
		cond = cond.Or("cnic = ?", cnic)
	}
	q = q.Where(cond)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListWithRoom lists users that occupy a room, with the room loaded.
func (r *userRepository) ListWithRoom(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Preload("Room").
		Where("room_id IS NOT NULL").
		Order("created_at").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClearRoom detaches every occupant of a room.
func (r *userRepository) ClearRoom(ctx context.Context, roomID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("room_id = ?", roomID).
		Update("room_id", nil).Error
}
