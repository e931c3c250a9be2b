package repository

import (
	"context"

	"gorm.io/gorm"

	"taskit/internal/model"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A clash on email or user_id yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, translate("count users", err)
	}
	return count > 0, nil
}
