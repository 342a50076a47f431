package postgres

import (
	"context"
	"errors"

	"codMarket/domain"
	"codMarket/pkg/database"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := database.Conn(ctx, r.DB).Create(user).Error; err != nil {
		return domain.StoreFailure("create user", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User

	err := database.Conn(ctx, r.DB).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFound("user")
		}
		return domain.User{}, domain.StoreFailure("find user", err)
	}

	return user, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	var user domain.User

	err := database.Conn(ctx, r.DB).Where("phone = ?", phone).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFound("user")
		}
		return domain.User{}, domain.StoreFailure("find user by phone", err)
	}

	return user, nil
}

func (r *UserRepository) UpdatePhone(ctx context.Context, id uint, phone string) error {
	result := database.Conn(ctx, r.DB).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("phone", phone)
	if result.Error != nil {
		return domain.StoreFailure("update user phone", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("user")
	}

	return nil
}
