package postgres

import (
	"context"
	"errors"

	"codMarket/domain"
	"codMarket/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerScoreRepository struct {
	DB *gorm.DB
}

func NewCustomerScoreRepository(db *gorm.DB) *CustomerScoreRepository {
	return &CustomerScoreRepository{
		DB: db,
	}
}

// Ensure inserts a default record for phone unless one exists already.
func (r *CustomerScoreRepository) Ensure(ctx context.Context, phone, name string, initialScore int, status domain.ScoreStatus) error {
	row := domain.CustomerScore{
		Phone:      phone,
		Name:       name,
		TrustScore: initialScore,
		Status:     status,
	}

	err := database.Conn(ctx, r.DB).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return domain.StoreFailure("ensure customer score", err)
	}

	return nil
}

func (r *CustomerScoreRepository) FindByPhone(ctx context.Context, phone string) (domain.CustomerScore, error) {
	var score domain.CustomerScore

	err := database.Conn(ctx, r.DB).Where("phone = ?", phone).First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CustomerScore{}, domain.NotFound("customer score")
		}
		return domain.CustomerScore{}, domain.StoreFailure("find customer score", err)
	}

	return score, nil
}

// FindByPhoneForUpdate locks the row until the surrounding transaction ends.
func (r *CustomerScoreRepository) FindByPhoneForUpdate(ctx context.Context, phone string) (domain.CustomerScore, error) {
	var score domain.CustomerScore

	err := database.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("phone = ?", phone).
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CustomerScore{}, domain.NotFound("customer score")
		}
		return domain.CustomerScore{}, domain.StoreFailure("lock customer score", err)
	}

	return score, nil
}

func (r *CustomerScoreRepository) Save(ctx context.Context, score *domain.CustomerScore) error {
	if err := database.Conn(ctx, r.DB).Save(score).Error; err != nil {
		return domain.StoreFailure("save customer score", err)
	}

	return nil
}

func (r *CustomerScoreRepository) Delete(ctx context.Context, id uint) error {
	result := database.Conn(ctx, r.DB).Delete(&domain.CustomerScore{}, id)
	if result.Error != nil {
		return domain.StoreFailure("delete customer score", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("customer score")
	}

	return nil
}

func (r *CustomerScoreRepository) AppendHistory(ctx context.Context, entry *domain.ScoreHistory) error {
	if err := database.Conn(ctx, r.DB).Create(entry).Error; err != nil {
		return domain.StoreFailure("append score history", err)
	}

	return nil
}

// ListHistory returns the newest entries first. limit <= 0 returns all.
func (r *CustomerScoreRepository) ListHistory(ctx context.Context, scoreID uint, limit int) ([]domain.ScoreHistory, error) {
	var history []domain.ScoreHistory

	query := database.Conn(ctx, r.DB).
		Where("customer_score_id = ?", scoreID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&history).Error; err != nil {
		return nil, domain.StoreFailure("list score history", err)
	}

	return history, nil
}

// ReassignHistory moves every history row of one record onto another.
func (r *CustomerScoreRepository) ReassignHistory(ctx context.Context, fromID, toID uint) error {
	err := database.Conn(ctx, r.DB).
		Model(&domain.ScoreHistory{}).
		Where("customer_score_id = ?", fromID).
		Update("customer_score_id", toID).Error
	if err != nil {
		return domain.StoreFailure("reassign score history", err)
	}

	return nil
}
