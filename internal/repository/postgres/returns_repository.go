package postgres

import (
	"context"
	"errors"

	"codMarket/domain"
	"codMarket/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReturnsRepository struct {
	DB *gorm.DB
}

func NewReturnsRepository(db *gorm.DB) *ReturnsRepository {
	return &ReturnsRepository{
		DB: db,
	}
}

func (r *ReturnsRepository) Create(ctx context.Context, ret *domain.Return) error {
	if err := database.Conn(ctx, r.DB).Create(ret).Error; err != nil {
		return domain.StoreFailure("create return", err)
	}

	return nil
}

func (r *ReturnsRepository) FindByID(ctx context.Context, id uint) (domain.Return, error) {
	var ret domain.Return

	err := database.Conn(ctx, r.DB).First(&ret, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Return{}, domain.NotFound("return")
		}
		return domain.Return{}, domain.StoreFailure("find return", err)
	}

	return ret, nil
}

// FindByIDForUpdate locks the return row until the surrounding transaction ends.
func (r *ReturnsRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.Return, error) {
	var ret domain.Return

	err := database.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ret, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Return{}, domain.NotFound("return")
		}
		return domain.Return{}, domain.StoreFailure("lock return", err)
	}

	return ret, nil
}

// FindActive returns the non-terminal return covering an order line, if any.
func (r *ReturnsRepository) FindActive(ctx context.Context, orderID uint, productID uint64) (domain.Return, bool, error) {
	var ret domain.Return

	err := database.Conn(ctx, r.DB).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Where("status IN ?", domain.ActiveReturnStatuses).
		Order("id DESC").
		First(&ret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Return{}, false, nil
	}
	if err != nil {
		return domain.Return{}, false, domain.StoreFailure("find active return", err)
	}

	return ret, true, nil
}

func (r *ReturnsRepository) FindAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, error) {
	var returns []domain.Return

	query := database.Conn(ctx, r.DB).Order("created_at DESC").Order("id DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Phone != "" {
		query = query.Where("customer_phone = ?", filter.Phone)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if err := query.Find(&returns).Error; err != nil {
		return nil, domain.StoreFailure("list returns", err)
	}

	return returns, nil
}

func (r *ReturnsRepository) Update(ctx context.Context, ret *domain.Return) error {
	result := database.Conn(ctx, r.DB).
		Model(&domain.Return{}).
		Where("id = ?", ret.ID).
		Updates(map[string]interface{}{
			"status":        ret.Status,
			"admin_notes":   ret.AdminNotes,
			"refund_amount": ret.RefundAmount,
		})
	if result.Error != nil {
		return domain.StoreFailure("update return", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("return")
	}

	return nil
}
