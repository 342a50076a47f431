package postgres

import (
	"context"
	"errors"

	"codMarket/domain"
	"codMarket/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := database.Conn(ctx, r.DB).Create(product).Error; err != nil {
		return domain.StoreFailure("create product", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	var product domain.Product

	err := database.Conn(ctx, r.DB).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.NotFound("product")
		}
		return domain.Product{}, domain.StoreFailure("find product", err)
	}

	return product, nil
}

// FindByIDForUpdate locks the product row until the surrounding transaction ends.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id uint64) (domain.Product, error) {
	var product domain.Product

	err := database.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.NotFound("product")
		}
		return domain.Product{}, domain.StoreFailure("lock product", err)
	}

	return product, nil
}

// DecrementStock subtracts qty only when enough stock is left. It reports
// false when the guard rejected the update.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint64, qty int) (bool, error) {
	result := database.Conn(ctx, r.DB).
		Model(&domain.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if result.Error != nil {
		return false, domain.StoreFailure("decrement stock", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id uint64, qty int) error {
	result := database.Conn(ctx, r.DB).
		Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if result.Error != nil {
		return domain.StoreFailure("increment stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("product")
	}

	return nil
}
