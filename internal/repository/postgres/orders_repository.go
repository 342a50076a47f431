package postgres

import (
	"context"
	"errors"

	"codMarket/domain"
	"codMarket/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// CreateOrder inserts the order together with its items.
func (r *OrdersRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := database.Conn(ctx, r.DB).Create(order).Error; err != nil {
		return domain.StoreFailure("create order", err)
	}

	return nil
}

func (r *OrdersRepository) GetAllOrders(ctx context.Context, userID *uint) ([]domain.Order, error) {
	var orders []domain.Order

	query := database.Conn(ctx, r.DB).Preload("Items").Order("created_at DESC")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	if err := query.Find(&orders).Error; err != nil {
		return nil, domain.StoreFailure("list orders", err)
	}

	return orders, nil
}

func (r *OrdersRepository) GetOrder(ctx context.Context, orderID uint) (domain.Order, error) {
	var order domain.Order

	err := database.Conn(ctx, r.DB).Preload("Items").First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.NotFound("order")
		}
		return domain.Order{}, domain.StoreFailure("find order", err)
	}

	return order, nil
}

// GetOrderForUpdate locks the order row; items are loaded without a lock.
func (r *OrdersRepository) GetOrderForUpdate(ctx context.Context, orderID uint) (domain.Order, error) {
	var order domain.Order

	err := database.Conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.NotFound("order")
		}
		return domain.Order{}, domain.StoreFailure("lock order", err)
	}

	if err := database.Conn(ctx, r.DB).Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
		return domain.Order{}, domain.StoreFailure("load order items", err)
	}

	return order, nil
}

func (r *OrdersRepository) UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) error {
	result := database.Conn(ctx, r.DB).
		Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		return domain.StoreFailure("update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("order")
	}

	return nil
}
