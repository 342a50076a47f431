package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id              BIGSERIAL PRIMARY KEY,
//     product_name    TEXT NOT NULL,
//     price           NUMERIC NOT NULL,
//     discount_price  NUMERIC,
//     delivery_fee    NUMERIC NOT NULL DEFAULT 0,
//     stock_quantity  INTEGER NOT NULL DEFAULT 0,
//     created_at      TIMESTAMPTZ DEFAULT NOW(),
//     updated_at      TIMESTAMPTZ
// );

// Product is owned by the catalog; the order pipeline only reads prices and
// moves stock.
type Product struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName   string    `gorm:"column:product_name;type:text;not null" json:"product_name"`
	Price         float64   `gorm:"column:price;type:numeric;not null" json:"price"`
	DiscountPrice *float64  `gorm:"column:discount_price;type:numeric" json:"discount_price,omitempty"`
	DeliveryFee   float64   `gorm:"column:delivery_fee;type:numeric;not null" json:"delivery_fee"`
	StockQuantity int       `gorm:"column:stock_quantity;not null" json:"stock_quantity"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the discount price when one is set.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
