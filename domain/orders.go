package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        *uint       `gorm:"column:user_id;index" json:"user_id,omitempty"`
	GuestName     string      `gorm:"column:guest_name;not null" json:"guest_name"`
	GuestPhone    string      `gorm:"column:guest_phone;index;not null" json:"guest_phone"`
	GuestEmail    string      `gorm:"column:guest_email" json:"guest_email,omitempty"`
	GuestAddress  string      `gorm:"column:guest_address" json:"guest_address"`
	GuestWilaya   string      `gorm:"column:guest_wilaya" json:"guest_wilaya"`
	GuestCommune  string      `gorm:"column:guest_commune" json:"guest_commune"`
	ItemsTotal    float64     `gorm:"column:items_total;type:numeric;not null" json:"items_total"`
	DeliveryTotal float64     `gorm:"column:delivery_total;type:numeric;not null" json:"delivery_total"`
	TotalAmount   float64     `gorm:"column:total_amount;type:numeric;not null" json:"total_amount"`
	Status        OrderStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	TrustFlag     string      `gorm:"column:trust_flag;type:varchar(20)" json:"trust_flag,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// HasProduct reports whether productID is one of the order's line items.
func (o Order) HasProduct(productID uint64) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// OrderItem price is snapshotted at purchase time and never updated.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID uint64  `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity  int     `gorm:"column:quantity;not null" json:"quantity"`
	Price     float64 `gorm:"column:price;type:numeric;not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type CartItem struct {
	ProductID uint64
	Quantity  int
}

type GuestInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Wilaya  string
	Commune string
}

type PlaceOrderInput struct {
	Items  []CartItem
	Guest  GuestInfo
	UserID *uint
}
