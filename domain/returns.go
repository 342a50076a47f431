package domain

import "time"

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"
	ReturnStatusApproved  ReturnStatus = "APPROVED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
	ReturnStatusCompleted ReturnStatus = "COMPLETED"
)

type ReturnReason string

const (
	ReasonDamaged      ReturnReason = "DAMAGED"
	ReasonWrongItem    ReturnReason = "WRONG_ITEM"
	ReasonNotWorking   ReturnReason = "NOT_WORKING"
	ReasonWrongSize    ReturnReason = "WRONG_SIZE"
	ReasonPoorQuality  ReturnReason = "POOR_QUALITY"
	ReasonLateDelivery ReturnReason = "LATE_DELIVERY"
	ReasonWrongOrder   ReturnReason = "WRONG_ORDER"
	ReasonOther        ReturnReason = "OTHER"
)

var returnReasons = map[ReturnReason]bool{
	ReasonDamaged:      true,
	ReasonWrongItem:    true,
	ReasonNotWorking:   true,
	ReasonWrongSize:    true,
	ReasonPoorQuality:  true,
	ReasonLateDelivery: true,
	ReasonWrongOrder:   true,
	ReasonOther:        true,
}

func (r ReturnReason) Valid() bool {
	return returnReasons[r]
}

const MaxDetailedReasonLength = 500

type Return struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OrderID        uint         `gorm:"column:order_id;index:idx_returns_order_product;not null" json:"order_id"`
	ProductID      uint64       `gorm:"column:product_id;index:idx_returns_order_product;not null" json:"product_id"`
	UserID         *uint        `gorm:"column:user_id;index" json:"user_id,omitempty"`
	CustomerPhone  string       `gorm:"column:customer_phone;index;not null" json:"customer_phone"`
	CustomerName   string       `gorm:"column:customer_name" json:"customer_name,omitempty"`
	Reason         ReturnReason `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	DetailedReason string       `gorm:"column:detailed_reason;type:varchar(500)" json:"detailed_reason,omitempty"`
	Status         ReturnStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	AdminNotes     string       `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	RefundAmount   *float64     `gorm:"column:refund_amount;type:numeric" json:"refund_amount,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Return) TableName() string {
	return "returns"
}

// ActiveReturnStatuses block a new request for the same order line.
var ActiveReturnStatuses = []ReturnStatus{
	ReturnStatusPending,
	ReturnStatusApproved,
	ReturnStatusCompleted,
}

type CreateReturnInput struct {
	OrderID        uint
	ProductID      uint64
	CustomerPhone  string
	CustomerName   string
	Reason         ReturnReason
	DetailedReason string
	UserID         *uint
}

type TransitionReturnInput struct {
	Status       ReturnStatus
	AdminNotes   *string
	RefundAmount *float64
}

type ReturnFilter struct {
	Status ReturnStatus
	Phone  string
	UserID *uint
}
