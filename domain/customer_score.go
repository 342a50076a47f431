package domain

import "time"

type ScoreStatus string

const (
	ScoreStatusGood        ScoreStatus = "GOOD"
	ScoreStatusWarning     ScoreStatus = "WARNING"
	ScoreStatusWatch       ScoreStatus = "WATCH"
	ScoreStatusBlacklisted ScoreStatus = "BLACKLISTED"
)

func (s ScoreStatus) Valid() bool {
	switch s {
	case ScoreStatusGood, ScoreStatusWarning, ScoreStatusWatch, ScoreStatusBlacklisted:
		return true
	}
	return false
}

// ScoreAction tags every trust score mutation in the history log.
type ScoreAction string

const (
	ActionReturnRequested   ScoreAction = "RETURN_REQUESTED"
	ActionReturnRejected    ScoreAction = "RETURN_REJECTED"
	ActionReturnCompleted   ScoreAction = "RETURN_COMPLETED"
	ActionOrderCompleted    ScoreAction = "ORDER_COMPLETED"
	ActionAdminReset        ScoreAction = "ADMIN_RESET"
	ActionAdminAddPoints    ScoreAction = "ADMIN_ADD_POINTS"
	ActionAdminDeductPoints ScoreAction = "ADMIN_DEDUCT_POINTS"
	ActionAdminSetStatus    ScoreAction = "ADMIN_SET_STATUS"
	ActionPhoneChanged      ScoreAction = "PHONE_CHANGED"
)

// CREATE TABLE public.customer_scores (
//     id                 BIGSERIAL PRIMARY KEY,
//     phone              TEXT NOT NULL UNIQUE,
//     name               TEXT,
//     trust_score        INTEGER NOT NULL,
//     status             VARCHAR(20) NOT NULL,
//     total_orders       INTEGER NOT NULL DEFAULT 0,
//     total_returns      INTEGER NOT NULL DEFAULT 0,
//     successful_orders  INTEGER NOT NULL DEFAULT 0,
//     created_at         TIMESTAMPTZ,
//     updated_at         TIMESTAMPTZ
// );

// CustomerScore is keyed internally by ID; Phone is a unique, mutable lookup
// attribute.
type CustomerScore struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Phone            string      `gorm:"column:phone;uniqueIndex;not null" json:"phone"`
	Name             string      `gorm:"column:name" json:"name,omitempty"`
	TrustScore       int         `gorm:"column:trust_score;not null" json:"trust_score"`
	Status           ScoreStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	TotalOrders      int         `gorm:"column:total_orders;not null" json:"total_orders"`
	TotalReturns     int         `gorm:"column:total_returns;not null" json:"total_returns"`
	SuccessfulOrders int         `gorm:"column:successful_orders;not null" json:"successful_orders"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (CustomerScore) TableName() string {
	return "customer_scores"
}

type ScoreHistory struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerScoreID uint        `gorm:"column:customer_score_id;index;not null" json:"customer_score_id"`
	CustomerPhone   string      `gorm:"column:customer_phone;index;not null" json:"customer_phone"`
	Action          ScoreAction `gorm:"column:action;type:varchar(32);not null" json:"action"`
	PointsChange    int         `gorm:"column:points_change;not null" json:"points_change"`
	PreviousScore   int         `gorm:"column:previous_score;not null" json:"previous_score"`
	NewScore        int         `gorm:"column:new_score;not null" json:"new_score"`
	Notes           string      `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (ScoreHistory) TableName() string {
	return "score_histories"
}

// CustomerScoreView is a score with its most recent history rows.
type CustomerScoreView struct {
	Score   CustomerScore  `json:"score"`
	History []ScoreHistory `json:"history"`
}
