package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// processing_timeは完了時にサーバー側で計算（completed_at - created_at、H:MM:SS形式）
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	FranchiseeID   int64       `gorm:"not null;index" json:"franchisee_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt      time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at"`
	ProcessingTime *string     `gorm:"type:varchar(32)" json:"processing_time"`
}
