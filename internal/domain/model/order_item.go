package model

import "time"

// 注文確定後は編集・削除できない
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
