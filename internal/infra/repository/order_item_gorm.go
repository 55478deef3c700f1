package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// 注文確定時に明細をまとめて作成
func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		it.OrderID = orderID
		rows = append(rows, it)
	}

	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}
