package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// created_atの新しい順。OwnerID指定ありならそのフランチャイジーの注文だけ。
func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.OwnerID != nil {
		q = q.Where("franchisee_id = ?", *f.OwnerID)
	}

	var items []model.Order
	if err := q.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, upd repo.OrderStatusUpdate) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":          upd.Status,
			"completed_at":    upd.CompletedAt,
			"processing_time": upd.ProcessingTime,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 平均処理時間はDB側で計算する（usecaseでは式を再導出しない）
func (r *OrderGormRepository) AverageProcessingTime(ctx context.Context) (string, error) {
	var avg *string

	err := r.db.WithContext(ctx).
		Raw(`SELECT to_char(avg(completed_at - created_at), 'HH24:MI:SS')
		     FROM orders
		     WHERE status = ? AND completed_at IS NOT NULL`, model.OrderStatusCompleted).
		Scan(&avg).Error
	if err != nil {
		return "", err
	}
	if avg == nil || *avg == "" {
		return "", repo.ErrNotFound
	}
	return *avg, nil
}
