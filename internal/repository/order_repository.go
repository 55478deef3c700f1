package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 一覧の絞り込み。OwnerIDがnilなら全件（フランチャイザー用）。
type OrderListFilter struct {
	OwnerID *int64
}

// ステータス更新の書き込み内容。
// completed_at / processing_time は遷移に応じてusecaseが決める。
type OrderStatusUpdate struct {
	Status         model.OrderStatus
	CompletedAt    *time.Time
	ProcessingTime *string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// created_atの新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, upd OrderStatusUpdate) error

	// 完了済み注文の平均処理時間。DB側で計算した H:MM:SS 形式の文字列。
	// 対象が1件もなければ ErrNotFound。
	AverageProcessingTime(ctx context.Context) (string, error)
}
