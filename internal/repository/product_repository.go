package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
// 一覧は名前の昇順で返す。
type ProductRepository interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
}
