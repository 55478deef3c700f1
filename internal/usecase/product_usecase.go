package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// /products の業務ロジック。閲覧は全ロール、作成・更新はフランチャイザーのみ
// （ロールはmiddleware側で絞る）。
type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

type CreateProductInput struct {
	Name        string
	SKU         string
	Description string
}

type UpdateProductInput struct {
	Name        string
	SKU         string
	Description string
}

// 名前の昇順で全件返す
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, actorUserID int64, in CreateProductInput) (model.Product, error) {
	if actorUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "sku required")
	}

	// SKU重複チェック
	_, err := u.productRepo.FindBySKU(ctx, sku)
	if err == nil {
		return model.Product{}, NewHTTPError(http.StatusConflict, "sku already exists")
	}
	if err != repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		SKU:         sku,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return p, nil
}

// 名前と説明だけ更新できる。SKUの変更は拒否する。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, actorUserID int64, productID int64, in UpdateProductInput) (model.Product, error) {
	if actorUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// SKUは不変
	if sku := strings.TrimSpace(in.SKU); sku != "" && sku != p.SKU {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "sku cannot be changed")
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.UpdatedAt = time.Now()

	if err := u.productRepo.Update(ctx, p); err != nil {
		if err == repo.ErrNotFound {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return p, nil
}
