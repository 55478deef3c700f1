package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartUsecase() (*usecase.CartUsecase, *cart.Store, *TxManagerMock, *ProductRepoMock) {
	store := cart.NewStore()
	tx := newTxManagerMock()
	pRepo := new(ProductRepoMock)
	return usecase.NewCartUsecase(store, tx, pRepo), store, tx, pRepo
}

func TestCartUsecase_AddItem_UnknownProduct(t *testing.T) {
	ctx := context.Background()

	uc, store, _, pRepo := newCartUsecase()

	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 99, Quantity: 1})
	assertHTTPError(t, err, http.StatusBadRequest)
	assert.Empty(t, store.Lines(1))
}

func TestCartUsecase_AddItem_InvalidQuantity(t *testing.T) {
	uc, _, _, _ := newCartUsecase()

	_, err := uc.AddItem(context.Background(), 1, usecase.AddCartInput{ProductID: 10, Quantity: 0})
	assertHTTPError(t, err, http.StatusBadRequest)
}

// 同一商品の追加は数量加算
func TestCartUsecase_AddItem_MergesSameProduct(t *testing.T) {
	ctx := context.Background()

	uc, store, _, pRepo := newCartUsecase()

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Name: "Beans", SKU: "BEAN-001"}, nil)

	_, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 10, Quantity: 1})
	assert.NoError(t, err)

	out, err := uc.AddItem(ctx, 1, usecase.AddCartInput{ProductID: 10, Quantity: 2})
	assert.NoError(t, err)

	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.Equal(t, 1, len(store.Lines(1)))
}

// カタログから消えた商品の行は表示されない
func TestCartUsecase_GetCart_SkipsVanishedProducts(t *testing.T) {
	ctx := context.Background()

	uc, store, _, pRepo := newCartUsecase()

	store.AddItem(1, 10, 1)
	store.AddItem(1, 11, 2)

	pRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Name: "Beans", SKU: "BEAN-001"}, nil)
	pRepo.On("FindByID", mock.Anything, int64(11)).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.GetCart(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(10), out.Items[0].ProductID)
}

// 空カートの確定は書き込みを一切発行せず400
func TestCartUsecase_SubmitOrder_EmptyCart(t *testing.T) {
	uc, _, tx, _ := newCartUsecase()

	_, err := uc.SubmitOrder(context.Background(), 1)
	assertHTTPError(t, err, http.StatusBadRequest)

	tx.Repos.OrdersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tx.Repos.OrderItemsRepo.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

// 確定成功：PENDINGの注文＋カート1行につき1明細、成功後にカートは空
func TestCartUsecase_SubmitOrder_Success(t *testing.T) {
	ctx := context.Background()

	uc, store, tx, _ := newCartUsecase()

	store.AddItem(1, 10, 2)
	store.AddItem(1, 11, 1)

	tx.Repos.ProductsRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Name: "Beans", SKU: "BEAN-001"}, nil)
	tx.Repos.ProductsRepo.On("FindByID", mock.Anything, int64(11)).Return(model.Product{ID: 11, Name: "Cups", SKU: "CUP-001"}, nil)

	tx.Repos.OrdersRepo.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.FranchiseeID == 1 && o.Status == model.OrderStatusPending
	})).Return(int64(500), nil)

	tx.Repos.OrderItemsRepo.On("CreateBulk", mock.Anything, int64(500), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2
	})).Return(nil)

	out, err := uc.SubmitOrder(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(500), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, 2, len(out.Items))

	// 成功後はカートが空
	assert.Empty(t, store.Lines(1))

	tx.Repos.OrdersRepo.AssertExpectations(t)
	tx.Repos.OrderItemsRepo.AssertExpectations(t)
}

// 確定失敗時はカートを残す（再試行できる）
func TestCartUsecase_SubmitOrder_FailureKeepsCart(t *testing.T) {
	ctx := context.Background()

	uc, store, tx, _ := newCartUsecase()

	store.AddItem(1, 10, 2)

	tx.Repos.ProductsRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{ID: 10, Name: "Beans", SKU: "BEAN-001"}, nil)
	tx.Repos.OrdersRepo.On("Create", mock.Anything, mock.Anything).Return(int64(500), nil)
	tx.Repos.OrderItemsRepo.On("CreateBulk", mock.Anything, int64(500), mock.Anything).Return(errors.New("db down"))

	_, err := uc.SubmitOrder(ctx, 1)
	assertHTTPError(t, err, http.StatusInternalServerError)

	assert.Equal(t, 1, len(store.Lines(1)))
}

// 確定前に商品が消えていたら400でカートは残す
func TestCartUsecase_SubmitOrder_VanishedProduct(t *testing.T) {
	ctx := context.Background()

	uc, store, tx, _ := newCartUsecase()

	store.AddItem(1, 10, 2)

	tx.Repos.ProductsRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.SubmitOrder(ctx, 1)
	assertHTTPError(t, err, http.StatusBadRequest)

	tx.Repos.OrdersRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 1, len(store.Lines(1)))
}

// 数量0以下の上書きは行削除と同じ
func TestCartUsecase_UpdateLine_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()

	uc, store, _, _ := newCartUsecase()

	store.AddItem(1, 10, 2)

	out, err := uc.UpdateLine(ctx, 1, 10, usecase.UpdateCartLineInput{Quantity: 0})
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Empty(t, store.Lines(1))
}

func TestCartUsecase_ClearCart(t *testing.T) {
	ctx := context.Background()

	uc, store, _, _ := newCartUsecase()

	store.AddItem(1, 10, 2)
	store.AddItem(1, 11, 1)

	out, err := uc.ClearCart(ctx, 1)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Empty(t, store.Lines(1))
}
