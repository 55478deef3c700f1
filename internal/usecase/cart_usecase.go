package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カート本体はインメモリのStore、注文確定だけがDBに触る。
type CartUsecase struct {
	store       *cart.Store
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
}

func NewCartUsecase(
	store *cart.Store,
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		store:       store,
		tx:          tx,
		productRepo: productRepo,
	}
}

type CartLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartLineInput struct {
	Quantity int64
}

// GetCart はカート取得（空なら空のitemsを返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.buildCartResponse(ctx, userID)
}

// AddItem はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品の存在チェック
	_, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.store.AddItem(userID, in.ProductID, in.Quantity)

	return u.buildCartResponse(ctx, userID)
}

// UpdateLine は数量を上書きする。0以下は行削除と同じ。
func (u *CartUsecase) UpdateLine(ctx context.Context, userID int64, productID int64, in UpdateCartLineInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	u.store.UpdateQuantity(userID, productID, in.Quantity)

	return u.buildCartResponse(ctx, userID)
}

// RemoveLine は行削除。無ければ何もしない。
func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	u.store.RemoveItem(userID, productID)

	return u.buildCartResponse(ctx, userID)
}

// ClearCart はカートを空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	u.store.Clear(userID)

	return CartResponse{Items: []CartLineResponse{}}, nil
}

// SubmitOrder はカートを注文に変換する。
// 空カートは書き込みを一切発行せずに弾く。
// OrderとOrderItemsは1トランザクションで作る。失敗時はカートを触らない。
func (u *CartUsecase) SubmitOrder(ctx context.Context, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines := u.store.Lines(userID)
	if len(lines) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 商品が消えていないか確定前に再チェック
		products := make(map[int64]model.Product, len(lines))
		for _, ln := range lines {
			p, err := r.Products().FindByID(ctx, ln.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			products[ln.ProductID] = p
		}

		// 注文作成
		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			FranchiseeID: userID,
			Status:       model.OrderStatusPending,
			CreatedAt:    now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 注文明細一括作成（カート1行につき1明細）
		items := make([]model.OrderItem, 0, len(lines))
		for _, ln := range lines {
			items = append(items, model.OrderItem{
				ProductID: ln.ProductID,
				Quantity:  ln.Quantity,
				CreatedAt: now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		itemOuts := make([]OrderItemOutput, 0, len(items))
		for _, it := range items {
			p := products[it.ProductID]
			itemOuts = append(itemOuts, OrderItemOutput{
				ProductID: it.ProductID,
				Name:      p.Name,
				SKU:       p.SKU,
				Quantity:  it.Quantity,
			})
		}

		out = OrderOutput{
			ID:           orderID,
			FranchiseeID: userID,
			Status:       string(model.OrderStatusPending),
			CreatedAt:    now,
			Items:        itemOuts,
		}
		return nil
	})

	if err != nil {
		// 失敗時はカートをそのまま残す（再試行できる）
		return OrderOutput{}, err
	}

	// 成功したときだけクリア
	u.store.Clear(userID)
	return out, nil
}

// カートの行を商品情報と合わせてCartResponseにする。
// カタログから消えた商品の行は表示しない。
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	lines := u.store.Lines(userID)

	respItems := make([]CartLineResponse, 0, len(lines))
	for _, ln := range lines {
		p, err := u.productRepo.FindByID(ctx, ln.ProductID)
		if err != nil {
			continue
		}

		respItems = append(respItems, CartLineResponse{
			ProductID: ln.ProductID,
			Name:      p.Name,
			SKU:       p.SKU,
			Quantity:  ln.Quantity,
		})
	}

	return CartResponse{Items: respItems}, nil
}
