package usecase

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
}

type FranchiseeOutput struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	FranchiseeID   int64             `json:"franchisee_id"`
	Status         string            `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at"`
	ProcessingTime *string           `json:"processing_time"`
	Items          []OrderItemOutput `json:"items"`
	Franchisee     *FranchiseeOutput `json:"franchisee,omitempty"`
	// 呼び出し側ロールに許可された遷移先。画面のボタン集合そのもの。
	AvailableActions []string `json:"available_actions"`
}

type UpdateOrderStatusInput struct {
	Status string
}

type ProcessingTimeOutput struct {
	// DBが返したH:MM:SS形式。対象なしならnull
	Interval *string `json:"interval"`
	// 表示用（"2h 5m" / "12m" / "N/A"）
	Display string `json:"display"`
}

// FetchOrders は注文一覧。フランチャイザーは全件、フランチャイジーは自分の分だけ。
// どちらもcreated_atの新しい順。
func (u *OrderUsecase) FetchOrders(ctx context.Context, actorUserID int64, actorRole model.Role) ([]OrderOutput, error) {
	if actorUserID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	filter := repo.OrderListFilter{}
	if actorRole != model.RoleFranchisor {
		filter.OwnerID = &actorUserID
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().List(ctx, filter)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out, err := u.buildOrderOutput(ctx, r, o, actorUserID, actorRole)
			if err != nil {
				return err
			}
			outs = append(outs, out)
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetOrder は注文詳細（明細＋商品＋注文者プロフィール付き）。
// フランチャイジーが他人の注文を見ようとしたら「存在しない扱い」にする。
func (u *OrderUsecase) GetOrder(ctx context.Context, actorUserID int64, actorRole model.Role, orderID int64) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if actorRole != model.RoleFranchisor && o.FranchiseeID != actorUserID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		out, err = u.buildOrderOutput(ctx, r, o, actorUserID, actorRole)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// UpdateStatus はステータス遷移。遷移表はサーバー側で検証する。
// 表にないエッジは400、表にあるがロール不足は403。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, actorRole model.Role, orderID int64, in UpdateOrderStatusInput) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if !newStatus.IsValid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		isOwner := o.FranchiseeID == actorUserID

		if !model.CanTransition(o.Status, newStatus, actorRole, isOwner) {
			// どのロールにも許されないエッジか、ロール不足かを区別する
			if transitionExists(o.Status, newStatus) {
				return NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return NewHTTPError(http.StatusBadRequest, "invalid transition")
		}

		upd := repo.OrderStatusUpdate{Status: newStatus}

		if newStatus == model.OrderStatusCompleted {
			// 完了時刻と処理時間を確定する
			now := time.Now()
			pt := formatProcessingTime(now.Sub(o.CreatedAt))
			upd.CompletedAt = &now
			upd.ProcessingTime = &pt
		}
		// 再有効化（CANCELLED→PENDING）はcompleted_at/processing_timeをnullに戻す

		if err := r.Orders().UpdateStatus(ctx, orderID, upd); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// AverageProcessingTime は完了済み注文の平均処理時間。
// 値自体はDBが計算したものをそのまま使う。
func (u *OrderUsecase) AverageProcessingTime(ctx context.Context) (ProcessingTimeOutput, error) {
	var raw string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Orders().AverageProcessingTime(ctx)
		if err == repo.ErrNotFound {
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		raw = v
		return nil
	})
	if err != nil {
		return ProcessingTimeOutput{}, err
	}

	if raw == "" {
		return ProcessingTimeOutput{Interval: nil, Display: "N/A"}, nil
	}
	return ProcessingTimeOutput{Interval: &raw, Display: DisplayInterval(raw)}, nil
}

// あるエッジがいずれかのロールで許可されているか
func transitionExists(from model.OrderStatus, to model.OrderStatus) bool {
	return model.CanTransition(from, to, model.RoleFranchisor, true) ||
		model.CanTransition(from, to, model.RoleFranchisee, true)
}

func (u *OrderUsecase) buildOrderOutput(ctx context.Context, r repo.TxRepos, o model.Order, actorUserID int64, actorRole model.Role) (OrderOutput, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	itemOuts := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		out := OrderItemOutput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}

		// 明細は読むたびに商品へjoinする（スナップショットは持たない）
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if err == nil {
			out.Name = p.Name
			out.SKU = p.SKU
		} else if err != repo.ErrNotFound {
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		itemOuts = append(itemOuts, out)
	}

	var franchisee *FranchiseeOutput
	profile, err := r.Profiles().FindByID(ctx, o.FranchiseeID)
	if err == nil {
		franchisee = &FranchiseeOutput{
			ID:       profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
		}
	} else if err != repo.ErrProfileNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	isOwner := o.FranchiseeID == actorUserID
	actions := model.AvailableTransitions(o.Status, actorRole, isOwner)
	actionStrs := make([]string, 0, len(actions))
	for _, a := range actions {
		actionStrs = append(actionStrs, string(a))
	}

	return OrderOutput{
		ID:               o.ID,
		FranchiseeID:     o.FranchiseeID,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		CompletedAt:      o.CompletedAt,
		ProcessingTime:   o.ProcessingTime,
		Items:            itemOuts,
		Franchisee:       franchisee,
		AvailableActions: actionStrs,
	}, nil
}

// durationをH:MM:SS形式にする（DBのinterval表記に合わせる）
func formatProcessingTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

var intervalRe = regexp.MustCompile(`(\d+):(\d+):(\d+)`)

// DisplayInterval はH:MM:SS形式を表示用に変換する。
// 1時間以上なら "2h 5m"、未満なら "12m"。形式が合わなければそのまま返す。
func DisplayInterval(interval string) string {
	m := intervalRe.FindStringSubmatch(interval)
	if m == nil {
		return interval
	}

	var hours, minutes int
	fmt.Sscanf(m[1], "%d", &hours)
	fmt.Sscanf(m[2], "%d", &minutes)

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
