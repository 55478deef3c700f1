package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	args := m.Called(ctx, sku)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, upd repo.OrderStatusUpdate) error {
	args := m.Called(ctx, orderID, upd)
	return args.Error(0)
}

func (m *OrderRepoMock) AverageProcessingTime(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type ProfileRepoMock struct{ mock.Mock }

func (m *ProfileRepoMock) Create(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileRepoMock) FindByID(ctx context.Context, userID int64) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepoMock) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepoMock) Update(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type RefreshTokenRepoMock struct{ mock.Mock }

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) DeleteByID(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// 検証を素通しするvalidator
type PassValidatorMock struct{}

func (v *PassValidatorMock) ValidateRegister(ctx context.Context, email string, password string, userType string) error {
	return nil
}

func (v *PassValidatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	return nil
}

func (v *PassValidatorMock) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	return nil
}

// =====================
// Tx
// =====================

// TxManagerMockはトランザクションを張らずfnを直接呼ぶ。
type TxManagerMock struct {
	Repos TxReposStub
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&m.Repos)
}

type TxReposStub struct {
	OrdersRepo     *OrderRepoMock
	OrderItemsRepo *OrderItemRepoMock
	ProductsRepo   *ProductRepoMock
	ProfilesRepo   *ProfileRepoMock
}

func (s *TxReposStub) Orders() repo.OrderRepository         { return s.OrdersRepo }
func (s *TxReposStub) OrderItems() repo.OrderItemRepository { return s.OrderItemsRepo }
func (s *TxReposStub) Products() repo.ProductRepository     { return s.ProductsRepo }
func (s *TxReposStub) Profiles() repo.ProfileRepository     { return s.ProfilesRepo }

func newTxManagerMock() *TxManagerMock {
	return &TxManagerMock{
		Repos: TxReposStub{
			OrdersRepo:     new(OrderRepoMock),
			OrderItemsRepo: new(OrderItemRepoMock),
			ProductsRepo:   new(ProductRepoMock),
			ProfilesRepo:   new(ProfileRepoMock),
		},
	}
}

// =====================
// Helpers
// =====================

func assertHTTPError(t *testing.T, err error, wantStatus int) {
	t.Helper()

	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	assert.Equal(t, wantStatus, he.Status)
}
