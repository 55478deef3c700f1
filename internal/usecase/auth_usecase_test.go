package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Port:      "8080",
		JWTSecret: "test-secret",
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Register_HashesPassword(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	profiles.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		// 平文は保存しない
		if p.PasswordHash == "password123" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("password123")) == nil
	})).Return(nil)

	res, err := uc.Register(ctx, usecase.AuthRegisterRequest{
		Email:    "shop@example.com",
		Password: "password123",
		FullName: "Shop Owner",
		UserType: "FRANCHISEE",
	})
	assert.NoError(t, err)
	assert.Equal(t, "FRANCHISEE", res.User.UserType)

	profiles.AssertExpectations(t)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	profiles.On("FindByEmail", mock.Anything, "shop@example.com").Return(&model.Profile{
		ID:           1,
		Email:        "shop@example.com",
		UserType:     model.RoleFranchisee,
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}, nil)

	_, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "shop@example.com", Password: "wrong"}, "ua")
	assert.Equal(t, usecase.ErrUnauthorized, err)

	// 失敗時はrefresh tokenを発行しない
	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, new(RefreshTokenRepoMock), &PassValidatorMock{})

	profiles.On("FindByEmail", mock.Anything, "shop@example.com").Return(&model.Profile{
		ID:           1,
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     false,
	}, nil)

	_, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "shop@example.com", Password: "password123"}, "ua")
	assert.Equal(t, usecase.ErrForbidden, err)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	profiles.On("FindByEmail", mock.Anything, "shop@example.com").Return(&model.Profile{
		ID:           1,
		Email:        "shop@example.com",
		FullName:     "Shop Owner",
		UserType:     model.RoleFranchisee,
		PasswordHash: hashPassword(t, "password123"),
		TokenVersion: 3,
		IsActive:     true,
	}, nil)
	profiles.On("Update", mock.Anything, mock.Anything).Return(nil)

	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.UserID == 1 && rt.TokenHash != "" && rt.UserAgent == "ua" && rt.ExpiresAt.After(time.Now())
	})).Return(nil)

	res, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "shop@example.com", Password: "password123"}, "ua")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.Equal(t, 3, res.Body.Token.TokenVersion)
	assert.NotEmpty(t, res.RefreshTokenPlain)

	rtRepo.AssertExpectations(t)
}

func TestAuthUsecase_Refresh_Expired(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	rtRepo.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)
	rtRepo.On("DeleteByID", mock.Anything, "rt-1").Return(nil)

	_, err := uc.Refresh(ctx, "expired-token", "ua")
	assert.Equal(t, usecase.ErrUnauthorized, err)

	rtRepo.AssertExpectations(t)
}

// 使用済みtokenの再提示はreplay。全refresh tokenを破棄する。
func TestAuthUsecase_Refresh_ReplayDeletesAllTokens(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	usedAt := time.Now().Add(-time.Minute)
	rtRepo.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &usedAt,
	}, nil)
	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	_, err := uc.Refresh(ctx, "replayed-token", "ua")
	assert.Equal(t, usecase.ErrSecurityIncident, err)

	rtRepo.AssertExpectations(t)
}

// 正常なrotate：旧をusedにして新を発行
func TestAuthUsecase_Refresh_Rotates(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	rtRepo.On("FindByTokenHash", mock.Anything, mock.Anything).Return(&model.RefreshToken{
		ID:        "rt-1",
		UserID:    1,
		UserAgent: "ua",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	profiles.On("FindByID", mock.Anything, int64(1)).Return(&model.Profile{
		ID:           1,
		UserType:     model.RoleFranchisee,
		TokenVersion: 0,
		IsActive:     true,
	}, nil)

	rtRepo.On("MarkUsed", mock.Anything, "rt-1", mock.Anything).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.ID != "rt-1" && rt.UserID == 1
	})).Return(nil)

	res, err := uc.Refresh(ctx, "old-token", "ua")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.AccessToken)
	assert.NotEqual(t, "old-token", res.RefreshTokenPlain)

	rtRepo.AssertExpectations(t)
}

// 全端末ログアウト：token_version+1 と refresh全削除
func TestAuthUsecase_LogoutAll(t *testing.T) {
	ctx := context.Background()

	profiles := new(ProfileRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	uc := usecase.NewAuthUsecase(testConfig(), profiles, rtRepo, &PassValidatorMock{})

	profiles.On("IncrementTokenVersion", mock.Anything, int64(1)).Return(nil)
	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(1)).Return(nil)

	_, err := uc.LogoutAll(ctx, 1)
	assert.NoError(t, err)

	profiles.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
}
