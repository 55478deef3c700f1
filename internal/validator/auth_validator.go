package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")

	// refresh tokenが不正
	ErrInvalidRefresh = errors.New("invalid refresh")
)

type authValidator struct {
	profiles repository.ProfileRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(profiles repository.ProfileRepository) usecase.AuthValidator {
	return &authValidator{profiles: profiles}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string, userType string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	// パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		return ErrInvalidInput
	}

	// user_typeは2ロールのどちらか
	if !model.Role(userType).IsValid() {
		return ErrInvalidInput
	}

	// email重複チェック（DBが必要）
	p, err := v.profiles.FindByEmail(ctx, email)
	if err == nil && p != nil {
		return ErrEmailAlreadyUsed
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	return nil
}

// refresh 入力を検証
func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidRefresh
	}

	return nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
