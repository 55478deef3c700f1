package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// プロフィールが見つかりませんを統一
var ErrProfileNotFound = errors.New("profile not found")

// 保存・取得を約束
type ProfileRepository interface {
	// 登録時に1件作成する。user_typeは以後変更しない。
	Create(ctx context.Context, profile *model.Profile) error
	FindByID(ctx context.Context, userID int64) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	// 最終ログインなどの更新
	Update(ctx context.Context, profile *model.Profile) error
	// トークンのバージョンを＋１（全端末ログアウト用）
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
