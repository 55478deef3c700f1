package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *ProfileGormRepository) FindByID(ctx context.Context, userID int64) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileGormRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// user_typeはここでも更新しない（登録後は不変）
func (r *ProfileGormRepository) Update(ctx context.Context, profile *model.Profile) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"full_name":     profile.FullName,
			"is_active":     profile.IsActive,
			"last_login_at": profile.LastLoginAt,
			"updated_at":    profile.UpdatedAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileGormRepository) IncrementTokenVersion(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", userID).
		Update("token_version", gorm.Expr("token_version + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrProfileNotFound
	}
	return nil
}
