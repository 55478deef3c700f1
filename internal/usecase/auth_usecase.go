package usecase

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/repository"

	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403　権限
	ErrForbidden = errors.New("forbidden")
	//401 再利用されてしまっている
	ErrSecurityIncident = errors.New("security incident")
	//競合
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const refreshTokenTTL = 30 * 24 * time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string, userType string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error
}

type ProfileDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

type AuthRegisterResponse struct {
	User ProfileDTO `json:"user"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  ProfileDTO        `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthSuccessResponse struct {
	Message string `json:"message"`
}

type LoginResult struct {
	Body              AuthLoginResponse
	RefreshTokenPlain string
}

type RefreshResult struct {
	Body              JwtAccessTokenDTO
	RefreshTokenPlain string
}

type AuthUsecase struct {
	cfg       config.Config
	profiles  repository.ProfileRepository
	rtRepo    repository.RefreshTokenRepository
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	profiles repository.ProfileRepository,
	rtRepo repository.RefreshTokenRepository,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		profiles:  profiles,
		rtRepo:    rtRepo,
		validator: validator,
	}
}

// Register は会員登録。user_typeは登録時に一度だけ決める（以後変更不可）。
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req.Email, req.Password, req.UserType); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal
	}

	profile := &model.Profile{
		Email:        req.Email,
		FullName:     req.FullName,
		UserType:     model.Role(req.UserType),
		PasswordHash: string(pwHash),
		TokenVersion: 0,
		IsActive:     true,
	}

	//保存（email重複はunique制約で弾かれる）
	if err := u.profiles.Create(ctx, profile); err != nil {
		return nil, ErrConflict
	}

	return &AuthRegisterResponse{
		User: toProfileDTO(profile),
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest, userAgent string) (*LoginResult, error) {
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	profile, err := u.profiles.FindByEmail(ctx, req.Email)
	if err != nil || profile == nil {
		return nil, ErrUnauthorized
	}

	//停止ユーザーはログイン不可
	if !profile.IsActive {
		return nil, ErrForbidden
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	//last_login更新
	now := time.Now()
	profile.LastLoginAt = &now
	profile.UpdatedAt = now
	_ = u.profiles.Update(ctx, profile)

	//access token発行
	accessToken, expiresIn, err := u.issueAccessToken(profile)
	if err != nil {
		return nil, ErrInternal
	}

	//refresh token発行（DBにはhash保存）
	refreshPlain, refreshHash, err := newRandomTokenAndHash()
	if err != nil {
		return nil, ErrInternal
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		TokenHash: refreshHash,
		UserAgent: userAgent,
		ExpiresAt: now.Add(refreshTokenTTL),
		UsedAt:    nil,
		RevokedAt: nil,
	}

	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return nil, ErrInternal
	}

	return &LoginResult{
		Body: AuthLoginResponse{
			User: toProfileDTO(profile),
			Token: JwtAccessTokenDTO{
				AccessToken:  accessToken,
				ExpiresIn:    expiresIn,
				TokenVersion: profile.TokenVersion,
			},
		},
		RefreshTokenPlain: refreshPlain,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*ProfileDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	profile, err := u.profiles.FindByID(ctx, userID)
	if err != nil || profile == nil {
		return nil, ErrUnauthorized
	}
	if !profile.IsActive {
		return nil, ErrForbidden
	}

	dto := toProfileDTO(profile)
	return &dto, nil
}

func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, userAgent string) (*RefreshResult, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain, userAgent); err != nil {
		return nil, err
	}

	tokenHash := hashToken(refreshTokenPlain)

	rt, err := u.rtRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil || rt == nil {
		return nil, ErrUnauthorized
	}

	//期限切れ
	if rt.ExpiresAt.Before(time.Now()) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return nil, ErrUnauthorized
	}

	//revoked
	if rt.RevokedAt != nil {
		return nil, ErrUnauthorized
	}

	//used済みが来たら replay → 全削除
	if rt.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return nil, ErrSecurityIncident
	}

	//user_agent違い（再認証扱い。全削除）
	if userAgent != "" && rt.UserAgent != "" && userAgent != rt.UserAgent {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return nil, ErrSecurityIncident
	}

	profile, err := u.profiles.FindByID(ctx, rt.UserID)
	if err != nil || profile == nil {
		return nil, ErrUnauthorized
	}
	if !profile.IsActive {
		return nil, ErrForbidden
	}

	//旧tokenをusedにする
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, time.Now()); err != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return nil, ErrSecurityIncident
	}

	//新tokenを作って保存
	newPlain, newHash, err := newRandomTokenAndHash()
	if err != nil {
		return nil, ErrInternal
	}

	newRT := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    profile.ID,
		TokenHash: newHash,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}

	if err := u.rtRepo.Create(ctx, newRT); err != nil {
		return nil, ErrInternal
	}

	//access再発行
	accessToken, expiresIn, err := u.issueAccessToken(profile)
	if err != nil {
		return nil, ErrInternal
	}

	return &RefreshResult{
		Body: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: profile.TokenVersion,
		},
		RefreshTokenPlain: newPlain,
	}, nil
}

func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) (*AuthSuccessResponse, error) {
	if refreshTokenPlain == "" {
		return nil, ErrUnauthorized
	}

	tokenHash := hashToken(refreshTokenPlain)

	rt, err := u.rtRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil || rt == nil {
		return nil, ErrUnauthorized
	}

	//refreshを削除（失効）
	if err := u.rtRepo.DeleteByID(ctx, rt.ID); err != nil {
		return nil, ErrInternal
	}

	return &AuthSuccessResponse{Message: "logout success"}, nil
}

// LogoutAll は全端末ログアウト。token_versionを＋１して既発行のaccessも無効化する。
func (u *AuthUsecase) LogoutAll(ctx context.Context, userID int64) (*AuthSuccessResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	if err := u.profiles.IncrementTokenVersion(ctx, userID); err != nil {
		return nil, ErrInternal
	}

	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return nil, ErrInternal
	}

	return &AuthSuccessResponse{Message: "logout success"}, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(profile *model.Profile) (string, int, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  profile.ID,
		"role": string(profile.UserType),
		"tv":   profile.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

// refresh token生成（平文 + DB保存hash）
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)

	sum := sha256.Sum256([]byte(plain))
	hash = base64.RawURLEncoding.EncodeToString(sum[:])

	return plain, hash, nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func toProfileDTO(p *model.Profile) ProfileDTO {
	return ProfileDTO{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		UserType: string(p.UserType),
	}
}
