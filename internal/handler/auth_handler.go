package handler

import (
	"errors"
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh_token"

// /auth のHTTP。refresh tokenはhttpOnly cookieで往復させる。
type AuthHandler struct {
	uc  *usecase.AuthUsecase
	cfg config.Config
}

func NewAuthHandler(uc *usecase.AuthUsecase, cfg config.Config) *AuthHandler {
	return &AuthHandler{uc: uc, cfg: cfg}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, profiles repository.ProfileRepository) {
	g := e.Group("/auth")

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)

	// ログイン必須のエンドポイント
	authed := g.Group("")
	authed.Use(middleware.SessionContext(cfg))
	authed.Use(middleware.AccessGuard())
	authed.Use(middleware.TokenVersionGuard(profiles))

	authed.GET("/me", h.me)
	authed.POST("/logout-all", h.logoutAll)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return h.writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	result, err := h.uc.Login(c.Request().Context(), req, c.Request().UserAgent())
	if err != nil {
		return h.writeAuthError(c, err)
	}

	h.setRefreshCookie(c, result.RefreshTokenPlain)

	return c.JSON(http.StatusOK, result.Body)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	result, err := h.uc.Refresh(c.Request().Context(), cookie.Value, c.Request().UserAgent())
	if err != nil {
		// replay検知時などはcookieも消す
		h.clearRefreshCookie(c)
		return h.writeAuthError(c, err)
	}

	h.setRefreshCookie(c, result.RefreshTokenPlain)

	return c.JSON(http.StatusOK, result.Body)
}

func (h *AuthHandler) logout(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	res, err := h.uc.Logout(c.Request().Context(), cookie.Value)

	// 結果に関わらずcookieは消す
	h.clearRefreshCookie(c)

	if err != nil {
		return h.writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	dto, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return h.writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AuthHandler) logoutAll(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	res, err := h.uc.LogoutAll(c.Request().Context(), userID)

	h.clearRefreshCookie(c)

	if err != nil {
		return h.writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// usecase/validatorのsentinel errorをHTTPステータスへ変換する
func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, validator.ErrInvalidInput), errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case errors.Is(err, validator.ErrEmailAlreadyUsed), errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "email already used"})
	case errors.Is(err, validator.ErrInvalidRefresh), errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrSecurityIncident):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, plain string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plain,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cfg.GoEnv == "production",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
