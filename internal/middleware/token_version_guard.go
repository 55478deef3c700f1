package middleware

import (
	"net/http"

	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionが一致するか確認。
// AccessGuardの後ろで使う前提（contextに必ずuser_idがある）。
func TokenVersionGuard(profiles repository.ProfileRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawUserID := c.Get(CtxUserIDKey)
			userID, ok := rawUserID.(int64)
			if !ok || userID <= 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			rawTV := c.Get(CtxTokenVersionKey)
			tv, ok := rawTV.(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//DBから最新のプロフィールを取得する
			profile, err := profiles.FindByID(c.Request().Context(), userID)
			if err != nil || profile == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if profile.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
