package middleware

import (
	"net/http"
	"net/url"

	"app/internal/domain/model"
	"app/internal/guard"

	"github.com/labstack/echo/v4"
)

// AccessGuard はナビゲーションごとのアクセス判定。
// 未ログインは元URLを持たせてサインインへ、ロール不一致はホームへ。
// 判定自体はguard.Evaluate（純関数）に任せる。
func AccessGuard(allowed ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile := profileFromContext(c)
			from := c.Request().RequestURI

			d := guard.Evaluate(profile, allowed, from)

			switch d.Action {
			case guard.ActionRedirectSignIn:
				return c.Redirect(http.StatusFound, "/login?from="+url.QueryEscape(d.From))
			case guard.ActionRedirectHome:
				return c.Redirect(http.StatusFound, "/")
			}

			return next(c)
		}
	}
}

// SessionContextが積んだ値から判定用のProfileを作る。
// 未ログインならnil。
func profileFromContext(c echo.Context) *model.Profile {
	userID, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return nil
	}

	role, ok := c.Get(CtxUserRoleKey).(string)
	if !ok || !model.Role(role).IsValid() {
		return nil
	}

	return &model.Profile{
		ID:       userID,
		UserType: model.Role(role),
	}
}
