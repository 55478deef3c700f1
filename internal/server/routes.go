package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// RegisterRoutesに渡す部品一式
type RouteDeps struct {
	Profiles repository.ProfileRepository

	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

func registerRoutes(e *echo.Echo, cfg config.Config, deps RouteDeps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	deps.Auth.RegisterRoutes(e, cfg, deps.Profiles)
	deps.Product.RegisterRoutes(e, cfg, deps.Profiles)
	deps.Cart.RegisterRoutes(e, cfg, deps.Profiles)
	deps.Order.RegisterRoutes(e, cfg, deps.Profiles)
}
