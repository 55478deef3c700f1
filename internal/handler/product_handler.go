package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// SessionContextが積んだuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// SessionContextが積んだroleを取り出す
func getUserRoleFromContext(c echo.Context) (model.Role, bool) {
	v := c.Get(middleware.CtxUserRoleKey)
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	role := model.Role(s)
	if !role.IsValid() {
		return "", false
	}
	return role, true
}

// /products のHTTP。閲覧は全ロール、作成・更新はフランチャイザーのみ。
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
}

type ProductUpdateRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, profiles repository.ProfileRepository) {
	g := e.Group("/products")
	g.Use(middleware.SessionContext(cfg))
	g.Use(middleware.AccessGuard())
	g.Use(middleware.TokenVersionGuard(profiles))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("", h.create, middleware.AccessGuard(model.RoleFranchisor))
	g.PUT("/:id", h.update, middleware.AccessGuard(model.RoleFranchisor))
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), userID, usecase.CreateProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateProduct(c.Request().Context(), userID, id, usecase.UpdateProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
