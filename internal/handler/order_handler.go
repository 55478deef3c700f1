package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders のHTTP。一覧・詳細は両ロール、見える範囲はusecase側で絞る。
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, profiles repository.ProfileRepository) {
	g := e.Group("/orders")
	g.Use(middleware.SessionContext(cfg))
	g.Use(middleware.AccessGuard())
	g.Use(middleware.TokenVersionGuard(profiles))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PUT("/:id/status", h.updateStatus)
	g.GET("/stats/processing-time", h.processingTime)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, ok := getUserRoleFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.FetchOrders(c.Request().Context(), userID, role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, ok := getUserRoleFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, role, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, ok := getUserRoleFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateStatus(c.Request().Context(), userID, role, id, usecase.UpdateOrderStatusInput{
		Status: req.Status,
	}); err != nil {
		return writeError(c, err)
	}

	// 更新後の状態を返す
	out, err := h.uc.GetOrder(c.Request().Context(), userID, role, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) processingTime(c echo.Context) error {
	out, err := h.uc.AverageProcessingTime(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
