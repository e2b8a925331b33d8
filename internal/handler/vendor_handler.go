package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /vendor 配下。ADMINも通す
type VendorHandler struct {
	orders *usecase.OrderUsecase
}

func NewVendorHandler(orders *usecase.OrderUsecase) *VendorHandler {
	return &VendorHandler{orders: orders}
}

func (h *VendorHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/vendor")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.RequireRoles(model.RoleVendor))

	g.GET("/orders", h.list)
	g.PUT("/orders/:id/status", h.updateStatus)
}

func (h *VendorHandler) list(c echo.Context) error {
	vendorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.orders.VendorList(c.Request().Context(), vendorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *VendorHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	role, _ := middleware.UserRole(c)

	var req dto.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.orders.UpdateStatus(
		c.Request().Context(),
		usecase.Actor{UserID: userID, Role: role},
		c.Param("id"),
		req.Status,
	)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
