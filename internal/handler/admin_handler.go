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

// /admin 配下（注文一覧・ストア設定・監査ログ）
type AdminHandler struct {
	orders   *usecase.OrderUsecase
	settings *usecase.SettingsUsecase
	audit    *usecase.AuditLogUsecase
}

func NewAdminHandler(orders *usecase.OrderUsecase, settings *usecase.SettingsUsecase, audit *usecase.AuditLogUsecase) *AdminHandler {
	return &AdminHandler{orders: orders, settings: settings, audit: audit}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.RequireRoles())

	admin.GET("/orders", h.listOrders)
	admin.GET("/settings", h.getSettings)
	admin.PUT("/settings", h.updateSettings)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	fromPtr, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	toPtr, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}

	out, err := h.orders.AdminList(c.Request().Context(), repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: model.OrderStatus(c.QueryParam("status")),
		UserID: c.QueryParam("user_id"),
		From:   fromPtr,
		To:     toPtr,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) getSettings(c echo.Context) error {
	out, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) updateSettings(c echo.Context) error {
	var req dto.StoreSettings
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	// 操作した管理者IDを取得（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.settings.Update(c.Request().Context(), adminID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listAuditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}
	fromPtr, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	toPtr, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}

	out, err := h.audit.List(c.Request().Context(), repository.AuditLogFilter{
		ActorUserID:  c.QueryParam("actor_user_id"),
		Action:       model.AuditAction(c.QueryParam("action")),
		ResourceType: model.AuditResourceType(c.QueryParam("resource_type")),
		ResourceID:   c.QueryParam("resource_id"),
		CreatedFrom:  fromPtr,
		CreatedTo:    toPtr,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
