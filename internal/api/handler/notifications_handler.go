package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

// NotificationsHandler drains the transient notices of a console session.
type NotificationsHandler struct{}

func NewNotificationsHandler() *NotificationsHandler {
	return &NotificationsHandler{}
}

// Drain handles GET /api/notifications. Each notice is returned once.
//
// @Summary      Drain transient notices
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Router       /api/notifications [get]
func (h *NotificationsHandler) Drain(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationsResponse{Notices: ws.Inbox.Drain()})
}

// ActivityHandler serves the console audit log.
type ActivityHandler struct {
	service ports.ActivityService
}

func NewActivityHandler(service ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List handles GET /api/activity.
//
// @Summary      Audit log
// @Tags         activity
// @Produce      json
// @Param        page   query     int  false  "1-indexed page"
// @Param        limit  query     int  false  "page size (max 100)"
// @Success      200    {object}  activityResponse
// @Failure      500    {object}  errorResponse
// @Router       /api/activity [get]
func (h *ActivityHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	page, err := h.service.List(c.Request().Context(), queryPage(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activityResponse{
		Items:      page.Items,
		Pagination: page.Pagination,
		Pager:      domain.PageWindow(page.Pagination.Page, page.Pages()),
	})
}
