package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

// UsersHandler serves the user directory screen.
type UsersHandler struct {
	service ports.DirectoryService
}

func NewUsersHandler(service ports.DirectoryService) *UsersHandler {
	return &UsersHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page     query     int     false  "1-indexed page"
// @Param        refresh  query     string  false  "1 to retry a failed load"
// @Success      200      {object}  usersResponse
// @Failure      502      {object}  queryErrorResponse
// @Router       /api/users [get]
func (h *UsersHandler) List(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListUsers(c.Request().Context(), ws, ports.ListQuery{
		Page:    queryPage(c),
		Refresh: queryRefresh(c),
	})
	if err != nil {
		return queryFailed(c, err)
	}

	items := make([]userView, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, toUserView(u))
	}
	return c.JSON(http.StatusOK, usersResponse{
		Status:     query.StatusSuccess,
		Items:      items,
		Pagination: page.Pagination,
		Pager:      domain.PageWindow(page.Pagination.Page, page.Pages()),
	})
}
