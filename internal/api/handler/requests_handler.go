package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

// RequestsHandler serves the payment and upgrade moderation screens.
type RequestsHandler struct {
	service ports.ModerationService
}

func NewRequestsHandler(service ports.ModerationService) *RequestsHandler {
	return &RequestsHandler{service: service}
}

// List returns the handler for GET /api/{kind}-requests.
//
// @Summary      List payment or upgrade requests
// @Tags         moderation
// @Produce      json
// @Param        page     query     int     false  "1-indexed page"
// @Param        status   query     string  false  "pending (default), approved, rejected, or all"
// @Param        refresh  query     string  false  "1 to retry a failed load"
// @Success      200      {object}  requestsResponse
// @Failure      400      {object}  errorResponse
// @Failure      502      {object}  queryErrorResponse
// @Router       /api/payment-requests [get]
// @Router       /api/upgrade-requests [get]
func (h *RequestsHandler) List(kind domain.RequestKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := ctxWorkspace(c)
		if err != nil {
			return err
		}
		status, err := queryStatus(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		page, err := h.service.List(c.Request().Context(), ws, kind, ports.ListQuery{
			Page:    queryPage(c),
			Status:  status,
			Refresh: queryRefresh(c),
		})
		if err != nil {
			return queryFailed(c, err)
		}

		return c.JSON(http.StatusOK, requestsResponse{
			Status:     query.StatusSuccess,
			Filter:     status,
			Items:      toRequestViews(page.Items),
			Pagination: page.Pagination,
			Pager:      domain.PageWindow(page.Pagination.Page, page.Pages()),
		})
	}
}

// Review returns the handler for PATCH /api/{kind}-requests/:id.
//
// @Summary      Approve or reject a request
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Request id"
// @Param        body  body      reviewRequest  true  "Decision"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/payment-requests/{id} [patch]
// @Router       /api/upgrade-requests/{id} [patch]
func (h *RequestsHandler) Review(kind domain.RequestKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req reviewRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "id is required"})
		}

		ws, err := ctxWorkspace(c)
		if err != nil {
			return err
		}

		decision := domain.ReviewDecision{
			Status:          domain.RequestStatus(req.Status),
			RejectionReason: req.RejectionReason,
		}
		if err := h.service.Review(c.Request().Context(), ws, kind, id, decision); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, messageResponse{Message: decision.Notice(kind)})
	}
}
