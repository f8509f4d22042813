package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/service"
)

const defaultUploadMaxBytes = 5 << 20

// PaymentConfigHandler serves the payment QR settings screen.
type PaymentConfigHandler struct {
	service  ports.PaymentConfigService
	maxBytes int64
}

func NewPaymentConfigHandler(service ports.PaymentConfigService, maxBytes int64) *PaymentConfigHandler {
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	return &PaymentConfigHandler{service: service, maxBytes: maxBytes}
}

// Get handles GET /api/payment-config.
//
// @Summary      Current payment QR code
// @Tags         payment-config
// @Produce      json
// @Param        refresh  query     string  false  "1 to retry a failed load"
// @Success      200      {object}  paymentConfigResponse
// @Failure      502      {object}  queryErrorResponse
// @Router       /api/payment-config [get]
func (h *PaymentConfigHandler) Get(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	cfg, err := h.service.Get(c.Request().Context(), ws, queryRefresh(c))
	if err != nil {
		return queryFailed(c, err)
	}
	return c.JSON(http.StatusOK, paymentConfigResponse{
		Status:       query.StatusSuccess,
		PaymentQRURL: cfg.PaymentQRURL,
		Configured:   cfg.Configured(),
	})
}

// Save handles PUT /api/payment-config. The body is either a multipart
// form with a "file" image or a paymentQrUrl (form field or JSON), never
// both.
//
// @Summary      Update the payment QR code
// @Tags         payment-config
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        file          formData  file    false  "QR image (jpeg, png, webp)"
// @Param        paymentQrUrl  formData  string  false  "QR image URL"
// @Success      200           {object}  paymentConfigSavedResponse
// @Failure      400           {object}  errorResponse
// @Failure      413           {object}  errorResponse
// @Failure      502           {object}  errorResponse
// @Router       /api/payment-config [put]
func (h *PaymentConfigHandler) Save(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	src, err := h.source(c)
	if err != nil {
		return err
	}

	cfg, err := h.service.Save(c.Request().Context(), ws, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentConfigSavedResponse{
		Message:      service.PaymentConfigSaved,
		PaymentQRURL: cfg.PaymentQRURL,
	})
}

// source builds the save draft from the request body.
func (h *PaymentConfigHandler) source(c echo.Context) (domain.QRSource, error) {
	var src domain.QRSource

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req paymentConfigRequest
		if err := c.Bind(&req); err != nil {
			return src, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return src, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		src.EnterURL(req.PaymentQRURL)
		return src, nil
	}

	req := paymentConfigRequest{PaymentQRURL: strings.TrimSpace(c.FormValue("paymentQrUrl"))}
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		if req.PaymentQRURL != "" {
			return src, domain.ErrAmbiguousSource
		}
		upload, err := h.readUpload(fh)
		if err != nil {
			return src, err
		}
		src.SelectFile(upload)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		if err := c.Validate(&req); err != nil {
			return src, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		src.EnterURL(req.PaymentQRURL)
	default:
		return src, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}
	return src, nil
}

func (h *PaymentConfigHandler) readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	if fh.Size > h.maxBytes {
		return domain.Upload{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		return domain.Upload{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = http.DetectContentType(data)
	}
	return domain.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}
