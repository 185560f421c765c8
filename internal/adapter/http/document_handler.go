package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	domain "bank-loan-service/internal/domain/document"
	"bank-loan-service/internal/domain/user"
	"bank-loan-service/internal/usecase/document"

	"github.com/labstack/echo/v4"
)

const defaultUploadMaxBytes = 10 << 20

type DocumentHandler struct {
	uc       *document.Usecase
	maxBytes int64
}

func NewDocumentHandler(uc *document.Usecase, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	return &DocumentHandler{uc: uc, maxBytes: maxBytes}
}

type reviewFunc func(ctx context.Context, caller user.Caller, documentID string) (*domain.Document, error)

type documentIDParam struct {
	ID string `param:"id" validate:"required,hex32"`
}

// Upload expects multipart/form-data with a "file" part and a "documentType" field.
func (h *DocumentHandler) Upload(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	docType := strings.TrimSpace(c.FormValue("documentType"))
	if docType == "" {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: []FieldError{{Field: "documentType", Message: "is required"}},
		})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing file part")
	}
	if fh.Size > h.maxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large", Code: "FILE_TOO_LARGE"})
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	if int64(len(data)) > h.maxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large", Code: "FILE_TOO_LARGE"})
	}

	d, err := h.uc.Upload(c.Request().Context(), cl, document.UploadInput{
		FileName:     fh.Filename,
		ContentType:  fh.Header.Get(echo.HeaderContentType),
		DocumentType: docType,
		Data:         data,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DocumentHandler) ListMine(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ListMine(c.Request().Context(), cl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListAll is the admin review queue; ?user_id= narrows it to one owner.
func (h *DocumentHandler) ListAll(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	ctx := c.Request().Context()
	if raw := c.QueryParam("user_id"); raw != "" {
		var q struct {
			UserID uint64 `query:"user_id"`
		}
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil || q.UserID == 0 {
			return badRequest(c, "invalid user_id")
		}
		out, err := h.uc.ListByUser(ctx, cl, q.UserID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
	out, err := h.uc.ListAll(ctx, cl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DocumentHandler) Verify(c echo.Context) error {
	return h.review(c, h.uc.Verify)
}

func (h *DocumentHandler) Reject(c echo.Context) error {
	return h.review(c, h.uc.Reject)
}

func (h *DocumentHandler) review(c echo.Context, op reviewFunc) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var p documentIDParam
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &p); err != nil {
		return badRequest(c, "invalid document id")
	}
	// malformed ids are a bad request, same as loan ids
	if err := c.Validate(&p); err != nil {
		return badRequest(c, "invalid document id")
	}
	d, err := op(c.Request().Context(), cl, p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
