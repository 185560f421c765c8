package http

import (
	"context"
	"net/http"
	"strings"

	domain "bank-loan-service/internal/domain/loan"
	"bank-loan-service/internal/domain/user"
	"bank-loan-service/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type applyLoanReq struct {
	Amount  decimal.Decimal `json:"amount"  validate:"required,gt=0,dec2"`
	Term    int             `json:"term"    validate:"required,gt=0,lte=480"`
	Purpose string          `json:"purpose" validate:"required,purpose"`
}

type loanIDParam struct {
	ID string `param:"id" validate:"required,hex32"`
}

type transitionFunc func(ctx context.Context, caller user.Caller, loanID string) (*loan.LoanDTO, error)

func (h *LoanHandler) Apply(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var req applyLoanReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Apply(c.Request().Context(), cl, loan.ApplyInput{
		Amount:     req.Amount,
		TermMonths: req.Term,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListMine(c echo.Context) error {
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

func (h *LoanHandler) GetLoan(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	loanID, ok := h.loanID(c)
	if !ok {
		return badRequest(c, "invalid loan id")
	}
	dto, err := h.uc.Get(c.Request().Context(), cl, loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ListAll serves GET /admin/loans; ?user_id= narrows it to one applicant.
func (h *LoanHandler) ListAll(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	ctx := c.Request().Context()
	if c.QueryParam("user_id") != "" {
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

func (h *LoanHandler) ListByStatus(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := domain.ParseStatus(c.Param("status"))
	if !ok {
		return badRequest(c, "unknown status "+strings.ToUpper(c.Param("status")))
	}
	out, err := h.uc.ListByStatus(c.Request().Context(), cl, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Verify(c echo.Context) error  { return h.transition(c, h.uc.Verify) }
func (h *LoanHandler) Decide(c echo.Context) error  { return h.transition(c, h.uc.Decide) }
func (h *LoanHandler) Approve(c echo.Context) error { return h.transition(c, h.uc.Approve) }
func (h *LoanHandler) Reject(c echo.Context) error  { return h.transition(c, h.uc.Reject) }

func (h *LoanHandler) transition(c echo.Context, op transitionFunc) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	loanID, ok := h.loanID(c)
	if !ok {
		return badRequest(c, "invalid loan id")
	}
	dto, err := op(c.Request().Context(), cl, loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) loanID(c echo.Context) (string, bool) {
	var p loanIDParam
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &p); err != nil {
		return "", false
	}
	if err := c.Validate(&p); err != nil {
		return "", false
	}
	return p.ID, true
}
