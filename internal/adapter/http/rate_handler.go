package http

import (
	"net/http"

	"bank-loan-service/internal/domain/rate"
	"bank-loan-service/internal/usecase/credit"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RateHandler struct{ policy *credit.Policy }

func NewRateHandler(p *credit.Policy) *RateHandler { return &RateHandler{policy: p} }

type setRateReq struct {
	Rate decimal.Decimal `json:"rate" validate:"required,gt=0,lte=100"`
}

type rateQuote struct {
	Purpose string          `json:"purpose"`
	Rate    decimal.Decimal `json:"rate"`
}

// Quote returns the rate an application with this purpose would get today.
func (h *RateHandler) Quote(c echo.Context) error {
	purpose := rate.Key(c.Param("purpose"))
	if purpose == "" {
		return badRequest(c, "missing purpose")
	}
	r, err := h.policy.InterestRate(c.Request().Context(), purpose)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rateQuote{Purpose: purpose, Rate: r})
}

func (h *RateHandler) List(c echo.Context) error {
	out, err := h.policy.ListRates(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RateHandler) Set(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var req setRateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	r, err := h.policy.SetRate(c.Request().Context(), cl, c.Param("purpose"), req.Rate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
