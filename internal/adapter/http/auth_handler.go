package http

import (
	"net/http"

	"bank-loan-service/internal/usecase/auth"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct{ uc *auth.Usecase }

func NewAuthHandler(uc *auth.Usecase) *AuthHandler { return &AuthHandler{uc: uc} }

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email"    validate:"required,email"`
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createUserReq struct {
	registerReq
	Role string `json:"role" validate:"omitempty,oneof=USER ADMIN user admin"`
}

type updateUserReq struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Role     *string `json:"role"     validate:"omitempty,oneof=USER ADMIN user admin"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	u, err := h.uc.Register(c.Request().Context(), auth.RegisterInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	res, err := h.uc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	u, err := h.uc.CurrentUser(c.Request().Context(), cl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.ListUsers(c.Request().Context(), cl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) CreateUser(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	u, err := h.uc.CreateUser(c.Request().Context(), cl, auth.CreateUserInput{
		RegisterInput: auth.RegisterInput(req.registerReq),
		Role:          req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	u, err := h.uc.UpdateUser(c.Request().Context(), cl, userID, auth.UpdateUserInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	cl, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	userID, ok := uintParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if err := h.uc.DeleteUser(c.Request().Context(), cl, userID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
