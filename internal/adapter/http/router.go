package http

import (
	"time"

	"bank-loan-service/internal/adapter/middleware"
	"bank-loan-service/internal/domain/user"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	Health    *Handler
	Auth      *AuthHandler
	Documents *DocumentHandler
	Loans     *LoanHandler
	Rates     *RateHandler

	Tokens         middleware.TokenParser
	Users          middleware.UserLookup // nil trusts the token claims
	Redis          *redis.Client         // nil disables idempotency
	IdempotencyTTL time.Duration
	BodyLimit      string
	AuthRPS        float64 // per-IP limit on register/login, 0 disables
	AuthBurst      int
	Log            *zap.Logger
}

func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if d.Log != nil {
		e.Use(middleware.AccessLog(d.Log))
	}
	if d.BodyLimit != "" {
		e.Use(echomw.BodyLimit(d.BodyLimit))
	}

	e.GET("/health", d.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authn := middleware.Authenticate(d.Tokens, d.Users)
	admin := middleware.RequireRole(user.RoleAdmin)
	mw := []echo.MiddlewareFunc{authn}
	if d.Redis != nil {
		mw = append(mw, middleware.Idempotency(d.Redis, d.IdempotencyTTL, d.Log))
	}

	var public []echo.MiddlewareFunc
	if d.AuthRPS > 0 {
		public = append(public, middleware.RateLimitPerIP(rate.Limit(d.AuthRPS), max(d.AuthBurst, 1)))
	}
	a := e.Group("/auth")
	a.POST("/register", d.Auth.Register, public...)
	a.POST("/login", d.Auth.Login, public...)
	a.GET("/user", d.Auth.Me, authn)

	au := e.Group("/auth/admin", append(mw, admin)...)
	au.GET("/users", d.Auth.ListUsers)
	au.POST("/users", d.Auth.CreateUser)
	au.PUT("/users/:id", d.Auth.UpdateUser)
	au.DELETE("/users/:id", d.Auth.DeleteUser)

	u := e.Group("/user", mw...)
	u.POST("/documents/upload", d.Documents.Upload)
	u.GET("/documents", d.Documents.ListMine)
	u.POST("/loans/apply", d.Loans.Apply)
	u.GET("/loans", d.Loans.ListMine)
	u.GET("/loans/:id", d.Loans.GetLoan)

	e.GET("/rates/:purpose", d.Rates.Quote, authn)

	ad := e.Group("/admin", append(mw, admin)...)
	ad.GET("/documents", d.Documents.ListAll)
	ad.POST("/documents/:id/verify", d.Documents.Verify)
	ad.POST("/documents/:id/reject", d.Documents.Reject)
	ad.GET("/loans", d.Loans.ListAll)
	ad.GET("/loans/status/:status", d.Loans.ListByStatus)
	ad.POST("/loans/verify/:id", d.Loans.Verify)
	ad.POST("/loans/decide/:id", d.Loans.Decide)
	ad.POST("/loans/approve/:id", d.Loans.Approve)
	ad.POST("/loans/reject/:id", d.Loans.Reject)
	ad.GET("/rates", d.Rates.List)
	ad.PUT("/rates/:purpose", d.Rates.Set)

	return e
}
