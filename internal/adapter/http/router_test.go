package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bank-loan-service/internal/adapter/notifier"
	"bank-loan-service/internal/adapter/repository/mysql"
	"bank-loan-service/internal/infrastructure/blob"
	"bank-loan-service/internal/infrastructure/db"
	"bank-loan-service/internal/infrastructure/token"
	"bank-loan-service/internal/usecase/auth"
	"bank-loan-service/internal/usecase/credit"
	"bank-loan-service/internal/usecase/document"
	"bank-loan-service/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testServer wires the full router over sqlite, a temp blob dir and a
// log-only notifier.
type testServer struct {
	e    *echo.Echo
	auth *auth.Usecase
}

func newTestServer(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	blobs, err := blob.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	log := zap.NewNop()
	users := mysql.NewUserRepository(gdb)
	docs := mysql.NewDocumentRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	tx := mysql.NewGormUoW(gdb)
	jwt := &token.JWT{Secret: []byte("test-secret"), Issuer: "bank-loan-service", TTL: time.Hour}

	authUC := auth.NewUsecase(users, tx, jwt, log)
	policy := credit.NewPolicy(mysql.NewRateRepository(gdb))
	docUC := document.NewUsecase(docs, blobs, tx, log, time.Second)
	loanUC := loan.NewUsecase(loans, tx, policy, notifier.New(nil, log, 0, ""), log)

	e := NewRouter(RouterDeps{
		Health:         NewHandler(),
		Auth:           NewAuthHandler(authUC),
		Documents:      NewDocumentHandler(docUC, 1<<10),
		Loans:          NewLoanHandler(loanUC),
		Rates:          NewRateHandler(policy),
		Tokens:         jwt,
		Users:          users,
		Redis:          rdb,
		IdempotencyTTL: time.Minute,
		Log:            log,
	})
	return &testServer{e: e, auth: authUC}
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(mustJSON(t, body))
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, tok, docType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if docType != "" {
		_ = mw.WriteField("documentType", docType)
	}
	fw, err := mw.CreateFormFile("file", "payslip.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/user/documents/upload", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin returns a token for a fresh USER.
func (s *testServer) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username, "password": "secret123", "email": username + "@example.com",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	return s.login(t, username, "secret123")
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	if _, err := s.auth.SeedAdmin(context.Background(), auth.RegisterInput{
		Username: "root", Password: "rootpass", Email: "root@example.com",
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return s.login(t, "root", "rootpass")
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var res auth.LoginResult
	decode(t, rec, &res)
	return res.Token
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var er ErrorResponse
	decode(t, rec, &er)
	return er.Code
}

func TestRouter_AuthGuards(t *testing.T) {
	s := newTestServer(t, nil)
	userTok := s.registerAndLogin(t, "alice")

	cases := []struct {
		name   string
		method string
		path   string
		tok    string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"no token", http.MethodGet, "/user/loans", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/user/loans", "not-a-jwt", http.StatusUnauthorized},
		{"user on own loans", http.MethodGet, "/user/loans", userTok, http.StatusOK},
		{"user on admin loans", http.MethodGet, "/admin/loans", userTok, http.StatusForbidden},
		{"user on admin users", http.MethodGet, "/auth/admin/users", userTok, http.StatusForbidden},
		{"rate quote needs auth", http.MethodGet, "/rates/personal", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, tc.tok, nil, nil)
			if rec.Code != tc.want {
				t.Fatalf("want %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_TokenFollowsStoredAccount(t *testing.T) {
	s := newTestServer(t, nil)
	root := s.adminToken(t)

	rec := s.do(t, http.MethodPost, "/auth/admin/users", root, map[string]string{
		"username": "reviewer", "password": "secret123", "email": "reviewer@example.com", "role": "ADMIN",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create admin: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID uint64 `json:"id"`
	}
	decode(t, rec, &created)
	tok := s.login(t, "reviewer", "secret123")
	if rec := s.do(t, http.MethodGet, "/admin/loans", tok, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("admin before demotion: want 200, got %d", rec.Code)
	}

	path := fmt.Sprintf("/auth/admin/users/%d", created.ID)
	if rec := s.do(t, http.MethodPut, path, root, map[string]string{"role": "USER"}, nil); rec.Code != http.StatusOK {
		t.Fatalf("demote: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodGet, "/admin/loans", tok, nil, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("old token after demotion: want 403, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/user/loans", tok, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("demoted user on own loans: want 200, got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodDelete, path, root, nil, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodGet, "/user/loans", tok, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old token after delete: want 401, got %d", rec.Code)
	}
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndLogin(t, "alice")

	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong-password",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "UNAUTHORIZED" {
		t.Fatalf("want UNAUTHORIZED, got %s", code)
	}
}

func TestRouter_RegisterDuplicate(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerAndLogin(t, "alice")

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123", "email": "other@example.com",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RateQuote(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.registerAndLogin(t, "alice")

	rec := s.do(t, http.MethodGet, "/rates/Personal", tok, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var body struct {
		Purpose string          `json:"purpose"`
		Rate    decimal.Decimal `json:"rate"`
	}
	decode(t, rec, &body)
	if !body.Rate.Equal(credit.FallbackRate("personal")) || body.Purpose != "personal" {
		t.Fatalf("unexpected rate %v", body.Rate)
	}

	admin := s.adminToken(t)
	rec = s.do(t, http.MethodPut, "/admin/rates/personal", admin, map[string]any{"rate": 9.5}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("set rate: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, "/rates/personal", tok, nil, nil)
	decode(t, rec, &body)
	if !body.Rate.Equal(decimal.RequireFromString("9.5")) {
		t.Fatalf("want 9.5 after update, got %v", body.Rate)
	}

	rec = s.do(t, http.MethodPut, "/admin/rates/personal", admin, map[string]any{"rate": 0}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero rate: want 422, got %d", rec.Code)
	}
}

func TestRouter_UploadValidation(t *testing.T) {
	s := newTestServer(t, nil)
	tok := s.registerAndLogin(t, "alice")

	rec := s.upload(t, tok, "", []byte("%PDF"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing documentType: want 422, got %d", rec.Code)
	}

	rec = s.upload(t, tok, "income_proof", bytes.Repeat([]byte("x"), 2<<10))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized: want 413, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "FILE_TOO_LARGE" {
		t.Fatalf("want FILE_TOO_LARGE, got %s", code)
	}
}
