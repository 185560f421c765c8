package mysql

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bank-loan-service/internal/domain/document"
	"bank-loan-service/internal/domain/loan"
	"bank-loan-service/internal/domain/user"
	"bank-loan-service/internal/infrastructure/db"
	"bank-loan-service/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the service schema. One
// connection only: every new :memory: connection would be a fresh database.
func openTestDB(t *testing.T) *gorm.DB {
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
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func makeApplication(userID uint64, status loan.Status) *loan.Application {
	return &loan.Application{
		LoanID:          id.NewID32(),
		UserID:          userID,
		Amount:          decimal.RequireFromString("6000.50"),
		TermMonths:      30,
		Purpose:         "personal",
		InterestRate:    decimal.RequireFromString("12.0"),
		CreditScore:     loan.Unscored,
		Status:          status,
		StatusUpdatedAt: time.Now().UTC(),
	}
}

func makeDocument(userID uint64, status document.Status) *document.Document {
	return &document.Document{
		DocumentID:   id.NewID32(),
		UserID:       userID,
		DocumentType: "income_proof",
		FileName:     "payslip.pdf",
		StorageKey:   id.NewID32() + "_payslip.pdf",
		ContentType:  "application/pdf",
		FileSize:     42,
		Status:       status,
	}
}

// seedUser inserts a USER row with a fixed primary key so callers can be
// built from it.
func seedUser(t *testing.T, gdb *gorm.DB, userID uint64) *user.User {
	t.Helper()
	u := &user.User{
		ID:           userID,
		UserID:       id.NewID32(),
		Username:     fmt.Sprintf("user%d", userID),
		Email:        fmt.Sprintf("user%d@example.com", userID),
		PasswordHash: "x",
		Role:         user.RoleUser,
	}
	if err := NewUserRepository(gdb).Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
