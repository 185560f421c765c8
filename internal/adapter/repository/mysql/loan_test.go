package mysql

import (
	"context"
	"errors"
	"testing"

	"bank-loan-service/internal/domain/apperr"
	domain "bank-loan-service/internal/domain/loan"

	"gorm.io/gorm"
)

func TestLoan_CreateAndGetByLoanID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	a := makeApplication(7, domain.StatusSubmitted)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("expected auto-increment ID")
	}

	got, err := repo.GetByLoanID(ctx, a.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.UserID != 7 || got.Status != domain.StatusSubmitted || got.Purpose != "personal" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if !got.Amount.Equal(a.Amount) {
		t.Fatalf("amount = %s, want %s", got.Amount, a.Amount)
	}
	if got.CreditScore.IsScored() {
		t.Fatalf("score should be unset, got %s", got.CreditScore)
	}

	if _, err := repo.GetByLoanID(ctx, "nope"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing: want ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.GetByLoanIDForUpdate(ctx, a.LoanID); err != nil {
		t.Fatalf("GetByLoanIDForUpdate: %v", err)
	}
}

func TestLoan_Transition_CompareAndSet(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	a := makeApplication(7, domain.StatusSubmitted)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a.Status = domain.StatusVerified
	a.CreditScore = domain.Scored(505)
	if err := repo.Transition(ctx, a, domain.StatusSubmitted); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	got, _ := repo.GetByLoanID(ctx, a.LoanID)
	if got.Status != domain.StatusVerified {
		t.Fatalf("status = %s", got.Status)
	}
	if s, ok := got.CreditScore.Get(); !ok || s != 505 {
		t.Fatalf("score = %v", got.CreditScore)
	}

	// stale expectation: row is VERIFIED now
	stale := *a
	stale.Status = domain.StatusApproved
	if err := repo.Transition(ctx, &stale, domain.StatusSubmitted); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("stale transition: want ErrInvalidState, got %v", err)
	}
	got, _ = repo.GetByLoanID(ctx, a.LoanID)
	if got.Status != domain.StatusVerified {
		t.Fatalf("stale write landed: %s", got.Status)
	}
}

func TestLoan_MarkDocumentsVerified(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	for _, uid := range []uint64{1, 1, 2} {
		if err := repo.Create(ctx, makeApplication(uid, domain.StatusSubmitted)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	n, err := repo.MarkDocumentsVerified(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("first mark: n=%d err=%v", n, err)
	}
	// idempotent
	n, err = repo.MarkDocumentsVerified(ctx, 1)
	if err != nil || n != 0 {
		t.Fatalf("second mark: n=%d err=%v", n, err)
	}
	other, _ := repo.ListByUser(ctx, 2)
	if len(other) != 1 || other[0].DocumentsVerified {
		t.Fatalf("other user's application touched: %+v", other)
	}
}

func TestLoan_Listing(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	fixtures := []struct {
		uid    uint64
		status domain.Status
	}{
		{1, domain.StatusSubmitted},
		{1, domain.StatusApproved},
		{2, domain.StatusSubmitted},
	}
	for _, f := range fixtures {
		if err := repo.Create(ctx, makeApplication(f.uid, f.status)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if out, _ := repo.ListByUser(ctx, 1); len(out) != 2 {
		t.Fatalf("ListByUser = %d, want 2", len(out))
	}
	if out, _ := repo.ListByStatus(ctx, domain.StatusSubmitted); len(out) != 2 {
		t.Fatalf("ListByStatus = %d, want 2", len(out))
	}
	if out, _ := repo.List(ctx); len(out) != 3 {
		t.Fatalf("List = %d, want 3", len(out))
	}
	if n, _ := repo.CountByUser(ctx, 2); n != 1 {
		t.Fatalf("CountByUser = %d, want 1", n)
	}
}
