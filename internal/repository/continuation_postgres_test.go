package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

const takeQuery = `DELETE FROM fraud_continuations WHERE key = $1 RETURNING value`

func newPostgresStore(t *testing.T) (*PostgresContinuationStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})

	return NewPostgresContinuationStore(db), mock
}

func TestPostgresContinuationStore_InitDB(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS fraud_continuations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE fraud_continuations ALTER COLUMN created_at TYPE TIMESTAMPTZ")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_fraud_continuations_created_at")).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.InitDB(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresContinuationStore_Put(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fraud_continuations (key, value, created_at)")).
		WithArgs("fraud_R-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), "R-1", &models.FraudContinuation{Reference: "R-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresContinuationStore_TakeConsumesRecord(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	data, err := encodeContinuation(&models.FraudContinuation{Reference: "R-1", GatewayID: "gw-1", Capture: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(takeQuery)).
		WithArgs("fraud_R-1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(data))
	mock.ExpectQuery(regexp.QuoteMeta(takeQuery)).
		WithArgs("fraud_R-1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	ctx := context.Background()
	got, err := store.Take(ctx, "R-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.GatewayID != "gw-1" || !got.Capture {
		t.Fatalf("unexpected record %+v", got)
	}

	again, err := store.Take(ctx, "R-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != nil {
		t.Errorf("expected second take to find nothing, got %+v", again)
	}
}

func TestPostgresContinuationStore_GetMissing(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM fraud_continuations WHERE key = $1")).
		WithArgs("fraud_R-2").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := store.Get(context.Background(), "R-2")
	if err != nil || got != nil {
		t.Errorf("expected nil record and no error, got %+v, %v", got, err)
	}
}

func TestPostgresContinuationStore_Unavailable(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	cause := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta(takeQuery)).WithArgs("fraud_R-3").WillReturnError(cause)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM fraud_continuations WHERE key = $1")).WithArgs("fraud_R-3").WillReturnError(cause)

	if _, err := store.Take(context.Background(), "R-3"); !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Errorf("expected wrapped ErrStoreUnavailable, got %v", err)
	}
	if err := store.Delete(context.Background(), "R-3"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestPostgresContinuationStore_Purge(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM fraud_continuations WHERE created_at < NOW() - make_interval(secs => $1)")).
		WithArgs(float64(86400)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := store.Purge(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}
}
