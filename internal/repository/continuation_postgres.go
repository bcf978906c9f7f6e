package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// PostgresContinuationStore keeps fraud continuations in a Postgres table.
type PostgresContinuationStore struct {
	db *sql.DB
}

var _ interfaces.FraudContinuationStore = (*PostgresContinuationStore)(nil)

func NewPostgresContinuationStore(db *sql.DB) *PostgresContinuationStore {
	return &PostgresContinuationStore{db: db}
}

func (s *PostgresContinuationStore) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS fraud_continuations (
			key VARCHAR(255) PRIMARY KEY,
			value JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`ALTER TABLE fraud_continuations ALTER COLUMN created_at TYPE TIMESTAMPTZ`,
		`CREATE INDEX IF NOT EXISTS idx_fraud_continuations_created_at ON fraud_continuations(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostgresContinuationStore) Put(ctx context.Context, reference string, record *models.FraudContinuation) error {
	data, err := encodeContinuation(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fraud_continuations (key, value, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, created_at = NOW()
	`, continuationKey(reference), data)
	if err != nil {
		return storeError("put", err)
	}
	return nil
}

func (s *PostgresContinuationStore) Get(ctx context.Context, reference string) (*models.FraudContinuation, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM fraud_continuations WHERE key = $1`, continuationKey(reference)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("get", err)
	}
	return decodeContinuation(data)
}

func (s *PostgresContinuationStore) Delete(ctx context.Context, reference string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM fraud_continuations WHERE key = $1`, continuationKey(reference))
	if err != nil {
		return storeError("delete", err)
	}
	return nil
}

// Take deletes and returns the record in one statement.
func (s *PostgresContinuationStore) Take(ctx context.Context, reference string) (*models.FraudContinuation, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM fraud_continuations WHERE key = $1 RETURNING value`, continuationKey(reference)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError("take", err)
	}
	return decodeContinuation(data)
}

// Purge removes continuations older than maxAge whose completion never
// arrived, returning how many were removed.
func (s *PostgresContinuationStore) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM fraud_continuations WHERE created_at < NOW() - make_interval(secs => $1)`, maxAge.Seconds())
	if err != nil {
		return 0, storeError("purge", err)
	}
	return result.RowsAffected()
}
