package repository

import (
	"context"
	"database/sql"

	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

const journalListLimit = 100

type NotificationJournalRepository struct {
	db *sql.DB
}

var _ interfaces.NotificationJournal = (*NotificationJournalRepository)(nil)

func NewNotificationJournalRepository(db *sql.DB) *NotificationJournalRepository {
	return &NotificationJournalRepository{db: db}
}

func (r *NotificationJournalRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS paydock_notifications (
			request_id VARCHAR(64) PRIMARY KEY,
			payment_id VARCHAR(255),
			reference VARCHAR(255),
			event VARCHAR(100) NOT NULL,
			charge_id VARCHAR(255),
			status VARCHAR(50),
			message TEXT,
			recoverable BOOLEAN NOT NULL DEFAULT FALSE,
			received_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paydock_notifications_payment ON paydock_notifications(payment_id, received_at)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *NotificationJournalRepository) Record(ctx context.Context, record *models.NotificationRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO paydock_notifications
			(request_id, payment_id, reference, event, charge_id, status, message, recoverable, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (request_id) DO NOTHING
	`, record.RequestID, record.PaymentID, record.Reference, record.Event, record.ChargeID,
		record.Status, record.Message, record.Recoverable, record.ReceivedAt)
	return err
}

func (r *NotificationJournalRepository) ListByPayment(ctx context.Context, paymentID string) ([]models.NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT request_id, payment_id, reference, event, charge_id, status, message, recoverable, received_at
		FROM paydock_notifications
		WHERE payment_id = $1
		ORDER BY received_at DESC
		LIMIT $2
	`, paymentID, journalListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.NotificationRecord
	for rows.Next() {
		var rec models.NotificationRecord
		if err := rows.Scan(&rec.RequestID, &rec.PaymentID, &rec.Reference, &rec.Event, &rec.ChargeID,
			&rec.Status, &rec.Message, &rec.Recoverable, &rec.ReceivedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
