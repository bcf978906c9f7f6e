package repository

import (
	"encoding/json"
	"fmt"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

const continuationKeyPrefix = "fraud_"

func continuationKey(reference string) string {
	return continuationKeyPrefix + reference
}

func encodeContinuation(record *models.FraudContinuation) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode fraud continuation: %w", err)
	}
	return data, nil
}

func decodeContinuation(data []byte) (*models.FraudContinuation, error) {
	var record models.FraudContinuation
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode fraud continuation: %w", err)
	}
	return &record, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: fraud continuation %s: %w", ErrStoreUnavailable, op, err)
}
