package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// RedisContinuationStore keeps fraud continuations in Redis.
type RedisContinuationStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ interfaces.FraudContinuationStore = (*RedisContinuationStore)(nil)

// NewRedisContinuationStore creates a store. A zero ttl keeps records until
// they are consumed.
func NewRedisContinuationStore(client *redis.Client, ttl time.Duration) *RedisContinuationStore {
	return &RedisContinuationStore{client: client, ttl: ttl}
}

func (s *RedisContinuationStore) Put(ctx context.Context, reference string, record *models.FraudContinuation) error {
	data, err := encodeContinuation(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, continuationKey(reference), data, s.ttl).Err(); err != nil {
		return storeError("put", err)
	}
	return nil
}

func (s *RedisContinuationStore) Get(ctx context.Context, reference string) (*models.FraudContinuation, error) {
	data, err := s.client.Get(ctx, continuationKey(reference)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, storeError("get", err)
	}
	return decodeContinuation(data)
}

func (s *RedisContinuationStore) Delete(ctx context.Context, reference string) error {
	if err := s.client.Del(ctx, continuationKey(reference)).Err(); err != nil {
		return storeError("delete", err)
	}
	return nil
}

// Take uses GETDEL so concurrent completions cannot both observe the record.
func (s *RedisContinuationStore) Take(ctx context.Context, reference string) (*models.FraudContinuation, error) {
	data, err := s.client.GetDel(ctx, continuationKey(reference)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, storeError("take", err)
	}
	return decodeContinuation(data)
}
