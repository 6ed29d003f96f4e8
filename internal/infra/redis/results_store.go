package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"timed-exam-service/internal/domain"
)

const resultsKey = "exam:results"

// ResultsStore keeps results as a Redis list of JSON documents, in append order.
type ResultsStore struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewResultsStore(client *redis.Client, log zerolog.Logger) *ResultsStore {
	return &ResultsStore{
		client: client,
		log:    log.With().Str("component", "redis_results").Logger(),
	}
}

func (s *ResultsStore) Append(ctx context.Context, result domain.ExamResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.client.RPush(ctx, resultsKey, raw).Err()
}

// ListAll returns every stored result. Entries that no longer decode are
// skipped and logged rather than failing the whole listing.
func (s *ResultsStore) ListAll(ctx context.Context) ([]domain.ExamResult, error) {
	items, err := s.client.LRange(ctx, resultsKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ExamResult, 0, len(items))
	for i, item := range items {
		var r domain.ExamResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			s.log.Warn().Err(err).Int("index", i).Msg("skipping malformed result")
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ResultsStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, resultsKey).Err()
}

// AttemptRegistry marks official attempts as exam:taken:{collegiateNumber} keys.
type AttemptRegistry struct {
	client *redis.Client
}

func NewAttemptRegistry(client *redis.Client) *AttemptRegistry {
	return &AttemptRegistry{client: client}
}

func (r *AttemptRegistry) HasTaken(ctx context.Context, collegiateNumber string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(collegiateNumber)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AttemptRegistry) MarkTaken(ctx context.Context, collegiateNumber string) error {
	return r.client.Set(ctx, r.key(collegiateNumber), "true", 0).Err()
}

// Clear removes every marker, scanning rather than using KEYS.
func (r *AttemptRegistry) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "exam:taken:*", 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == cap(keys) {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *AttemptRegistry) key(collegiateNumber string) string {
	return "exam:taken:" + collegiateNumber
}
