package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	now     func() time.Time
	records map[string]Record
}

// NewMemoryRepository builds an in-memory journal for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{now: time.Now, records: make(map[string]Record)}
}

func (r *memoryRepository) Begin(_ context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	rec.ID = uuid.NewString()
	rec.Status = StatusPending
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *memoryRepository) Mark(_ context.Context, id string, update Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = update.Status
	if update.PaymentHash != "" {
		rec.PaymentHash = update.PaymentHash
	}
	if update.PaymentRequest != "" {
		rec.PaymentRequest = update.PaymentRequest
	}
	rec.Error = update.Error
	rec.UpdatedAt = r.now().UTC()
	r.records[id] = rec
	return nil
}

func (r *memoryRepository) Outstanding(_ context.Context, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if rec.Status == StatusPaymentFailed {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
