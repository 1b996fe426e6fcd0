package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamzaps/zaps/internal/ledger"
)

// ErrRead marks a failed ledger or directory fetch. Reads are not retried.
var ErrRead = errors.New("ledger read failed")

// Reader fetches raw wallet entries.
type Reader struct {
	ledger ledger.Ledger
}

// NewReader constructs a Reader over the ledger.
func NewReader(l ledger.Ledger) *Reader {
	return &Reader{ledger: l}
}

// EntriesSince returns the wallet's entries at or after since (unix seconds).
// Amounts stay in milli-sats exactly as the ledger stored them, and entries
// without metadata are kept.
func (r *Reader) EntriesSince(ctx context.Context, inKey string, since int64, filter ledger.PaymentFilter) ([]ledger.Entry, error) {
	entries, err := r.ledger.ListPayments(ctx, inKey, since, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list payments since %d: %w", ErrRead, since, err)
	}
	return entries, nil
}
