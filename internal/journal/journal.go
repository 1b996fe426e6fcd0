package journal

import (
	"context"
	"errors"
	"time"
)

// Status tracks how far a zap attempt got.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInvoiceFailed Status = "invoice_failed"
	StatusPaymentFailed Status = "payment_failed"
	StatusSettled       Status = "settled"
)

// ErrNotFound indicates the journal has no record with the given id.
var ErrNotFound = errors.New("journal record not found")

// Record is one zap attempt. A payment_failed record points at an invoice
// that was minted but never paid.
type Record struct {
	ID               string
	SenderUserID     string
	SenderWalletID   string
	ReceiverUserID   string
	ReceiverWalletID string
	AmountSat        int64
	Memo             string
	Status           Status
	PaymentHash      string
	PaymentRequest   string
	Error            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Update moves a record to a new status.
type Update struct {
	Status         Status
	PaymentHash    string
	PaymentRequest string
	Error          string
}

// Repository persists zap attempts.
type Repository interface {
	Begin(ctx context.Context, rec Record) (Record, error)
	Mark(ctx context.Context, id string, update Update) error
	Outstanding(ctx context.Context, limit int) ([]Record, error)
}
