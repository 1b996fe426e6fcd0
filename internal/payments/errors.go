package payments

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransfer indicates the request failed validation; nothing
	// was sent to the ledger.
	ErrInvalidTransfer = errors.New("invalid transfer")

	// ErrInvoiceCreation indicates the receiver could not mint an invoice.
	// No funds moved.
	ErrInvoiceCreation = errors.New("invoice creation failed")

	// ErrPaymentFailed indicates the invoice exists but the sender did not
	// settle it. The invoice stays outstanding on the ledger.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrReceiverNotFound indicates the receiver wallet lookup did not
	// yield exactly one wallet.
	ErrReceiverNotFound = errors.New("receiver wallet not found")
)

// TransferError carries the failing step of a zap and the wallets involved.
type TransferError struct {
	Op               string
	SenderWalletID   string
	ReceiverWalletID string
	PaymentHash      string
	// Err is one of the package sentinels.
	Err error
	// Cause is the underlying ledger error, if any.
	Cause error
}

func (e *TransferError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s -> %s: %v", e.Op, e.SenderWalletID, e.ReceiverWalletID, e.Err)
	if e.PaymentHash != "" {
		fmt.Fprintf(&b, " (invoice %s)", e.PaymentHash)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *TransferError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Reason renders the failure as a short phrase for end users.
func (e *TransferError) Reason() string {
	if e.Cause == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %v", e.Err, e.Cause)
}

// ReceiverCountError reports a receiver lookup that matched zero or
// several wallets.
type ReceiverCountError struct {
	WalletID string
	Count    int
}

func (e *ReceiverCountError) Error() string {
	return fmt.Sprintf("Expected exactly one receiving wallet, but found %d", e.Count)
}

func (e *ReceiverCountError) Unwrap() error { return ErrReceiverNotFound }
