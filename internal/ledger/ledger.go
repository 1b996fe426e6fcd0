package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientFunds occurs when the paying wallet lacks the balance
	// to settle an invoice.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvoiceNotFound indicates the payment request is unknown to the ledger.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvoiceAlreadyPaid indicates the payment request was settled before.
	ErrInvoiceAlreadyPaid = errors.New("invoice already paid")

	// ErrInvalidKey indicates an access key that does not grant the requested operation.
	ErrInvalidKey = errors.New("invalid wallet key")

	// ErrWalletNotFound indicates the referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")
)

const (
	// TagZap marks ledger entries created by a zap transfer.
	TagZap   = "zap"
	// TagTopUp marks treasury transfers that fund a user's wallet.
	TagTopUp = "topup"
)

// Kind partitions a user's balances by purpose.
type Kind string

const (
	KindSending   Kind = "Sending"
	KindReceiving Kind = "Receiving"
	KindPrivate   Kind = "Private"
	KindAllowance Kind = "Allowance"
)

// Kinds lists every supported wallet kind.
var Kinds = []Kind{KindSending, KindReceiving, KindPrivate, KindAllowance}

// ParseKind matches a wallet kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown wallet kind %q", s)
}

// Wallet is a ledger-managed balance owned by one directory user.
type Wallet struct {
	ID          string
	OwnerID     string
	Kind        Kind
	InKey       string
	AdminKey    string
	BalanceMsat int64
}

// Party identifies one side of a transfer inside entry metadata.
type Party struct {
	UserID   string
	WalletID string
}

// IsZero reports whether neither id is present.
func (p Party) IsZero() bool {
	return p.UserID == "" && p.WalletID == ""
}

// Metadata is the correlation data embedded in a ledger entry at creation time.
type Metadata struct {
	Tag  string
	From Party
	To   Party
}

// ZapMetadata builds the correlation metadata attached to a zap invoice.
func ZapMetadata(sender, receiver Wallet) Metadata {
	return Metadata{
		Tag:  TagZap,
		From: Party{UserID: sender.OwnerID, WalletID: sender.ID},
		To:   Party{UserID: receiver.OwnerID, WalletID: receiver.ID},
	}
}

// Entry is a raw wallet-level credit or debit as recorded by the ledger.
// AmountMsat is signed; negative values are outgoing.
type Entry struct {
	CheckingID  string
	PaymentHash string
	Bolt11      string
	WalletID    string
	AmountMsat  int64
	FeeMsat     int64
	Memo        string
	Time        int64
	Pending     bool
	// Metadata is nil when the ledger recorded no extra data.
	Metadata *Metadata
}

// Outgoing reports whether the entry debits its wallet.
func (e Entry) Outgoing() bool {
	return e.AmountMsat < 0
}

// WalletFilter narrows ListWallets. Empty fields match everything.
type WalletFilter struct {
	OwnerID  string
	WalletID string
	Kind     Kind
}

// Matches reports whether w satisfies the filter.
func (f WalletFilter) Matches(w Wallet) bool {
	if f.OwnerID != "" && w.OwnerID != f.OwnerID {
		return false
	}
	if f.WalletID != "" && w.ID != f.WalletID {
		return false
	}
	if f.Kind != "" && w.Kind != f.Kind {
		return false
	}
	return true
}

// NewWallet describes a wallet to create.
type NewWallet struct {
	OwnerID string
	Kind    Kind
}

// InvoiceRequest asks the receiving wallet to mint a payable invoice.
type InvoiceRequest struct {
	AmountSat int64
	Memo      string
	Metadata  Metadata
}

// Invoice is a payable request minted by a receiving wallet.
type Invoice struct {
	PaymentHash    string
	PaymentRequest string
	CheckingID     string
}

// Payment is the outcome of settling an invoice.
type Payment struct {
	PaymentHash string
	CheckingID  string
}

// PaymentFilter narrows ListPayments.
type PaymentFilter struct {
	// Tag keeps only entries whose metadata carries this tag.
	Tag string
	// IncludePending keeps unsettled entries such as unpaid invoices.
	IncludePending bool
}

// Matches reports whether e satisfies the filter.
func (f PaymentFilter) Matches(e Entry) bool {
	if e.Pending && !f.IncludePending {
		return false
	}
	if f.Tag != "" && (e.Metadata == nil || e.Metadata.Tag != f.Tag) {
		return false
	}
	return true
}

// Ledger is the external ledger service as consumed by the zap core.
type Ledger interface {
	ListWallets(ctx context.Context, filter WalletFilter) ([]Wallet, error)
	CreateWallet(ctx context.Context, input NewWallet) (Wallet, error)
	CreateInvoice(ctx context.Context, inKey string, req InvoiceRequest) (Invoice, error)
	PayInvoice(ctx context.Context, adminKey, bolt11 string) (Payment, error)
	ListPayments(ctx context.Context, inKey string, since int64, filter PaymentFilter) ([]Entry, error)
	WalletBalance(ctx context.Context, inKey string) (int64, error)
}

// MsatToSat converts milli-sats to whole sats, truncating toward zero.
func MsatToSat(msat int64) int64 {
	return msat / 1000
}

// SatToMsat converts sats to milli-sats.
func SatToMsat(sat int64) int64 {
	return sat * 1000
}
