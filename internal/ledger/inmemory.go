package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memInvoice struct {
	hash       string
	walletID   string
	amountMsat int64
	memo       string
	metadata   *Metadata
	paid       bool
}

type keyRef struct {
	walletID string
	admin    bool
}

type inMemoryLedger struct {
	mu       sync.RWMutex
	now      func() time.Time
	order    []string
	wallets  map[string]*Wallet
	keys     map[string]keyRef
	invoices map[string]*memInvoice
	entries  map[string][]Entry
}

// Option customises the in-memory ledger.
type Option func(*inMemoryLedger)

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(l *inMemoryLedger) { l.now = now }
}

// NewInMemory creates a concurrency-safe in-memory ledger with invoice
// semantics matching the external service. Useful for unit tests and local runs.
func NewInMemory(opts ...Option) Ledger {
	l := &inMemoryLedger{
		now:      time.Now,
		wallets:  make(map[string]*Wallet),
		keys:     make(map[string]keyRef),
		invoices: make(map[string]*memInvoice),
		entries:  make(map[string][]Entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *inMemoryLedger) ListWallets(_ context.Context, filter WalletFilter) ([]Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Wallet, 0)
	for _, id := range l.order {
		w := *l.wallets[id]
		if filter.Matches(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (l *inMemoryLedger) CreateWallet(_ context.Context, input NewWallet) (Wallet, error) {
	if input.OwnerID == "" {
		return Wallet{}, fmt.Errorf("owner is required")
	}
	if input.Kind == "" {
		return Wallet{}, fmt.Errorf("wallet kind is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w := &Wallet{
		ID:       newHex(),
		OwnerID:  input.OwnerID,
		Kind:     input.Kind,
		InKey:    newHex(),
		AdminKey: newHex(),
	}
	l.wallets[w.ID] = w
	l.order = append(l.order, w.ID)
	l.keys[w.InKey] = keyRef{walletID: w.ID}
	l.keys[w.AdminKey] = keyRef{walletID: w.ID, admin: true}
	return *w, nil
}

func (l *inMemoryLedger) CreateInvoice(_ context.Context, inKey string, req InvoiceRequest) (Invoice, error) {
	if req.AmountSat <= 0 {
		return Invoice{}, fmt.Errorf("amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ref, ok := l.keys[inKey]
	if !ok {
		return Invoice{}, ErrInvalidKey
	}

	hash := newHex() + newHex()
	bolt11 := fmt.Sprintf("lnmem%dn1%s", req.AmountSat, hash[:24])
	meta := req.Metadata
	inv := &memInvoice{
		hash:       hash,
		walletID:   ref.walletID,
		amountMsat: SatToMsat(req.AmountSat),
		memo:       req.Memo,
		metadata:   &meta,
	}
	l.invoices[bolt11] = inv
	l.entries[ref.walletID] = append(l.entries[ref.walletID], Entry{
		CheckingID:  hash,
		PaymentHash: hash,
		Bolt11:      bolt11,
		WalletID:    ref.walletID,
		AmountMsat:  inv.amountMsat,
		Memo:        req.Memo,
		Time:        l.now().Unix(),
		Pending:     true,
		Metadata:    copyMetadata(inv.metadata),
	})

	return Invoice{PaymentHash: hash, PaymentRequest: bolt11, CheckingID: hash}, nil
}

func (l *inMemoryLedger) PayInvoice(_ context.Context, adminKey, bolt11 string) (Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ref, ok := l.keys[adminKey]
	if !ok || !ref.admin {
		return Payment{}, ErrInvalidKey
	}
	inv, ok := l.invoices[bolt11]
	if !ok {
		return Payment{}, ErrInvoiceNotFound
	}
	if inv.paid {
		return Payment{}, ErrInvoiceAlreadyPaid
	}

	payer := l.wallets[ref.walletID]
	payee, ok := l.wallets[inv.walletID]
	if !ok {
		return Payment{}, ErrWalletNotFound
	}
	if payer.BalanceMsat < inv.amountMsat {
		return Payment{}, ErrInsufficientFunds
	}

	payer.BalanceMsat -= inv.amountMsat
	payee.BalanceMsat += inv.amountMsat
	inv.paid = true

	checkingID := "internal_" + inv.hash
	l.entries[payer.ID] = append(l.entries[payer.ID], Entry{
		CheckingID:  checkingID,
		PaymentHash: inv.hash,
		Bolt11:      bolt11,
		WalletID:    payer.ID,
		AmountMsat:  -inv.amountMsat,
		Memo:        inv.memo,
		Time:        l.now().Unix(),
		Metadata:    copyMetadata(inv.metadata),
	})
	for i := range l.entries[payee.ID] {
		if l.entries[payee.ID][i].PaymentHash == inv.hash {
			l.entries[payee.ID][i].Pending = false
		}
	}

	return Payment{PaymentHash: inv.hash, CheckingID: checkingID}, nil
}

func (l *inMemoryLedger) ListPayments(_ context.Context, inKey string, since int64, filter PaymentFilter) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ref, ok := l.keys[inKey]
	if !ok {
		return nil, ErrInvalidKey
	}

	out := make([]Entry, 0)
	for _, e := range l.entries[ref.walletID] {
		if e.Time < since || !filter.Matches(e) {
			continue
		}
		e.Metadata = copyMetadata(e.Metadata)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	return out, nil
}

func (l *inMemoryLedger) WalletBalance(_ context.Context, inKey string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ref, ok := l.keys[inKey]
	if !ok {
		return 0, ErrInvalidKey
	}
	return l.wallets[ref.walletID].BalanceMsat, nil
}

func copyMetadata(m *Metadata) *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func newHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
