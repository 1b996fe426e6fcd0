package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/journal"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/logging"
	"github.com/teamzaps/zaps/internal/notification"
	"github.com/teamzaps/zaps/internal/wallet"
)

type testNotifier struct {
	last  notification.Message
	count int
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	n.count++
	return nil
}

// countingLedger wraps a ledger and can fail invoice creation on demand.
type countingLedger struct {
	ledger.Ledger
	invoiceErr error
	invoices   int
	pays       int
}

func (l *countingLedger) CreateInvoice(ctx context.Context, inKey string, req ledger.InvoiceRequest) (ledger.Invoice, error) {
	l.invoices++
	if l.invoiceErr != nil {
		return ledger.Invoice{}, l.invoiceErr
	}
	return l.Ledger.CreateInvoice(ctx, inKey, req)
}

func (l *countingLedger) PayInvoice(ctx context.Context, adminKey, bolt11 string) (ledger.Payment, error) {
	l.pays++
	return l.Ledger.PayInvoice(ctx, adminKey, bolt11)
}

type fixture struct {
	led      *countingLedger
	wallets  *wallet.Service
	notifier *testNotifier
	journal  journal.Repository
	svc      *Service
}

func newFixture() *fixture {
	led := &countingLedger{Ledger: ledger.NewInMemory()}
	ids := identity.NewService(identity.NewMemoryDirectory(), logging.Discard())
	wallets := wallet.NewService(ids, led, logging.Discard())
	notifier := &testNotifier{}
	repo := journal.NewMemoryRepository()
	return &fixture{
		led:      led,
		wallets:  wallets,
		notifier: notifier,
		journal:  repo,
		svc:      NewService(led, wallets, notifier, repo, logging.Discard()),
	}
}

func (f *fixture) pair(t *testing.T) (ledger.Wallet, ledger.Wallet) {
	t.Helper()
	ctx := context.Background()
	from, err := f.wallets.Resolve(ctx, "aad-alice", "Alice", ledger.KindSending)
	if err != nil {
		t.Fatalf("resolve sender: %v", err)
	}
	to, err := f.wallets.Resolve(ctx, "aad-bob", "Bob", ledger.KindReceiving)
	if err != nil {
		t.Fatalf("resolve receiver: %v", err)
	}
	return from, to
}

func TestSendZapSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	from, to := f.pair(t)
	ledger.SeedBalance(f.led.Ledger, from.ID, 10_000_000)

	res, err := f.svc.SendZap(ctx, TransferRequest{Sender: from, Receiver: to, Memo: "hello", AmountSat: 500})
	if err != nil {
		t.Fatalf("send zap failed: %v", err)
	}
	if res.PaymentHash == "" || res.AmountSat != 500 {
		t.Fatalf("unexpected receipt: %+v", res)
	}

	debits, _ := f.led.ListPayments(ctx, from.InKey, 0, ledger.PaymentFilter{})
	credits, _ := f.led.ListPayments(ctx, to.InKey, 0, ledger.PaymentFilter{})
	if len(debits) != 1 || len(credits) != 1 {
		t.Fatalf("expected one debit and one credit, got %d and %d", len(debits), len(credits))
	}
	if ledger.MsatToSat(debits[0].AmountMsat) != -500 || ledger.MsatToSat(credits[0].AmountMsat) != 500 {
		t.Fatalf("unexpected amounts %d / %d", debits[0].AmountMsat, credits[0].AmountMsat)
	}
	for _, e := range []ledger.Entry{debits[0], credits[0]} {
		m := e.Metadata
		if m == nil || m.Tag != ledger.TagZap {
			t.Fatalf("entry lost zap tag: %+v", e)
		}
		if m.From != (ledger.Party{UserID: from.OwnerID, WalletID: from.ID}) || m.To != (ledger.Party{UserID: to.OwnerID, WalletID: to.ID}) {
			t.Fatalf("entry metadata does not link sender and receiver: %+v", m)
		}
	}

	if f.notifier.last.Kind != notification.KindZapReceived || f.notifier.last.Destination != to.OwnerID {
		t.Fatalf("expected receiver notification, got %+v", f.notifier.last)
	}
	if outstanding, _ := f.journal.Outstanding(ctx, 10); len(outstanding) != 0 {
		t.Fatalf("settled zap must not be outstanding: %+v", outstanding)
	}
}

func TestSendZapInvoiceFailureNeverPays(t *testing.T) {
	f := newFixture()
	from, to := f.pair(t)
	ledger.SeedBalance(f.led.Ledger, from.ID, 10_000_000)
	f.led.invoiceErr = errors.New("node offline")

	_, err := f.svc.SendZap(context.Background(), TransferRequest{Sender: from, Receiver: to, AmountSat: 100})
	if !errors.Is(err, ErrInvoiceCreation) {
		t.Fatalf("expected invoice creation error, got %v", err)
	}
	if errors.Is(err, ErrPaymentFailed) {
		t.Fatal("invoice failure must not look like a payment failure")
	}
	if f.led.pays != 0 {
		t.Fatalf("expected no pay calls, got %d", f.led.pays)
	}
	var te *TransferError
	if !errors.As(err, &te) || te.SenderWalletID != from.ID || te.ReceiverWalletID != to.ID || te.Op != "create invoice" {
		t.Fatalf("expected transfer error with context, got %#v", err)
	}
	if f.notifier.count != 0 {
		t.Fatal("failed zap must not notify")
	}
}

func TestSendZapPaymentFailureLeavesInvoiceOutstanding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	from, to := f.pair(t)

	_, err := f.svc.SendZap(ctx, TransferRequest{Sender: from, Receiver: to, AmountSat: 1_000})
	if !errors.Is(err, ErrPaymentFailed) {
		t.Fatalf("expected payment failed, got %v", err)
	}
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if f.led.pays != 1 {
		t.Fatalf("expected exactly one pay attempt, got %d", f.led.pays)
	}

	pending, _ := f.led.ListPayments(ctx, to.InKey, 0, ledger.PaymentFilter{IncludePending: true})
	if len(pending) != 1 || !pending[0].Pending {
		t.Fatalf("expected the invoice to remain unpaid, got %+v", pending)
	}

	outstanding, _ := f.journal.Outstanding(ctx, 10)
	if len(outstanding) != 1 || outstanding[0].PaymentHash != pending[0].PaymentHash {
		t.Fatalf("expected journal to track the unpaid invoice, got %+v", outstanding)
	}
}

func TestSendZapTwiceMakesTwoTransfers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	from, to := f.pair(t)
	ledger.SeedBalance(f.led.Ledger, from.ID, 10_000_000)

	req := TransferRequest{Sender: from, Receiver: to, Memo: "same", AmountSat: 200}
	first, err := f.svc.SendZap(ctx, req)
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := f.svc.SendZap(ctx, req)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if first.PaymentHash == second.PaymentHash {
		t.Fatal("expected independent invoices")
	}

	bal, _ := f.led.WalletBalance(ctx, to.InKey)
	if bal != 400_000 {
		t.Fatalf("expected receiver to hold 400 sats, got %d msat", bal)
	}
}

func TestSendZapValidation(t *testing.T) {
	f := newFixture()
	from, to := f.pair(t)

	cases := map[string]TransferRequest{
		"zero amount":       {Sender: from, Receiver: to, AmountSat: 0},
		"negative amount":   {Sender: from, Receiver: to, AmountSat: -5},
		"same wallet":       {Sender: from, Receiver: from, AmountSat: 5},
		"unresolved sender": {Receiver: to, AmountSat: 5},
		"no admin key":      {Sender: ledger.Wallet{ID: from.ID}, Receiver: to, AmountSat: 5},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.SendZap(context.Background(), req)
			if !errors.Is(err, ErrInvalidTransfer) {
				t.Fatalf("expected invalid transfer, got %v", err)
			}
		})
	}
	if f.led.invoices != 0 || f.led.pays != 0 {
		t.Fatalf("validation failures must not reach the ledger, got %d invoices %d pays", f.led.invoices, f.led.pays)
	}
}

func TestSendResolvesReceiverByWalletID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	from, to := f.pair(t)
	ledger.SeedBalance(f.led.Ledger, from.ID, 1_000_000)

	if _, err := f.svc.Send(ctx, SendInput{SenderIdentity: "aad-alice", SenderName: "Alice", ReceiverWalletID: to.ID, AmountSat: 21}); err != nil {
		t.Fatalf("send: %v", err)
	}

	_, err := f.svc.Send(ctx, SendInput{SenderIdentity: "aad-alice", ReceiverWalletID: "missing", AmountSat: 21})
	var countErr *ReceiverCountError
	if !errors.As(err, &countErr) || countErr.Count != 0 {
		t.Fatalf("expected receiver count error, got %v", err)
	}
	if !errors.Is(err, ErrReceiverNotFound) {
		t.Fatalf("expected receiver not found, got %v", err)
	}
}
