package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamzaps/zaps/internal/history"
	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/logging"
	"github.com/teamzaps/zaps/internal/wallet"
)

type fixture struct {
	led     ledger.Ledger
	wallets *wallet.Service
	svc     *Service
}

func newFixture(now time.Time) *fixture {
	led := ledger.NewInMemory(ledger.WithClock(func() time.Time { return now }))
	ids := identity.NewService(identity.NewMemoryDirectory(), logging.Discard())
	wallets := wallet.NewService(ids, led, logging.Discard())
	svc := NewService(wallets, history.NewReader(led), ids, logging.Discard())
	svc.now = func() time.Time { return now }
	return &fixture{led: led, wallets: wallets, svc: svc}
}

func (f *fixture) zap(t *testing.T, from, to ledger.Wallet, sats int64, memo string) {
	t.Helper()
	ctx := context.Background()
	inv, err := f.led.CreateInvoice(ctx, to.InKey, ledger.InvoiceRequest{AmountSat: sats, Memo: memo, Metadata: ledger.ZapMetadata(from, to)})
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if _, err := f.led.PayInvoice(ctx, from.AdminKey, inv.PaymentRequest); err != nil {
		t.Fatalf("pay: %v", err)
	}
}

func (f *fixture) resolve(t *testing.T, ext, name string, kind ledger.Kind) ledger.Wallet {
	t.Helper()
	w, err := f.wallets.Resolve(context.Background(), ext, name, kind)
	if err != nil {
		t.Fatalf("resolve %s %s: %v", ext, kind, err)
	}
	return w
}

func TestFeedAndLeaderboard(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newFixture(now)
	ctx := context.Background()

	alice := f.resolve(t, "aad-alice", "Alice", ledger.KindSending)
	bob := f.resolve(t, "aad-bob", "Bob", ledger.KindReceiving)
	carol := f.resolve(t, "aad-carol", "Carol", ledger.KindReceiving)
	ledger.SeedBalance(f.led, alice.ID, 10_000_000)

	f.zap(t, alice, bob, 100, "lunch")
	f.zap(t, alice, carol, 300, "review")
	f.zap(t, alice, bob, 50, "coffee")

	txs, err := f.svc.Feed(ctx, time.Time{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 received zaps, got %d", len(txs))
	}
	for _, tx := range txs {
		if tx.From.DisplayName() != "Alice" {
			t.Fatalf("expected sender Alice, got %q", tx.From.DisplayName())
		}
		if tx.AmountMsat <= 0 {
			t.Fatalf("feed must only hold credits, got %d", tx.AmountMsat)
		}
	}

	board, err := f.svc.Leaderboard(ctx, time.Time{}, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 receivers, got %d", len(board))
	}
	if board[0].Receiver.DisplayName() != "Carol" || board[0].TotalSat != 300 {
		t.Fatalf("unexpected leader %+v", board[0])
	}
	if board[1].Receiver.DisplayName() != "Bob" || board[1].TotalSat != 150 || board[1].Zaps != 2 {
		t.Fatalf("unexpected runner up %+v", board[1])
	}
}

func TestFeedHonoursSince(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newFixture(now)

	alice := f.resolve(t, "aad-alice", "Alice", ledger.KindSending)
	bob := f.resolve(t, "aad-bob", "Bob", ledger.KindReceiving)
	ledger.SeedBalance(f.led, alice.ID, 1_000_000)
	f.zap(t, alice, bob, 10, "")

	txs, err := f.svc.Feed(context.Background(), now.Add(time.Second))
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected nothing after since, got %d", len(txs))
	}
}

func TestLogCreatesWalletAndReturnsEmptyHistory(t *testing.T) {
	f := newFixture(time.Unix(1_700_000_000, 0))

	txs, err := f.svc.Log(context.Background(), "aad-new", "Newbie", ledger.KindPrivate, history.ViewAll)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if txs == nil || len(txs) != 0 {
		t.Fatalf("expected empty history, got %#v", txs)
	}
	wallets, _ := f.wallets.ListByKind(context.Background(), ledger.KindPrivate)
	if len(wallets) != 1 {
		t.Fatalf("expected the wallet to be created, got %d", len(wallets))
	}
}

func TestLogViewsAndKinds(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newFixture(now)
	ctx := context.Background()

	mine := f.resolve(t, "aad-alice", "Alice", ledger.KindAllowance)
	bob := f.resolve(t, "aad-bob", "Bob", ledger.KindReceiving)
	bobSending := f.resolve(t, "aad-bob", "Bob", ledger.KindSending)
	ledger.SeedBalance(f.led, mine.ID, 1_000_000)
	ledger.SeedBalance(f.led, bobSending.ID, 1_000_000)

	f.zap(t, mine, bob, 40, "thanks")
	f.zap(t, bobSending, mine, 15, "back")

	all, err := f.svc.Log(ctx, "aad-alice", "Alice", ledger.KindAllowance, history.ViewAll)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	sent, _ := f.svc.Log(ctx, "aad-alice", "Alice", ledger.KindAllowance, history.ViewSent)
	if len(sent) != 1 || sent[0].Counterpart().DisplayName() != "Bob" || sent[0].AmountSat() != -40 {
		t.Fatalf("unexpected sent view %+v", sent)
	}
	received, _ := f.svc.Log(ctx, "aad-alice", "Alice", ledger.KindAllowance, history.ViewReceived)
	if len(received) != 1 || received[0].Counterpart().DisplayName() != "Bob" {
		t.Fatalf("unexpected received view %+v", received)
	}

	if _, err := f.svc.Log(ctx, "aad-alice", "Alice", ledger.KindSending, history.ViewAll); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected unsupported kind, got %v", err)
	}
}

func TestAllowance(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := newFixture(now)

	mine := f.resolve(t, "aad-alice", "Alice", ledger.KindAllowance)
	bob := f.resolve(t, "aad-bob", "Bob", ledger.KindReceiving)
	ledger.SeedBalance(f.led, mine.ID, 1_000_000)
	f.zap(t, mine, bob, 200, "")

	summary, err := f.svc.Allowance(context.Background(), "aad-alice", "Alice")
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if summary.AvailableSat != 800 || summary.SpentSat != 200 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.SpentPercent != 25 {
		t.Fatalf("expected 25%% spent, got %v", summary.SpentPercent)
	}
}
