package history

import (
	"context"
	"errors"
	"testing"

	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
)

func TestEnrichUnknownCounterpart(t *testing.T) {
	entries := []ledger.Entry{{
		CheckingID: "c1",
		AmountMsat: 5_000,
		Metadata: &ledger.Metadata{
			Tag:  ledger.TagZap,
			From: ledger.Party{UserID: "ghost", WalletID: "w-ghost"},
			To:   ledger.Party{UserID: "u1", WalletID: "w1"},
		},
	}}
	users := []identity.User{{ID: "u1", DisplayName: "Ada"}}

	txs := Enrich(entries, users)
	if len(txs) != 1 {
		t.Fatalf("expected entry to be kept, got %d", len(txs))
	}
	cp := txs[0].Counterpart()
	if cp.IsResolved() {
		t.Fatal("expected unresolved counterpart")
	}
	if cp.DisplayName() != UnknownName {
		t.Fatalf("expected %q, got %q", UnknownName, cp.DisplayName())
	}
	if cp.Ref().UserID != "ghost" {
		t.Fatalf("expected metadata id to be kept, got %+v", cp.Ref())
	}
	if txs[0].To.DisplayName() != "Ada" {
		t.Fatalf("expected receiver to resolve, got %q", txs[0].To.DisplayName())
	}
}

func TestEnrichWithoutMetadata(t *testing.T) {
	entries := []ledger.Entry{{CheckingID: "plain", AmountMsat: -2_000, Memo: "top up"}}

	txs := Enrich(entries, nil)
	if len(txs) != 1 {
		t.Fatalf("expected entry to pass through, got %d", len(txs))
	}
	if txs[0].From.IsResolved() || txs[0].To.IsResolved() {
		t.Fatal("expected both parties unresolved")
	}
	if txs[0].Counterpart().DisplayName() != UnknownName {
		t.Fatalf("unexpected name %q", txs[0].Counterpart().DisplayName())
	}
	if txs[0].Label() != "Regular transaction" {
		t.Fatalf("unexpected label %q", txs[0].Label())
	}
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	meta := &ledger.Metadata{Tag: ledger.TagZap, From: ledger.Party{UserID: "u1"}}
	entries := []ledger.Entry{{CheckingID: "c1", AmountMsat: 1_000, Metadata: meta}}

	txs := Enrich(entries, []identity.User{{ID: "u1", DisplayName: "Ada"}})
	txs[0].Metadata.Tag = "changed"

	if meta.Tag != ledger.TagZap || entries[0].Metadata != meta {
		t.Fatal("enrich must not write back to entries")
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		ledger.TagZap:   "Zap!",
		ledger.TagTopUp: "Top-up",
		"lnurlp":        "lnurlp",
		"":              "Regular transaction",
	}
	for tag, want := range cases {
		tx := Transaction{Entry: ledger.Entry{Metadata: &ledger.Metadata{Tag: tag}}}
		if got := tx.Label(); got != want {
			t.Fatalf("tag %q: expected %q, got %q", tag, want, got)
		}
	}
}

func TestSortAndFilter(t *testing.T) {
	txs := []Transaction{
		{Entry: ledger.Entry{CheckingID: "old-in", AmountMsat: 1_000, Time: 10}},
		{Entry: ledger.Entry{CheckingID: "new-out", AmountMsat: -3_000, Time: 30}},
		{Entry: ledger.Entry{CheckingID: "mid-in", AmountMsat: 2_000, Time: 20}},
	}
	SortByTimeDesc(txs)
	if txs[0].CheckingID != "new-out" || txs[2].CheckingID != "old-in" {
		t.Fatalf("unexpected order %v", []string{txs[0].CheckingID, txs[1].CheckingID, txs[2].CheckingID})
	}

	sent := FilterByView(txs, ViewSent)
	if len(sent) != 1 || sent[0].Direction() != DirectionOut {
		t.Fatalf("unexpected sent view %+v", sent)
	}
	received := FilterByView(txs, ViewReceived)
	if len(received) != 2 || received[0].CheckingID != "mid-in" {
		t.Fatalf("unexpected received view %+v", received)
	}
	if len(FilterByView(txs, ParseView("bogus"))) != 3 {
		t.Fatal("unknown view must fall back to all")
	}
}

func TestEntriesSinceKeepsMilliUnits(t *testing.T) {
	led := ledger.NewInMemory()
	ctx := context.Background()
	w, _ := led.CreateWallet(ctx, ledger.NewWallet{OwnerID: "u1", Kind: ledger.KindPrivate})
	for i, msat := range []int64{1_000, 250_000, -42_000} {
		ledger.RecordEntry(led, ledger.Entry{CheckingID: string(rune('a' + i)), WalletID: w.ID, AmountMsat: msat, Time: int64(100 + i)})
	}

	entries, err := NewReader(led).EntriesSince(ctx, w.InKey, 0, ledger.PaymentFilter{})
	if err != nil {
		t.Fatalf("entries since: %v", err)
	}
	want := map[int64]int64{1_000: 1, 250_000: 250, -42_000: -42}
	for _, e := range entries {
		display, ok := want[e.AmountMsat]
		if !ok {
			t.Fatalf("amount changed on read: %d", e.AmountMsat)
		}
		if ledger.MsatToSat(e.AmountMsat) != display || ledger.SatToMsat(display) != e.AmountMsat {
			t.Fatalf("round trip failed for %d", e.AmountMsat)
		}
	}
}

func TestEntriesSinceWrapsReadErrors(t *testing.T) {
	_, err := NewReader(ledger.NewInMemory()).EntriesSince(context.Background(), "bad-key", 0, ledger.PaymentFilter{})
	if !errors.Is(err, ErrRead) {
		t.Fatalf("expected read error, got %v", err)
	}
	if !errors.Is(err, ledger.ErrInvalidKey) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
}

// Alice zaps Bob 100 sats for lunch; each side's history names the other.
func TestLunchScenario(t *testing.T) {
	led := ledger.NewInMemory()
	dir := identity.NewMemoryDirectory(
		identity.User{ID: "alice", ExternalID: "aad-alice", DisplayName: "Alice"},
		identity.User{ID: "bob", ExternalID: "aad-bob", DisplayName: "Bob"},
	)
	ctx := context.Background()

	w1, _ := led.CreateWallet(ctx, ledger.NewWallet{OwnerID: "alice", Kind: ledger.KindSending})
	w2, _ := led.CreateWallet(ctx, ledger.NewWallet{OwnerID: "bob", Kind: ledger.KindReceiving})
	ledger.SeedBalance(led, w1.ID, 1_000_000)

	inv, err := led.CreateInvoice(ctx, w2.InKey, ledger.InvoiceRequest{AmountSat: 100, Memo: "lunch", Metadata: ledger.ZapMetadata(w1, w2)})
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if _, err := led.PayInvoice(ctx, w1.AdminKey, inv.PaymentRequest); err != nil {
		t.Fatalf("pay: %v", err)
	}

	users, _ := dir.ListUsers(ctx, identity.UserQuery{})
	reader := NewReader(led)

	w1Entries, _ := reader.EntriesSince(ctx, w1.InKey, 0, ledger.PaymentFilter{})
	w2Entries, _ := reader.EntriesSince(ctx, w2.InKey, 0, ledger.PaymentFilter{})
	if len(w1Entries) != 1 || w1Entries[0].AmountMsat != -100_000 {
		t.Fatalf("unexpected W1 entries %+v", w1Entries)
	}
	if len(w2Entries) != 1 || w2Entries[0].AmountMsat != 100_000 {
		t.Fatalf("unexpected W2 entries %+v", w2Entries)
	}

	sent := Enrich(w1Entries, users)[0]
	received := Enrich(w2Entries, users)[0]
	if sent.Counterpart().DisplayName() != "Bob" {
		t.Fatalf("W1 should see Bob, got %q", sent.Counterpart().DisplayName())
	}
	if received.Counterpart().DisplayName() != "Alice" {
		t.Fatalf("W2 should see Alice, got %q", received.Counterpart().DisplayName())
	}
	if sent.Memo != "lunch" || sent.Label() != "Zap!" {
		t.Fatalf("unexpected sent transaction %+v", sent)
	}
}
