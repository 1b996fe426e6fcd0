package funding

import (
	"context"
	"fmt"
	"sync"

	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/wallet"
)

// Treasury supplies the wallet top-ups are paid from.
type Treasury interface {
	Wallet(ctx context.Context) (ledger.Wallet, error)
}

// WalletTreasury is an existing ledger wallet looked up by id.
type WalletTreasury struct {
	wallets  *wallet.Service
	walletID string
}

// NewWalletTreasury returns a treasury backed by the wallet with walletID.
func NewWalletTreasury(wallets *wallet.Service, walletID string) *WalletTreasury {
	return &WalletTreasury{wallets: wallets, walletID: walletID}
}

// Wallet resolves the treasury wallet. Exactly one wallet must match.
func (t *WalletTreasury) Wallet(ctx context.Context) (ledger.Wallet, error) {
	found, err := t.wallets.FindByDisplayID(ctx, t.walletID)
	if err != nil {
		return ledger.Wallet{}, fmt.Errorf("%w: %w", ErrTreasuryUnavailable, err)
	}
	if len(found) != 1 {
		return ledger.Wallet{}, fmt.Errorf("%w: %d wallets match %q", ErrTreasuryUnavailable, len(found), t.walletID)
	}
	return found[0], nil
}

// SeededTreasury creates its own wallet on first use and credits it with an
// initial balance. Only the in-memory ledger honours the credit, so this is
// meant for local development.
type SeededTreasury struct {
	ledger      ledger.Ledger
	initialMsat int64

	once   sync.Once
	wallet ledger.Wallet
	err    error
}

// NewSeededTreasury returns a development treasury holding initialSat.
func NewSeededTreasury(l ledger.Ledger, initialSat int64) *SeededTreasury {
	return &SeededTreasury{ledger: l, initialMsat: ledger.SatToMsat(initialSat)}
}

func (t *SeededTreasury) Wallet(ctx context.Context) (ledger.Wallet, error) {
	t.once.Do(func() {
		w, err := t.ledger.CreateWallet(ctx, ledger.NewWallet{OwnerID: "treasury", Kind: ledger.KindPrivate})
		if err != nil {
			t.err = fmt.Errorf("%w: %w", ErrTreasuryUnavailable, err)
			return
		}
		ledger.SeedBalance(t.ledger, w.ID, t.initialMsat)
		t.wallet = w
	})
	return t.wallet, t.err
}
