package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
)

// Service resolves users to their ledger wallets.
type Service struct {
	ids    *identity.Service
	ledger ledger.Ledger
	logger *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(ids *identity.Service, ledger ledger.Ledger, logger *slog.Logger) *Service {
	return &Service{ids: ids, ledger: ledger, logger: logger}
}

// Resolve returns the single wallet of kind owned by the user behind
// userIdentity, creating the directory user and the wallet on first use.
// userName is only used when something has to be created.
func (s *Service) Resolve(ctx context.Context, userIdentity, userName string, kind ledger.Kind) (ledger.Wallet, error) {
	if userIdentity == "" {
		return ledger.Wallet{}, errors.New("user identity is required")
	}
	if _, err := ledger.ParseKind(string(kind)); err != nil {
		return ledger.Wallet{}, err
	}

	user, err := s.ids.Ensure(ctx, userIdentity, userName)
	if err != nil {
		return ledger.Wallet{}, err
	}

	wallets, err := s.ledger.ListWallets(ctx, ledger.WalletFilter{OwnerID: user.ID, Kind: kind})
	if err != nil {
		return ledger.Wallet{}, fmt.Errorf("list %s wallets for %s: %w", kind, user.ID, err)
	}

	switch len(wallets) {
	case 1:
		return wallets[0], nil
	case 0:
	default:
		return ledger.Wallet{}, &ResolutionError{UserID: user.ID, Kind: kind, Count: len(wallets)}
	}

	wallet, err := s.ledger.CreateWallet(ctx, ledger.NewWallet{OwnerID: user.ID, Kind: kind})
	if err != nil {
		return ledger.Wallet{}, fmt.Errorf("create %s wallet for %s: %w", kind, user.ID, err)
	}
	if s.logger != nil {
		s.logger.Info("wallet created",
			slog.String("wallet_id", wallet.ID),
			slog.String("user_id", user.ID),
			slog.String("kind", string(kind)),
		)
	}
	return wallet, nil
}

// FindByDisplayID returns the wallets whose id matches walletID. Nothing
// matching is not an error; the caller decides what a miss means.
func (s *Service) FindByDisplayID(ctx context.Context, walletID string) ([]ledger.Wallet, error) {
	if walletID == "" {
		return []ledger.Wallet{}, nil
	}
	wallets, err := s.ledger.ListWallets(ctx, ledger.WalletFilter{WalletID: walletID})
	if err != nil {
		return nil, fmt.Errorf("find wallet %s: %w", walletID, err)
	}
	if wallets == nil {
		wallets = []ledger.Wallet{}
	}
	return wallets, nil
}

// ListByKind returns every wallet of kind across all users.
func (s *Service) ListByKind(ctx context.Context, kind ledger.Kind) ([]ledger.Wallet, error) {
	wallets, err := s.ledger.ListWallets(ctx, ledger.WalletFilter{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("list %s wallets: %w", kind, err)
	}
	return wallets, nil
}

// Balance returns the ledger balance for the wallet.
func (s *Service) Balance(ctx context.Context, wallet ledger.Wallet) (Balance, error) {
	amount, err := s.ledger.WalletBalance(ctx, wallet.InKey)
	if err != nil {
		return Balance{}, fmt.Errorf("balance of %s: %w", wallet.ID, err)
	}
	return Balance{WalletID: wallet.ID, Kind: wallet.Kind, AmountMsat: amount, AsOf: time.Now().UTC()}, nil
}
