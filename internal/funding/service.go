package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/payments"
	"github.com/teamzaps/zaps/internal/wallet"
)

const defaultMemo = "Allowance top-up"

var (
	ErrUnsupportedKind     = errors.New("only Allowance and Sending wallets can be topped up")
	ErrTreasuryUnavailable = errors.New("treasury wallet unavailable")
)

// Service funds user wallets from the treasury. Top-ups go through the same
// invoice-then-pay executor as zaps and carry the top-up tag.
type Service struct {
	transfers *payments.Service
	wallets   *wallet.Service
	treasury  Treasury
	logger    *slog.Logger
}

// NewService prepares a funding service.
func NewService(transfers *payments.Service, wallets *wallet.Service, treasury Treasury, logger *slog.Logger) (*Service, error) {
	if transfers == nil || wallets == nil {
		return nil, fmt.Errorf("payment and wallet services are required")
	}
	if treasury == nil {
		return nil, ErrTreasuryUnavailable
	}
	return &Service{transfers: transfers, wallets: wallets, treasury: treasury, logger: logger}, nil
}

// TopUpInput names the wallet to fund by chat identity and kind.
type TopUpInput struct {
	UserIdentity string
	UserName     string
	Kind         ledger.Kind
	AmountSat    int64
	Memo         string
}

// TopUpResult is the outcome of a settled top-up.
type TopUpResult struct {
	WalletID    string
	Kind        ledger.Kind
	PaymentHash string
	BalanceSat  int64
	CompletedAt time.Time
}

// TopUp pays AmountSat from the treasury into the user's wallet of the
// requested kind, creating the wallet on first use.
func (s *Service) TopUp(ctx context.Context, input TopUpInput) (TopUpResult, error) {
	if input.Kind != ledger.KindAllowance && input.Kind != ledger.KindSending {
		return TopUpResult{}, ErrUnsupportedKind
	}
	if input.AmountSat <= 0 {
		return TopUpResult{}, fmt.Errorf("%w: amount must be positive", payments.ErrInvalidTransfer)
	}
	if input.Memo == "" {
		input.Memo = defaultMemo
	}

	source, err := s.treasury.Wallet(ctx)
	if err != nil {
		return TopUpResult{}, err
	}
	target, err := s.wallets.Resolve(ctx, input.UserIdentity, input.UserName, input.Kind)
	if err != nil {
		return TopUpResult{}, err
	}

	receipt, err := s.transfers.SendZap(ctx, payments.TransferRequest{
		Sender:    source,
		Receiver:  target,
		Memo:      input.Memo,
		AmountSat: input.AmountSat,
		Tag:       ledger.TagTopUp,
	})
	if err != nil {
		return TopUpResult{}, err
	}

	result := TopUpResult{
		WalletID:    target.ID,
		Kind:        target.Kind,
		PaymentHash: receipt.PaymentHash,
		CompletedAt: receipt.CompletedAt,
	}
	// The transfer already settled; a failed balance read only leaves the
	// field empty.
	if balance, err := s.wallets.Balance(ctx, target); err == nil {
		result.BalanceSat = balance.Sats()
	} else if s.logger != nil {
		s.logger.Warn("top-up balance read failed", slog.String("wallet_id", target.ID), slog.Any("error", err))
	}
	return result, nil
}
