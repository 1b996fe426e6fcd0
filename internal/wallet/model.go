package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/teamzaps/zaps/internal/ledger"
)

// ErrAmbiguousWallet indicates the ledger holds more than one wallet of a
// kind for the same user. Callers must not pick one.
var ErrAmbiguousWallet = errors.New("more than one wallet of kind for user")

// ResolutionError reports a wallet integrity violation for one (user, kind).
type ResolutionError struct {
	UserID string
	Kind   ledger.Kind
	Count  int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve wallet: user %s holds %d %s wallets", e.UserID, e.Count, e.Kind)
}

func (e *ResolutionError) Unwrap() error { return ErrAmbiguousWallet }

// Balance encapsulates available funds for a wallet.
type Balance struct {
	WalletID   string
	Kind       ledger.Kind
	AmountMsat int64
	AsOf       time.Time
}

// Sats returns the balance in display units.
func (b Balance) Sats() int64 {
	return ledger.MsatToSat(b.AmountMsat)
}
