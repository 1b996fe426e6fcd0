package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teamzaps/zaps/internal/history"
	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/wallet"
)

const (
	// FeedWindow is how far back the team feed looks by default.
	FeedWindow = 7 * 24 * time.Hour
	// LogWindow is how far back a personal transaction log looks.
	LogWindow = 30 * 24 * time.Hour
	// AllowanceWindow is the period allowance spending is summed over.
	AllowanceWindow = 7 * 24 * time.Hour

	fetchConcurrency = 4
)

// ErrUnsupportedKind is returned for logs of wallets other than Private or Allowance.
var ErrUnsupportedKind = errors.New("transaction log is only kept for Private and Allowance wallets")

// Service assembles enriched views over wallet history.
type Service struct {
	wallets *wallet.Service
	reader  *history.Reader
	ids     *identity.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the feed assemblers.
func NewService(wallets *wallet.Service, reader *history.Reader, ids *identity.Service, logger *slog.Logger) *Service {
	return &Service{wallets: wallets, reader: reader, ids: ids, logger: logger, now: time.Now}
}

// Feed returns zaps received by anyone since the given time, newest first.
// A zero since means the default window.
func (s *Service) Feed(ctx context.Context, since time.Time) ([]history.Transaction, error) {
	if since.IsZero() {
		since = s.now().Add(-FeedWindow)
	}

	receivers, err := s.wallets.ListByKind(ctx, ledger.KindReceiving)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", history.ErrRead, err)
	}

	var (
		mu      sync.Mutex
		entries []ledger.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, w := range receivers {
		g.Go(func() error {
			got, err := s.reader.EntriesSince(gctx, w.InKey, since.Unix(), ledger.PaymentFilter{Tag: ledger.TagZap})
			if err != nil {
				return fmt.Errorf("wallet %s: %w", w.ID, err)
			}
			mu.Lock()
			entries = append(entries, got...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users, err := s.ids.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", history.ErrRead, err)
	}

	txs := history.Enrich(entries, users)
	history.SortByTimeDesc(txs)
	return txs, nil
}

// Log returns the user's Private or Allowance wallet history for the last
// thirty days, narrowed to view. A user without that wallet gets one created
// and so an empty history.
func (s *Service) Log(ctx context.Context, userIdentity, userName string, kind ledger.Kind, view history.View) ([]history.Transaction, error) {
	if kind != ledger.KindPrivate && kind != ledger.KindAllowance {
		return nil, ErrUnsupportedKind
	}

	w, err := s.wallets.Resolve(ctx, userIdentity, userName, kind)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-LogWindow).Unix()
	entries, err := s.reader.EntriesSince(ctx, w.InKey, since, ledger.PaymentFilter{})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []history.Transaction{}, nil
	}

	users, err := s.ids.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", history.ErrRead, err)
	}

	txs := history.Enrich(entries, users)
	history.SortByTimeDesc(txs)
	return history.FilterByView(txs, view), nil
}

// AllowanceSummary is the state of a user's sending allowance.
type AllowanceSummary struct {
	WalletID     string
	AvailableSat int64
	SpentSat     int64
	// SpentPercent is spent relative to what is still available, capped at 100.
	SpentPercent float64
	Since        time.Time
}

// Allowance reports what the user can still send and what they spent
// over the allowance window.
func (s *Service) Allowance(ctx context.Context, userIdentity, userName string) (AllowanceSummary, error) {
	w, err := s.wallets.Resolve(ctx, userIdentity, userName, ledger.KindAllowance)
	if err != nil {
		return AllowanceSummary{}, err
	}
	balance, err := s.wallets.Balance(ctx, w)
	if err != nil {
		return AllowanceSummary{}, fmt.Errorf("%w: %w", history.ErrRead, err)
	}

	since := s.now().Add(-AllowanceWindow)
	entries, err := s.reader.EntriesSince(ctx, w.InKey, since.Unix(), ledger.PaymentFilter{})
	if err != nil {
		return AllowanceSummary{}, err
	}

	var spentMsat int64
	for _, e := range entries {
		if e.Outgoing() {
			spentMsat -= e.AmountMsat
		}
	}

	summary := AllowanceSummary{
		WalletID:     w.ID,
		AvailableSat: balance.Sats(),
		SpentSat:     ledger.MsatToSat(spentMsat),
		Since:        since.UTC(),
	}
	switch {
	case summary.AvailableSat > 0:
		summary.SpentPercent = min(100, float64(summary.SpentSat)/float64(summary.AvailableSat)*100)
	case summary.SpentSat > 0:
		summary.SpentPercent = 100
	}
	return summary, nil
}

// LeaderboardEntry is one receiver's zap total.
type LeaderboardEntry struct {
	Receiver history.Counterpart
	TotalSat int64
	Zaps     int
}

// Leaderboard ranks receivers by sats zapped to them since the given time.
func (s *Service) Leaderboard(ctx context.Context, since time.Time, limit int) ([]LeaderboardEntry, error) {
	txs, err := s.Feed(ctx, since)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*LeaderboardEntry)
	var order []string
	for _, tx := range txs {
		if tx.Direction() != history.DirectionIn {
			continue
		}
		key := tx.To.Ref().UserID
		if key == "" {
			key = tx.WalletID
		}
		row, ok := byUser[key]
		if !ok {
			row = &LeaderboardEntry{Receiver: tx.To}
			byUser[key] = row
			order = append(order, key)
		}
		row.TotalSat += tx.AmountSat()
		row.Zaps++
	}

	out := make([]LeaderboardEntry, 0, len(order))
	for _, k := range order {
		out = append(out, *byUser[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSat > out[j].TotalSat })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if s.logger != nil {
		s.logger.Debug("leaderboard assembled", slog.Int("receivers", len(out)))
	}
	return out, nil
}
