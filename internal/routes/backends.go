package routes

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/teamzaps/zaps/internal/config"
	"github.com/teamzaps/zaps/internal/funding"
	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/journal"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/lnbits"
	"github.com/teamzaps/zaps/internal/notification"
	"github.com/teamzaps/zaps/internal/wallet"
)

// backends groups the storage and transport implementations chosen for the
// current environment.
type backends struct {
	ledger    ledger.Ledger
	directory identity.Directory
	journal   journal.Repository
	notifier  notification.Notifier
	// inMemory is set when ledger and directory live in process memory.
	inMemory  bool
}

func newBackends(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (backends, error) {
	var b backends

	switch {
	case cfg.LNbitsURL != "":
		client := lnbits.NewClient(cfg.LNbitsURL, cfg.LNbitsAdminKey, cfg.LNbitsAdminUserID, cfg.LNbitsTimeout)
		b.ledger, b.directory = client, client
	case cfg.IsDevelopment():
		logger.Warn("LNBITS_URL not set, using in-memory ledger and directory")
		b.ledger, b.directory = ledger.NewInMemory(), identity.NewMemoryDirectory()
		b.inMemory = true
	default:
		return backends{}, fmt.Errorf("LNBITS_URL is required when APP_ENV=%s", cfg.AppEnv)
	}

	if cache != nil {
		b.directory = identity.NewCachedDirectory(b.directory, cache, cfg.DirectoryCacheTTL, logger)
	}

	if db != nil {
		b.journal = journal.NewPostgresRepository(db)
	} else {
		b.journal = journal.NewMemoryRepository()
	}

	notifiers := notification.Fanout{notification.NewLoggerNotifier(logger)}
	if cache != nil {
		notifiers = append(notifiers, notification.NewRedisNotifier(cache, notification.DefaultChannel))
	}
	b.notifier = notifiers

	return b, nil
}

// treasury picks the top-up source. It returns nil when top-ups are not
// configured.
func (b backends) treasury(cfg config.Config, wallets *wallet.Service) funding.Treasury {
	switch {
	case cfg.TreasuryWalletID != "":
		return funding.NewWalletTreasury(wallets, cfg.TreasuryWalletID)
	case b.inMemory:
		return funding.NewSeededTreasury(b.ledger, cfg.DevTreasurySats)
	default:
		return nil
	}
}
