package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teamzaps/zaps/internal/feed"
	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/payments"
	"github.com/teamzaps/zaps/internal/wallet"
)

const (
	cmdSendZap     = "send zap"
	cmdShowBalance = "show my balance"
	cmdLeaderboard = "show leaderboard"

	leaderboardSize = 5

	replyUnrecognized = "D'oh! I'm sorry, but I didn't recognize that command. But don't worry, I'm always getting better!"
)

// Bot turns chat activities into zap operations and plain-text replies.
type Bot struct {
	payments *payments.Service
	wallets  *wallet.Service
	ids      *identity.Service
	feed     *feed.Service
	logger   *slog.Logger
}

// New constructs a Bot.
func New(payments *payments.Service, wallets *wallet.Service, ids *identity.Service, feed *feed.Service, logger *slog.Logger) *Bot {
	return &Bot{payments: payments, wallets: wallets, ids: ids, feed: feed, logger: logger}
}

// Handle processes one activity and returns the reply text. An empty
// reply means nothing should be sent back.
func (b *Bot) Handle(ctx context.Context, act Activity) string {
	if act.From.ID != "" && act.From.ID == act.Recipient.ID {
		return ""
	}

	if act.Value != nil && act.Value.Action == ActionSubmitZaps {
		return b.submitZap(ctx, act)
	}

	text := strings.ToLower(strings.TrimSpace(act.Text))
	if text == "" {
		return ""
	}
	switch text {
	case cmdSendZap:
		return b.listReceivers(ctx)
	case cmdShowBalance:
		return b.showBalance(ctx, act.From)
	case cmdLeaderboard:
		return b.showLeaderboard(ctx)
	default:
		return replyUnrecognized
	}
}

func (b *Bot) submitZap(ctx context.Context, act Activity) string {
	v := act.Value
	amount, err := v.ZapAmount.Sats()
	if err != nil {
		b.logger.Warn("zap submission rejected",
			slog.String("from", act.From.Identity()),
			slog.String("zap_amount", string(v.ZapAmount)),
			slog.Any("error", err),
		)
		return fmt.Sprintf("Oops! Unable to send zap (%s)", err)
	}
	_, err = b.payments.Send(ctx, payments.SendInput{
		SenderIdentity:   act.From.Identity(),
		SenderName:       act.From.Name,
		ReceiverWalletID: v.ZapReceiverWalletID,
		Memo:             v.ZapMessage,
		AmountSat:        amount,
	})
	if err != nil {
		b.logger.Warn("zap submission failed",
			slog.String("from", act.From.Identity()),
			slog.String("receiver_wallet_id", v.ZapReceiverWalletID),
			slog.Any("error", err),
		)
		return fmt.Sprintf("Oops! Unable to send zap (%s)", reason(err))
	}
	return fmt.Sprintf("Awesome! You sent %d Sats to your colleague with a zap!", amount)
}

func reason(err error) string {
	var te *payments.TransferError
	if errors.As(err, &te) {
		return te.Reason()
	}
	return err.Error()
}

func (b *Bot) listReceivers(ctx context.Context) string {
	receivers, err := b.wallets.ListByKind(ctx, ledger.KindReceiving)
	if err != nil {
		b.logger.Warn("list receivers failed", slog.Any("error", err))
		return "Oops! I couldn't load your colleagues right now."
	}
	if len(receivers) == 0 {
		return "Nobody can receive zaps yet."
	}
	users, err := b.ids.All(ctx)
	if err != nil {
		b.logger.Warn("list users failed", slog.Any("error", err))
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	var sb strings.Builder
	sb.WriteString("Who would you like to zap?")
	for _, w := range receivers {
		name := names[w.OwnerID]
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&sb, "\n- %s (%s)", name, w.ID)
	}
	return sb.String()
}

func (b *Bot) showBalance(ctx context.Context, from Account) string {
	var parts []string
	for _, kind := range []ledger.Kind{ledger.KindSending, ledger.KindReceiving} {
		w, err := b.wallets.Resolve(ctx, from.Identity(), from.Name, kind)
		if err != nil {
			b.logger.Warn("resolve wallet failed", slog.String("kind", string(kind)), slog.Any("error", err))
			return "Oops! Unable to load your balance."
		}
		bal, err := b.wallets.Balance(ctx, w)
		if err != nil {
			b.logger.Warn("wallet balance failed", slog.String("wallet_id", w.ID), slog.Any("error", err))
			return "Oops! Unable to load your balance."
		}
		parts = append(parts, fmt.Sprintf("%s: %d Sats", kind, bal.Sats()))
	}
	return "Your balance. " + strings.Join(parts, ", ")
}

func (b *Bot) showLeaderboard(ctx context.Context) string {
	rows, err := b.feed.Leaderboard(ctx, time.Time{}, leaderboardSize)
	if err != nil {
		b.logger.Warn("leaderboard failed", slog.Any("error", err))
		return "Oops! Unable to load the leaderboard."
	}
	if len(rows) == 0 {
		return "No zaps this week yet. Be the first!"
	}
	var sb strings.Builder
	sb.WriteString("Top zap receivers this week:")
	for i, r := range rows {
		fmt.Fprintf(&sb, "\n%d. %s: %d Sats", i+1, r.Receiver.DisplayName(), r.TotalSat)
	}
	return sb.String()
}
