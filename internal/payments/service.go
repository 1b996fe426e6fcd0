package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamzaps/zaps/internal/journal"
	"github.com/teamzaps/zaps/internal/ledger"
	"github.com/teamzaps/zaps/internal/notification"
	"github.com/teamzaps/zaps/internal/wallet"
)

// Service executes zaps as invoice-then-pay against the ledger.
type Service struct {
	ledger        ledger.Ledger
	walletService *wallet.Service
	notifier      notification.Notifier
	journal       journal.Repository
	logger        *slog.Logger
}

// NewService constructs a payment service. notifier and journal are optional.
func NewService(ledger ledger.Ledger, walletService *wallet.Service, notifier notification.Notifier, journal journal.Repository, logger *slog.Logger) *Service {
	return &Service{
		ledger:        ledger,
		walletService: walletService,
		notifier:      notifier,
		journal:       journal,
		logger:        logger,
	}
}

// TransferRequest is one zap between two resolved wallets.
type TransferRequest struct {
	Sender    ledger.Wallet
	Receiver  ledger.Wallet
	Memo      string
	AmountSat int64
	// Tag overrides the metadata tag. Empty means ledger.TagZap.
	Tag string
}

func (r TransferRequest) metadata() ledger.Metadata {
	meta := ledger.ZapMetadata(r.Sender, r.Receiver)
	if r.Tag != "" {
		meta.Tag = r.Tag
	}
	return meta
}

// Receipt describes a settled zap.
type Receipt struct {
	PaymentHash    string
	PaymentRequest string
	CheckingID     string
	AmountSat      int64
	CompletedAt    time.Time
}

func validate(req TransferRequest) error {
	switch {
	case req.AmountSat <= 0:
		return errors.New("amount must be positive")
	case req.Sender.ID == "" || req.Receiver.ID == "":
		return errors.New("sender and receiver wallets must be resolved")
	case req.Sender.ID == req.Receiver.ID:
		return errors.New("sender and receiver must differ")
	case req.Sender.AdminKey == "":
		return errors.New("sender admin key is required")
	case req.Receiver.InKey == "":
		return errors.New("receiver in-key is required")
	}
	return nil
}

// SendZap mints an invoice on the receiver and pays it from the sender.
// It never retries and never voids: an invoice failure means no funds moved,
// a payment failure leaves the invoice outstanding. Identical requests are
// independent transfers.
func (s *Service) SendZap(ctx context.Context, req TransferRequest) (Receipt, error) {
	fail := func(op string, sentinel error, hash string, cause error) *TransferError {
		return &TransferError{
			Op:               op,
			SenderWalletID:   req.Sender.ID,
			ReceiverWalletID: req.Receiver.ID,
			PaymentHash:      hash,
			Err:              sentinel,
			Cause:            cause,
		}
	}

	if err := validate(req); err != nil {
		return Receipt{}, fail("validate", ErrInvalidTransfer, "", err)
	}

	attemptID := s.begin(ctx, req)

	invoice, err := s.ledger.CreateInvoice(ctx, req.Receiver.InKey, ledger.InvoiceRequest{
		AmountSat: req.AmountSat,
		Memo:      req.Memo,
		Metadata:  req.metadata(),
	})
	if err != nil {
		s.mark(ctx, attemptID, journal.Update{Status: journal.StatusInvoiceFailed, Error: err.Error()})
		s.logFailure("create invoice", req, err)
		return Receipt{}, fail("create invoice", ErrInvoiceCreation, "", err)
	}

	// Once issued the payment cannot be taken back, so it must not be
	// abandoned halfway by a cancelled caller.
	payCtx := context.WithoutCancel(ctx)
	payment, err := s.ledger.PayInvoice(payCtx, req.Sender.AdminKey, invoice.PaymentRequest)
	if err != nil {
		s.mark(payCtx, attemptID, journal.Update{
			Status:         journal.StatusPaymentFailed,
			PaymentHash:    invoice.PaymentHash,
			PaymentRequest: invoice.PaymentRequest,
			Error:          err.Error(),
		})
		s.logFailure("pay invoice", req, err)
		return Receipt{}, fail("pay invoice", ErrPaymentFailed, invoice.PaymentHash, err)
	}

	s.mark(payCtx, attemptID, journal.Update{
		Status:         journal.StatusSettled,
		PaymentHash:    invoice.PaymentHash,
		PaymentRequest: invoice.PaymentRequest,
	})

	receipt := Receipt{
		PaymentHash:    invoice.PaymentHash,
		PaymentRequest: invoice.PaymentRequest,
		CheckingID:     payment.CheckingID,
		AmountSat:      req.AmountSat,
		CompletedAt:    time.Now().UTC(),
	}

	if s.logger != nil {
		s.logger.Info("zap settled",
			slog.String("sender_wallet_id", req.Sender.ID),
			slog.String("receiver_wallet_id", req.Receiver.ID),
			slog.Int64("amount_sat", req.AmountSat),
			slog.String("tag", req.metadata().Tag),
			slog.String("payment_hash", invoice.PaymentHash),
		)
	}

	if s.notifier != nil {
		if err := s.notifier.Send(payCtx, receivedMessage(req)); err != nil && s.logger != nil {
			s.logger.Warn("zap notification failed", slog.Any("error", err))
		}
	}

	return receipt, nil
}

func receivedMessage(req TransferRequest) notification.Message {
	msg := notification.Message{
		Kind:        notification.KindZapReceived,
		Destination: req.Receiver.OwnerID,
		Body:        fmt.Sprintf("You received %d Sats with a zap", req.AmountSat),
		AmountSat:   req.AmountSat,
	}
	if req.Tag == ledger.TagTopUp {
		msg.Kind = notification.KindTopUpReceived
		msg.Body = fmt.Sprintf("Your %s wallet was topped up with %d Sats", req.Receiver.Kind, req.AmountSat)
	}
	return msg
}

// SendInput is a zap addressed by chat identity and receiver wallet id.
type SendInput struct {
	SenderIdentity   string
	SenderName       string
	ReceiverWalletID string
	Memo             string
	AmountSat        int64
}

// Send resolves the sender's Sending wallet and the receiver wallet, then
// executes the zap. The receiver lookup must match exactly one wallet.
func (s *Service) Send(ctx context.Context, input SendInput) (Receipt, error) {
	sender, err := s.walletService.Resolve(ctx, input.SenderIdentity, input.SenderName, ledger.KindSending)
	if err != nil {
		return Receipt{}, err
	}

	receivers, err := s.walletService.FindByDisplayID(ctx, input.ReceiverWalletID)
	if err != nil {
		return Receipt{}, err
	}
	if len(receivers) != 1 {
		return Receipt{}, &ReceiverCountError{WalletID: input.ReceiverWalletID, Count: len(receivers)}
	}

	return s.SendZap(ctx, TransferRequest{
		Sender:    sender,
		Receiver:  receivers[0],
		Memo:      input.Memo,
		AmountSat: input.AmountSat,
	})
}

func (s *Service) begin(ctx context.Context, req TransferRequest) string {
	if s.journal == nil {
		return ""
	}
	rec, err := s.journal.Begin(ctx, journal.Record{
		SenderUserID:     req.Sender.OwnerID,
		SenderWalletID:   req.Sender.ID,
		ReceiverUserID:   req.Receiver.OwnerID,
		ReceiverWalletID: req.Receiver.ID,
		AmountSat:        req.AmountSat,
		Memo:             req.Memo,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("journal begin failed", slog.Any("error", err))
		}
		return ""
	}
	return rec.ID
}

func (s *Service) mark(ctx context.Context, id string, update journal.Update) {
	if s.journal == nil || id == "" {
		return
	}
	if err := s.journal.Mark(ctx, id, update); err != nil && s.logger != nil {
		s.logger.Warn("journal update failed",
			slog.String("attempt_id", id),
			slog.String("status", string(update.Status)),
			slog.Any("error", err),
		)
	}
}

func (s *Service) logFailure(op string, req TransferRequest, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error("zap failed",
		slog.String("op", op),
		slog.String("sender_wallet_id", req.Sender.ID),
		slog.String("receiver_wallet_id", req.Receiver.ID),
		slog.Int64("amount_sat", req.AmountSat),
		slog.Any("error", err),
	)
}
