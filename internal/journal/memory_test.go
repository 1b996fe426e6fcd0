package journal

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	settled, err := repo.Begin(ctx, Record{SenderWalletID: "w1", ReceiverWalletID: "w2", AmountSat: 100})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if settled.ID == "" || settled.Status != StatusPending {
		t.Fatalf("unexpected record %+v", settled)
	}
	if err := repo.Mark(ctx, settled.ID, Update{Status: StatusSettled, PaymentHash: "h1"}); err != nil {
		t.Fatalf("mark settled: %v", err)
	}

	unpaid, _ := repo.Begin(ctx, Record{SenderWalletID: "w1", ReceiverWalletID: "w3", AmountSat: 50})
	if err := repo.Mark(ctx, unpaid.ID, Update{Status: StatusPaymentFailed, PaymentHash: "h2", PaymentRequest: "lnbc", Error: "insufficient funds"}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	failedInvoice, _ := repo.Begin(ctx, Record{SenderWalletID: "w1", ReceiverWalletID: "w4", AmountSat: 10})
	_ = repo.Mark(ctx, failedInvoice.ID, Update{Status: StatusInvoiceFailed, Error: "boom"})

	outstanding, err := repo.Outstanding(ctx, 10)
	if err != nil {
		t.Fatalf("outstanding: %v", err)
	}
	if len(outstanding) != 1 || outstanding[0].ID != unpaid.ID {
		t.Fatalf("expected only the unpaid invoice, got %+v", outstanding)
	}
	if outstanding[0].PaymentRequest != "lnbc" || outstanding[0].Error != "insufficient funds" {
		t.Fatalf("unexpected outstanding record %+v", outstanding[0])
	}
}

func TestMemoryRepositoryMarkUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	if err := repo.Mark(context.Background(), "missing", Update{Status: StatusSettled}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
