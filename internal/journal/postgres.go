package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists zap attempts in the zap_attempts table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed journal.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Begin(ctx context.Context, rec Record) (Record, error) {
	const query = `
		INSERT INTO zap_attempts (id, sender_user_id, sender_wallet_id, receiver_user_id, receiver_wallet_id, amount_sat, memo, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	rec.ID = uuid.NewString()
	rec.Status = StatusPending
	err := r.db.QueryRow(ctx, query,
		rec.ID, rec.SenderUserID, rec.SenderWalletID, rec.ReceiverUserID, rec.ReceiverWalletID,
		rec.AmountSat, rec.Memo, rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert zap attempt: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Mark(ctx context.Context, id string, update Update) error {
	const query = `
		UPDATE zap_attempts
		SET status = $2,
			payment_hash = COALESCE(NULLIF($3, ''), payment_hash),
			payment_request = COALESCE(NULLIF($4, ''), payment_request),
			error = $5,
			updated_at = now()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, update.Status, update.PaymentHash, update.PaymentRequest, update.Error)
	if err != nil {
		return fmt.Errorf("update zap attempt %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Outstanding(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
		SELECT id, sender_user_id, sender_wallet_id, receiver_user_id, receiver_wallet_id,
			   amount_sat, memo, status, payment_hash, payment_request, error, created_at, updated_at
		FROM zap_attempts
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, StatusPaymentFailed, limit)
	if err != nil {
		return nil, fmt.Errorf("query outstanding zaps: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(
			&rec.ID, &rec.SenderUserID, &rec.SenderWalletID, &rec.ReceiverUserID, &rec.ReceiverWalletID,
			&rec.AmountSat, &rec.Memo, &rec.Status, &rec.PaymentHash, &rec.PaymentRequest, &rec.Error,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan outstanding zaps: %w", err)
	}
	return out, nil
}
