package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chioma/rentledger/internal/domain"
)

const paymentColumns = `id, agreement_id, amount, currency, payment_date, method,
	reference, notes, status, created_at`

// PaymentStore persists payments and their ledger side effects on the owning
// agreement.
type PaymentStore struct {
	db *pgxpool.Pool
}

func NewPaymentStore(db *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{db: db}
}

// Record locks the agreement row, lets record build the payment and fold it
// into the agreement's ledger, then writes both in one transaction. The lock
// serializes concurrent payments for the same agreement.
func (s *PaymentStore) Record(ctx context.Context, agreementID uuid.UUID, record func(*domain.Agreement) (*domain.Payment, error)) (*domain.Payment, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+agreementColumns+` FROM rent_agreements WHERE id = $1 FOR UPDATE`, agreementID)
	a, err := scanAgreement(row)
	if err != nil {
		return nil, err
	}

	p, err := record(a)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.AgreementID, p.Amount, p.Currency, p.PaymentDate, p.Method,
		p.Reference, p.Notes, p.Status, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("payment insert failed: %w", err)
	}

	if err := saveAgreement(ctx, tx, a); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return p, nil
}

// ListByAgreement returns all payments for an agreement, most recent payment
// date first.
func (s *PaymentStore) ListByAgreement(ctx context.Context, agreementID uuid.UUID) ([]domain.Payment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE agreement_id = $1
		ORDER BY payment_date DESC, created_at DESC`, agreementID)
	if err != nil {
		return nil, fmt.Errorf("payment query failed: %w", err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.ID, &p.AgreementID, &p.Amount, &p.Currency, &p.PaymentDate, &p.Method,
			&p.Reference, &p.Notes, &p.Status, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanPaymentRow is used by callers that fetch a single payment.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.AgreementID, &p.Amount, &p.Currency, &p.PaymentDate, &p.Method,
		&p.Reference, &p.Notes, &p.Status, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payment %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves one payment by id.
func (s *PaymentStore) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}
