package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chioma/rentledger/internal/domain"
)

const agreementColumns = `id, agreement_number, property_id, landlord_id, tenant_id, agent_id,
	monthly_rent, security_deposit, currency, commission_rate, payment_frequency,
	start_date, end_date, terms, status, total_paid, escrow_balance, total_payments,
	last_payment_date, termination_date, termination_reason, termination_notes,
	created_at, updated_at`

// AgreementStore persists rent agreements. All read-modify-write cycles go
// through Mutate, which holds a row lock for the duration of the change.
type AgreementStore struct {
	db *pgxpool.Pool
}

func NewAgreementStore(db *pgxpool.Pool) *AgreementStore {
	return &AgreementStore{db: db}
}

func scanAgreement(row pgx.Row) (*domain.Agreement, error) {
	var a domain.Agreement
	err := row.Scan(
		&a.ID, &a.AgreementNumber, &a.PropertyID, &a.LandlordID, &a.TenantID, &a.AgentID,
		&a.MonthlyRent, &a.SecurityDeposit, &a.Currency, &a.CommissionRate, &a.PaymentFrequency,
		&a.StartDate, &a.EndDate, &a.Terms, &a.Status, &a.TotalPaid, &a.EscrowBalance, &a.TotalPayments,
		&a.LastPaymentDate, &a.TerminationDate, &a.TerminationReason, &a.TerminationNotes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAgreementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert stores a freshly created agreement.
func (s *AgreementStore) Insert(ctx context.Context, a *domain.Agreement) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rent_agreements (`+agreementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		a.ID, a.AgreementNumber, a.PropertyID, a.LandlordID, a.TenantID, a.AgentID,
		a.MonthlyRent, a.SecurityDeposit, a.Currency, a.CommissionRate, a.PaymentFrequency,
		a.StartDate, a.EndDate, a.Terms, a.Status, a.TotalPaid, a.EscrowBalance, a.TotalPayments,
		a.LastPaymentDate, a.TerminationDate, a.TerminationReason, a.TerminationNotes,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("agreement insert failed: %w", err)
	}
	return nil
}

// Get retrieves one agreement by id.
func (s *AgreementStore) Get(ctx context.Context, id uuid.UUID) (*domain.Agreement, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+agreementColumns+` FROM rent_agreements WHERE id = $1`, id)
	return scanAgreement(row)
}

// Mutate loads the agreement under a row lock, applies fn, and saves the
// result in the same transaction. Concurrent mutations of one agreement
// serialize on the lock, so ledger updates never lose increments.
func (s *AgreementStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Agreement) error) (*domain.Agreement, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+agreementColumns+` FROM rent_agreements WHERE id = $1 FOR UPDATE`, id)
	a, err := scanAgreement(row)
	if err != nil {
		return nil, err
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	if err := saveAgreement(ctx, tx, a); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return a, nil
}

func saveAgreement(ctx context.Context, tx pgx.Tx, a *domain.Agreement) error {
	_, err := tx.Exec(ctx, `
		UPDATE rent_agreements SET
			monthly_rent = $2, security_deposit = $3, currency = $4, commission_rate = $5,
			payment_frequency = $6, start_date = $7, end_date = $8, terms = $9, status = $10,
			total_paid = $11, escrow_balance = $12, total_payments = $13, last_payment_date = $14,
			termination_date = $15, termination_reason = $16, termination_notes = $17,
			updated_at = $18
		WHERE id = $1`,
		a.ID,
		a.MonthlyRent, a.SecurityDeposit, a.Currency, a.CommissionRate,
		a.PaymentFrequency, a.StartDate, a.EndDate, a.Terms, a.Status,
		a.TotalPaid, a.EscrowBalance, a.TotalPayments, a.LastPaymentDate,
		a.TerminationDate, a.TerminationReason, a.TerminationNotes,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("agreement update failed: %w", err)
	}
	return nil
}

// NextSequence atomically advances and returns the per-year agreement number
// sequence. A single upsert statement, so concurrent creates never read the
// same value.
func (s *AgreementStore) NextSequence(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO agreement_counters (year, value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET value = agreement_counters.value + 1
		RETURNING value`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("sequence allocation failed: %w", err)
	}
	return seq, nil
}

// List returns one page of agreements matching the query plus the total match
// count. The query must already be normalized.
func (s *AgreementStore) List(ctx context.Context, q domain.AgreementQuery) ([]domain.Agreement, int64, error) {
	where, args := buildAgreementFilter(q)

	var total int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM rent_agreements`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("list count failed: %w", err)
	}

	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	// SortBy is whitelisted by AgreementQuery.Normalize, never caller input.
	query := fmt.Sprintf(`SELECT `+agreementColumns+` FROM rent_agreements%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, q.SortBy, dir, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	var out []domain.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func buildAgreementFilter(q domain.AgreementQuery) (string, []any) {
	var clauses []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if q.Status != nil {
		add("status", *q.Status)
	}
	if q.LandlordID != nil {
		add("landlord_id", *q.LandlordID)
	}
	if q.TenantID != nil {
		add("tenant_id", *q.TenantID)
	}
	if q.AgentID != nil {
		add("agent_id", *q.AgentID)
	}
	if q.PropertyID != nil {
		add("property_id", *q.PropertyID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ExpireOverdue moves active agreements whose end date has passed to expired.
// Returns the number of agreements swept.
func (s *AgreementStore) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rent_agreements
		SET status = $1, updated_at = $2
		WHERE status = $3 AND end_date < $2`,
		domain.StatusExpired, now, domain.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("expiry sweep failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
