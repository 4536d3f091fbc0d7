package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chioma/rentledger/internal/domain"
)

// PaymentStore is the persistence surface the payment service requires.
// Record must execute its callback with the agreement row locked and persist
// the returned payment and the mutated agreement atomically.
type PaymentStore interface {
	Record(ctx context.Context, agreementID uuid.UUID, record func(*domain.Agreement) (*domain.Payment, error)) (*domain.Payment, error)
	ListByAgreement(ctx context.Context, agreementID uuid.UUID) ([]domain.Payment, error)
}

// AgreementGetter resolves an agreement id, used for existence checks.
type AgreementGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Agreement, error)
}

// RecordPaymentInput carries the caller-supplied payment attributes.
type RecordPaymentInput struct {
	Amount      int64
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
}

// PaymentService records payments and their ledger side effects. This is the
// only code path that mutates totalPaid, escrowBalance, and lastPaymentDate.
type PaymentService struct {
	store      PaymentStore
	agreements AgreementGetter
	log        zerolog.Logger
	now        func() time.Time
}

func NewPaymentService(store PaymentStore, agreements AgreementGetter, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		store:      store,
		agreements: agreements,
		log:        log,
		now:        time.Now,
	}
}

// Record creates a completed payment against the agreement and folds it into
// the ledger. Recording against a terminated agreement is a conflict and
// leaves the ledger untouched. The first payment on a draft or
// pending_deposit agreement activates it.
func (s *PaymentService) Record(ctx context.Context, agreementID uuid.UUID, in RecordPaymentInput) (*domain.Payment, error) {
	now := s.now().UTC()

	var commission int64
	p, err := s.store.Record(ctx, agreementID, func(a *domain.Agreement) (*domain.Payment, error) {
		p, err := domain.NewPayment(a.ID, a.Currency, in.Amount, in.PaymentDate, in.Method, in.Reference, in.Notes, now)
		if err != nil {
			return nil, err
		}
		if err := a.ApplyPayment(p.Amount, p.PaymentDate, now); err != nil {
			return nil, err
		}
		commission = p.CommissionDue(a)
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("agreement_id", agreementID.String()).
		Str("payment_id", p.ID.String()).
		Int64("amount", p.Amount).
		Int64("commission_due", commission).
		Msg("payment recorded")
	return p, nil
}

// ListForAgreement returns all payments for the agreement, most recent
// payment date first. Unknown agreements are a not-found error.
func (s *PaymentService) ListForAgreement(ctx context.Context, agreementID uuid.UUID) ([]domain.Payment, error) {
	if _, err := s.agreements.Get(ctx, agreementID); err != nil {
		return nil, err
	}
	return s.store.ListByAgreement(ctx, agreementID)
}
