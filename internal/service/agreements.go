package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chioma/rentledger/internal/domain"
)

// AgreementStore is the persistence surface the agreement service requires.
type AgreementStore interface {
	Insert(ctx context.Context, a *domain.Agreement) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Agreement, error)
	Mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Agreement) error) (*domain.Agreement, error)
	List(ctx context.Context, q domain.AgreementQuery) ([]domain.Agreement, int64, error)
	NextSequence(ctx context.Context, year int) (int64, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// PaymentLister fetches the payment history for an agreement.
type PaymentLister interface {
	ListByAgreement(ctx context.Context, agreementID uuid.UUID) ([]domain.Payment, error)
}

// AgreementDetail is an agreement together with its ordered payment history.
type AgreementDetail struct {
	domain.Agreement
	Payments []domain.Payment `json:"payments"`
}

// AgreementService owns agreement creation, updates, lifecycle transitions,
// and listing.
type AgreementService struct {
	store    AgreementStore
	payments PaymentLister
	prefix   string
	log      zerolog.Logger
	now      func() time.Time
}

func NewAgreementService(store AgreementStore, payments PaymentLister, numberPrefix string, log zerolog.Logger) *AgreementService {
	return &AgreementService{
		store:    store,
		payments: payments,
		prefix:   numberPrefix,
		log:      log,
		now:      time.Now,
	}
}

// Create validates the terms, allocates the next number in this year's
// sequence, and persists a draft agreement. Validation runs before the
// sequence allocation so invalid requests never burn a number.
func (s *AgreementService) Create(ctx context.Context, p domain.NewAgreementParams) (*domain.Agreement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	seq, err := s.store.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, err
	}
	number := domain.FormatAgreementNumber(s.prefix, now.Year(), seq)

	a, err := domain.NewAgreement(p, number, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("agreement_id", a.ID.String()).
		Str("agreement_number", a.AgreementNumber).
		Msg("agreement created")
	return a, nil
}

// Update applies a typed patch to an existing agreement under a row lock.
func (s *AgreementService) Update(ctx context.Context, id uuid.UUID, patch domain.AgreementPatch) (*domain.Agreement, error) {
	now := s.now().UTC()
	return s.store.Mutate(ctx, id, func(a *domain.Agreement) error {
		return a.ApplyPatch(patch, now)
	})
}

// Terminate moves the agreement to its terminal state. Terminating an
// already-terminated agreement is a conflict.
func (s *AgreementService) Terminate(ctx context.Context, id uuid.UUID, reason, notes string) (*domain.Agreement, error) {
	now := s.now().UTC()
	a, err := s.store.Mutate(ctx, id, func(a *domain.Agreement) error {
		return a.Terminate(reason, notes, now)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("agreement_id", a.ID.String()).
		Str("reason", reason).
		Msg("agreement terminated")
	return a, nil
}

// Dispute flags a non-terminated agreement as disputed. Resolution is a
// manual process outside this service.
func (s *AgreementService) Dispute(ctx context.Context, id uuid.UUID) (*domain.Agreement, error) {
	now := s.now().UTC()
	a, err := s.store.Mutate(ctx, id, func(a *domain.Agreement) error {
		return a.MarkDisputed(now)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("agreement_id", a.ID.String()).Msg("agreement disputed")
	return a, nil
}

// Get returns the agreement and its payment history, most recent first.
func (s *AgreementService) Get(ctx context.Context, id uuid.UUID) (*AgreementDetail, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AgreementDetail{Agreement: *a, Payments: payments}, nil
}

// List returns one page of agreements matching the query.
func (s *AgreementService) List(ctx context.Context, q domain.AgreementQuery) (*domain.AgreementPage, error) {
	q.Normalize()
	agreements, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.AgreementPage{
		Agreements: agreements,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
	}, nil
}

// ExpireOverdue sweeps active agreements whose end date has passed into
// expired. Invoked by the scheduler.
func (s *AgreementService) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.store.ExpireOverdue(ctx, s.now().UTC())
}
