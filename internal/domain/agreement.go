package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a rent agreement.
//
//	draft ──(first payment)──▶ active
//	pending_deposit ──(first payment)──▶ active
//	active ──(end date passes)──▶ expired
//	any non-terminated ──(terminate)──▶ terminated   [terminal]
type Status string

const (
	StatusDraft          Status = "draft"
	StatusPendingDeposit Status = "pending_deposit"
	StatusActive         Status = "active"
	StatusExpired        Status = "expired"
	StatusTerminated     Status = "terminated"
	StatusDisputed       Status = "disputed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingDeposit, StatusActive, StatusExpired, StatusTerminated, StatusDisputed:
		return true
	}
	return false
}

// Frequency is how often rent falls due.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Agreement is a lease contract between a landlord and a tenant, optionally
// brokered by an agent. It owns its payment history; the ledger fields
// (TotalPaid, EscrowBalance, LastPaymentDate, TotalPayments) are mutated
// exclusively through ApplyPayment.
type Agreement struct {
	ID              uuid.UUID `json:"id"`
	AgreementNumber string    `json:"agreement_number"`

	PropertyID uuid.UUID  `json:"property_id"`
	LandlordID uuid.UUID  `json:"landlord_id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`

	MonthlyRent      int64     `json:"monthly_rent"`
	SecurityDeposit  int64     `json:"security_deposit"`
	Currency         string    `json:"currency"`
	CommissionRate   int64     `json:"commission_rate"`
	PaymentFrequency Frequency `json:"payment_frequency"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Terms            string    `json:"terms,omitempty"`

	Status Status `json:"status"`

	TotalPaid       int64      `json:"total_paid"`
	EscrowBalance   int64      `json:"escrow_balance"`
	TotalPayments   int64      `json:"total_payments"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`

	TerminationDate   *time.Time `json:"termination_date,omitempty"`
	TerminationReason string     `json:"termination_reason,omitempty"`
	TerminationNotes  string     `json:"termination_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAgreementParams carries the caller-supplied terms for a new agreement.
type NewAgreementParams struct {
	PropertyID       uuid.UUID
	LandlordID       uuid.UUID
	TenantID         uuid.UUID
	AgentID          *uuid.UUID
	MonthlyRent      int64
	SecurityDeposit  int64
	Currency         string
	CommissionRate   int64
	PaymentFrequency Frequency
	StartDate        time.Time
	EndDate          time.Time
	Terms            string
}

// Validate checks the terms: end date strictly after start date, positive
// rent, non-negative deposit, commission rate within 0..100, known frequency.
func (p NewAgreementParams) Validate() error {
	if !p.EndDate.After(p.StartDate) {
		return ErrInvalidDateRange
	}
	if p.MonthlyRent <= 0 {
		return ErrNonPositiveRent
	}
	if p.SecurityDeposit < 0 {
		return ErrNegativeDeposit
	}
	if p.CommissionRate < 0 || p.CommissionRate > 100 {
		return ErrCommissionOutOfRange
	}
	if !p.PaymentFrequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

// NewAgreement validates the terms and builds a draft agreement with a zeroed
// ledger. The agreement number comes from the caller, which must have
// allocated it from the yearly sequence.
func NewAgreement(p NewAgreementParams, number string, now time.Time) (*Agreement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Agreement{
		ID:               uuid.New(),
		AgreementNumber:  number,
		PropertyID:       p.PropertyID,
		LandlordID:       p.LandlordID,
		TenantID:         p.TenantID,
		AgentID:          p.AgentID,
		MonthlyRent:      p.MonthlyRent,
		SecurityDeposit:  p.SecurityDeposit,
		Currency:         p.Currency,
		CommissionRate:   p.CommissionRate,
		PaymentFrequency: p.PaymentFrequency,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		Terms:            p.Terms,
		Status:           StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// FormatAgreementNumber renders the human-readable number, e.g.
// CHIOMA-2026-0001 for prefix "CHIOMA", year 2026, sequence 1.
func FormatAgreementNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// ApplyPayment folds a recorded payment into the ledger and activates the
// agreement on its first payment. It is the only mutator of the ledger
// fields. Terminated agreements accept no further payments.
func (a *Agreement) ApplyPayment(amount int64, paymentDate, now time.Time) error {
	if a.Status == StatusTerminated {
		return ErrAgreementTerminated
	}
	if amount <= 0 {
		return ErrNonPositiveAmount
	}

	a.TotalPaid += amount
	a.EscrowBalance += amount
	a.TotalPayments++
	d := paymentDate
	a.LastPaymentDate = &d

	if a.Status == StatusDraft || a.Status == StatusPendingDeposit {
		a.Status = StatusActive
	}
	a.UpdatedAt = now
	return nil
}

// Terminate moves the agreement to its terminal state. A second call is a
// conflict; termination metadata is written exactly once.
func (a *Agreement) Terminate(reason, notes string, now time.Time) error {
	if a.Status == StatusTerminated {
		return ErrAgreementTerminated
	}
	if reason == "" {
		return ErrMissingTerminationReason
	}
	a.Status = StatusTerminated
	t := now
	a.TerminationDate = &t
	a.TerminationReason = reason
	a.TerminationNotes = notes
	a.UpdatedAt = now
	return nil
}

// MarkDisputed flags the agreement as disputed. Payments remain allowed;
// only termination blocks the ledger.
func (a *Agreement) MarkDisputed(now time.Time) error {
	if a.Status == StatusTerminated {
		return ErrAgreementTerminated
	}
	a.Status = StatusDisputed
	a.UpdatedAt = now
	return nil
}

// MarkExpired moves an active agreement past its end date to expired. Used by
// the scheduled sweep; any other state is left untouched.
func (a *Agreement) MarkExpired(now time.Time) error {
	if a.Status == StatusTerminated {
		return ErrAgreementTerminated
	}
	a.Status = StatusExpired
	a.UpdatedAt = now
	return nil
}

// AgreementPatch enumerates exactly which fields update may change. Nil
// fields are left as-is; dates are already parsed by the transport layer, so
// no string re-parsing happens here.
type AgreementPatch struct {
	MonthlyRent      *int64
	SecurityDeposit  *int64
	Currency         *string
	CommissionRate   *int64
	PaymentFrequency *Frequency
	StartDate        *time.Time
	EndDate          *time.Time
	Terms            *string
}

// ApplyPatch merges the patch field-by-field, re-validating the date range
// against the effective start and end dates.
func (a *Agreement) ApplyPatch(p AgreementPatch, now time.Time) error {
	start, end := a.StartDate, a.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	if p.MonthlyRent != nil && *p.MonthlyRent <= 0 {
		return ErrNonPositiveRent
	}
	if p.SecurityDeposit != nil && *p.SecurityDeposit < 0 {
		return ErrNegativeDeposit
	}
	if p.CommissionRate != nil && (*p.CommissionRate < 0 || *p.CommissionRate > 100) {
		return ErrCommissionOutOfRange
	}
	if p.PaymentFrequency != nil && !p.PaymentFrequency.Valid() {
		return ErrInvalidFrequency
	}

	a.StartDate = start
	a.EndDate = end
	if p.MonthlyRent != nil {
		a.MonthlyRent = *p.MonthlyRent
	}
	if p.SecurityDeposit != nil {
		a.SecurityDeposit = *p.SecurityDeposit
	}
	if p.Currency != nil {
		a.Currency = *p.Currency
	}
	if p.CommissionRate != nil {
		a.CommissionRate = *p.CommissionRate
	}
	if p.PaymentFrequency != nil {
		a.PaymentFrequency = *p.PaymentFrequency
	}
	if p.Terms != nil {
		a.Terms = *p.Terms
	}
	a.UpdatedAt = now
	return nil
}
