package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus of an individual payment record. The lifecycle path always
// records payments as completed.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

// Common payment methods. Method is free-form; these are the values the
// frontend sends.
const (
	MethodBankTransfer = "bank_transfer"
	MethodCard         = "card"
	MethodCash         = "cash"
	MethodMobileMoney  = "mobile_money"
)

// Payment belongs to exactly one agreement and is immutable once recorded.
type Payment struct {
	ID          uuid.UUID     `json:"id"`
	AgreementID uuid.UUID     `json:"agreement_id"`
	Amount      int64         `json:"amount"`
	Currency    string        `json:"currency"`
	PaymentDate time.Time     `json:"payment_date"`
	Method      string        `json:"method"`
	Reference   string        `json:"reference,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewPayment validates and builds a completed payment for an agreement.
func NewPayment(agreementID uuid.UUID, currency string, amount int64, paymentDate time.Time, method, reference, notes string, now time.Time) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if method == "" {
		return nil, ErrMissingPaymentMethod
	}
	return &Payment{
		ID:          uuid.New(),
		AgreementID: agreementID,
		Amount:      amount,
		Currency:    currency,
		PaymentDate: paymentDate,
		Method:      method,
		Reference:   reference,
		Notes:       notes,
		Status:      PaymentCompleted,
		CreatedAt:   now,
	}, nil
}

// CommissionDue is the agent's share of this payment at the agreement's
// commission rate.
func (p *Payment) CommissionDue(a *Agreement) int64 {
	return Commission(p.Amount, a.CommissionRate)
}
