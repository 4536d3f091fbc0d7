package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific failures wrap one of these so callers can classify
// them with errors.Is without matching message text.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrAgreementNotFound   = fmt.Errorf("agreement %w", ErrNotFound)
	ErrAgreementTerminated = fmt.Errorf("%w: agreement is terminated", ErrConflict)

	ErrInvalidDateRange         = fmt.Errorf("%w: end date must be after start date", ErrValidation)
	ErrNonPositiveRent          = fmt.Errorf("%w: monthly rent must be positive", ErrValidation)
	ErrNegativeDeposit          = fmt.Errorf("%w: security deposit cannot be negative", ErrValidation)
	ErrCommissionOutOfRange     = fmt.Errorf("%w: commission rate must be between 0 and 100", ErrValidation)
	ErrInvalidFrequency         = fmt.Errorf("%w: unknown payment frequency", ErrValidation)
	ErrNonPositiveAmount        = fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	ErrMissingPaymentMethod     = fmt.Errorf("%w: payment method is required", ErrValidation)
	ErrMissingTerminationReason = fmt.Errorf("%w: termination reason is required", ErrValidation)
)
