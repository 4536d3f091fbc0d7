package domain

import "github.com/google/uuid"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// sortable whitelists the columns list may order by. Anything else falls
// back to creation time.
var sortable = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"start_date":       true,
	"end_date":         true,
	"monthly_rent":     true,
	"total_paid":       true,
	"status":           true,
	"agreement_number": true,
}

// AgreementQuery is the filter/sort/pagination input for listing agreements.
// Filters are AND-combined; nil filters match everything.
type AgreementQuery struct {
	Status     *Status
	LandlordID *uuid.UUID
	TenantID   *uuid.UUID
	AgentID    *uuid.UUID
	PropertyID *uuid.UUID

	SortBy   string
	SortDesc bool

	Page  int
	Limit int
}

// Normalize applies defaults and bounds: page >= 1, limit in [1, MaxPageSize],
// sort column whitelisted with creation time descending as the default.
func (q *AgreementQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if !sortable[q.SortBy] {
		q.SortBy = "created_at"
		q.SortDesc = true
	}
}

// Offset is the row offset for the normalized page.
func (q *AgreementQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// AgreementPage is one page of list results plus paging metadata.
type AgreementPage struct {
	Agreements []Agreement `json:"agreements"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}
