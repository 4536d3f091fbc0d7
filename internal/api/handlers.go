package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/chioma/rentledger/internal/domain"
	"github.com/chioma/rentledger/internal/service"
)

// AgreementService is the slice of the agreement service the handlers use.
type AgreementService interface {
	Create(ctx context.Context, p domain.NewAgreementParams) (*domain.Agreement, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.AgreementPatch) (*domain.Agreement, error)
	Terminate(ctx context.Context, id uuid.UUID, reason, notes string) (*domain.Agreement, error)
	Dispute(ctx context.Context, id uuid.UUID) (*domain.Agreement, error)
	Get(ctx context.Context, id uuid.UUID) (*service.AgreementDetail, error)
	List(ctx context.Context, q domain.AgreementQuery) (*domain.AgreementPage, error)
}

// PaymentService is the slice of the payment service the handlers use.
type PaymentService interface {
	Record(ctx context.Context, agreementID uuid.UUID, in service.RecordPaymentInput) (*domain.Payment, error)
	ListForAgreement(ctx context.Context, agreementID uuid.UUID) ([]domain.Payment, error)
}

type Handler struct {
	agreements AgreementService
	payments   PaymentService
}

func NewHandler(agreements AgreementService, payments PaymentService) *Handler {
	return &Handler{agreements: agreements, payments: payments}
}

type createAgreementRequest struct {
	PropertyID       string  `json:"property_id"`
	LandlordID       string  `json:"landlord_id"`
	TenantID         string  `json:"tenant_id"`
	AgentID          *string `json:"agent_id"`
	MonthlyRent      int64   `json:"monthly_rent"`
	SecurityDeposit  int64   `json:"security_deposit"`
	Currency         string  `json:"currency"`
	CommissionRate   int64   `json:"commission_rate"`
	PaymentFrequency string  `json:"payment_frequency"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Terms            string  `json:"terms"`
}

func (h *Handler) CreateAgreementHandler(w http.ResponseWriter, r *http.Request) {
	var req createAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid property_id")
		return
	}
	landlordID, err := uuid.Parse(req.LandlordID)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid landlord_id")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid tenant_id")
		return
	}
	var agentID *uuid.UUID
	if req.AgentID != nil {
		id, err := uuid.Parse(*req.AgentID)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "Invalid agent_id")
			return
		}
		agentID = &id
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid start_date")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid end_date")
		return
	}

	a, err := h.agreements.Create(r.Context(), domain.NewAgreementParams{
		PropertyID:       propertyID,
		LandlordID:       landlordID,
		TenantID:         tenantID,
		AgentID:          agentID,
		MonthlyRent:      req.MonthlyRent,
		SecurityDeposit:  req.SecurityDeposit,
		Currency:         req.Currency,
		CommissionRate:   req.CommissionRate,
		PaymentFrequency: domain.Frequency(req.PaymentFrequency),
		StartDate:        startDate,
		EndDate:          endDate,
		Terms:            req.Terms,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/agreements/%s", a.ID))
	respondWithJSON(w, http.StatusCreated, a)
}

type updateAgreementRequest struct {
	MonthlyRent      *int64  `json:"monthly_rent"`
	SecurityDeposit  *int64  `json:"security_deposit"`
	Currency         *string `json:"currency"`
	CommissionRate   *int64  `json:"commission_rate"`
	PaymentFrequency *string `json:"payment_frequency"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	Terms            *string `json:"terms"`
}

func (h *Handler) UpdateAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	patch := domain.AgreementPatch{
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Currency:        req.Currency,
		CommissionRate:  req.CommissionRate,
		Terms:           req.Terms,
	}
	if req.PaymentFrequency != nil {
		f := domain.Frequency(*req.PaymentFrequency)
		patch.PaymentFrequency = &f
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "Invalid start_date")
			return
		}
		patch.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := parseDate(*req.EndDate)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "Invalid end_date")
			return
		}
		patch.EndDate = &d
	}

	a, err := h.agreements.Update(r.Context(), id, patch)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

type terminateAgreementRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (h *Handler) TerminateAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req terminateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	a, err := h.agreements.Terminate(r.Context(), id, req.Reason, req.Notes)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) DisputeAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.agreements.Dispute(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

func (h *Handler) GetAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.agreements.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) ListAgreementsHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	page, err := h.agreements.List(r.Context(), q)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

type recordPaymentRequest struct {
	Amount      int64  `json:"amount"`
	PaymentDate string `json:"payment_date"`
	Method      string `json:"method"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

func (h *Handler) RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid payment_date")
		return
	}

	p, err := h.payments.Record(r.Context(), id, service.RecordPaymentInput{
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Method:      req.Method,
		Reference:   req.Reference,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/agreements/%s/payments", id))
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	payments, err := h.payments.ListForAgreement(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	respondWithJSON(w, http.StatusOK, payments)
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid agreement id")
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts RFC 3339 date-times and plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseListQuery(r *http.Request) (domain.AgreementQuery, error) {
	var q domain.AgreementQuery
	vals := r.URL.Query()

	if s := vals.Get("status"); s != "" {
		status := domain.Status(s)
		if !status.Valid() {
			return q, fmt.Errorf("unknown status %q", s)
		}
		q.Status = &status
	}
	for param, dst := range map[string]**uuid.UUID{
		"landlord_id": &q.LandlordID,
		"tenant_id":   &q.TenantID,
		"agent_id":    &q.AgentID,
		"property_id": &q.PropertyID,
	} {
		if s := vals.Get(param); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				return q, fmt.Errorf("invalid %s", param)
			}
			*dst = &id
		}
	}

	q.SortBy = vals.Get("sort_by")
	q.SortDesc = vals.Get("order") != "asc"
	if s := vals.Get("page"); s != "" {
		q.Page, _ = strconv.Atoi(s)
	}
	if s := vals.Get("limit"); s != "" {
		q.Limit, _ = strconv.Atoi(s)
	}
	return q, nil
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
