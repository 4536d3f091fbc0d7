package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the HTTP surface: health, metrics, and the versioned
// agreement and payment endpoints.
func NewRouter(h *Handler, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(LoggingMiddleware(log), MetricsMiddleware)

	apiV1.HandleFunc("/agreements", h.CreateAgreementHandler).Methods("POST")
	apiV1.HandleFunc("/agreements", h.ListAgreementsHandler).Methods("GET")
	apiV1.HandleFunc("/agreements/{id}", h.GetAgreementHandler).Methods("GET")
	apiV1.HandleFunc("/agreements/{id}", h.UpdateAgreementHandler).Methods("PATCH")
	apiV1.HandleFunc("/agreements/{id}/terminate", h.TerminateAgreementHandler).Methods("POST")
	apiV1.HandleFunc("/agreements/{id}/dispute", h.DisputeAgreementHandler).Methods("POST")
	apiV1.HandleFunc("/agreements/{id}/payments", h.RecordPaymentHandler).Methods("POST")
	apiV1.HandleFunc("/agreements/{id}/payments", h.ListPaymentsHandler).Methods("GET")

	return r
}
