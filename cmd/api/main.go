package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chioma/rentledger/internal/api"
	"github.com/chioma/rentledger/internal/config"
	"github.com/chioma/rentledger/internal/expiry"
	"github.com/chioma/rentledger/internal/service"
	"github.com/chioma/rentledger/internal/store"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if cfg.Env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	dbPool, err := store.NewPool(context.Background(), cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer dbPool.Close()

	// Layers
	agreementStore := store.NewAgreementStore(dbPool)
	paymentStore := store.NewPaymentStore(dbPool)
	agreementSvc := service.NewAgreementService(agreementStore, paymentStore, cfg.NumberPrefix, log)
	paymentSvc := service.NewPaymentService(paymentStore, agreementStore, log)

	handler := api.NewHandler(agreementSvc, paymentSvc)
	router := api.NewRouter(handler, log)

	sweeper, err := expiry.New(agreementSvc, cfg.ExpirySchedule, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid expiry sweep schedule")
	}
	sweeper.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server exited")
}
