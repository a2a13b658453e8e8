package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atharvamohekar/guardian-ai/pkg/common/config"
	"github.com/atharvamohekar/guardian-ai/pkg/common/kafka"
	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/simulator"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	scenario, err := simulator.ParseScenario(cfg.SimulatorScenario)
	if err != nil {
		logger.Log.WithError(err).Warn("unknown scenario in environment, starting with NORMAL")
		scenario = simulator.ScenarioNormal
	}

	sim := simulator.New(cfg.SimulatorUserID, scenario, cfg.TimeCompressionFactor)

	producer := kafka.NewProducer(cfg.VitalsKafkaTopic)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sim.Run(ctx, producer.PublishSample); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("simulator loop stopped")
		}
	}()

	handler := simulator.NewHTTPHandler(sim)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, "8081"),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":     cfg.ServerHost,
			"port":     "8081",
			"scenario": scenario,
		}).Info("Simulator Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Simulator Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Simulator Service stopped")
}
