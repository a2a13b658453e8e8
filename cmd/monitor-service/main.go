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
	"github.com/atharvamohekar/guardian-ai/pkg/common/database"
	"github.com/atharvamohekar/guardian-ai/pkg/common/kafka"
	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/atharvamohekar/guardian-ai/pkg/emergency"
	"github.com/atharvamohekar/guardian-ai/pkg/monitor"
	"github.com/atharvamohekar/guardian-ai/pkg/profile"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	monitorRepo := monitor.NewRepository(db)
	if err := monitorRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate monitoring tables")
	}

	profileRepo := profile.NewRepository(db)
	if err := profileRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate profile tables")
	}

	emergencyRepo := emergency.NewRepository(db)
	if err := emergencyRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate emergency tables")
	}

	prefs := profile.NewPreferenceStore(database.GetRedis())

	thresholds, err := monitor.ThresholdsFromConfig(cfg)
	if err != nil {
		logger.Log.WithError(err).Warn("thresholds file unusable, falling back to environment values")
	}

	evaluator := monitor.NewEvaluator(thresholds, cfg.DirectCriticalAlerts)
	emitter := monitor.NewEmitter(monitorRepo)
	agent := monitor.NewAgent(evaluator, emitter, prefs, cfg.VerificationSteps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-agent.Events():
				logger.Log.WithFields(map[string]interface{}{
					"kind":        event.Kind,
					"incident_id": event.IncidentID,
					"severity":    event.Severity,
				}).Info("alert event")
			}
		}
	}()

	consumer := kafka.NewConsumer(cfg.VitalsKafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, sample models.VitalsSample) error {
			if err := monitorRepo.InsertSample(ctx, sample); err != nil {
				return err
			}
			if err := prefs.SetLastVitalsUpdate(ctx, sample.UserID, sample.Timestamp); err != nil {
				logger.Log.WithError(err).Warn("failed to record last vitals update")
			}
			return agent.HandleSample(ctx, sample)
		})
		if err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("vitals consumer stopped")
		}
	}()

	profileService := profile.NewService(profileRepo)
	emergencyService := emergency.NewService(emergencyRepo, monitorRepo, profileRepo, prefs)

	monitorHandler := monitor.NewHTTPHandler(agent, monitorRepo, prefs, cfg.SimulatorUserID)
	profileHandler := profile.NewHTTPHandler(profileService, prefs)
	emergencyHandler := emergency.NewHTTPHandler(emergencyService, cfg.SimulatorUserID)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	monitorHandler.Register(api)
	profileHandler.Register(api)
	emergencyHandler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Monitor Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := monitorRepo.DeleteOldSamples(context.Background(), cfg.VitalsRetention); err != nil {
					logger.Log.WithError(err).Warn("vitals retention cleanup failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Monitor Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("failed to close redis")
	}

	logger.Log.Info("Monitor Service stopped")
}
