package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

var (
	ErrNoActiveVerification = errors.New("no verification run is active")
)

// PreferenceGate exposes the process-wide pause flag the agent reads before
// each evaluation cycle.
type PreferenceGate interface {
	PredictionsPausedUntil(ctx context.Context, userID int) (int64, error)
}

// Agent is the health-monitoring core. It owns the single verification run,
// consumes the vitals stream one sample at a time, and emits alert events to
// the presentation layer over a channel.
//
// All state transitions are serialized under one mutex, so a cancellation
// issued between two samples always takes effect before the next transition.
type Agent struct {
	mu        sync.Mutex
	evaluator *Evaluator
	emitter   *Emitter
	prefs     PreferenceGate
	steps     int
	run       *verificationRun
	events    chan models.AlertEvent
}

func NewAgent(evaluator *Evaluator, emitter *Emitter, prefs PreferenceGate, steps int) *Agent {
	if steps < 1 {
		steps = 3
	}
	return &Agent{
		evaluator: evaluator,
		emitter:   emitter,
		prefs:     prefs,
		steps:     steps,
		events:    make(chan models.AlertEvent, 16),
	}
}

// Events is the channel the presentation layer subscribes to. Emission never
// blocks the monitoring loop; events nobody consumes in time are dropped
// (late subscribers miss prior events).
func (a *Agent) Events() <-chan models.AlertEvent {
	return a.events
}

// State returns a read-only snapshot of the active verification run, or nil
// when the agent is idle.
func (a *Agent) State() *models.VerificationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run == nil {
		return nil
	}
	return a.run.snapshot()
}

// Run consumes the sample stream until the context is cancelled. A failed
// sample never stops the loop; the next one is still evaluated.
func (a *Agent) Run(ctx context.Context, samples <-chan models.VitalsSample) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			if err := a.HandleSample(ctx, sample); err != nil {
				logger.Log.WithError(err).WithFields(map[string]interface{}{
					"sample_id": sample.ID,
				}).Error("failed to process vitals sample")
			}
		}
	}
}

// HandleSample runs one evaluation cycle. While a verification run is
// active, the incoming sample becomes its next confirmatory reading; new
// anomaly triggers never restart the run, so in-flight readings are kept.
func (a *Agent) HandleSample(ctx context.Context, sample models.VitalsSample) error {
	if paused, err := a.predictionsPaused(ctx, sample.UserID); err != nil {
		logger.Log.WithError(err).Warn("failed to read pause flag, evaluating anyway")
	} else if paused {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run != nil {
		return a.advance(ctx, sample)
	}

	prediction := a.evaluator.Evaluate(sample)
	if prediction == nil {
		return nil
	}

	if !prediction.RequiresVerification {
		return a.triggerAlert(ctx, sample.UserID, *prediction, []models.VitalsSample{sample})
	}

	a.run = newVerificationRun(*prediction, sample, a.steps)
	a.emit(models.AlertEvent{
		Kind:       models.EventVerificationStarted,
		IncidentID: a.run.incidentID,
		Severity:   prediction.Severity,
		Timestamp:  models.NowMillis(),
	})
	return nil
}

// SubmitVerificationReading records a confirmatory reading submitted by the
// presentation layer (manual entry).
func (a *Agent) SubmitVerificationReading(ctx context.Context, sample models.VitalsSample) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run == nil {
		return ErrNoActiveVerification
	}
	return a.advance(ctx, sample)
}

// CancelCurrentAlert resets the state machine to idle from any non-idle
// state, regardless of how many readings were collected.
func (a *Agent) CancelCurrentAlert() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run == nil {
		return ErrNoActiveVerification
	}

	a.run = nil
	a.emit(models.AlertEvent{
		Kind:      models.EventAlertCancelled,
		Timestamp: models.NowMillis(),
	})
	return nil
}

// AcknowledgeAlert records that the user has seen the current alert.
func (a *Agent) AcknowledgeAlert() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.emit(models.AlertEvent{
		Kind:      models.EventAlertAcknowledged,
		Timestamp: models.NowMillis(),
	})
}

// advance is called with the lock held.
func (a *Agent) advance(ctx context.Context, sample models.VitalsSample) error {
	complete := a.run.addReading(sample)
	if !complete {
		return nil
	}

	run := a.run
	// Reset before touching storage so a failed insert can never leave the
	// machine stuck mid-run.
	a.run = nil

	if !run.anomalyPersists(a.evaluator.Breaches) {
		a.emit(models.AlertEvent{
			Kind:       models.EventVerificationCancelled,
			IncidentID: run.incidentID,
			Timestamp:  models.NowMillis(),
		})
		return nil
	}

	latest := run.readings[len(run.readings)-1]
	return a.triggerAlert(ctx, latest.UserID, run.result, run.readings)
}

// triggerAlert is called with the lock held.
func (a *Agent) triggerAlert(ctx context.Context, userID int, result models.PredictionResult, readings []models.VitalsSample) error {
	incident, err := a.emitter.Emit(ctx, userID, result, readings)
	if err != nil {
		return err
	}

	latest := readings[len(readings)-1]
	a.emit(models.AlertEvent{
		Kind:            models.EventAlertTriggered,
		IncidentID:      incident.ID,
		Severity:        incident.Severity,
		Sample:          &latest,
		Recommendations: incident.Recommendations,
		Timestamp:       models.NowMillis(),
	})

	logger.Log.WithFields(map[string]interface{}{
		"incident_id":   incident.ID,
		"incident_type": incident.IncidentType,
		"severity":      incident.Severity,
	}).Info("Alert triggered")
	return nil
}

func (a *Agent) predictionsPaused(ctx context.Context, userID int) (bool, error) {
	if a.prefs == nil {
		return false, nil
	}
	until, err := a.prefs.PredictionsPausedUntil(ctx, userID)
	if err != nil {
		return false, err
	}
	return until > models.NowMillis(), nil
}

func (a *Agent) emit(event models.AlertEvent) {
	select {
	case a.events <- event:
	default:
		logger.Log.WithField("kind", event.Kind).Debug("alert event dropped, no consumer")
	}
}
