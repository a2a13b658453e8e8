package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

type fakeIncidentStore struct {
	incidents []*models.PredictionIncident
	err       error
}

func (f *fakeIncidentStore) InsertIncident(ctx context.Context, incident *models.PredictionIncident) error {
	if f.err != nil {
		return f.err
	}
	f.incidents = append(f.incidents, incident)
	return nil
}

type fakePrefs struct {
	pausedUntil int64
	err         error
}

func (f *fakePrefs) PredictionsPausedUntil(ctx context.Context, userID int) (int64, error) {
	return f.pausedUntil, f.err
}

func newTestAgent(store *fakeIncidentStore, prefs *fakePrefs) *Agent {
	evaluator := NewEvaluator(DefaultThresholds(), false)
	return NewAgent(evaluator, NewEmitter(store), prefs, 3)
}

func drainEvents(a *Agent) []models.AlertEvent {
	var events []models.AlertEvent
	for {
		select {
		case event := <-a.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func breachingSample(heartRate int) models.VitalsSample {
	sample := healthySample()
	sample.HeartRate = heartRate
	return sample
}

func TestVerificationConfirmsAfterAllSteps(t *testing.T) {
	store := &fakeIncidentStore{}
	agent := newTestAgent(store, &fakePrefs{})
	ctx := context.Background()

	for _, hr := range []int{125, 126, 124} {
		if err := agent.HandleSample(ctx, breachingSample(hr)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(store.incidents) != 1 {
		t.Fatalf("expected exactly one incident, got %d", len(store.incidents))
	}
	incident := store.incidents[0]
	if incident.IncidentType != models.IncidentElevatedHeartRate {
		t.Fatalf("expected ELEVATED_HEART_RATE, got %s", incident.IncidentType)
	}
	if len(incident.VerificationReadingIDs) != 3 {
		t.Fatalf("expected three verification readings, got %d", len(incident.VerificationReadingIDs))
	}
	if agent.State() != nil {
		t.Fatal("expected agent to be idle after confirmation")
	}

	events := drainEvents(agent)
	if len(events) != 2 {
		t.Fatalf("expected start and trigger events, got %d", len(events))
	}
	if events[0].Kind != models.EventVerificationStarted {
		t.Fatalf("expected VERIFICATION_STARTED first, got %s", events[0].Kind)
	}
	if events[1].Kind != models.EventAlertTriggered {
		t.Fatalf("expected ALERT_TRIGGERED second, got %s", events[1].Kind)
	}
}

func TestVerificationRefutedByNormalReadings(t *testing.T) {
	store := &fakeIncidentStore{}
	agent := newTestAgent(store, &fakePrefs{})
	ctx := context.Background()

	if err := agent.HandleSample(ctx, breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := agent.HandleSample(ctx, healthySample()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(store.incidents) != 0 {
		t.Fatalf("expected no incident for a refuted run, got %d", len(store.incidents))
	}
	if agent.State() != nil {
		t.Fatal("expected agent to be idle after refutation")
	}

	events := drainEvents(agent)
	last := events[len(events)-1]
	if last.Kind != models.EventVerificationCancelled {
		t.Fatalf("expected VERIFICATION_CANCELLED, got %s", last.Kind)
	}
}

func TestCancelResetsVerification(t *testing.T) {
	store := &fakeIncidentStore{}
	agent := newTestAgent(store, &fakePrefs{})
	ctx := context.Background()

	if err := agent.HandleSample(ctx, breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agent.HandleSample(ctx, breachingSample(126)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := agent.CancelCurrentAlert(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if agent.State() != nil {
		t.Fatal("expected agent to be idle after cancel")
	}
	if err := agent.CancelCurrentAlert(); !errors.Is(err, ErrNoActiveVerification) {
		t.Fatalf("expected ErrNoActiveVerification, got %v", err)
	}
	if len(store.incidents) != 0 {
		t.Fatalf("cancelled run must not persist an incident, got %d", len(store.incidents))
	}

	// A fresh anomaly after cancel starts a brand-new run.
	if err := agent.HandleSample(ctx, breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state := agent.State()
	if state == nil || state.CurrentStep != 1 {
		t.Fatalf("expected a fresh run at step 1, got %+v", state)
	}
}

func TestNewTriggerDoesNotRestartRun(t *testing.T) {
	store := &fakeIncidentStore{}
	agent := newTestAgent(store, &fakePrefs{})
	ctx := context.Background()

	if err := agent.HandleSample(ctx, breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	started := agent.State()

	// A different anomaly arriving mid-run becomes the next reading.
	lowOxygen := healthySample()
	lowOxygen.SpO2 = 85
	if err := agent.HandleSample(ctx, lowOxygen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := agent.State()
	if state == nil {
		t.Fatal("expected the run to still be active")
	}
	if state.IncidentID != started.IncidentID {
		t.Fatal("expected the original run to continue, not restart")
	}
	if state.CurrentStep != 2 {
		t.Fatalf("expected step 2, got %d", state.CurrentStep)
	}

	var startedEvents int
	for _, event := range drainEvents(agent) {
		if event.Kind == models.EventVerificationStarted {
			startedEvents++
		}
	}
	if startedEvents != 1 {
		t.Fatalf("expected one VERIFICATION_STARTED, got %d", startedEvents)
	}
}

func TestPauseSkipsEvaluation(t *testing.T) {
	store := &fakeIncidentStore{}
	prefs := &fakePrefs{pausedUntil: models.NowMillis() + 60_000}
	agent := newTestAgent(store, prefs)

	if err := agent.HandleSample(context.Background(), breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.State() != nil {
		t.Fatal("paused agent must not start a verification run")
	}
	if events := drainEvents(agent); len(events) != 0 {
		t.Fatalf("paused agent must not emit events, got %d", len(events))
	}
}

func TestExpiredPauseEvaluatesAgain(t *testing.T) {
	store := &fakeIncidentStore{}
	prefs := &fakePrefs{pausedUntil: models.NowMillis() - 1}
	agent := newTestAgent(store, prefs)

	if err := agent.HandleSample(context.Background(), breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.State() == nil {
		t.Fatal("expected evaluation to resume after the pause expires")
	}
}

func TestStorageFailureSurfacesAndResets(t *testing.T) {
	store := &fakeIncidentStore{err: errors.New("connection refused")}
	agent := newTestAgent(store, &fakePrefs{})
	ctx := context.Background()

	if err := agent.HandleSample(ctx, breachingSample(125)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agent.HandleSample(ctx, breachingSample(126)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := agent.HandleSample(ctx, breachingSample(124))
	if err == nil {
		t.Fatal("expected the persistence failure to surface")
	}
	if agent.State() != nil {
		t.Fatal("expected agent back to idle after a failed insert")
	}
}

func TestSubmitReadingWhenIdle(t *testing.T) {
	agent := newTestAgent(&fakeIncidentStore{}, &fakePrefs{})

	err := agent.SubmitVerificationReading(context.Background(), healthySample())
	if !errors.Is(err, ErrNoActiveVerification) {
		t.Fatalf("expected ErrNoActiveVerification, got %v", err)
	}
}
