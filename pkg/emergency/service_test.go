package emergency

import (
	"context"
	"errors"
	"testing"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

type fakeLogStore struct {
	inserted []*models.EmergencyLog
	outcome  *models.EmergencyOutcome
}

func (f *fakeLogStore) Insert(ctx context.Context, log *models.EmergencyLog) error {
	f.inserted = append(f.inserted, log)
	return nil
}

func (f *fakeLogStore) Get(ctx context.Context, id string) (*models.EmergencyLog, error) {
	return nil, ErrLogNotFound
}

func (f *fakeLogStore) ListByUser(ctx context.Context, userID int) ([]models.EmergencyLog, error) {
	return nil, nil
}

func (f *fakeLogStore) RecordOutcome(ctx context.Context, id string, outcome models.EmergencyOutcome, responseTime *int64) error {
	f.outcome = &outcome
	return nil
}

type fakeIncidentStore struct {
	incident          *models.PredictionIncident
	escalated         bool
	workflowTriggered bool
}

func (f *fakeIncidentStore) GetIncident(ctx context.Context, id string) (*models.PredictionIncident, error) {
	if f.incident == nil || f.incident.ID != id {
		return nil, errors.New("incident not found")
	}
	return f.incident, nil
}

func (f *fakeIncidentStore) MarkEscalated(ctx context.Context, id string) error {
	f.escalated = true
	return nil
}

func (f *fakeIncidentStore) MarkEmergencyWorkflowTriggered(ctx context.Context, id string) error {
	f.workflowTriggered = true
	return nil
}

type fakeProfiles struct {
	profile *models.UserProfile
}

func (f *fakeProfiles) Get(ctx context.Context, id int) (*models.UserProfile, error) {
	if f.profile == nil {
		return nil, errors.New("profile not found")
	}
	return f.profile, nil
}

type fakeAutonomy struct {
	mode     models.AutonomyLevel
	notified int
}

func (f *fakeAutonomy) AutonomyMode(ctx context.Context, userID int) (models.AutonomyLevel, error) {
	return f.mode, nil
}

func (f *fakeAutonomy) IncrementEmergencyNotified(ctx context.Context, userID int) (int64, error) {
	f.notified++
	return int64(f.notified), nil
}

func testIncident() *models.PredictionIncident {
	return &models.PredictionIncident{
		ID:           "incident_test",
		UserID:       1,
		IncidentType: models.IncidentLowSpO2,
		Severity:     models.SeverityCritical,
	}
}

func testProfile() *models.UserProfile {
	return &models.UserProfile{
		ID:               1,
		Email:            "user@example.com",
		FullName:         "Test User",
		EmergencyContact: models.EmergencyContact{Name: "Next Of Kin", Phone: "+1-555-0100"},
	}
}

func TestSemiAutomaticRunsOnlyConfirmedActions(t *testing.T) {
	logs := &fakeLogStore{}
	incidents := &fakeIncidentStore{incident: testIncident()}
	autonomy := &fakeAutonomy{mode: models.AutonomySemiAutomatic}
	svc := NewService(logs, incidents, &fakeProfiles{profile: testProfile()}, autonomy)

	confirmed := []models.ActionType{
		models.ActionNotifyEmergencyContact,
		models.ActionGetCurrentLocation,
	}
	log, err := svc.TriggerWorkflow(context.Background(), "incident_test", confirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(log.Actions) != 2 {
		t.Fatalf("expected two actions, got %d", len(log.Actions))
	}
	// Workflow order wins over confirmation order.
	if log.Actions[0].ActionType != models.ActionGetCurrentLocation {
		t.Fatalf("expected location first, got %s", log.Actions[0].ActionType)
	}
	if log.EmergencyServicesCalled {
		t.Fatal("services must not be called without confirmation")
	}
	if len(log.ContactsNotified) != 1 || log.ContactsNotified[0].Name != "Next Of Kin" {
		t.Fatalf("expected the emergency contact notified, got %+v", log.ContactsNotified)
	}
	if autonomy.notified != 1 {
		t.Fatalf("expected the notified counter bumped once, got %d", autonomy.notified)
	}
}

func TestFullyAutomaticRunsEverything(t *testing.T) {
	logs := &fakeLogStore{}
	incidents := &fakeIncidentStore{incident: testIncident()}
	svc := NewService(logs, incidents, &fakeProfiles{profile: testProfile()},
		&fakeAutonomy{mode: models.AutonomyFullyAutomatic})

	log, err := svc.TriggerWorkflow(context.Background(), "incident_test", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(log.Actions) != len(workflowActions) {
		t.Fatalf("expected all %d actions, got %d", len(workflowActions), len(log.Actions))
	}
	if !log.EmergencyServicesCalled {
		t.Fatal("expected emergency services flagged as called")
	}
	if log.Location.Provider != "simulated" {
		t.Fatalf("expected a simulated location, got %+v", log.Location)
	}
	if !incidents.escalated || !incidents.workflowTriggered {
		t.Fatal("expected the incident marked escalated and workflow-triggered")
	}
	if len(logs.inserted) != 1 {
		t.Fatalf("expected one persisted log, got %d", len(logs.inserted))
	}
}

func TestMissingProfileDegradesContactActions(t *testing.T) {
	logs := &fakeLogStore{}
	incidents := &fakeIncidentStore{incident: testIncident()}
	svc := NewService(logs, incidents, &fakeProfiles{},
		&fakeAutonomy{mode: models.AutonomyFullyAutomatic})

	log, err := svc.TriggerWorkflow(context.Background(), "incident_test", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var notify models.EmergencyAction
	for _, action := range log.Actions {
		if action.ActionType == models.ActionNotifyEmergencyContact {
			notify = action
		}
	}
	if notify.Success {
		t.Fatal("expected contact notification to fail without a profile")
	}
	if len(log.ContactsNotified) != 0 {
		t.Fatalf("expected no contacts recorded, got %+v", log.ContactsNotified)
	}
}

func TestTriggerUnknownIncident(t *testing.T) {
	svc := NewService(&fakeLogStore{}, &fakeIncidentStore{}, &fakeProfiles{}, &fakeAutonomy{})

	if _, err := svc.TriggerWorkflow(context.Background(), "incident_missing", nil); err == nil {
		t.Fatal("expected an error for an unknown incident")
	}
}

func TestRecordOutcomeValidation(t *testing.T) {
	logs := &fakeLogStore{}
	svc := NewService(logs, &fakeIncidentStore{}, &fakeProfiles{}, &fakeAutonomy{})

	err := svc.RecordOutcome(context.Background(), "emergency_x", "SOMETHING_ELSE", nil)
	if !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
	if logs.outcome != nil {
		t.Fatal("invalid outcome must not reach the store")
	}

	if err := svc.RecordOutcome(context.Background(), "emergency_x", models.OutcomeFalseAlarm, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.outcome == nil || *logs.outcome != models.OutcomeFalseAlarm {
		t.Fatalf("expected FALSE_ALARM recorded, got %v", logs.outcome)
	}
}
