package emergency

import (
	"context"
	"errors"
	"fmt"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/google/uuid"
)

var ErrInvalidOutcome = errors.New("invalid outcome")

// workflowActions is the full action sequence, in execution order. Under
// SEMI_AUTOMATIC autonomy only the actions the user confirmed run; under
// FULLY_AUTOMATIC the whole sequence runs unprompted.
var workflowActions = []models.ActionType{
	models.ActionGetCurrentLocation,
	models.ActionNotifyEmergencyContact,
	models.ActionFindNearestHospital,
	models.ActionSendSMSAlert,
	models.ActionCallEmergencyServices,
}

// LogStore is the persistence dependency of the workflow service. The
// gorm-backed Repository satisfies it.
type LogStore interface {
	Insert(ctx context.Context, log *models.EmergencyLog) error
	Get(ctx context.Context, id string) (*models.EmergencyLog, error)
	ListByUser(ctx context.Context, userID int) ([]models.EmergencyLog, error)
	RecordOutcome(ctx context.Context, id string, outcome models.EmergencyOutcome, responseTime *int64) error
}

type IncidentStore interface {
	GetIncident(ctx context.Context, id string) (*models.PredictionIncident, error)
	MarkEscalated(ctx context.Context, id string) error
	MarkEmergencyWorkflowTriggered(ctx context.Context, id string) error
}

type ProfileSource interface {
	Get(ctx context.Context, id int) (*models.UserProfile, error)
}

type AutonomySource interface {
	AutonomyMode(ctx context.Context, userID int) (models.AutonomyLevel, error)
	IncrementEmergencyNotified(ctx context.Context, userID int) (int64, error)
}

type Service struct {
	logs      LogStore
	incidents IncidentStore
	profiles  ProfileSource
	prefs     AutonomySource
}

func NewService(logs LogStore, incidents IncidentStore, profiles ProfileSource, prefs AutonomySource) *Service {
	return &Service{logs: logs, incidents: incidents, profiles: profiles, prefs: prefs}
}

// TriggerWorkflow runs the emergency response for a persisted incident and
// records an EmergencyLog. The confirmed list is only consulted under
// SEMI_AUTOMATIC autonomy. All actions are simulated; nothing leaves the
// process.
func (s *Service) TriggerWorkflow(ctx context.Context, incidentID string, confirmed []models.ActionType) (*models.EmergencyLog, error) {
	incident, err := s.incidents.GetIncident(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	autonomy, err := s.prefs.AutonomyMode(ctx, incident.UserID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", incident.UserID).
			Warn("autonomy lookup failed, assuming semi-automatic")
		autonomy = models.AutonomySemiAutomatic
	}

	var profile *models.UserProfile
	if p, err := s.profiles.Get(ctx, incident.UserID); err != nil {
		logger.Log.WithError(err).WithField("user_id", incident.UserID).
			Warn("profile unavailable, contact actions will report failure")
	} else {
		profile = p
	}

	log := &models.EmergencyLog{
		ID:         "emergency_" + uuid.NewString(),
		UserID:     incident.UserID,
		Timestamp:  models.NowMillis(),
		IncidentID: incident.ID,
		Notes:      "simulated response, no external services contacted",
	}

	for _, action := range selectActions(autonomy, confirmed) {
		executed := s.execute(ctx, action, profile, log)
		log.Actions = append(log.Actions, executed)
	}

	if err := s.logs.Insert(ctx, log); err != nil {
		return nil, fmt.Errorf("persisting emergency log: %w", err)
	}
	if err := s.incidents.MarkEscalated(ctx, incidentID); err != nil {
		return nil, fmt.Errorf("marking incident escalated: %w", err)
	}
	if err := s.incidents.MarkEmergencyWorkflowTriggered(ctx, incidentID); err != nil {
		return nil, fmt.Errorf("marking workflow triggered: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"log_id":      log.ID,
		"incident_id": incidentID,
		"autonomy":    autonomy,
		"actions":     len(log.Actions),
	}).Info("emergency workflow completed")

	return log, nil
}

// selectActions keeps workflow order regardless of the order the caller
// confirmed actions in.
func selectActions(autonomy models.AutonomyLevel, confirmed []models.ActionType) []models.ActionType {
	if autonomy == models.AutonomyFullyAutomatic {
		return workflowActions
	}

	allowed := make(map[models.ActionType]bool, len(confirmed))
	for _, a := range confirmed {
		allowed[a] = true
	}

	out := make([]models.ActionType, 0, len(confirmed))
	for _, a := range workflowActions {
		if allowed[a] {
			out = append(out, a)
		}
	}
	return out
}

func (s *Service) execute(ctx context.Context, action models.ActionType, profile *models.UserProfile, log *models.EmergencyLog) models.EmergencyAction {
	executed := models.EmergencyAction{
		ActionType: action,
		Timestamp:  models.NowMillis(),
		Success:    true,
	}

	switch action {
	case models.ActionGetCurrentLocation:
		log.Location = simulatedLocation()
		executed.Data = map[string]string{
			"latitude":  fmt.Sprintf("%.4f", log.Location.Latitude),
			"longitude": fmt.Sprintf("%.4f", log.Location.Longitude),
		}

	case models.ActionNotifyEmergencyContact:
		if profile == nil || profile.EmergencyContact.Phone == "" {
			executed.Success = false
			executed.ErrorMessage = "no emergency contact on file"
			break
		}
		log.ContactsNotified = append(log.ContactsNotified, profile.EmergencyContact)
		executed.Data = map[string]string{"contact": profile.EmergencyContact.Name}
		if _, err := s.prefs.IncrementEmergencyNotified(ctx, log.UserID); err != nil {
			logger.Log.WithError(err).Warn("failed to bump emergency-notified counter")
		}

	case models.ActionFindNearestHospital:
		executed.Data = map[string]string{
			"hospital": "City General Hospital",
			"distance": "2.3 km",
		}

	case models.ActionSendSMSAlert:
		if profile == nil || profile.EmergencyContact.Phone == "" {
			executed.Success = false
			executed.ErrorMessage = "no phone number on file"
			break
		}
		executed.Data = map[string]string{"recipient": profile.EmergencyContact.Phone}

	case models.ActionCallEmergencyServices, models.ActionNotifyHospital:
		log.EmergencyServicesCalled = true
		executed.Data = map[string]string{"dispatcher": "simulated"}

	default:
		executed.Success = false
		executed.ErrorMessage = "unknown action"
	}

	return executed
}

func simulatedLocation() models.LocationData {
	return models.LocationData{
		Latitude:  37.7749,
		Longitude: -122.4194,
		Accuracy:  12.5,
		Timestamp: models.NowMillis(),
		Provider:  "simulated",
	}
}

// RecordOutcome attaches a resolution to a completed workflow log.
func (s *Service) RecordOutcome(ctx context.Context, logID string, outcome models.EmergencyOutcome, responseTime *int64) error {
	switch outcome {
	case models.OutcomeContactedServices, models.OutcomeUserCancelled, models.OutcomeFalseAlarm,
		models.OutcomeMedicalAttention, models.OutcomeTransport, models.OutcomeAdmitted,
		models.OutcomeResolvedOnSite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	return s.logs.RecordOutcome(ctx, logID, outcome, responseTime)
}

func (s *Service) Logs(ctx context.Context, userID int) ([]models.EmergencyLog, error) {
	return s.logs.ListByUser(ctx, userID)
}

func (s *Service) Log(ctx context.Context, id string) (*models.EmergencyLog, error) {
	return s.logs.Get(ctx, id)
}
