package models

import "time"

// Vitals stream

type VitalsSource string

const (
	SourceSimulated    VitalsSource = "SIMULATED"
	SourceRealWearable VitalsSource = "REAL_WEARABLE"
	SourceManualEntry  VitalsSource = "MANUAL_ENTRY"
)

type AnomalyType string

const (
	AnomalyElevatedHeartRate AnomalyType = "ELEVATED_HEART_RATE"
	AnomalyLowSpO2           AnomalyType = "LOW_SPO2"
	AnomalyHighStress        AnomalyType = "HIGH_STRESS"
	AnomalyIrregularPattern  AnomalyType = "IRREGULAR_PATTERN"
	AnomalySleepDeprivation  AnomalyType = "SLEEP_DEPRIVATION"
	AnomalyCombined          AnomalyType = "COMBINED_ANOMALY"
)

// VitalsSample is one timestamped reading from the wearable stream.
// Immutable once created.
type VitalsSample struct {
	ID          string       `json:"id"`
	UserID      int          `json:"user_id"`
	Timestamp   int64        `json:"timestamp"` // epoch millis
	HeartRate   int          `json:"heart_rate"`
	SpO2        int          `json:"spo2"`
	StressScore int          `json:"stress_score"`
	Steps       int          `json:"steps"`
	SleepHours  float32      `json:"sleep_hours"`
	Source      VitalsSource `json:"source"`
	IsAnomaly   bool         `json:"is_anomaly"`
	AnomalyType *AnomalyType `json:"anomaly_type,omitempty"`
}

// Evaluation

type MetricType string

const (
	MetricHeartRate   MetricType = "HEART_RATE"
	MetricSpO2        MetricType = "SPO2"
	MetricStressScore MetricType = "STRESS_SCORE"
	MetricSleepHours  MetricType = "SLEEP_HOURS"
	MetricSteps       MetricType = "STEPS"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityElevated Severity = "ELEVATED"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank gives the total ordering LOW < MODERATE < ELEVATED < HIGH < CRITICAL.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityElevated:
		return 3
	case SeverityHigh:
		return 4
	case SeverityCritical:
		return 5
	}
	return 0
}

type IncidentType string

const (
	IncidentElevatedHeartRate IncidentType = "ELEVATED_HEART_RATE"
	IncidentLowSpO2           IncidentType = "LOW_SPO2"
	IncidentHighStressLevel   IncidentType = "HIGH_STRESS_LEVEL"
	IncidentSleepDeprivation  IncidentType = "SLEEP_DEPRIVATION"
	IncidentIrregularPattern  IncidentType = "IRREGULAR_PATTERN"
	IncidentCombinedAnomaly   IncidentType = "COMBINED_ANOMALY"
)

// AnomalyFinding is a single metric's threshold breach. Transient; it is
// only persisted through the incident it contributes to.
type AnomalyFinding struct {
	MetricType     MetricType `json:"metric_type"`
	CurrentValue   float32    `json:"current_value"`
	ThresholdValue float32    `json:"threshold_value"`
	Severity       Severity   `json:"severity"`
	Description    string     `json:"description"`
}

// PredictionResult lives for the duration of one evaluation cycle.
type PredictionResult struct {
	IncidentType         IncidentType     `json:"incident_type"`
	Severity             Severity         `json:"severity"`
	Findings             []AnomalyFinding `json:"findings"`
	RequiresVerification bool             `json:"requires_verification"`
}

// VerificationState is a read-only snapshot of the active verification run.
type VerificationState struct {
	IncidentID    string           `json:"incident_id"`
	Result        PredictionResult `json:"result"`
	CurrentStep   int              `json:"current_step"`
	TotalSteps    int              `json:"total_steps"`
	StepStartTime int64            `json:"step_start_time"`
}

// Incidents

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "INCREASING"
	TrendDecreasing TrendDirection = "DECREASING"
	TrendStable     TrendDirection = "STABLE"
	TrendVolatile   TrendDirection = "VOLATILE"
)

type DetectedMetric struct {
	MetricType          MetricType     `json:"metric_type"`
	CurrentValue        float32        `json:"current_value"`
	ThresholdValue      float32        `json:"threshold_value"`
	DeviationPercentage float32        `json:"deviation_percentage"`
	TrendDirection      TrendDirection `json:"trend_direction"`
}

// PredictionIncident is the persisted record of a confirmed anomaly.
type PredictionIncident struct {
	ID                         string           `json:"id"`
	UserID                     int              `json:"user_id"`
	Timestamp                  int64            `json:"timestamp"`
	IncidentType               IncidentType     `json:"incident_type"`
	Severity                   Severity         `json:"severity"`
	DetectedMetrics            []DetectedMetric `json:"detected_metrics"`
	Explanation                string           `json:"explanation"`
	Recommendations            []string         `json:"recommendations"`
	VerificationReadingIDs     []string         `json:"verification_reading_ids"`
	Resolved                   bool             `json:"resolved"`
	ResolvedAt                 *int64           `json:"resolved_at,omitempty"`
	Escalated                  bool             `json:"escalated"`
	EmergencyWorkflowTriggered bool             `json:"emergency_workflow_triggered"`
}

// Emergency workflow

type ActionType string

const (
	ActionNotifyEmergencyContact ActionType = "NOTIFY_EMERGENCY_CONTACT"
	ActionCallEmergencyServices  ActionType = "CALL_EMERGENCY_SERVICES"
	ActionNotifyHospital         ActionType = "NOTIFY_HOSPITAL"
	ActionGetCurrentLocation     ActionType = "GET_CURRENT_LOCATION"
	ActionFindNearestHospital    ActionType = "FIND_NEAREST_HOSPITAL"
	ActionSendSMSAlert           ActionType = "SEND_SMS_ALERT"
)

type EmergencyOutcome string

const (
	OutcomeContactedServices EmergencyOutcome = "CONTACTED_EMERGENCY_SERVICES"
	OutcomeUserCancelled     EmergencyOutcome = "USER_CANCELLED"
	OutcomeFalseAlarm        EmergencyOutcome = "FALSE_ALARM"
	OutcomeMedicalAttention  EmergencyOutcome = "MEDICAL_ATTENTION_PROVIDED"
	OutcomeTransport         EmergencyOutcome = "TRANSPORT_TO_HOSPITAL"
	OutcomeAdmitted          EmergencyOutcome = "ADMITTED_TO_HOSPITAL"
	OutcomeResolvedOnSite    EmergencyOutcome = "RESOLVED_ON_SITE"
)

type EmergencyAction struct {
	ActionType   ActionType        `json:"action_type"`
	Timestamp    int64             `json:"timestamp"`
	Success      bool              `json:"success"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float32 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
	Provider  string  `json:"provider"`
}

type EmergencyLog struct {
	ID                      string             `json:"id"`
	UserID                  int                `json:"user_id"`
	Timestamp               int64              `json:"timestamp"`
	IncidentID              string             `json:"incident_id"`
	Actions                 []EmergencyAction  `json:"actions"`
	ContactsNotified        []EmergencyContact `json:"contacts_notified"`
	EmergencyServicesCalled bool               `json:"emergency_services_called"`
	Location                LocationData       `json:"location"`
	ResponseTime            *int64             `json:"response_time,omitempty"`
	Outcome                 *EmergencyOutcome  `json:"outcome,omitempty"`
	Notes                   string             `json:"notes,omitempty"`
}

// User profile

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type AutonomyLevel string

const (
	AutonomySemiAutomatic  AutonomyLevel = "SEMI_AUTOMATIC"
	AutonomyFullyAutomatic AutonomyLevel = "FULLY_AUTOMATIC"
)

type LifestyleProfile struct {
	Smoking                 bool    `json:"smoking"`
	Alcohol                 bool    `json:"alcohol"`
	DailyWaterIntake        float32 `json:"daily_water_intake"`
	WeeklyExerciseFrequency string  `json:"weekly_exercise_frequency"`
	AverageSleepHours       float32 `json:"average_sleep_hours"`
}

type MedicalProfile struct {
	KnownConditions    []string `json:"known_conditions"`
	OtherConditions    string   `json:"other_conditions,omitempty"`
	CurrentMedications string   `json:"current_medications,omitempty"`
}

type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type PrimaryDoctor struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type UserProfile struct {
	ID               int              `json:"id"`
	Email            string           `json:"email"`
	FullName         string           `json:"full_name"`
	Age              int              `json:"age"`
	Gender           Gender           `json:"gender"`
	HeightCm         int              `json:"height_cm"`
	WeightKg         int              `json:"weight_kg"`
	Lifestyle        LifestyleProfile `json:"lifestyle"`
	Medical          MedicalProfile   `json:"medical"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	PrimaryDoctor    PrimaryDoctor    `json:"primary_doctor"`
	AutonomyLevel    AutonomyLevel    `json:"autonomy_level"`
	CreatedAt        int64            `json:"created_at"`
	UpdatedAt        int64            `json:"updated_at"`
}

// Alert events emitted by the monitoring agent to the presentation layer.

type AlertEventKind string

const (
	EventVerificationStarted   AlertEventKind = "VERIFICATION_STARTED"
	EventVerificationCancelled AlertEventKind = "VERIFICATION_CANCELLED"
	EventAlertTriggered        AlertEventKind = "ALERT_TRIGGERED"
	EventAlertAcknowledged     AlertEventKind = "ALERT_ACKNOWLEDGED"
	EventAlertCancelled        AlertEventKind = "ALERT_CANCELLED"
)

type AlertEvent struct {
	Kind            AlertEventKind `json:"kind"`
	IncidentID      string         `json:"incident_id,omitempty"`
	Severity        Severity       `json:"severity,omitempty"`
	Sample          *VitalsSample  `json:"sample,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Timestamp       int64          `json:"timestamp"`
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// unit used across all persisted records.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
