package monitor

import (
	"reflect"
	"testing"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"gorm.io/datatypes"
)

func TestIncidentRecordRoundTrip(t *testing.T) {
	resolvedAt := int64(1700000100000)
	incident := &models.PredictionIncident{
		ID:           "incident_roundtrip",
		UserID:       1,
		Timestamp:    1700000000000,
		IncidentType: models.IncidentLowSpO2,
		Severity:     models.SeverityHigh,
		DetectedMetrics: []models.DetectedMetric{{
			MetricType:          models.MetricSpO2,
			CurrentValue:        90,
			ThresholdValue:      94,
			DeviationPercentage: -4.2553196,
			TrendDirection:      models.TrendIncreasing,
		}},
		Explanation:            "Multiple anomalies detected: SpO2 90% below threshold of 94%",
		Recommendations:        recommendationTemplates[models.MetricSpO2],
		VerificationReadingIDs: []string{"vitals_a", "vitals_b", "vitals_c"},
		Resolved:               true,
		ResolvedAt:             &resolvedAt,
	}

	rec, err := toIncidentRecord(incident)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back := toIncidentModel(*rec)
	if !reflect.DeepEqual(*incident, back) {
		t.Fatalf("round trip changed the incident:\nwant %+v\ngot  %+v", *incident, back)
	}
}

func TestIncidentModelDegradesMalformedColumns(t *testing.T) {
	rec := IncidentRecord{
		ID:                   "incident_damaged",
		UserID:               1,
		IncidentType:         string(models.IncidentElevatedHeartRate),
		Severity:             string(models.SeverityHigh),
		DetectedMetrics:      datatypes.JSON(`{broken`),
		Recommendations:      datatypes.JSON(`["Avoid strenuous activities"]`),
		VerificationReadings: datatypes.JSON(`not json`),
	}

	incident := toIncidentModel(rec)
	if incident.DetectedMetrics != nil {
		t.Fatalf("expected malformed metrics to decode as empty, got %+v", incident.DetectedMetrics)
	}
	if incident.VerificationReadingIDs != nil {
		t.Fatalf("expected malformed readings to decode as empty, got %v", incident.VerificationReadingIDs)
	}
	// The intact column still decodes.
	if len(incident.Recommendations) != 1 {
		t.Fatalf("expected the valid column to survive, got %v", incident.Recommendations)
	}
	if incident.ID != "incident_damaged" || incident.Severity != models.SeverityHigh {
		t.Fatalf("scalar columns must be unaffected, got %+v", incident)
	}
}
