package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/google/uuid"
)

// IncidentStore is the persistence dependency of the alert emitter.
type IncidentStore interface {
	InsertIncident(ctx context.Context, incident *models.PredictionIncident) error
}

// Emitter materializes a confirmed prediction into a persisted incident.
type Emitter struct {
	incidents IncidentStore
}

func NewEmitter(incidents IncidentStore) *Emitter {
	return &Emitter{incidents: incidents}
}

// Emit builds and persists the incident for a confirmed prediction. The
// readings are the evidence set; the last one is the triggering sample.
// A persistence failure is returned to the caller, never swallowed.
func (e *Emitter) Emit(ctx context.Context, userID int, result models.PredictionResult, readings []models.VitalsSample) (*models.PredictionIncident, error) {
	incident := buildIncident(userID, result, readings)

	if err := e.incidents.InsertIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("persisting incident: %w", err)
	}

	return incident, nil
}

func buildIncident(userID int, result models.PredictionResult, readings []models.VitalsSample) *models.PredictionIncident {
	detected := make([]models.DetectedMetric, 0, len(result.Findings))
	descriptions := make([]string, 0, len(result.Findings))
	for _, finding := range result.Findings {
		deviation := float32(0)
		if finding.ThresholdValue != 0 {
			deviation = (finding.CurrentValue - finding.ThresholdValue) / finding.ThresholdValue * 100
		}
		detected = append(detected, models.DetectedMetric{
			MetricType:          finding.MetricType,
			CurrentValue:        finding.CurrentValue,
			ThresholdValue:      finding.ThresholdValue,
			DeviationPercentage: deviation,
			TrendDirection:      models.TrendIncreasing,
		})
		descriptions = append(descriptions, finding.Description)
	}

	readingIDs := make([]string, 0, len(readings))
	for _, reading := range readings {
		readingIDs = append(readingIDs, reading.ID)
	}

	return &models.PredictionIncident{
		ID:                     fmt.Sprintf("incident_%s", uuid.New().String()),
		UserID:                 userID,
		Timestamp:              models.NowMillis(),
		IncidentType:           result.IncidentType,
		Severity:               result.Severity,
		DetectedMetrics:        detected,
		Explanation:            "Multiple anomalies detected: " + strings.Join(descriptions, ", "),
		Recommendations:        recommendationsFor(result.Findings),
		VerificationReadingIDs: readingIDs,
	}
}
