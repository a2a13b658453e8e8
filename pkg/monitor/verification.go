package monitor

import (
	"fmt"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/google/uuid"
)

// verificationRun tracks one bounded confirmation sequence. It is owned
// exclusively by the agent; every access happens under the agent's lock.
type verificationRun struct {
	incidentID string
	result     models.PredictionResult
	readings   []models.VitalsSample
	totalSteps int
	stepStart  int64
}

func newVerificationRun(result models.PredictionResult, first models.VitalsSample, totalSteps int) *verificationRun {
	if totalSteps < 1 {
		totalSteps = 1
	}
	return &verificationRun{
		incidentID: fmt.Sprintf("prediction_%s", uuid.New().String()),
		result:     result,
		readings:   []models.VitalsSample{first},
		totalSteps: totalSteps,
		stepStart:  models.NowMillis(),
	}
}

func (r *verificationRun) step() int {
	return len(r.readings)
}

// addReading appends the next confirmatory reading and reports whether the
// run has collected all of its steps.
func (r *verificationRun) addReading(sample models.VitalsSample) bool {
	r.readings = append(r.readings, sample)
	r.stepStart = models.NowMillis()
	return len(r.readings) >= r.totalSteps
}

// anomalyPersists is the completion check: every collected reading must
// breach at least one of the original findings' metric thresholds. The raw
// threshold predicate is used, not the severity bands.
func (r *verificationRun) anomalyPersists(breaches func(models.VitalsSample, models.MetricType) bool) bool {
	for _, reading := range r.readings {
		readingBreaches := false
		for _, finding := range r.result.Findings {
			if breaches(reading, finding.MetricType) {
				readingBreaches = true
				break
			}
		}
		if !readingBreaches {
			return false
		}
	}
	return true
}

func (r *verificationRun) readingIDs() []string {
	ids := make([]string, 0, len(r.readings))
	for _, reading := range r.readings {
		ids = append(ids, reading.ID)
	}
	return ids
}

func (r *verificationRun) snapshot() *models.VerificationState {
	return &models.VerificationState{
		IncidentID:    r.incidentID,
		Result:        r.result,
		CurrentStep:   r.step(),
		TotalSteps:    r.totalSteps,
		StepStartTime: r.stepStart,
	}
}
