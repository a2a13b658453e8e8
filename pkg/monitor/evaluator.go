package monitor

import (
	"fmt"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

// Evaluator maps one vitals sample to zero or more anomaly findings. It is a
// pure function over its inputs: no I/O, no clock, no state mutation.
type Evaluator struct {
	thresholds     Thresholds
	directCritical bool
}

func NewEvaluator(thresholds Thresholds, directCritical bool) *Evaluator {
	return &Evaluator{
		thresholds:     thresholds.Clamp(),
		directCritical: directCritical,
	}
}

func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate returns nil when the sample breaches no threshold. Findings are
// ordered heart rate, SpO2, stress, sleep; that order breaks severity ties
// when picking the primary finding.
func (e *Evaluator) Evaluate(sample models.VitalsSample) *models.PredictionResult {
	var findings []models.AnomalyFinding

	if sample.HeartRate > e.thresholds.HeartRate {
		severity := models.SeverityModerate
		switch {
		case sample.HeartRate > 120:
			severity = models.SeverityHigh
		case sample.HeartRate > 110:
			severity = models.SeverityElevated
		}
		findings = append(findings, models.AnomalyFinding{
			MetricType:     models.MetricHeartRate,
			CurrentValue:   float32(sample.HeartRate),
			ThresholdValue: float32(e.thresholds.HeartRate),
			Severity:       severity,
			Description:    fmt.Sprintf("Heart rate %d bpm exceeds threshold of %d bpm", sample.HeartRate, e.thresholds.HeartRate),
		})
	}

	if sample.SpO2 < e.thresholds.SpO2 {
		severity := models.SeverityElevated
		switch {
		case sample.SpO2 < 88:
			severity = models.SeverityCritical
		case sample.SpO2 < 92:
			severity = models.SeverityHigh
		}
		findings = append(findings, models.AnomalyFinding{
			MetricType:     models.MetricSpO2,
			CurrentValue:   float32(sample.SpO2),
			ThresholdValue: float32(e.thresholds.SpO2),
			Severity:       severity,
			Description:    fmt.Sprintf("SpO2 %d%% below threshold of %d%%", sample.SpO2, e.thresholds.SpO2),
		})
	}

	if sample.StressScore > e.thresholds.StressScore {
		severity := models.SeverityElevated
		switch {
		case sample.StressScore > 80:
			severity = models.SeverityCritical
		case sample.StressScore > 70:
			severity = models.SeverityHigh
		}
		findings = append(findings, models.AnomalyFinding{
			MetricType:     models.MetricStressScore,
			CurrentValue:   float32(sample.StressScore),
			ThresholdValue: float32(e.thresholds.StressScore),
			Severity:       severity,
			Description:    fmt.Sprintf("Stress score %d exceeds threshold of %d", sample.StressScore, e.thresholds.StressScore),
		})
	}

	if sample.SleepHours < e.thresholds.SleepHours {
		severity := models.SeverityModerate
		switch {
		case sample.SleepHours < 4:
			severity = models.SeverityHigh
		case sample.SleepHours < 5:
			severity = models.SeverityElevated
		}
		findings = append(findings, models.AnomalyFinding{
			MetricType:     models.MetricSleepHours,
			CurrentValue:   sample.SleepHours,
			ThresholdValue: e.thresholds.SleepHours,
			Severity:       severity,
			Description:    fmt.Sprintf("Sleep duration %.1fh below recommended minimum of %.1fh", sample.SleepHours, e.thresholds.SleepHours),
		})
	}

	if len(findings) == 0 {
		return nil
	}

	primary := findings[0]
	for _, f := range findings[1:] {
		if f.Severity.Rank() > primary.Severity.Rank() {
			primary = f
		}
	}

	requiresVerification := true
	if e.directCritical && primary.Severity == models.SeverityCritical {
		requiresVerification = false
	}

	return &models.PredictionResult{
		IncidentType:         incidentTypeFor(primary.MetricType),
		Severity:             primary.Severity,
		Findings:             findings,
		RequiresVerification: requiresVerification,
	}
}

// Breaches reports whether the sample breaches the threshold for one metric.
// The verification run uses this raw predicate, not the severity bands.
func (e *Evaluator) Breaches(sample models.VitalsSample, metric models.MetricType) bool {
	switch metric {
	case models.MetricHeartRate:
		return sample.HeartRate > e.thresholds.HeartRate
	case models.MetricSpO2:
		return sample.SpO2 < e.thresholds.SpO2
	case models.MetricStressScore:
		return sample.StressScore > e.thresholds.StressScore
	case models.MetricSleepHours:
		return sample.SleepHours < e.thresholds.SleepHours
	}
	return false
}

func incidentTypeFor(metric models.MetricType) models.IncidentType {
	switch metric {
	case models.MetricHeartRate:
		return models.IncidentElevatedHeartRate
	case models.MetricSpO2:
		return models.IncidentLowSpO2
	case models.MetricStressScore:
		return models.IncidentHighStressLevel
	case models.MetricSleepHours:
		return models.IncidentSleepDeprivation
	}
	return models.IncidentElevatedHeartRate
}
