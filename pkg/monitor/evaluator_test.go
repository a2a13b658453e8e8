package monitor

import (
	"reflect"
	"testing"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

func healthySample() models.VitalsSample {
	return models.VitalsSample{
		ID:          "vitals_test",
		UserID:      1,
		Timestamp:   1700000000000,
		HeartRate:   72,
		SpO2:        98,
		StressScore: 25,
		Steps:       850,
		SleepHours:  7.5,
		Source:      models.SourceSimulated,
	}
}

func TestEvaluateNormalSample(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	if result := evaluator.Evaluate(healthySample()); result != nil {
		t.Fatalf("expected no prediction for a healthy sample, got %+v", result)
	}
}

func TestEvaluateElevatedHeartRate(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	sample := healthySample()
	sample.HeartRate = 125

	result := evaluator.Evaluate(sample)
	if result == nil {
		t.Fatal("expected a prediction")
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(result.Findings))
	}
	if result.Findings[0].MetricType != models.MetricHeartRate {
		t.Fatalf("expected heart rate finding, got %s", result.Findings[0].MetricType)
	}
	if result.Severity != models.SeverityHigh {
		t.Fatalf("expected HIGH severity for 125 bpm, got %s", result.Severity)
	}
	if result.IncidentType != models.IncidentElevatedHeartRate {
		t.Fatalf("expected ELEVATED_HEART_RATE incident, got %s", result.IncidentType)
	}
	if !result.RequiresVerification {
		t.Fatal("expected verification to be required")
	}
}

func TestEvaluateSeverityBands(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	cases := []struct {
		name     string
		mutate   func(*models.VitalsSample)
		severity models.Severity
	}{
		{"heart rate 105 moderate", func(s *models.VitalsSample) { s.HeartRate = 105 }, models.SeverityModerate},
		{"heart rate 115 elevated", func(s *models.VitalsSample) { s.HeartRate = 115 }, models.SeverityElevated},
		{"heart rate 125 high", func(s *models.VitalsSample) { s.HeartRate = 125 }, models.SeverityHigh},
		{"spo2 93 elevated", func(s *models.VitalsSample) { s.SpO2 = 93 }, models.SeverityElevated},
		{"spo2 90 high", func(s *models.VitalsSample) { s.SpO2 = 90 }, models.SeverityHigh},
		{"spo2 85 critical", func(s *models.VitalsSample) { s.SpO2 = 85 }, models.SeverityCritical},
		{"stress 65 elevated", func(s *models.VitalsSample) { s.StressScore = 65 }, models.SeverityElevated},
		{"stress 75 high", func(s *models.VitalsSample) { s.StressScore = 75 }, models.SeverityHigh},
		{"stress 85 critical", func(s *models.VitalsSample) { s.StressScore = 85 }, models.SeverityCritical},
		{"sleep 5.5 moderate", func(s *models.VitalsSample) { s.SleepHours = 5.5 }, models.SeverityModerate},
		{"sleep 4.5 elevated", func(s *models.VitalsSample) { s.SleepHours = 4.5 }, models.SeverityElevated},
		{"sleep 3.5 high", func(s *models.VitalsSample) { s.SleepHours = 3.5 }, models.SeverityHigh},
	}

	for _, tc := range cases {
		sample := healthySample()
		tc.mutate(&sample)

		result := evaluator.Evaluate(sample)
		if result == nil {
			t.Fatalf("%s: expected a prediction", tc.name)
		}
		if result.Severity != tc.severity {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.severity, result.Severity)
		}
	}
}

func TestEvaluatePrimaryFindingTieBreak(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	// Both findings rank HIGH; the first in evaluation order wins.
	sample := healthySample()
	sample.HeartRate = 125
	sample.SleepHours = 3.5

	result := evaluator.Evaluate(sample)
	if result == nil {
		t.Fatal("expected a prediction")
	}
	if len(result.Findings) != 2 {
		t.Fatalf("expected two findings, got %d", len(result.Findings))
	}
	if result.IncidentType != models.IncidentElevatedHeartRate {
		t.Fatalf("expected tie to break toward heart rate, got %s", result.IncidentType)
	}
}

func TestEvaluateHigherSeverityWins(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	sample := healthySample()
	sample.HeartRate = 105 // MODERATE
	sample.SpO2 = 85       // CRITICAL

	result := evaluator.Evaluate(sample)
	if result == nil {
		t.Fatal("expected a prediction")
	}
	if result.IncidentType != models.IncidentLowSpO2 {
		t.Fatalf("expected SpO2 to be primary, got %s", result.IncidentType)
	}
	if result.Severity != models.SeverityCritical {
		t.Fatalf("expected CRITICAL, got %s", result.Severity)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	sample := healthySample()
	sample.HeartRate = 112
	sample.StressScore = 66

	first := evaluator.Evaluate(sample)
	second := evaluator.Evaluate(sample)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same sample produced different predictions:\n%+v\n%+v", first, second)
	}
}

func TestDirectCriticalBypassesVerification(t *testing.T) {
	sample := healthySample()
	sample.SpO2 = 85

	withFlag := NewEvaluator(DefaultThresholds(), true).Evaluate(sample)
	if withFlag == nil || withFlag.RequiresVerification {
		t.Fatalf("expected critical prediction to skip verification, got %+v", withFlag)
	}

	withoutFlag := NewEvaluator(DefaultThresholds(), false).Evaluate(sample)
	if withoutFlag == nil || !withoutFlag.RequiresVerification {
		t.Fatalf("expected verification without the flag, got %+v", withoutFlag)
	}
}

func TestBreachesUsesRawThresholds(t *testing.T) {
	evaluator := NewEvaluator(DefaultThresholds(), false)

	sample := healthySample()
	sample.HeartRate = 101
	if !evaluator.Breaches(sample, models.MetricHeartRate) {
		t.Fatal("expected 101 bpm to breach the raw threshold")
	}
	if evaluator.Breaches(sample, models.MetricSpO2) {
		t.Fatal("did not expect an SpO2 breach")
	}

	sample.HeartRate = 100
	if evaluator.Breaches(sample, models.MetricHeartRate) {
		t.Fatal("threshold value itself must not count as a breach")
	}
}
