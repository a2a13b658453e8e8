package simulator

import (
	"testing"
	"time"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

func TestParseScenario(t *testing.T) {
	if _, err := ParseScenario("SUDDEN_SPO2_DROP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseScenario("ZOMBIE_OUTBREAK"); err == nil {
		t.Fatal("expected an error for an unknown scenario")
	}
}

func TestNormalScenarioStaysHealthy(t *testing.T) {
	sim := New(1, ScenarioNormal, 30)

	for i := 0; i < 200; i++ {
		sample := sim.Next()
		if sample.UserID != 1 || sample.Source != models.SourceSimulated {
			t.Fatalf("unexpected sample identity: %+v", sample)
		}
		if sample.HeartRate < 60 || sample.HeartRate > 85 {
			t.Fatalf("heart rate %d outside normal band", sample.HeartRate)
		}
		if sample.SpO2 < 95 || sample.SpO2 > 100 {
			t.Fatalf("SpO2 %d outside normal band", sample.SpO2)
		}
		if sample.IsAnomaly {
			t.Fatalf("normal scenario flagged an anomaly: %+v", sample)
		}
	}
}

func TestMultipleAnomaliesAlwaysAnomalous(t *testing.T) {
	sim := New(1, ScenarioMultipleAnomalies, 30)

	for i := 0; i < 50; i++ {
		sample := sim.Next()
		if !sample.IsAnomaly {
			t.Fatalf("expected every sample flagged anomalous, got %+v", sample)
		}
		if sample.AnomalyType == nil || *sample.AnomalyType != models.AnomalyCombined {
			t.Fatalf("expected COMBINED_ANOMALY, got %v", sample.AnomalyType)
		}
		if sample.HeartRate <= 95 {
			t.Fatalf("expected elevated heart rate, got %d", sample.HeartRate)
		}
	}
}

func TestSampleIDsAreUnique(t *testing.T) {
	sim := New(1, ScenarioNormal, 30)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := sim.Next().ID
		if seen[id] {
			t.Fatalf("duplicate sample id %s", id)
		}
		seen[id] = true
	}
}

func TestCompressionFactorClamped(t *testing.T) {
	sim := New(1, ScenarioNormal, 30)

	sim.SetCompressionFactor(0)
	if got := sim.CompressionFactor(); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	sim.SetCompressionFactor(10_000)
	if got := sim.CompressionFactor(); got != 1440 {
		t.Fatalf("expected clamp to 1440, got %d", got)
	}
}

func TestTickInterval(t *testing.T) {
	cases := map[int]time.Duration{
		1:   15 * time.Minute,
		30:  30 * time.Second,
		60:  10 * time.Second,
		300: 2 * time.Second,
		7:   30 * time.Second, // unmapped factors fall back
	}

	for factor, want := range cases {
		sim := New(1, ScenarioNormal, factor)
		if got := sim.TickInterval(); got != want {
			t.Fatalf("factor %d: expected %s, got %s", factor, want, got)
		}
	}
}

func TestScenarioSwitchTakesEffect(t *testing.T) {
	sim := New(1, ScenarioNormal, 30)
	sim.SetScenario(ScenarioMultipleAnomalies)

	if sim.Scenario() != ScenarioMultipleAnomalies {
		t.Fatalf("expected scenario switch, got %s", sim.Scenario())
	}
	if sample := sim.Next(); !sample.IsAnomaly {
		t.Fatalf("expected the new scenario on the next sample, got %+v", sample)
	}
}
