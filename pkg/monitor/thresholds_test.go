package monitor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClampForcesSaneRanges(t *testing.T) {
	clamped := Thresholds{HeartRate: 500, SpO2: 20, StressScore: 0, SleepHours: 48}.Clamp()

	if clamped.HeartRate != 220 {
		t.Fatalf("expected heart rate clamped to 220, got %d", clamped.HeartRate)
	}
	if clamped.SpO2 != 50 {
		t.Fatalf("expected SpO2 clamped to 50, got %d", clamped.SpO2)
	}
	if clamped.StressScore != 1 {
		t.Fatalf("expected stress score clamped to 1, got %d", clamped.StressScore)
	}
	if clamped.SleepHours != 24 {
		t.Fatalf("expected sleep hours clamped to 24, got %.1f", clamped.SleepHours)
	}
}

func TestClampKeepsValidValues(t *testing.T) {
	in := DefaultThresholds()
	if out := in.Clamp(); out != in {
		t.Fatalf("expected defaults unchanged, got %+v", out)
	}
}

func TestLoadThresholdsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := []byte("heart_rate: 110\nspo2: 92\nstress_score: 70\nsleep_hours: 5.5\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	loaded, err := LoadThresholdsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.HeartRate != 110 || loaded.SpO2 != 92 || loaded.StressScore != 70 || loaded.SleepHours != 5.5 {
		t.Fatalf("unexpected thresholds: %+v", loaded)
	}
}

func TestLoadThresholdsFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("heart_rate: 110\n"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	loaded, err := LoadThresholdsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Unset keys keep the shipped defaults.
	if loaded.HeartRate != 110 || loaded.SpO2 != DefaultThresholds().SpO2 {
		t.Fatalf("unexpected thresholds: %+v", loaded)
	}
}

func TestLoadThresholdsFileMissing(t *testing.T) {
	loaded, err := LoadThresholdsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if loaded != DefaultThresholds() {
		t.Fatalf("expected defaults on failure, got %+v", loaded)
	}
}
