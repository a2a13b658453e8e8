package monitor

import (
	"fmt"
	"os"

	"github.com/atharvamohekar/guardian-ai/pkg/common/config"
	"gopkg.in/yaml.v3"
)

// Thresholds holds the per-metric breach limits. Defaults match the shipped
// rule set; values are injectable but always clamped to a physiologically
// sane range instead of failing.
type Thresholds struct {
	HeartRate   int     `yaml:"heart_rate" json:"heart_rate"`     // bpm, breach above
	SpO2        int     `yaml:"spo2" json:"spo2"`                 // %, breach below
	StressScore int     `yaml:"stress_score" json:"stress_score"` // breach above
	SleepHours  float32 `yaml:"sleep_hours" json:"sleep_hours"`   // hours, breach below
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRate:   100,
		SpO2:        94,
		StressScore: 60,
		SleepHours:  6.0,
	}
}

// Clamp forces each threshold into its safe range.
func (t Thresholds) Clamp() Thresholds {
	t.HeartRate = clampInt(t.HeartRate, 40, 220)
	t.SpO2 = clampInt(t.SpO2, 50, 100)
	t.StressScore = clampInt(t.StressScore, 1, 100)
	if t.SleepHours < 0.5 {
		t.SleepHours = 0.5
	}
	if t.SleepHours > 24 {
		t.SleepHours = 24
	}
	return t
}

// ThresholdsFromConfig builds the active thresholds from the environment,
// optionally overridden by a YAML profile file.
func ThresholdsFromConfig(cfg *config.Config) (Thresholds, error) {
	t := Thresholds{
		HeartRate:   cfg.HeartRateThreshold,
		SpO2:        cfg.SpO2Threshold,
		StressScore: cfg.StressScoreThreshold,
		SleepHours:  float32(cfg.SleepHoursThreshold),
	}

	if cfg.ThresholdsFile != "" {
		loaded, err := LoadThresholdsFile(cfg.ThresholdsFile)
		if err != nil {
			return t.Clamp(), err
		}
		t = loaded
	}

	return t.Clamp(), nil
}

func LoadThresholdsFile(path string) (Thresholds, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return DefaultThresholds(), fmt.Errorf("reading thresholds file: %w", err)
	}

	t := DefaultThresholds()
	if err := yaml.Unmarshal(content, &t); err != nil {
		return DefaultThresholds(), fmt.Errorf("parsing thresholds file: %w", err)
	}
	return t, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
