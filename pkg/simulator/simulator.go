package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/google/uuid"
)

type Scenario string

const (
	ScenarioNormal                  Scenario = "NORMAL"
	ScenarioGradualHeartRateIncrease Scenario = "GRADUAL_HEART_RATE_INCREASE"
	ScenarioSuddenSpO2Drop          Scenario = "SUDDEN_SPO2_DROP"
	ScenarioStressSpikePattern      Scenario = "STRESS_SPIKE_PATTERN"
	ScenarioSleepDeprivation        Scenario = "SLEEP_DEPRIVATION"
	ScenarioMultipleAnomalies       Scenario = "MULTIPLE_ANOMALIES"
)

func ParseScenario(raw string) (Scenario, error) {
	switch Scenario(raw) {
	case ScenarioNormal, ScenarioGradualHeartRateIncrease, ScenarioSuddenSpO2Drop,
		ScenarioStressSpikePattern, ScenarioSleepDeprivation, ScenarioMultipleAnomalies:
		return Scenario(raw), nil
	}
	return "", fmt.Errorf("unknown scenario %q", raw)
}

// Baseline vitals for a healthy user.
const (
	baselineHeartRate    = 72
	baselineSpO2         = 98
	baselineStressScore  = 25
	baselineStepsPerHour = 850
	baselineSleepHours   = float32(7.5)
)

// Simulator produces plausible biometric time series. One simulated reading
// normally covers 15 minutes; the compression factor shortens the wall-clock
// wait between readings for demos.
type Simulator struct {
	mu            sync.Mutex
	userID        int
	scenario      Scenario
	scenarioSince time.Time
	compression   int
	rng           *rand.Rand
}

func New(userID int, scenario Scenario, compression int) *Simulator {
	return &Simulator{
		userID:        userID,
		scenario:      scenario,
		scenarioSince: time.Now(),
		compression:   clampCompression(compression),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) Scenario() Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenario
}

func (s *Simulator) SetScenario(scenario Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenario = scenario
	s.scenarioSince = time.Now()
}

func (s *Simulator) CompressionFactor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compression
}

// SetCompressionFactor clamps to 1x real-time through 1440x.
func (s *Simulator) SetCompressionFactor(factor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compression = clampCompression(factor)
}

func (s *Simulator) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]interface{}{
		"scenario":           string(s.scenario),
		"compression_factor": s.compression,
		"tick_interval":      tickInterval(s.compression).String(),
		"baseline_heart_rate": baselineHeartRate,
		"baseline_spo2":       baselineSpO2,
	}
}

// TickInterval is the wall-clock wait between readings for the current
// compression factor.
func (s *Simulator) TickInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tickInterval(s.compression)
}

func tickInterval(compression int) time.Duration {
	switch compression {
	case 1:
		return 15 * time.Minute
	case 30:
		return 30 * time.Second
	case 60:
		return 10 * time.Second
	case 300:
		return 2 * time.Second
	default:
		return 30 * time.Second
	}
}

func clampCompression(factor int) int {
	if factor < 1 {
		return 1
	}
	if factor > 1440 {
		return 1440
	}
	return factor
}

// Run publishes readings until the context is cancelled. Publish failures
// are logged and the loop keeps going; the stream must outlive transient
// broker trouble.
func (s *Simulator) Run(ctx context.Context, publish func(context.Context, models.VitalsSample) error) error {
	for {
		sample := s.Next()
		if err := publish(ctx, sample); err != nil {
			logger.Log.WithError(err).Warn("failed to publish simulated sample")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.TickInterval()):
		}
	}
}

// Next generates one reading for the active scenario.
func (s *Simulator) Next() models.VitalsSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := time.Now().UnixMilli()
	switch s.scenario {
	case ScenarioGradualHeartRateIncrease:
		return s.gradualHeartRateIncrease(timestamp)
	case ScenarioSuddenSpO2Drop:
		return s.suddenSpO2Drop(timestamp)
	case ScenarioStressSpikePattern:
		return s.stressSpikePattern(timestamp)
	case ScenarioSleepDeprivation:
		return s.sleepDeprivation(timestamp)
	case ScenarioMultipleAnomalies:
		return s.multipleAnomalies(timestamp)
	default:
		return s.normalVitals(timestamp)
	}
}

func (s *Simulator) normalVitals(timestamp int64) models.VitalsSample {
	return s.sample(timestamp,
		baselineHeartRate+s.intIn(-8, 9),
		baselineSpO2+s.intIn(-2, 2),
		baselineStressScore+s.intIn(-10, 10),
		baselineStepsPerHour+s.intIn(-100, 100),
		baselineSleepHours+s.floatIn(-0.5, 0.5),
		false, nil)
}

func (s *Simulator) gradualHeartRateIncrease(timestamp int64) models.VitalsSample {
	simMinutes := int(time.Since(s.scenarioSince).Minutes() * float64(s.compression))
	increase := simMinutes * 2
	if increase > 50 {
		increase = 50
	}

	heartRate := baselineHeartRate + increase + s.intIn(-5, 5)
	isAnomaly := heartRate > 100
	return s.sample(timestamp,
		heartRate,
		baselineSpO2+s.intIn(-1, 1),
		baselineStressScore+increase/2+s.intIn(-5, 5),
		baselineStepsPerHour+s.intIn(-50, 50),
		baselineSleepHours+s.floatIn(-0.3, 0.3),
		isAnomaly, anomalyIf(isAnomaly, models.AnomalyElevatedHeartRate))
}

func (s *Simulator) suddenSpO2Drop(timestamp int64) models.VitalsSample {
	spO2 := baselineSpO2 + s.intIn(-3, 2)
	if s.rng.Float32() < 0.3 {
		spO2 = 88 + s.intIn(-5, 3)
	}
	isAnomaly := spO2 < 94

	stressBump := 0
	if isAnomaly {
		stressBump = 20
	}
	// Heart rate rises in response to low oxygen.
	return s.sample(timestamp,
		baselineHeartRate+s.intIn(-10, 15),
		spO2,
		baselineStressScore+stressBump+s.intIn(-8, 8),
		baselineStepsPerHour+s.intIn(-80, 30),
		baselineSleepHours+s.floatIn(-0.4, 0.2),
		isAnomaly, anomalyIf(isAnomaly, models.AnomalyLowSpO2))
}

func (s *Simulator) stressSpikePattern(timestamp int64) models.VitalsSample {
	multiplier := float32(1.0)
	switch (timestamp / int64(5*s.compression*1000)) % 4 {
	case 1:
		multiplier = 2.5
	case 2:
		multiplier = 3.0
	case 3:
		multiplier = 1.2
	}

	stressScore := int(baselineStressScore*multiplier) + s.intIn(-5, 5)
	isAnomaly := stressScore > 60
	return s.sample(timestamp,
		baselineHeartRate+stressScore/3+s.intIn(-8, 8),
		baselineSpO2+s.intIn(-2, 2),
		stressScore,
		baselineStepsPerHour+s.intIn(-100, 50),
		baselineSleepHours+s.floatIn(-0.5, 0.5),
		isAnomaly, anomalyIf(isAnomaly, models.AnomalyHighStress))
}

func (s *Simulator) sleepDeprivation(timestamp int64) models.VitalsSample {
	sleepHours := baselineSleepHours - s.floatIn(1.5, 3.0)
	isAnomaly := sleepHours < 5.5

	stressBump := 5
	if isAnomaly {
		stressBump = 25
	}
	return s.sample(timestamp,
		baselineHeartRate+s.intIn(-5, 15),
		baselineSpO2+s.intIn(-3, 2),
		baselineStressScore+stressBump+s.intIn(-8, 8),
		baselineStepsPerHour+s.intIn(-150, 20),
		sleepHours,
		isAnomaly, anomalyIf(isAnomaly, models.AnomalySleepDeprivation))
}

func (s *Simulator) multipleAnomalies(timestamp int64) models.VitalsSample {
	anomalyType := models.AnomalyCombined
	return s.sample(timestamp,
		baselineHeartRate+35+s.intIn(-10, 10),
		91+s.intIn(-3, 2),
		75+s.intIn(-10, 10),
		baselineStepsPerHour-200+s.intIn(-50, 30),
		baselineSleepHours-2.5+s.floatIn(-0.5, 0.5),
		true, &anomalyType)
}

func (s *Simulator) sample(timestamp int64, heartRate, spO2, stressScore, steps int, sleepHours float32, isAnomaly bool, anomalyType *models.AnomalyType) models.VitalsSample {
	return models.VitalsSample{
		ID:          fmt.Sprintf("vitals_%s", uuid.New().String()),
		UserID:      s.userID,
		Timestamp:   timestamp,
		HeartRate:   heartRate,
		SpO2:        spO2,
		StressScore: stressScore,
		Steps:       steps,
		SleepHours:  sleepHours,
		Source:      models.SourceSimulated,
		IsAnomaly:   isAnomaly,
		AnomalyType: anomalyType,
	}
}

// intIn returns a value in [lo, hi).
func (s *Simulator) intIn(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo)
}

// floatIn returns a value in [lo, hi).
func (s *Simulator) floatIn(lo, hi float32) float32 {
	return lo + s.rng.Float32()*(hi-lo)
}

func anomalyIf(isAnomaly bool, anomalyType models.AnomalyType) *models.AnomalyType {
	if !isAnomaly {
		return nil
	}
	return &anomalyType
}
