package profile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// PreferenceStore keeps the per-user settings and flags that are read
// process-wide: the predictions-paused timestamp, autonomy mode, time
// compression, and a handful of counters. Each flag is independent; no
// multi-key transaction is needed.
type PreferenceStore struct {
	client *redis.Client
}

func NewPreferenceStore(client *redis.Client) *PreferenceStore {
	return &PreferenceStore{client: client}
}

func (p *PreferenceStore) key(userID int, field string) string {
	return fmt.Sprintf("guardian:prefs:%d:%s", userID, field)
}

// PredictionsPausedUntil returns the epoch-millis pause deadline, 0 when
// predictions are not paused.
func (p *PreferenceStore) PredictionsPausedUntil(ctx context.Context, userID int) (int64, error) {
	raw, err := p.client.Get(ctx, p.key(userID, "pause_predictions_until")).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (p *PreferenceStore) SetPredictionsPausedUntil(ctx context.Context, userID int, until int64) error {
	return p.client.Set(ctx, p.key(userID, "pause_predictions_until"), until, 0).Err()
}

func (p *PreferenceStore) ClearPausePredictions(ctx context.Context, userID int) error {
	return p.client.Del(ctx, p.key(userID, "pause_predictions_until")).Err()
}

func (p *PreferenceStore) AutonomyMode(ctx context.Context, userID int) (models.AutonomyLevel, error) {
	raw, err := p.client.Get(ctx, p.key(userID, "autonomy_mode")).Result()
	if err == redis.Nil {
		return models.AutonomySemiAutomatic, nil
	}
	if err != nil {
		return models.AutonomySemiAutomatic, err
	}
	return models.AutonomyLevel(raw), nil
}

func (p *PreferenceStore) SetAutonomyMode(ctx context.Context, userID int, mode models.AutonomyLevel) error {
	return p.client.Set(ctx, p.key(userID, "autonomy_mode"), string(mode), 0).Err()
}

func (p *PreferenceStore) TimeCompressionFactor(ctx context.Context, userID int) (int, error) {
	raw, err := p.client.Get(ctx, p.key(userID, "time_compression_factor")).Result()
	if err == redis.Nil {
		return 30, nil
	}
	if err != nil {
		return 30, err
	}
	return strconv.Atoi(raw)
}

func (p *PreferenceStore) SetTimeCompressionFactor(ctx context.Context, userID int, factor int) error {
	return p.client.Set(ctx, p.key(userID, "time_compression_factor"), factor, 0).Err()
}

func (p *PreferenceStore) DeveloperMode(ctx context.Context, userID int) (bool, error) {
	raw, err := p.client.Get(ctx, p.key(userID, "developer_mode")).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(raw)
}

func (p *PreferenceStore) SetDeveloperMode(ctx context.Context, userID int, enabled bool) error {
	return p.client.Set(ctx, p.key(userID, "developer_mode"), strconv.FormatBool(enabled), 0).Err()
}

func (p *PreferenceStore) OnboardingComplete(ctx context.Context, userID int) (bool, error) {
	raw, err := p.client.Get(ctx, p.key(userID, "onboarding_complete")).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(raw)
}

func (p *PreferenceStore) SetOnboardingComplete(ctx context.Context, userID int, complete bool) error {
	return p.client.Set(ctx, p.key(userID, "onboarding_complete"), strconv.FormatBool(complete), 0).Err()
}

func (p *PreferenceStore) IncrementEmergencyNotified(ctx context.Context, userID int) (int64, error) {
	return p.client.Incr(ctx, p.key(userID, "emergency_contact_notified_count")).Result()
}

func (p *PreferenceStore) SetLastVitalsUpdate(ctx context.Context, userID int, timestamp int64) error {
	return p.client.Set(ctx, p.key(userID, "last_vitals_update"), timestamp, 0).Err()
}
