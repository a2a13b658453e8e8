package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrIncidentNotFound = errors.New("incident not found")

type VitalsRecord struct {
	ID          string  `gorm:"primaryKey;column:id"`
	UserID      int     `gorm:"column:user_id;index"`
	Timestamp   int64   `gorm:"column:timestamp;index"`
	HeartRate   int     `gorm:"column:heart_rate"`
	SpO2        int     `gorm:"column:spo2"`
	StressScore int     `gorm:"column:stress_score"`
	Steps       int     `gorm:"column:steps"`
	SleepHours  float32 `gorm:"column:sleep_hours"`
	Source      string  `gorm:"column:source"`
	IsAnomaly   bool    `gorm:"column:is_anomaly"`
	AnomalyType *string `gorm:"column:anomaly_type"`
}

func (VitalsRecord) TableName() string {
	return "vitals_samples"
}

type IncidentRecord struct {
	ID                         string         `gorm:"primaryKey;column:id"`
	UserID                     int            `gorm:"column:user_id;index"`
	Timestamp                  int64          `gorm:"column:timestamp;index"`
	IncidentType               string         `gorm:"column:incident_type"`
	Severity                   string         `gorm:"column:severity"`
	DetectedMetrics            datatypes.JSON `gorm:"column:detected_metrics"`
	Explanation                string         `gorm:"column:explanation"`
	Recommendations            datatypes.JSON `gorm:"column:recommendations"`
	VerificationReadings       datatypes.JSON `gorm:"column:verification_readings"`
	Resolved                   bool           `gorm:"column:resolved"`
	ResolvedAt                 *int64         `gorm:"column:resolved_at"`
	Escalated                  bool           `gorm:"column:escalated"`
	EmergencyWorkflowTriggered bool           `gorm:"column:emergency_workflow_triggered"`
	CreatedAt                  time.Time      `gorm:"column:created_at"`
}

func (IncidentRecord) TableName() string {
	return "prediction_incidents"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&VitalsRecord{}, &IncidentRecord{})
}

// Vitals history

func (r *Repository) InsertSample(ctx context.Context, sample models.VitalsSample) error {
	rec := VitalsRecord{
		ID:          sample.ID,
		UserID:      sample.UserID,
		Timestamp:   sample.Timestamp,
		HeartRate:   sample.HeartRate,
		SpO2:        sample.SpO2,
		StressScore: sample.StressScore,
		Steps:       sample.Steps,
		SleepHours:  sample.SleepHours,
		Source:      string(sample.Source),
		IsAnomaly:   sample.IsAnomaly,
	}
	if sample.AnomalyType != nil {
		at := string(*sample.AnomalyType)
		rec.AnomalyType = &at
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *Repository) RecentSamples(ctx context.Context, userID, limit int) ([]models.VitalsSample, error) {
	var recs []VitalsRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toSampleModels(recs), nil
}

func (r *Repository) RecentAnomalies(ctx context.Context, userID, limit int) ([]models.VitalsSample, error) {
	var recs []VitalsRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_anomaly = ?", userID, true).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toSampleModels(recs), nil
}

func (r *Repository) DeleteOldSamples(ctx context.Context, retention time.Duration) error {
	if retention <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-retention).UnixMilli()
	return r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&VitalsRecord{}).Error
}

// Incidents

func (r *Repository) InsertIncident(ctx context.Context, incident *models.PredictionIncident) error {
	rec, err := toIncidentRecord(incident)
	if err != nil {
		return err
	}
	rec.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) GetIncident(ctx context.Context, id string) (*models.PredictionIncident, error) {
	var rec IncidentRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrIncidentNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	incident := toIncidentModel(rec)
	return &incident, nil
}

func (r *Repository) ListIncidents(ctx context.Context, userID int) ([]models.PredictionIncident, error) {
	var recs []IncidentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toIncidentModels(recs), nil
}

func (r *Repository) RecentIncidents(ctx context.Context, userID, limit int) ([]models.PredictionIncident, error) {
	var recs []IncidentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toIncidentModels(recs), nil
}

func (r *Repository) MarkResolved(ctx context.Context, id string) error {
	return r.updateIncident(ctx, id, map[string]interface{}{
		"resolved":    true,
		"resolved_at": time.Now().UnixMilli(),
	})
}

func (r *Repository) MarkEscalated(ctx context.Context, id string) error {
	return r.updateIncident(ctx, id, map[string]interface{}{"escalated": true})
}

func (r *Repository) MarkEmergencyWorkflowTriggered(ctx context.Context, id string) error {
	return r.updateIncident(ctx, id, map[string]interface{}{"emergency_workflow_triggered": true})
}

func (r *Repository) updateIncident(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&IncidentRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIncidentNotFound
	}
	return nil
}

// Mapping

func toSampleModels(recs []VitalsRecord) []models.VitalsSample {
	out := make([]models.VitalsSample, 0, len(recs))
	for _, rec := range recs {
		sample := models.VitalsSample{
			ID:          rec.ID,
			UserID:      rec.UserID,
			Timestamp:   rec.Timestamp,
			HeartRate:   rec.HeartRate,
			SpO2:        rec.SpO2,
			StressScore: rec.StressScore,
			Steps:       rec.Steps,
			SleepHours:  rec.SleepHours,
			Source:      models.VitalsSource(rec.Source),
			IsAnomaly:   rec.IsAnomaly,
		}
		if rec.AnomalyType != nil {
			at := models.AnomalyType(*rec.AnomalyType)
			sample.AnomalyType = &at
		}
		out = append(out, sample)
	}
	return out
}

func toIncidentRecord(incident *models.PredictionIncident) (*IncidentRecord, error) {
	metrics, err := json.Marshal(incident.DetectedMetrics)
	if err != nil {
		return nil, err
	}
	recs, err := json.Marshal(incident.Recommendations)
	if err != nil {
		return nil, err
	}
	readings, err := json.Marshal(incident.VerificationReadingIDs)
	if err != nil {
		return nil, err
	}

	return &IncidentRecord{
		ID:                         incident.ID,
		UserID:                     incident.UserID,
		Timestamp:                  incident.Timestamp,
		IncidentType:               string(incident.IncidentType),
		Severity:                   string(incident.Severity),
		DetectedMetrics:            datatypes.JSON(metrics),
		Explanation:                incident.Explanation,
		Recommendations:            datatypes.JSON(recs),
		VerificationReadings:       datatypes.JSON(readings),
		Resolved:                   incident.Resolved,
		ResolvedAt:                 incident.ResolvedAt,
		Escalated:                  incident.Escalated,
		EmergencyWorkflowTriggered: incident.EmergencyWorkflowTriggered,
	}, nil
}

// toIncidentModel degrades gracefully: a JSON column that fails to decode
// becomes an empty value rather than aborting the whole read.
func toIncidentModel(rec IncidentRecord) models.PredictionIncident {
	incident := models.PredictionIncident{
		ID:                         rec.ID,
		UserID:                     rec.UserID,
		Timestamp:                  rec.Timestamp,
		IncidentType:               models.IncidentType(rec.IncidentType),
		Severity:                   models.Severity(rec.Severity),
		Explanation:                rec.Explanation,
		Resolved:                   rec.Resolved,
		ResolvedAt:                 rec.ResolvedAt,
		Escalated:                  rec.Escalated,
		EmergencyWorkflowTriggered: rec.EmergencyWorkflowTriggered,
	}

	if len(rec.DetectedMetrics) > 0 {
		if err := json.Unmarshal(rec.DetectedMetrics, &incident.DetectedMetrics); err != nil {
			logger.Log.WithError(err).WithField("incident_id", rec.ID).Warn("malformed detected_metrics column, substituting empty")
			incident.DetectedMetrics = nil
		}
	}
	if len(rec.Recommendations) > 0 {
		if err := json.Unmarshal(rec.Recommendations, &incident.Recommendations); err != nil {
			logger.Log.WithError(err).WithField("incident_id", rec.ID).Warn("malformed recommendations column, substituting empty")
			incident.Recommendations = nil
		}
	}
	if len(rec.VerificationReadings) > 0 {
		if err := json.Unmarshal(rec.VerificationReadings, &incident.VerificationReadingIDs); err != nil {
			logger.Log.WithError(err).WithField("incident_id", rec.ID).Warn("malformed verification_readings column, substituting empty")
			incident.VerificationReadingIDs = nil
		}
	}

	return incident
}

func toIncidentModels(recs []IncidentRecord) []models.PredictionIncident {
	out := make([]models.PredictionIncident, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toIncidentModel(rec))
	}
	return out
}
