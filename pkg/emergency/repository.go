package emergency

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrLogNotFound = errors.New("emergency log not found")

type LogRecord struct {
	ID                      string         `gorm:"primaryKey;column:id"`
	UserID                  int            `gorm:"column:user_id;index"`
	Timestamp               int64          `gorm:"column:timestamp;index"`
	IncidentID              string         `gorm:"column:incident_id;index"`
	Actions                 datatypes.JSON `gorm:"column:actions"`
	ContactsNotified        datatypes.JSON `gorm:"column:contacts_notified"`
	EmergencyServicesCalled bool           `gorm:"column:emergency_services_called"`
	Location                datatypes.JSON `gorm:"column:location"`
	ResponseTime            *int64         `gorm:"column:response_time"`
	Outcome                 *string        `gorm:"column:outcome"`
	Notes                   string         `gorm:"column:notes"`
}

func (LogRecord) TableName() string {
	return "emergency_logs"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&LogRecord{})
}

func (r *Repository) Insert(ctx context.Context, log *models.EmergencyLog) error {
	rec, err := toRecord(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*models.EmergencyLog, error) {
	var rec LogRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrLogNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	log := toModel(rec)
	return &log, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]models.EmergencyLog, error) {
	var recs []LogRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.EmergencyLog, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toModel(rec))
	}
	return out, nil
}

func (r *Repository) RecordOutcome(ctx context.Context, id string, outcome models.EmergencyOutcome, responseTime *int64) error {
	updates := map[string]interface{}{"outcome": string(outcome)}
	if responseTime != nil {
		updates["response_time"] = *responseTime
	}

	result := r.db.WithContext(ctx).Model(&LogRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLogNotFound
	}
	return nil
}

func toRecord(log *models.EmergencyLog) (*LogRecord, error) {
	actions, err := json.Marshal(log.Actions)
	if err != nil {
		return nil, err
	}
	contacts, err := json.Marshal(log.ContactsNotified)
	if err != nil {
		return nil, err
	}
	location, err := json.Marshal(log.Location)
	if err != nil {
		return nil, err
	}

	rec := &LogRecord{
		ID:                      log.ID,
		UserID:                  log.UserID,
		Timestamp:               log.Timestamp,
		IncidentID:              log.IncidentID,
		Actions:                 datatypes.JSON(actions),
		ContactsNotified:        datatypes.JSON(contacts),
		EmergencyServicesCalled: log.EmergencyServicesCalled,
		Location:                datatypes.JSON(location),
		ResponseTime:            log.ResponseTime,
		Notes:                   log.Notes,
	}
	if log.Outcome != nil {
		outcome := string(*log.Outcome)
		rec.Outcome = &outcome
	}
	return rec, nil
}

func toModel(rec LogRecord) models.EmergencyLog {
	log := models.EmergencyLog{
		ID:                      rec.ID,
		UserID:                  rec.UserID,
		Timestamp:               rec.Timestamp,
		IncidentID:              rec.IncidentID,
		EmergencyServicesCalled: rec.EmergencyServicesCalled,
		ResponseTime:            rec.ResponseTime,
		Notes:                   rec.Notes,
	}
	if rec.Outcome != nil {
		outcome := models.EmergencyOutcome(*rec.Outcome)
		log.Outcome = &outcome
	}

	if len(rec.Actions) > 0 {
		if err := json.Unmarshal(rec.Actions, &log.Actions); err != nil {
			logger.Log.WithError(err).WithField("log_id", rec.ID).Warn("malformed actions column, substituting empty")
		}
	}
	if len(rec.ContactsNotified) > 0 {
		if err := json.Unmarshal(rec.ContactsNotified, &log.ContactsNotified); err != nil {
			logger.Log.WithError(err).WithField("log_id", rec.ID).Warn("malformed contacts column, substituting empty")
		}
	}
	if len(rec.Location) > 0 {
		if err := json.Unmarshal(rec.Location, &log.Location); err != nil {
			logger.Log.WithError(err).WithField("log_id", rec.ID).Warn("malformed location column, substituting empty")
		}
	}

	return log
}
