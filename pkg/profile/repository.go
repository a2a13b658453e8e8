package profile

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("user profile not found")

type ProfileRecord struct {
	ID               int            `gorm:"primaryKey;autoIncrement;column:id"`
	Email            string         `gorm:"column:email;uniqueIndex"`
	FullName         string         `gorm:"column:full_name"`
	Age              int            `gorm:"column:age"`
	Gender           string         `gorm:"column:gender"`
	HeightCm         int            `gorm:"column:height_cm"`
	WeightKg         int            `gorm:"column:weight_kg"`
	Lifestyle        datatypes.JSON `gorm:"column:lifestyle"`
	Medical          datatypes.JSON `gorm:"column:medical"`
	EmergencyContact datatypes.JSON `gorm:"column:emergency_contact"`
	PrimaryDoctor    datatypes.JSON `gorm:"column:primary_doctor"`
	AutonomyLevel    string         `gorm:"column:autonomy_level"`
	CreatedAt        int64          `gorm:"column:created_at"`
	UpdatedAt        int64          `gorm:"column:updated_at"`
}

func (ProfileRecord) TableName() string {
	return "user_profiles"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ProfileRecord{})
}

func (r *Repository) Create(ctx context.Context, profile *models.UserProfile) error {
	rec, err := toRecord(profile)
	if err != nil {
		return err
	}
	rec.CreatedAt = models.NowMillis()
	rec.UpdatedAt = rec.CreatedAt

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	profile.ID = rec.ID
	profile.CreatedAt = rec.CreatedAt
	profile.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *Repository) Get(ctx context.Context, id int) (*models.UserProfile, error) {
	var rec ProfileRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	profile := toModel(rec)
	return &profile, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var rec ProfileRecord
	result := r.db.WithContext(ctx).First(&rec, "email = ?", email)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	profile := toModel(rec)
	return &profile, nil
}

func (r *Repository) Update(ctx context.Context, profile *models.UserProfile) error {
	rec, err := toRecord(profile)
	if err != nil {
		return err
	}
	rec.UpdatedAt = models.NowMillis()

	result := r.db.WithContext(ctx).Model(&ProfileRecord{}).Where("id = ?", profile.ID).Updates(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	profile.UpdatedAt = rec.UpdatedAt
	return nil
}

func toRecord(profile *models.UserProfile) (*ProfileRecord, error) {
	lifestyle, err := json.Marshal(profile.Lifestyle)
	if err != nil {
		return nil, err
	}
	medical, err := json.Marshal(profile.Medical)
	if err != nil {
		return nil, err
	}
	contact, err := json.Marshal(profile.EmergencyContact)
	if err != nil {
		return nil, err
	}
	doctor, err := json.Marshal(profile.PrimaryDoctor)
	if err != nil {
		return nil, err
	}

	return &ProfileRecord{
		ID:               profile.ID,
		Email:            profile.Email,
		FullName:         profile.FullName,
		Age:              profile.Age,
		Gender:           string(profile.Gender),
		HeightCm:         profile.HeightCm,
		WeightKg:         profile.WeightKg,
		Lifestyle:        datatypes.JSON(lifestyle),
		Medical:          datatypes.JSON(medical),
		EmergencyContact: datatypes.JSON(contact),
		PrimaryDoctor:    datatypes.JSON(doctor),
		AutonomyLevel:    string(profile.AutonomyLevel),
		CreatedAt:        profile.CreatedAt,
		UpdatedAt:        profile.UpdatedAt,
	}, nil
}

// toModel substitutes defaults for JSON columns that fail to decode so a
// damaged row still renders.
func toModel(rec ProfileRecord) models.UserProfile {
	profile := models.UserProfile{
		ID:            rec.ID,
		Email:         rec.Email,
		FullName:      rec.FullName,
		Age:           rec.Age,
		Gender:        models.Gender(rec.Gender),
		HeightCm:      rec.HeightCm,
		WeightKg:      rec.WeightKg,
		AutonomyLevel: models.AutonomyLevel(rec.AutonomyLevel),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}

	decodeColumn(rec.Lifestyle, &profile.Lifestyle, rec.ID, "lifestyle")
	decodeColumn(rec.Medical, &profile.Medical, rec.ID, "medical")
	decodeColumn(rec.EmergencyContact, &profile.EmergencyContact, rec.ID, "emergency_contact")
	decodeColumn(rec.PrimaryDoctor, &profile.PrimaryDoctor, rec.ID, "primary_doctor")

	return profile
}

func decodeColumn(raw datatypes.JSON, dst interface{}, id int, column string) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"profile_id": id,
			"column":     column,
		}).Warn("malformed profile column, substituting default")
	}
}
