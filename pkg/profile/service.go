package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

var (
	errEmailRequired = errors.New("email required")
	errNameRequired  = errors.New("full name required")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new profile (the sign-up path).
func (s *Service) Create(ctx context.Context, profile *models.UserProfile) error {
	profile.Email = strings.TrimSpace(strings.ToLower(profile.Email))
	if profile.Email == "" {
		return ValidationError{reason: errEmailRequired}
	}
	if strings.TrimSpace(profile.FullName) == "" {
		return ValidationError{reason: errNameRequired}
	}
	if profile.AutonomyLevel == "" {
		profile.AutonomyLevel = models.AutonomySemiAutomatic
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	return nil
}

// SignIn is a stub lookup by email. There is no credential model; the app
// has a single local user.
func (s *Service) SignIn(ctx context.Context, email string) (*models.UserProfile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ValidationError{reason: errEmailRequired}
	}
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) Get(ctx context.Context, id int) (*models.UserProfile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, profile *models.UserProfile) error {
	if strings.TrimSpace(profile.FullName) == "" {
		return ValidationError{reason: errNameRequired}
	}
	return s.repo.Update(ctx, profile)
}
