package services

import (
	"context"
	"log"
	"strings"
	"time"

	"shiftops/internal/apperrors"
	"shiftops/internal/authz"
	"shiftops/internal/models"
	"shiftops/internal/repositories"
)

type ProfileService interface {
	Register(ctx context.Context, p *models.Profile, plainPassword string) error
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	Update(ctx context.Context, actor *models.Profile, id int64, update *models.Profile) (*models.Profile, error)
	Archive(ctx context.Context, actor *models.Profile, id int64) error
}

type profileService struct {
	repo         repositories.ProfileRepository
	emailService EmailService
	authService  AuthService
}

func NewProfileService(repo repositories.ProfileRepository, emailService EmailService, authService AuthService) ProfileService {
	return &profileService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func (s *profileService) Register(ctx context.Context, p *models.Profile, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return apperrors.New(apperrors.InvalidRequest, "missing_password", "password is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return apperrors.New(apperrors.InvalidRequest, "missing_email", "email is required")
	}
	if p.Role == "" {
		p.Role = models.RoleEmployee
	}
	if !authz.IsKnown(p.Role) {
		return apperrors.New(apperrors.InvalidRequest, "unknown_role", "unknown role "+string(p.Role))
	}

	existing, err := s.repo.FindByEmail(ctx, p.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.New(apperrors.Conflict, "email_taken", "a profile with this email already exists")
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Store(ctx, p); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(p.Email, p.DisplayName); err != nil {
			// warn but do not fail creation
			log.Printf("[profile][register] warning: welcome email to %s failed: %v", p.Email, err)
		}
	}
	return nil
}

func (s *profileService) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *profileService) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

func (s *profileService) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	return s.repo.FindAll(ctx, filter)
}

// Update lets anyone edit their own display name and notification settings.
// Role changes and edits of other profiles need CapManageProfiles.
func (s *profileService) Update(ctx context.Context, actor *models.Profile, id int64, update *models.Profile) (*models.Profile, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFoundf("profile_not_found", "profile %d not found", id)
	}

	manages := authz.Has(actor.Role, authz.CapManageProfiles)
	if actor.ID != id && !manages {
		return nil, apperrors.Forbiddenf("cannot edit another profile")
	}
	if update.Role != "" && update.Role != current.Role {
		if !manages {
			return nil, apperrors.Forbiddenf("cannot change role")
		}
		if !authz.IsKnown(update.Role) {
			return nil, apperrors.New(apperrors.InvalidRequest, "unknown_role", "unknown role "+string(update.Role))
		}
		current.Role = update.Role
	}
	if update.DisplayName != "" {
		current.DisplayName = update.DisplayName
	}
	if update.Email != "" {
		current.Email = update.Email
	}
	current.TelegramChatID = update.TelegramChatID
	current.NotifyTelegram = update.NotifyTelegram
	current.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *profileService) Archive(ctx context.Context, actor *models.Profile, id int64) error {
	if !authz.Has(actor.Role, authz.CapManageProfiles) {
		return apperrors.Forbiddenf("cannot archive profiles")
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return apperrors.NotFoundf("profile_not_found", "profile %d not found", id)
	}
	if current.ArchivedAt != nil {
		return apperrors.InvalidStatef("already_archived", "profile %d is already archived", id)
	}
	return s.repo.Archive(ctx, id)
}
