package services

import (
	"context"
	"strings"
	"time"

	"shiftops/internal/apperrors"
	"shiftops/internal/authz"
	"shiftops/internal/models"
	"shiftops/internal/repositories"
)

type AnnouncementService interface {
	Post(ctx context.Context, actor *models.Profile, a *models.Announcement) (*models.Announcement, error)
	ListActiveFor(ctx context.Context, actor *models.Profile) ([]models.Announcement, error)
	MarkRead(ctx context.Context, actor *models.Profile, announcementID int64) error
}

type announcementService struct {
	repo repositories.AnnouncementRepository
}

func NewAnnouncementService(repo repositories.AnnouncementRepository) AnnouncementService {
	return &announcementService{repo: repo}
}

func (s *announcementService) Post(ctx context.Context, actor *models.Profile, a *models.Announcement) (*models.Announcement, error) {
	if !authz.Has(actor.Role, authz.CapPostAnnouncements) {
		return nil, apperrors.Forbiddenf("posting announcements requires a manager role")
	}
	if strings.TrimSpace(a.Title) == "" {
		return nil, apperrors.New(apperrors.InvalidRequest, "missing_title", "announcement title is required")
	}
	if a.Audience != "" && !authz.IsKnown(a.Audience) {
		return nil, apperrors.New(apperrors.InvalidRequest, "unknown_role", "unknown audience role "+string(a.Audience))
	}
	a.AuthorID = actor.ID
	a.CreatedAt = time.Now()
	if err := s.repo.Store(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *announcementService) ListActiveFor(ctx context.Context, actor *models.Profile) ([]models.Announcement, error) {
	return s.repo.FindActiveFor(ctx, actor.ID, actor.Role)
}

func (s *announcementService) MarkRead(ctx context.Context, actor *models.Profile, announcementID int64) error {
	a, err := s.repo.FindByID(ctx, announcementID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperrors.NotFoundf("announcement_not_found", "announcement %d not found", announcementID)
	}
	return s.repo.MarkRead(ctx, announcementID, actor.ID)
}
