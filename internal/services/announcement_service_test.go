package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftops/internal/apperrors"
	"shiftops/internal/models"
)

type fakeAnnouncementRepo struct {
	mu            sync.Mutex
	nextID        int64
	announcements map[int64]*models.Announcement
	reads         map[[2]int64]time.Time
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{
		nextID:        1,
		announcements: map[int64]*models.Announcement{},
		reads:         map[[2]int64]time.Time{},
	}
}

func (r *fakeAnnouncementRepo) Store(ctx context.Context, a *models.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	r.announcements[a.ID] = a
	return nil
}

func (r *fakeAnnouncementRepo) FindByID(ctx context.Context, id int64) (*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.announcements[id], nil
}

func (r *fakeAnnouncementRepo) FindActiveFor(ctx context.Context, profileID int64, role models.Role) ([]models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []models.Announcement
	for _, a := range r.announcements {
		if a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
			continue
		}
		if a.Audience != "" && a.Audience != role {
			continue
		}
		copied := *a
		if readAt, ok := r.reads[[2]int64{a.ID, profileID}]; ok {
			copied.ReadAt = &readAt
		}
		out = append(out, copied)
	}
	return out, nil
}

func (r *fakeAnnouncementRepo) MarkRead(ctx context.Context, announcementID, profileID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{announcementID, profileID}
	if _, ok := r.reads[key]; !ok {
		r.reads[key] = time.Now()
	}
	return nil
}

func TestAnnouncementPost(t *testing.T) {
	ctx := context.Background()
	manager := &models.Profile{ID: 20, Role: models.RoleManager}

	t.Run("manager posts to everyone", func(t *testing.T) {
		svc := NewAnnouncementService(newFakeAnnouncementRepo())
		created, err := svc.Post(ctx, manager, &models.Announcement{Title: "New menu launches Friday"})
		require.NoError(t, err)
		assert.Equal(t, manager.ID, created.AuthorID)
		assert.Empty(t, created.Audience)
	})

	t.Run("employee cannot post", func(t *testing.T) {
		svc := NewAnnouncementService(newFakeAnnouncementRepo())
		employee := &models.Profile{ID: 10, Role: models.RoleEmployee}
		_, err := svc.Post(ctx, employee, &models.Announcement{Title: "hi"})
		assert.Equal(t, apperrors.Forbidden, apperrors.From(err).Kind)
	})

	t.Run("title is required", func(t *testing.T) {
		svc := NewAnnouncementService(newFakeAnnouncementRepo())
		_, err := svc.Post(ctx, manager, &models.Announcement{Title: "   "})
		assert.Equal(t, "missing_title", apperrors.From(err).Code)
	})

	t.Run("audience must be a known role", func(t *testing.T) {
		svc := NewAnnouncementService(newFakeAnnouncementRepo())
		_, err := svc.Post(ctx, manager, &models.Announcement{Title: "x", Audience: "interns"})
		assert.Equal(t, "unknown_role", apperrors.From(err).Code)
	})
}

func TestAnnouncementListAndRead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAnnouncementRepo()
	svc := NewAnnouncementService(repo)

	manager := &models.Profile{ID: 20, Role: models.RoleManager}
	employee := &models.Profile{ID: 10, Role: models.RoleEmployee}

	general, err := svc.Post(ctx, manager, &models.Announcement{Title: "Holiday hours"})
	require.NoError(t, err)
	_, err = svc.Post(ctx, manager, &models.Announcement{Title: "Manager meeting", Audience: models.RoleManager})
	require.NoError(t, err)

	t.Run("audience filtering", func(t *testing.T) {
		forEmployee, err := svc.ListActiveFor(ctx, employee)
		require.NoError(t, err)
		assert.Len(t, forEmployee, 1)
		assert.Equal(t, "Holiday hours", forEmployee[0].Title)

		forManager, err := svc.ListActiveFor(ctx, manager)
		require.NoError(t, err)
		assert.Len(t, forManager, 2)
	})

	t.Run("read receipt shows in the projection", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, employee, general.ID))

		listed, err := svc.ListActiveFor(ctx, employee)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.NotNil(t, listed[0].ReadAt)
	})

	t.Run("marking an unknown announcement fails", func(t *testing.T) {
		err := svc.MarkRead(ctx, employee, 999)
		assert.Equal(t, apperrors.NotFound, apperrors.From(err).Kind)
	})
}
