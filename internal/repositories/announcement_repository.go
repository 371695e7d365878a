package repositories

import (
	"context"
	"database/sql"

	"shiftops/internal/models"
)

type AnnouncementRepository interface {
	Store(ctx context.Context, a *models.Announcement) error
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	// FindActiveFor lists unexpired announcements addressed to everyone or to
	// the given role, with the reader's read receipt joined in.
	FindActiveFor(ctx context.Context, profileID int64, role models.Role) ([]models.Announcement, error)
	MarkRead(ctx context.Context, announcementID, profileID int64) error
}

type announcementRepository struct {
	db *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Store(ctx context.Context, a *models.Announcement) error {
	query := `
		INSERT INTO announcements (author_id, title, body, audience, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		a.AuthorID, a.Title, a.Body, a.Audience, a.CreatedAt, a.ExpiresAt,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *announcementRepository) FindByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query := `SELECT id, author_id, title, body, audience, created_at, expires_at
		FROM announcements WHERE id = $1`
	a := &models.Announcement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Body, &a.Audience, &a.CreatedAt, &a.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *announcementRepository) FindActiveFor(ctx context.Context, profileID int64, role models.Role) ([]models.Announcement, error) {
	query := `
		SELECT a.id, a.author_id, a.title, a.body, a.audience, a.created_at, a.expires_at, ar.read_at
		FROM announcements a
		LEFT JOIN announcement_reads ar ON ar.announcement_id = a.id AND ar.profile_id = $1
		WHERE (a.expires_at IS NULL OR a.expires_at > NOW())
		  AND (a.audience = '' OR a.audience = $2)
		ORDER BY a.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, profileID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(
			&a.ID, &a.AuthorID, &a.Title, &a.Body, &a.Audience, &a.CreatedAt, &a.ExpiresAt, &a.ReadAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *announcementRepository) MarkRead(ctx context.Context, announcementID, profileID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO announcement_reads (announcement_id, profile_id, read_at)
		VALUES ($1,$2,NOW())
		ON CONFLICT (announcement_id, profile_id) DO NOTHING`,
		announcementID, profileID)
	return err
}
