package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shiftops/internal/models"
)

type ProfileRepository interface {
	Store(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, id int64) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindAll(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	Archive(ctx context.Context, id int64) error
	UpdateRefreshToken(ctx context.Context, id int64, token *string, expiresAt *time.Time, revoked bool) error
	FindByRefreshToken(ctx context.Context, token string) (*models.Profile, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, display_name, email, password_hash, role, archived_at,
       telegram_chat_id, notify_telegram, refresh_token, refresh_expires_at, refresh_revoked,
       created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.Email, &p.PasswordHash, &p.Role, &p.ArchivedAt,
		&p.TelegramChatID, &p.NotifyTelegram, &p.RefreshToken, &p.RefreshExpiresAt, &p.RefreshRevoked,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Store(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (
			display_name, email, password_hash, role,
			telegram_chat_id, notify_telegram, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		p.DisplayName, p.Email, p.PasswordHash, p.Role,
		p.TelegramChatID, p.NotifyTelegram, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *profileRepository) FindByID(ctx context.Context, id int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) FindAll(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	baseQuery := `SELECT ` + profileColumns + ` FROM profiles`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argID))
		args = append(args, *filter.Role)
		argID++
	}
	if !filter.IncludeArchived {
		conditions = append(conditions, "archived_at IS NULL")
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY display_name ASC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles SET
			display_name=$1, email=$2, role=$3,
			telegram_chat_id=$4, notify_telegram=$5, updated_at=$6
		WHERE id=$7`
	_, err := r.db.ExecContext(ctx, query,
		p.DisplayName, p.Email, p.Role,
		p.TelegramChatID, p.NotifyTelegram, p.UpdatedAt, p.ID,
	)
	return err
}

func (r *profileRepository) Archive(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET archived_at = NOW(), refresh_revoked = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *profileRepository) UpdateRefreshToken(ctx context.Context, id int64, token *string, expiresAt *time.Time, revoked bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=$3, updated_at=NOW() WHERE id=$4`,
		token, expiresAt, revoked, id)
	return err
}

func (r *profileRepository) FindByRefreshToken(ctx context.Context, token string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE refresh_token = $1 AND NOT refresh_revoked`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
