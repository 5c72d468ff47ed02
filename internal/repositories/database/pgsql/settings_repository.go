package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSettingsRepository is a small key/value store for application settings.
type PgxSettingsRepository struct {
	BaseRepository
}

func newPgxSettingsRepository(pool *pgxpool.Pool) *PgxSettingsRepository {
	return &PgxSettingsRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SettingsRepository = (*PgxSettingsRepository)(nil)

// GetSetting returns the value stored under key.
func (r *PgxSettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB(ctx).QueryRow(ctx, `SELECT value FROM settings WHERE key = $1;`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to read setting", err)
	}
	return value, nil
}

// SetSetting upserts key.
func (r *PgxSettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.DB(ctx).Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`,
		key, value)
	if err != nil {
		return apperrors.NewAppError(500, "failed to write setting", err)
	}
	return nil
}
