// Package sqlite holds the local credential vault.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/SscSPs/budget_engine/internal/platform/secrets"

	_ "modernc.org/sqlite"
)

// SecretRepository keeps sealed secrets in a local SQLite file.
// Values never touch disk in clear text.
type SecretRepository struct {
	db     *sql.DB
	sealer *secrets.Sealer
}

var _ portsrepo.SecretRepository = (*SecretRepository)(nil)

// NewSecretRepository opens (and migrates) the vault at dbPath.
func NewSecretRepository(dbPath string, sealer *secrets.Sealer) (*SecretRepository, error) {
	if sealer == nil {
		return nil, secrets.ErrNoKey
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create vault directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping vault: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SecretRepository{db: db, sealer: sealer}, nil
}

// GetSecret opens the secret stored under name.
func (r *SecretRepository) GetSecret(ctx context.Context, name string) (string, error) {
	var sealed string
	err := r.db.QueryRowContext(ctx, `SELECT sealed FROM secrets WHERE name = ?`, name).Scan(&sealed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}
	plain, err := r.sealer.Open(name, sealed)
	if err != nil {
		return "", fmt.Errorf("open secret %s: %w", name, err)
	}
	return string(plain), nil
}

// PutSecret seals value and upserts it under name.
func (r *SecretRepository) PutSecret(ctx context.Context, name, value string) error {
	sealed, err := r.sealer.Seal(name, []byte(value))
	if err != nil {
		return fmt.Errorf("seal secret %s: %w", name, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO secrets (name, sealed, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET sealed = excluded.sealed, updated_at = excluded.updated_at`,
		name, sealed)
	if err != nil {
		return fmt.Errorf("write secret %s: %w", name, err)
	}
	return nil
}

// Close closes the vault.
func (r *SecretRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
