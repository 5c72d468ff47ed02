package repositories

import "context"

// SettingsRepository stores plain application settings such as the reporting currency.
type SettingsRepository interface {
	// GetSetting returns the value of key or apperrors.ErrNotFound.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting upserts key.
	SetSetting(ctx context.Context, key, value string) error
}

// SecretRepository is the secure storage for credentials.
type SecretRepository interface {
	// GetSecret returns the secret stored under name or apperrors.ErrNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// PutSecret upserts the secret stored under name.
	PutSecret(ctx context.Context, name, value string) error
}
