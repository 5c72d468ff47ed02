package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
	"github.com/spf13/viper"
)

const (
	// SettingReportingCurrency is the settings key holding the reporting currency code.
	SettingReportingCurrency = "reporting_currency"
	// SecretRatesCredential is the vault entry holding the rate provider credential.
	SecretRatesCredential = "rates_app_id"
	fallbackCredentialKey = "rates_app_id"
)

// settingsService owns the reporting currency and the rate provider credential.
type settingsService struct {
	BaseService
	settingsRepo    portsrepo.SettingsRepository
	secretRepo      portsrepo.SecretRepository
	currencyRepo    portsrepo.CurrencyReader
	txManager       portsrepo.TransactionManager
	converter       portssvc.CurrencyConverterSvc
	ledger          *serial.Executor
	defaultCurrency string
	fallbackConfig  string
}

// SettingsOption is a functional option for configuring the settings service
type SettingsOption func(*settingsService)

// WithDefaultCurrency sets the reporting currency used until one is stored.
func WithDefaultCurrency(code string) SettingsOption {
	return func(s *settingsService) {
		s.defaultCurrency = domain.NormalizeCurrencyCode(code)
	}
}

// WithFallbackConfig sets the bundled configuration file consulted when the vault has no credential.
func WithFallbackConfig(path string) SettingsOption {
	return func(s *settingsService) {
		s.fallbackConfig = path
	}
}

// WithSecretRepository sets the secure credential storage.
func WithSecretRepository(repo portsrepo.SecretRepository) SettingsOption {
	return func(s *settingsService) {
		s.secretRepo = repo
	}
}

// NewSettingsService creates a settings service. A currency change is a single ledger job that
// converts the ledger and stores the new setting in one txManager transaction.
func NewSettingsService(settingsRepo portsrepo.SettingsRepository, currencyRepo portsrepo.CurrencyReader, txManager portsrepo.TransactionManager, converter portssvc.CurrencyConverterSvc, ledger *serial.Executor, options ...SettingsOption) portssvc.SettingsSvcFacade {
	s := &settingsService{
		settingsRepo: settingsRepo,
		currencyRepo: currencyRepo,
		txManager:    txManager,
		converter:    converter,
		ledger:       ledger,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

func (s *settingsService) ReportingCurrency(ctx context.Context) (string, error) {
	code, err := s.settingsRepo.GetSetting(ctx, SettingReportingCurrency)
	if err == nil && code != "" {
		return domain.NormalizeCurrencyCode(code), nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to read reporting currency")
		return "", fmt.Errorf("failed to read reporting currency: %w", err)
	}
	if s.defaultCurrency != "" {
		return s.defaultCurrency, nil
	}
	return "", apperrors.ErrNoCurrencyAvailable
}

func (s *settingsService) ResolveCredential(ctx context.Context) (string, error) {
	if s.secretRepo != nil {
		credential, err := s.secretRepo.GetSecret(ctx, SecretRatesCredential)
		if err == nil && credential != "" {
			return credential, nil
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to read credential from vault, trying fallback configuration")
		}
	}

	credential, err := s.readFallbackCredential()
	if err != nil {
		s.LogError(ctx, err, "Failed to read fallback configuration", slog.String("path", s.fallbackConfig))
	}
	if credential == "" {
		return "", apperrors.ErrCredentialMissing
	}

	if s.secretRepo != nil {
		if err := s.secretRepo.PutSecret(ctx, SecretRatesCredential, credential); err != nil {
			s.LogError(ctx, err, "Failed to persist fallback credential into vault")
		} else {
			s.LogInfo(ctx, "Fallback rate provider credential persisted into vault")
		}
	}
	return credential, nil
}

func (s *settingsService) readFallbackCredential() (string, error) {
	if s.fallbackConfig == "" {
		return "", nil
	}
	v := viper.New()
	v.SetConfigFile(s.fallbackConfig)
	if err := v.ReadInConfig(); err != nil {
		return "", err
	}
	return v.GetString(fallbackCredentialKey), nil
}

func (s *settingsService) StoreCredential(ctx context.Context, credential string) error {
	if s.secretRepo == nil {
		return fmt.Errorf("secure storage is not configured: %w", apperrors.ErrValidation)
	}
	if err := s.secretRepo.PutSecret(ctx, SecretRatesCredential, credential); err != nil {
		s.LogError(ctx, err, "Failed to store credential")
		return err
	}
	return nil
}

func (s *settingsService) ChangeReportingCurrency(ctx context.Context, code string, userID string) (*dto.LedgerConversionResult, error) {
	code = domain.NormalizeCurrencyCode(code)
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, code)
		}
		return nil, fmt.Errorf("failed to look up currency %s: %w", code, err)
	}

	var current string
	var result *dto.LedgerConversionResult
	err := s.ledger.Do(ctx, func(ctx context.Context) error {
		var err error
		current, err = s.ReportingCurrency(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrNoCurrencyAvailable) {
			return err
		}
		result = &dto.LedgerConversionResult{From: current, To: code}
		if current == code {
			return nil
		}
		return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			if current != "" {
				converted, err := s.converter.ConvertLedger(ctx, current, code)
				if err != nil {
					return err
				}
				result = converted
			}
			return s.settingsRepo.SetSetting(ctx, SettingReportingCurrency, code)
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to change reporting currency",
			slog.String("from", current),
			slog.String("to", code),
			slog.String("user_id", userID))
		return nil, err
	}
	if current == code {
		return result, nil
	}

	s.LogInfo(ctx, "Reporting currency changed",
		slog.String("from", current),
		slog.String("to", code),
		slog.String("user_id", userID))
	return result, nil
}
