package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settingsHandler exposes the reporting currency and the provider credential.
type settingsHandler struct {
	settings portssvc.SettingsSvcFacade
	fetcher  portssvc.RateFetcherSvc
}

// RegisterSettingsRoutes registers the settings routes.
func RegisterSettingsRoutes(rg *gin.RouterGroup, settings portssvc.SettingsSvcFacade, fetcher portssvc.RateFetcherSvc) {
	registerValidators()
	h := &settingsHandler{settings: settings, fetcher: fetcher}

	s := rg.Group("/settings")
	{
		s.GET("", h.getSettings)
		s.PUT("/reporting-currency", h.changeReportingCurrency)
		s.PUT("/rates-credential", h.configureCredential)
	}
}

// getSettings godoc
// @Summary Read settings
// @Description Returns the reporting currency, the time of the last rate refresh and whether a provider credential is available. The credential itself is never returned.
// @Tags settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Failure 500 {object} map[string]string "Failed to read settings"
// @Security BearerAuth
// @Router /settings [get]
func (h *settingsHandler) getSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ctx := c.Request.Context()

	resp := dto.SettingsResponse{RatesLastUpdated: h.fetcher.LastUpdated()}

	code, err := h.settings.ReportingCurrency(ctx)
	switch {
	case err == nil:
		resp.ReportingCurrency = code
	case errors.Is(err, apperrors.ErrNoCurrencyAvailable):
	default:
		respondWithError(c, logger, err, "Failed to read settings")
		return
	}

	_, err = h.settings.ResolveCredential(ctx)
	switch {
	case err == nil:
		resp.CredentialSet = true
	case errors.Is(err, apperrors.ErrCredentialMissing):
	default:
		respondWithError(c, logger, err, "Failed to read settings")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// changeReportingCurrency godoc
// @Summary Change the reporting currency
// @Description Converts every expense, budget and category budget into the new currency and stores it as the reporting currency, atomically.
// @Tags settings
// @Accept json
// @Produce json
// @Param request body dto.ChangeReportingCurrencyRequest true "New reporting currency"
// @Success 200 {object} dto.LedgerConversionResult
// @Failure 400 {object} map[string]string "Invalid currency code"
// @Failure 404 {object} map[string]string "Unknown currency"
// @Failure 409 {object} map[string]string "Another operation is in progress"
// @Failure 422 {object} map[string]string "Rate unavailable"
// @Security BearerAuth
// @Router /settings/reporting-currency [put]
func (h *settingsHandler) changeReportingCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ChangeReportingCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ChangeReportingCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.settings.ChangeReportingCurrency(c.Request.Context(), req.CurrencyCode, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("currency_code", req.CurrencyCode)), err, "Failed to change reporting currency")
		return
	}

	logger.Info("Reporting currency changed",
		slog.String("from", result.From),
		slog.String("to", result.To),
		slog.Int("expenses", result.ExpensesConverted),
		slog.Int("budgets", result.BudgetsConverted),
	)
	c.JSON(http.StatusOK, result)
}

// configureCredential godoc
// @Summary Configure the rate provider credential
// @Description Stores the credential in secure storage and forces an immediate refresh. A failing refresh is reported to the caller.
// @Tags settings
// @Accept json
// @Produce json
// @Param request body dto.ConfigureCredentialRequest true "Credential"
// @Success 200 {object} map[string]interface{} "Credential stored"
// @Failure 400 {object} map[string]string "Invalid credential"
// @Failure 502 {object} map[string]string "Provider request failed"
// @Security BearerAuth
// @Router /settings/rates-credential [put]
func (h *settingsHandler) configureCredential(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConfigureCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// the body holds a secret, keep it out of the logs
		logger.Warn("Failed to bind JSON for ConfigureCredential")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: credential is required"})
		return
	}

	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	if err := h.fetcher.ConfigureCredential(c.Request.Context(), req.Credential); err != nil {
		respondWithError(c, logger, err, "Failed to configure rate provider credential")
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": true, "lastUpdated": h.fetcher.LastUpdated()})
}
