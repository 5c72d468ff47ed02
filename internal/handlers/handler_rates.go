package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD value as local midnight. An empty value yields today.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return domain.DayStart(time.Now()), nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return t, nil
}

// rateHandler exposes the rate store, the fetcher and single conversions.
type rateHandler struct {
	rates     portssvc.RateReaderSvc
	fetcher   portssvc.RateFetcherSvc
	converter portssvc.CurrencyConverterSvc
}

func newRateHandler(rates portssvc.RateReaderSvc, fetcher portssvc.RateFetcherSvc, converter portssvc.CurrencyConverterSvc) *rateHandler {
	return &rateHandler{rates: rates, fetcher: fetcher, converter: converter}
}

// RegisterRateRoutes registers the rate lookup, refresh and conversion routes.
func RegisterRateRoutes(rg *gin.RouterGroup, rates portssvc.RateReaderSvc, fetcher portssvc.RateFetcherSvc, converter portssvc.CurrencyConverterSvc) {
	registerValidators()
	h := newRateHandler(rates, fetcher, converter)

	r := rg.Group("/rates")
	{
		r.GET("/:code", h.getRate)
		r.GET("/:code/history", h.listRateHistory)
		r.POST("/refresh", h.refreshRates)
		r.POST("/backfill", h.backfillRates)
	}
	rg.GET("/convert", h.convert)
}

// getRate godoc
// @Summary Resolve an exchange rate
// @Description Returns the rate of a currency against the pivot in effect on a date. The source tells whether it came from history, the latest record or the in-memory cache.
// @Tags rates
// @Produce json
// @Param code path string true "Currency code"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.RateQuoteResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 422 {object} map[string]string "Rate unavailable"
// @Failure 500 {object} map[string]string "Failed to resolve rate"
// @Security BearerAuth
// @Router /rates/{code} [get]
func (h *rateHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := domain.NormalizeCurrencyCode(c.Param("code"))
	logger = logger.With(slog.String("currency_code", code))

	date, err := parseDate(c.Query("date"))
	if err != nil {
		respondWithError(c, logger, err, "Invalid date")
		return
	}

	quote, err := h.rates.GetRate(c.Request.Context(), code, date)
	if err != nil {
		respondWithError(c, logger, err, "Failed to resolve rate")
		return
	}
	if quote.Stale() {
		logger.Info("Serving stale rate", slog.String("source", string(quote.Source)), slog.Time("effective_date", quote.EffectiveDate))
	}
	c.JSON(http.StatusOK, dto.ToRateQuoteResponse(quote))
}

// listRateHistory godoc
// @Summary List the rate history of a currency
// @Description Pages through stored rate records, newest first.
// @Tags rates
// @Produce json
// @Param code path string true "Currency code"
// @Param limit query int false "Page size" default(30)
// @Param nextToken query string false "Token returned by the previous page"
// @Success 200 {object} dto.ListRateHistoryResponse
// @Failure 400 {object} map[string]string "Invalid paging parameters"
// @Failure 500 {object} map[string]string "Failed to list rate history"
// @Security BearerAuth
// @Router /rates/{code}/history [get]
func (h *rateHandler) listRateHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := domain.NormalizeCurrencyCode(c.Param("code"))

	var params dto.ListRateHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListRateHistory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.rates.ListRateHistory(c.Request.Context(), code, params)
	if err != nil {
		respondWithError(c, logger.With(slog.String("currency_code", code)), err, "Failed to list rate history")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// refreshRates godoc
// @Summary Force a rate refresh
// @Description Fetches the latest snapshot now, cancelling any refresh already running. Errors are reported to the caller.
// @Tags rates
// @Produce json
// @Success 200 {object} dto.RefreshRatesResponse
// @Failure 412 {object} map[string]string "Provider credential not configured"
// @Failure 502 {object} map[string]string "Provider request failed"
// @Security BearerAuth
// @Router /rates/refresh [post]
func (h *rateHandler) refreshRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	refreshed, err := h.fetcher.RefreshIfDue(c.Request.Context(), true)
	if err != nil {
		respondWithError(c, logger, err, "Failed to refresh exchange rates")
		return
	}

	logger.Info("Forced rate refresh finished", slog.Bool("refreshed", refreshed))
	c.JSON(http.StatusOK, dto.RefreshRatesResponse{Refreshed: refreshed, LastUpdated: h.fetcher.LastUpdated()})
}

// backfillRates godoc
// @Summary Backfill historical rates
// @Description Fetches the snapshot of a past day and records it at that date.
// @Tags rates
// @Accept json
// @Produce json
// @Param request body dto.BackfillRatesRequest true "Day to backfill"
// @Success 200 {object} dto.BackfillRatesResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 412 {object} map[string]string "Provider credential not configured"
// @Failure 502 {object} map[string]string "Provider request failed"
// @Security BearerAuth
// @Router /rates/backfill [post]
func (h *rateHandler) backfillRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BackfillRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BackfillRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	day, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, logger, err, "Invalid date")
		return
	}

	count, err := h.fetcher.Backfill(c.Request.Context(), day)
	if err != nil {
		respondWithError(c, logger, err, "Failed to backfill exchange rates")
		return
	}
	c.JSON(http.StatusOK, dto.BackfillRatesResponse{Date: day.Format(dateLayout), Recorded: count})
}

// convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two currencies through the pivot using the rates in effect on a date.
// @Tags rates
// @Produce json
// @Param amount query string true "Amount, e.g. 1234.56 or 1 234,56"
// @Param from query string true "Source currency"
// @Param to query string true "Target currency"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Rate unavailable"
// @Security BearerAuth
// @Router /convert [get]
func (h *rateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		respondWithError(c, logger, err, "Invalid amount")
		return
	}
	on, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, logger, err, "Invalid date")
		return
	}

	from := domain.NormalizeCurrencyCode(req.From)
	to := domain.NormalizeCurrencyCode(req.To)
	conv, err := h.converter.Convert(c.Request.Context(), amount, from, to, on)
	if err != nil {
		respondWithError(c, logger.With(slog.String("from", from), slog.String("to", to)), err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		From:      from,
		To:        to,
		Amount:    conv.Amount,
		Rate:      conv.Rate,
		Stale:     conv.Stale,
		Formatted: h.converter.Format(conv.Amount, to),
	})
}
