package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RateHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	rates     *MockRateReader
	fetcher   *MockRateFetcher
	converter *MockConverter
	userID    string
}

func (suite *RateHandlerTestSuite) SetupTest() {
	router, v1 := newTestRouter()
	suite.router = router
	suite.rates = new(MockRateReader)
	suite.fetcher = new(MockRateFetcher)
	suite.converter = new(MockConverter)
	suite.userID = uuid.NewString()
	handlers.RegisterRateRoutes(v1, suite.rates, suite.fetcher, suite.converter)
}

func (suite *RateHandlerTestSuite) TestGetRate_ReportsStaleness() {
	on := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	suite.rates.On("GetRate", mock.Anything, "EUR", mock.MatchedBy(func(d time.Time) bool { return d.Equal(on) })).
		Return(domain.RateQuote{
			CurrencyCode:  "EUR",
			RateToPivot:   dec("0.91"),
			EffectiveDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
			Source:        domain.RateSourceLatest,
		}, nil).Once()

	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/rates/eur?date=2024-01-15", "", suite.userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RateQuoteResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("latest", resp.Source)
	suite.True(resp.Stale)
	suite.True(resp.RateToPivot.Equal(dec("0.91")))
}

func (suite *RateHandlerTestSuite) TestGetRate_Unavailable() {
	suite.rates.On("GetRate", mock.Anything, "XYZ", mock.Anything).Return(domain.RateQuote{}, apperrors.ErrRateUnavailable).Once()

	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/rates/XYZ", "", suite.userID)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), apperrors.ErrRateUnavailable.Error())
}

func (suite *RateHandlerTestSuite) TestGetRate_InvalidDate() {
	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/rates/EUR?date=15-01-2024", "", suite.userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.rates.AssertNotCalled(suite.T(), "GetRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RateHandlerTestSuite) TestListRateHistory_PassesPaging() {
	next := "token"
	suite.rates.On("ListRateHistory", mock.Anything, "GBP",
		mock.MatchedBy(func(p dto.ListRateHistoryParams) bool { return p.Limit == 5 && p.NextToken == "abc" }),
	).Return(&dto.ListRateHistoryResponse{Rates: []dto.ExchangeRateResponse{{CurrencyCode: "GBP", RateToPivot: dec("0.8")}}, NextToken: &next}, nil).Once()

	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/rates/gbp/history?limit=5&nextToken=abc", "", suite.userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListRateHistoryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Rates, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func (suite *RateHandlerTestSuite) TestListRateHistory_LimitOutOfRange() {
	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/rates/GBP/history?limit=1000", "", suite.userID)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RateHandlerTestSuite) TestRefreshRates_IsForced() {
	last := time.Date(2025, 3, 15, 0, 0, 5, 0, time.UTC)
	suite.fetcher.On("RefreshIfDue", mock.Anything, true).Return(true, nil).Once()
	suite.fetcher.On("LastUpdated").Return(last).Once()

	w := doRequest(suite.T(), suite.router, http.MethodPost, "/api/v1/rates/refresh", "", suite.userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RefreshRatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Refreshed)
	suite.True(resp.LastUpdated.Equal(last))
	suite.fetcher.AssertExpectations(suite.T())
}

func (suite *RateHandlerTestSuite) TestRefreshRates_ErrorsReachTheCaller() {
	suite.fetcher.On("RefreshIfDue", mock.Anything, true).Return(false, apperrors.ErrCredentialMissing).Once()

	w := doRequest(suite.T(), suite.router, http.MethodPost, "/api/v1/rates/refresh", "", suite.userID)

	suite.Equal(http.StatusPreconditionFailed, w.Code)
}

func (suite *RateHandlerTestSuite) TestRefreshRates_ProviderFailure() {
	suite.fetcher.On("RefreshIfDue", mock.Anything, true).Return(false, apperrors.ErrFetchFailed).Once()

	w := doRequest(suite.T(), suite.router, http.MethodPost, "/api/v1/rates/refresh", "", suite.userID)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *RateHandlerTestSuite) TestBackfillRates() {
	day := time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local)
	suite.fetcher.On("Backfill", mock.Anything, mock.MatchedBy(func(d time.Time) bool { return d.Equal(day) })).Return(42, nil).Once()

	w := doRequest(suite.T(), suite.router, http.MethodPost, "/api/v1/rates/backfill", `{"date": "2024-12-31"}`, suite.userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BackfillRatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(42, resp.Recorded)
	suite.Equal("2024-12-31", resp.Date)
}

func (suite *RateHandlerTestSuite) TestConvert_ParsesLocalizedAmount() {
	suite.converter.On("Convert", mock.Anything,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(dec("1234.5")) }),
		"EUR", "USD", mock.Anything,
	).Return(domain.Conversion{Amount: dec("1356.59"), Rate: dec("1.0989"), Stale: false}, nil).Once()
	suite.converter.On("Format", mock.Anything, "USD").Return("1 356,59 $").Once()

	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/convert?amount=1+234,50&from=eur&to=usd", "", suite.userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConvertResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("EUR", resp.From)
	suite.Equal("USD", resp.To)
	suite.Equal("1 356,59 $", resp.Formatted)
	suite.True(resp.Amount.Equal(dec("1356.59")))
	suite.converter.AssertExpectations(suite.T())
}

func (suite *RateHandlerTestSuite) TestConvert_RejectsBadCurrencyCode() {
	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/convert?amount=10&from=US&to=EUR", "", suite.userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.converter.AssertNotCalled(suite.T(), "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RateHandlerTestSuite) TestConvert_RateUnavailableIsNotSilentlyOneToOne() {
	suite.converter.On("Convert", mock.Anything, mock.Anything, "USD", "XYZ", mock.Anything).
		Return(domain.Conversion{}, apperrors.ErrRateUnavailable).Once()

	w := doRequest(suite.T(), suite.router, http.MethodGet, "/api/v1/convert?amount=10&from=USD&to=XYZ", "", suite.userID)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.converter.AssertNotCalled(suite.T(), "Format", mock.Anything, mock.Anything)
}

func TestRateHandler(t *testing.T) {
	suite.Run(t, new(RateHandlerTestSuite))
}
