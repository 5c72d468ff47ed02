package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testJWTIssuer = "budget-engine-test"
)

// --- Mock BudgetService ---
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) UpdateBudget(ctx context.Context, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) DeleteBudget(ctx context.Context, budgetID string, userID string) ([]string, error) {
	args := m.Called(ctx, budgetID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBudgetService) CreateFutureBudgets(ctx context.Context, sourceBudgetID string, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, sourceBudgetID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetService) SaveCategoryBudgets(ctx context.Context, budgetID string, req dto.SaveCategoryBudgetsRequest, userID string) ([]domain.CategoryBudget, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryBudget), args.Error(1)
}

func (m *MockBudgetService) ReconcileBudgetAmount(ctx context.Context, budgetID string, userID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) GetCurrentMonthBudget(ctx context.Context) (*domain.Budget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) ListBudgets(ctx context.Context, from time.Time) ([]domain.Budget, error) {
	args := m.Called(ctx, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetService) ListCategoryBudgets(ctx context.Context, budgetID string) ([]domain.CategoryBudget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryBudget), args.Error(1)
}

func (m *MockBudgetService) CalculateTotalCategoryBudget(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	args := m.Called(ctx, budgetID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBudgetService) CalculateEverythingElseAmount(ctx context.Context, budgetID string) (*decimal.Decimal, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

func (m *MockBudgetService) ExpensesForBudget(ctx context.Context, budget domain.Budget) ([]domain.Expense, error) {
	args := m.Called(ctx, budget)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockBudgetService) CalculateNonBudgetedSpending(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	args := m.Called(ctx, budgetID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBudgetService) CalculatePercentage(spent, limit decimal.Decimal) decimal.Decimal {
	args := m.Called(spent, limit)
	return args.Get(0).(decimal.Decimal)
}

func (m *MockBudgetService) IsCurrentMonth(budget domain.Budget) bool {
	args := m.Called(budget)
	return args.Bool(0)
}

func (m *MockBudgetService) GetBudgetSummary(ctx context.Context, budgetID string) (*dto.BudgetSummaryResponse, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BudgetSummaryResponse), args.Error(1)
}

// --- Mock rate services ---
type MockRateReader struct {
	mock.Mock
}

func (m *MockRateReader) GetRate(ctx context.Context, currencyCode string, date time.Time) (domain.RateQuote, error) {
	args := m.Called(ctx, currencyCode, date)
	return args.Get(0).(domain.RateQuote), args.Error(1)
}

func (m *MockRateReader) ListRateHistory(ctx context.Context, currencyCode string, params dto.ListRateHistoryParams) (*dto.ListRateHistoryResponse, error) {
	args := m.Called(ctx, currencyCode, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListRateHistoryResponse), args.Error(1)
}

type MockRateFetcher struct {
	mock.Mock
}

func (m *MockRateFetcher) RefreshIfDue(ctx context.Context, force bool) (bool, error) {
	args := m.Called(ctx, force)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateFetcher) Backfill(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockRateFetcher) ConfigureCredential(ctx context.Context, credential string) error {
	return m.Called(ctx, credential).Error(0)
}

func (m *MockRateFetcher) LastUpdated() time.Time {
	return m.Called().Get(0).(time.Time)
}

func (m *MockRateFetcher) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRateFetcher) Run(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, on time.Time) (domain.Conversion, error) {
	args := m.Called(ctx, amount, from, to, on)
	return args.Get(0).(domain.Conversion), args.Error(1)
}

func (m *MockConverter) ConvertLedger(ctx context.Context, from, to string) (*dto.LedgerConversionResult, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LedgerConversionResult), args.Error(1)
}

func (m *MockConverter) Format(amount decimal.Decimal, currencyCode string) string {
	return m.Called(amount, currencyCode).String(0)
}

// --- Mock SettingsService ---
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) ReportingCurrency(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsService) ResolveCredential(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsService) StoreCredential(ctx context.Context, credential string) error {
	return m.Called(ctx, credential).Error(0)
}

func (m *MockSettingsService) ChangeReportingCurrency(ctx context.Context, code string, userID string) (*dto.LedgerConversionResult, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LedgerConversionResult), args.Error(1)
}

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) RecordExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

// --- helpers ---

// newTestRouter returns a gin engine whose /api/v1 group requires a valid token.
func newTestRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return r, r.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret, testJWTIssuer))
}

// doRequest performs an authenticated request as userID. An empty userID sends no token.
func doRequest(t *testing.T, r http.Handler, method, url, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := utils.GenerateJWT(userID, testJWTSecret, time.Hour, testJWTIssuer)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
