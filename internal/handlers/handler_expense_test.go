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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordExpense_RefusedWithoutRate(t *testing.T) {
	router, v1 := newTestRouter()
	expenses := new(MockExpenseService)
	handlers.RegisterExpenseRoutes(v1, expenses)
	userID := uuid.NewString()

	expenses.On("RecordExpense", mock.Anything,
		mock.MatchedBy(func(req dto.CreateExpenseRequest) bool {
			return req.CurrencyCode == "JPY" && req.Amount.Equal(dec("1500")) && req.CategoryID == "food"
		}),
		userID,
	).Return(nil, apperrors.ErrRateUnavailable).Once()

	body := `{"categoryID": "food", "amount": 1500, "currencyCode": "JPY", "date": "2025-03-10T12:00:00Z"}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/expenses", body, userID)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	expenses.AssertExpectations(t)
}

func TestRecordExpense_Success(t *testing.T) {
	router, v1 := newTestRouter()
	expenses := new(MockExpenseService)
	handlers.RegisterExpenseRoutes(v1, expenses)
	userID := uuid.NewString()

	saved := &domain.Expense{
		ExpenseID:        uuid.NewString(),
		CategoryID:       "food",
		OriginalAmount:   dec("20"),
		OriginalCurrency: "EUR",
		ConvertedAmount:  dec("22"),
		ConversionRate:   dec("1.1"),
		Date:             time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	expenses.On("RecordExpense", mock.Anything, mock.Anything, userID).Return(saved, nil).Once()

	body := `{"categoryID": "food", "amount": "20", "currencyCode": "EUR", "date": "2025-03-10T12:00:00Z"}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/expenses", body, userID)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.ExpenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, saved.ExpenseID, resp.ExpenseID)
	assert.True(t, resp.ConvertedAmount.Equal(dec("22")))
}

func TestListExpenses_RequiresRange(t *testing.T) {
	router, v1 := newTestRouter()
	expenses := new(MockExpenseService)
	handlers.RegisterExpenseRoutes(v1, expenses)

	w := doRequest(t, router, http.MethodGet, "/api/v1/expenses?from=2025-03-01", "", uuid.NewString())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	expenses.AssertNotCalled(t, "ListExpenses", mock.Anything, mock.Anything)
}
