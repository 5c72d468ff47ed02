package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// expenseHandler records and lists expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// RegisterExpenseRoutes registers the expense routes.
func RegisterExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	registerValidators()
	h := &expenseHandler{expenseService: expenseService}

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.recordExpense)
		expenses.GET("", h.listExpenses)
	}
}

// recordExpense godoc
// @Summary Record an expense
// @Description Converts the expense into the reporting currency at the rate of its date and saves it. Nothing is saved when no rate is available.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.CreateExpenseRequest true "Expense"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 412 {object} map[string]string "No reporting currency configured"
// @Failure 422 {object} map[string]string "Rate unavailable"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) recordExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	expense, err := h.expenseService.RecordExpense(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("currency_code", req.CurrencyCode)), err, "Failed to record expense")
		return
	}

	logger.Info("Expense recorded", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Lists expenses dated in [from, to).
// @Tags expenses
// @Produce json
// @Param from query string true "Start date (YYYY-MM-DD), inclusive"
// @Param to query string true "End date (YYYY-MM-DD), exclusive"
// @Success 200 {array} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListExpenses", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list expenses")
		return
	}

	res := make([]dto.ExpenseResponse, len(expenses))
	for i := range expenses {
		res[i] = dto.ToExpenseResponse(&expenses[i])
	}
	c.JSON(http.StatusOK, res)
}
