package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles the monthly budget lifecycle.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

// RegisterBudgetRoutes registers routes related to budgets and their category allocations.
func RegisterBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	registerValidators()
	h := newBudgetHandler(budgetService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.GET("/current", h.getCurrentMonthBudget)

		budget := budgets.Group("/:budgetID")
		{
			budget.GET("", h.getBudget)
			budget.PUT("", h.updateBudget)
			budget.DELETE("", h.deleteBudget)
			budget.POST("/propagate", h.createFutureBudgets)
			budget.POST("/reconcile", h.reconcileBudgetAmount)
			budget.GET("/summary", h.getBudgetSummary)
			budget.GET("/categories", h.listCategoryBudgets)
			budget.PUT("/categories", h.saveCategoryBudgets)
		}
	}
}

// createBudget godoc
// @Summary Create the current month's budget
// @Description Creates the budget of the current month in the reporting currency and fills the following months up to the propagation horizon. Omit the amount for a category-only budget.
// @Tags budgets
// @Accept json
// @Produce json
// @Param budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid amount or threshold"
// @Failure 409 {object} map[string]string "A budget already exists for this month, or another operation is in progress"
// @Failure 412 {object} map[string]string "No reporting currency configured"
// @Failure 500 {object} map[string]string "Failed to create budget"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create budget")
		return
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID))
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

// listBudgets godoc
// @Summary List budgets
// @Description Lists budgets anchored at or after a month, oldest first.
// @Tags budgets
// @Produce json
// @Param from query string false "First month (YYYY-MM-DD, any day of the month), defaults to the current month"
// @Success 200 {array} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to list budgets"
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from, err := parseDate(c.Query("from"))
	if err != nil {
		respondWithError(c, logger, err, "Invalid date")
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), from)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list budgets")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBudgetResponse(budgets))
}

// getCurrentMonthBudget godoc
// @Summary Get the current month's budget
// @Tags budgets
// @Produce json
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "No budget for the current month"
// @Security BearerAuth
// @Router /budgets/current [get]
func (h *budgetHandler) getCurrentMonthBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budget, err := h.budgetService.GetCurrentMonthBudget(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// getBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{budgetID} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	budget, err := h.budgetService.GetBudget(c.Request.Context(), budgetID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("budget_id", budgetID)), err, "Failed to retrieve budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// updateBudget godoc
// @Summary Update a budget
// @Description Sets the amount and alert threshold of a budget and of every later budget.
// @Tags budgets
// @Accept json
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Param budget body dto.UpdateBudgetRequest true "New amount and threshold"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid amount or threshold"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Another operation is in progress"
// @Security BearerAuth
// @Router /budgets/{budgetID} [put]
func (h *budgetHandler) updateBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	logger = logger.With(slog.String("budget_id", budgetID))

	var req dto.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// deleteBudget godoc
// @Summary Delete a budget
// @Description Deletes a budget together with every later budget and their category allocations.
// @Tags budgets
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Success 200 {object} map[string][]string "Deleted budget IDs"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Another operation is in progress"
// @Security BearerAuth
// @Router /budgets/{budgetID} [delete]
func (h *budgetHandler) deleteBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	logger = logger.With(slog.String("budget_id", budgetID))

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	deleted, err := h.budgetService.DeleteBudget(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete budget")
		return
	}

	logger.Info("Budget chain deleted", slog.Int("count", len(deleted)))
	c.JSON(http.StatusOK, gin.H{"deletedBudgetIDs": deleted})
}

// createFutureBudgets godoc
// @Summary Propagate a budget forward
// @Description Creates the missing budgets of the months following the source, up to the propagation horizon. Existing months are left untouched.
// @Tags budgets
// @Produce json
// @Param budgetID path string true "Source budget ID"
// @Success 200 {array} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Another operation is in progress"
// @Security BearerAuth
// @Router /budgets/{budgetID}/propagate [post]
func (h *budgetHandler) createFutureBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	logger = logger.With(slog.String("budget_id", budgetID))

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	created, err := h.budgetService.CreateFutureBudgets(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to propagate budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBudgetResponse(created))
}

// reconcileBudgetAmount godoc
// @Summary Reconcile a budget with its categories
// @Description Raises the budget amount to the sum of its category budgets when that sum is larger. Never lowers it.
// @Tags budgets
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Another operation is in progress"
// @Security BearerAuth
// @Router /budgets/{budgetID}/reconcile [post]
func (h *budgetHandler) reconcileBudgetAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	logger = logger.With(slog.String("budget_id", budgetID))

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	budget, err := h.budgetService.ReconcileBudgetAmount(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// getBudgetSummary godoc
// @Summary Budget summary
// @Description Aggregates the budget total, category allocations, everything-else amount, spending and percentages.
// @Tags budgets
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetSummaryResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{budgetID}/summary [get]
func (h *budgetHandler) getBudgetSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	summary, err := h.budgetService.GetBudgetSummary(c.Request.Context(), budgetID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("budget_id", budgetID)), err, "Failed to build budget summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// listCategoryBudgets godoc
// @Summary List the category budgets of a budget
// @Tags budgets
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Success 200 {array} dto.CategoryBudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{budgetID}/categories [get]
func (h *budgetHandler) listCategoryBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	cbs, err := h.budgetService.ListCategoryBudgets(c.Request.Context(), budgetID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("budget_id", budgetID)), err, "Failed to list category budgets")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryBudgetResponses(cbs))
}

// saveCategoryBudgets godoc
// @Summary Replace category budgets
// @Description Replaces the category allocations of the budget and of every later budget with the given set.
// @Tags budgets
// @Accept json
// @Produce json
// @Param budgetID path string true "Budget ID"
// @Param allocations body dto.SaveCategoryBudgetsRequest true "Allocations"
// @Success 200 {array} dto.CategoryBudgetResponse
// @Failure 400 {object} map[string]string "Invalid allocation"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Another operation is in progress"
// @Security BearerAuth
// @Router /budgets/{budgetID}/categories [put]
func (h *budgetHandler) saveCategoryBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	logger = logger.With(slog.String("budget_id", budgetID))

	var req dto.SaveCategoryBudgetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveCategoryBudgets", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	cbs, err := h.budgetService.SaveCategoryBudgets(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to save category budgets")
		return
	}

	logger.Info("Category budgets saved", slog.Int("count", len(cbs)))
	c.JSON(http.StatusOK, dto.ToCategoryBudgetResponses(cbs))
}
