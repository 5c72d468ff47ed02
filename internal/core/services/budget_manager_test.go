package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portssvc "github.com/SscSPs/budget_engine/internal/core/ports/services"
	"github.com/SscSPs/budget_engine/internal/core/services"
	"github.com/SscSPs/budget_engine/internal/dto"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
	"github.com/stretchr/testify/suite"
)

type BudgetManagerTestSuite struct {
	suite.Suite
	ledger   *memoryLedger
	executor *serial.Executor
	manager  portssvc.BudgetSvcFacade
	now      time.Time
	month    time.Time
}

func (suite *BudgetManagerTestSuite) SetupTest() {
	suite.ledger = newMemoryLedger()
	suite.executor = serial.NewExecutor()
	suite.now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	suite.month = day(2025, 3, 1)
	suite.manager = suite.newManager(fixedCurrency{code: "USD"})
}

func (suite *BudgetManagerTestSuite) newManager(currencies portssvc.ReportingCurrencyProvider) portssvc.BudgetSvcFacade {
	return services.NewBudgetManager(
		suite.ledger, suite.ledger, suite.ledger, currencies, suite.executor,
		services.WithBudgetClock(func() time.Time { return suite.now }),
	)
}

func (suite *BudgetManagerTestSuite) TearDownTest() {
	suite.executor.Close()
}

func (suite *BudgetManagerTestSuite) budgetsByMonth() map[string]domain.Budget {
	out := map[string]domain.Budget{}
	for _, b := range suite.ledger.budgets {
		out[domain.MonthKey(b.AnchorMonth)] = b
	}
	return out
}

func (suite *BudgetManagerTestSuite) create(amount string) *domain.Budget {
	b, err := suite.manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{Amount: decPtr(amount)}, "user-1")
	suite.Require().NoError(err)
	return b
}

func (suite *BudgetManagerTestSuite) TestCreateBudget_PropagatesSixMonths() {
	b := suite.create("1000")

	suite.Equal(suite.month, b.AnchorMonth)
	suite.Equal("USD", b.CurrencyCode)

	months := suite.budgetsByMonth()
	suite.Len(months, 7)
	for i := 0; i <= 6; i++ {
		key := domain.MonthKey(domain.AddMonths(suite.month, i))
		got, ok := months[key]
		suite.Require().True(ok, key)
		suite.True(got.Amount.Equal(dec("1000")), key)
		suite.Equal("USD", got.CurrencyCode)
	}
}

func (suite *BudgetManagerTestSuite) TestCreateBudget_CategoryOnly() {
	b, err := suite.manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Nil(b.Amount)
	suite.Len(suite.ledger.budgets, 7)
}

func (suite *BudgetManagerTestSuite) TestCreateBudget_ExistsForCurrentMonth() {
	suite.create("1000")

	_, err := suite.manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{Amount: decPtr("500")}, "user-1")

	suite.ErrorIs(err, apperrors.ErrBudgetExistsForCurrentMonth)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Len(suite.ledger.budgets, 7)
}

func (suite *BudgetManagerTestSuite) TestCreateBudget_Validation() {
	ctx := context.Background()

	_, err := suite.manager.CreateBudget(ctx, dto.CreateBudgetRequest{Amount: decPtr("0")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.manager.CreateBudget(ctx, dto.CreateBudgetRequest{Amount: decPtr("100"), AlertThreshold: decPtr("150")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrInvalidThreshold)

	_, err = suite.manager.CreateBudget(ctx, dto.CreateBudgetRequest{Amount: decPtr("100"), AlertThreshold: decPtr("-1")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrInvalidThreshold)

	_, err = suite.manager.CreateBudget(ctx, dto.CreateBudgetRequest{AlertThreshold: decPtr("10")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrInvalidThreshold)

	suite.Empty(suite.ledger.budgets)
}

func (suite *BudgetManagerTestSuite) TestCreateBudget_NoReportingCurrency() {
	manager := suite.newManager(fixedCurrency{err: apperrors.ErrNoCurrencyAvailable})

	_, err := manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{Amount: decPtr("100")}, "user-1")

	suite.ErrorIs(err, apperrors.ErrNoCurrencyAvailable)
	suite.Empty(suite.ledger.budgets)
}

func (suite *BudgetManagerTestSuite) TestCreateBudget_RollsBackWhenPropagationFails() {
	calls := 0
	suite.ledger.onSaveBudget = func() error {
		calls++
		if calls == 3 {
			return errors.New("write failed")
		}
		return nil
	}

	_, err := suite.manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{Amount: decPtr("100")}, "user-1")

	suite.Error(err)
	suite.Empty(suite.ledger.budgets)
}

func (suite *BudgetManagerTestSuite) TestCreateFutureBudgets_LeavesExistingMonths() {
	ctx := context.Background()
	source := domain.Budget{BudgetID: "src", AnchorMonth: suite.month, Amount: decPtr("1000"), CurrencyCode: "USD"}
	existing := domain.Budget{BudgetID: "m2", AnchorMonth: domain.AddMonths(suite.month, 2), Amount: decPtr("42"), CurrencyCode: "USD"}
	suite.ledger.budgets[source.BudgetID] = source
	suite.ledger.budgets[existing.BudgetID] = existing
	suite.ledger.categoryBudgets["cb1"] = domain.CategoryBudget{
		CategoryBudgetID: "cb1", BudgetID: "src", CategoryID: "food", CategoryName: "Food",
		Amount: dec("400"), CurrencyCode: "USD", Year: 2025, Month: 3,
	}

	created, err := suite.manager.CreateFutureBudgets(ctx, "src", "user-1")

	suite.Require().NoError(err)
	suite.Len(created, 5)
	suite.True(suite.ledger.budgets["m2"].Amount.Equal(dec("42")))

	for _, b := range created {
		suite.NotEqual(domain.MonthKey(existing.AnchorMonth), domain.MonthKey(b.AnchorMonth))
		cbs, err := suite.ledger.ListCategoryBudgets(ctx, b.BudgetID)
		suite.Require().NoError(err)
		suite.Require().Len(cbs, 1)
		suite.Equal("food", cbs[0].CategoryID)
		suite.Equal(b.AnchorMonth.Year(), cbs[0].Year)
		suite.Equal(int(b.AnchorMonth.Month()), cbs[0].Month)
		suite.NotEqual("cb1", cbs[0].CategoryBudgetID)
	}
	existingCBs, _ := suite.ledger.ListCategoryBudgets(ctx, "m2")
	suite.Empty(existingCBs)

	// Running again creates nothing.
	created, err = suite.manager.CreateFutureBudgets(ctx, "src", "user-1")
	suite.Require().NoError(err)
	suite.Empty(created)
}

func (suite *BudgetManagerTestSuite) TestUpdateBudget_CascadesForwardOnly() {
	suite.create("1000")
	months := suite.budgetsByMonth()
	target := months[domain.MonthKey(domain.AddMonths(suite.month, 2))]

	updated, err := suite.manager.UpdateBudget(context.Background(), target.BudgetID,
		dto.UpdateBudgetRequest{Amount: dec("1500"), AlertThreshold: decPtr("1200")}, "user-2")

	suite.Require().NoError(err)
	suite.True(updated.Amount.Equal(dec("1500")))
	suite.Equal("user-2", updated.LastUpdatedBy)

	months = suite.budgetsByMonth()
	for i := 0; i <= 6; i++ {
		b := months[domain.MonthKey(domain.AddMonths(suite.month, i))]
		if i < 2 {
			suite.True(b.Amount.Equal(dec("1000")), "month %d", i)
			suite.Nil(b.AlertThreshold)
			continue
		}
		suite.True(b.Amount.Equal(dec("1500")), "month %d", i)
		suite.True(b.AlertThreshold.Equal(dec("1200")), "month %d", i)
	}
}

func (suite *BudgetManagerTestSuite) TestUpdateBudget_Validation() {
	b := suite.create("1000")

	_, err := suite.manager.UpdateBudget(context.Background(), b.BudgetID, dto.UpdateBudgetRequest{Amount: dec("-5")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.manager.UpdateBudget(context.Background(), b.BudgetID, dto.UpdateBudgetRequest{Amount: dec("50"), AlertThreshold: decPtr("60")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrInvalidThreshold)

	_, err = suite.manager.UpdateBudget(context.Background(), "missing", dto.UpdateBudgetRequest{Amount: dec("50")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BudgetManagerTestSuite) TestDeleteBudget_CascadesForward() {
	suite.create("1000")
	suite.Require().NoError(suite.saveAllocations(suite.budgetsByMonth()[domain.MonthKey(suite.month)].BudgetID, "food", "400"))
	target := suite.budgetsByMonth()[domain.MonthKey(domain.AddMonths(suite.month, 3))]

	deleted, err := suite.manager.DeleteBudget(context.Background(), target.BudgetID, "user-1")

	suite.Require().NoError(err)
	suite.Len(deleted, 4)
	months := suite.budgetsByMonth()
	suite.Len(months, 3)
	for i := 0; i < 3; i++ {
		_, ok := months[domain.MonthKey(domain.AddMonths(suite.month, i))]
		suite.True(ok, "month %d kept", i)
	}
	suite.Len(suite.ledger.categoryBudgets, 3)
}

func (suite *BudgetManagerTestSuite) saveAllocations(budgetID string, pairs ...string) error {
	req := dto.SaveCategoryBudgetsRequest{}
	for i := 0; i+1 < len(pairs); i += 2 {
		req.Allocations = append(req.Allocations, dto.CategoryAllocationRequest{CategoryID: pairs[i], Amount: dec(pairs[i+1])})
	}
	_, err := suite.manager.SaveCategoryBudgets(context.Background(), budgetID, req, "user-1")
	return err
}

func (suite *BudgetManagerTestSuite) TestSaveCategoryBudgets_ReplacesFromTargetForward() {
	ctx := context.Background()
	suite.create("1000")
	months := suite.budgetsByMonth()
	first := months[domain.MonthKey(suite.month)]
	third := months[domain.MonthKey(domain.AddMonths(suite.month, 2))]

	suite.Require().NoError(suite.saveAllocations(first.BudgetID, "food", "400", "transport", "300"))
	for _, b := range months {
		cbs, _ := suite.ledger.ListCategoryBudgets(ctx, b.BudgetID)
		suite.Len(cbs, 2)
		for _, cb := range cbs {
			suite.Equal(b.AnchorMonth.Year(), cb.Year)
			suite.Equal(int(b.AnchorMonth.Month()), cb.Month)
		}
	}

	everythingElse, err := suite.manager.CalculateEverythingElseAmount(ctx, first.BudgetID)
	suite.Require().NoError(err)
	suite.Require().NotNil(everythingElse)
	suite.True(everythingElse.Equal(dec("300")))

	suite.Require().NoError(suite.saveAllocations(third.BudgetID, "food", "200"))
	for i := 0; i <= 6; i++ {
		b := months[domain.MonthKey(domain.AddMonths(suite.month, i))]
		cbs, _ := suite.ledger.ListCategoryBudgets(ctx, b.BudgetID)
		if i < 2 {
			suite.Len(cbs, 2, "month %d", i)
			continue
		}
		suite.Require().Len(cbs, 1, "month %d", i)
		suite.True(cbs[0].Amount.Equal(dec("200")))
		suite.Equal("Food", cbs[0].CategoryName)
	}
}

func (suite *BudgetManagerTestSuite) TestSaveCategoryBudgets_Validation() {
	b := suite.create("1000")

	suite.ErrorIs(suite.saveAllocations(b.BudgetID, "unknown", "10"), apperrors.ErrValidation)
	suite.ErrorIs(suite.saveAllocations(b.BudgetID, "food", "10", "food", "20"), apperrors.ErrValidation)
	suite.ErrorIs(suite.saveAllocations(b.BudgetID, "food", "0"), apperrors.ErrInvalidAmount)
	suite.Empty(suite.ledger.categoryBudgets)
}

func (suite *BudgetManagerTestSuite) TestReconcileBudgetAmount_RaisesOnly() {
	ctx := context.Background()
	b := suite.create("1000")
	suite.Require().NoError(suite.saveAllocations(b.BudgetID, "food", "700", "transport", "500"))

	reconciled, err := suite.manager.ReconcileBudgetAmount(ctx, b.BudgetID, "user-1")
	suite.Require().NoError(err)
	suite.True(reconciled.Amount.Equal(dec("1200")))
	suite.True(suite.ledger.budgets[b.BudgetID].Amount.Equal(dec("1200")))

	_, err = suite.manager.UpdateBudget(ctx, b.BudgetID, dto.UpdateBudgetRequest{Amount: dec("1500")}, "user-1")
	suite.Require().NoError(err)

	reconciled, err = suite.manager.ReconcileBudgetAmount(ctx, b.BudgetID, "user-1")
	suite.Require().NoError(err)
	suite.True(reconciled.Amount.Equal(dec("1500")))
}

func (suite *BudgetManagerTestSuite) TestReconcileBudgetAmount_CategoryOnlyBudget() {
	b, err := suite.manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{}, "user-1")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.saveAllocations(b.BudgetID, "food", "250"))

	reconciled, err := suite.manager.ReconcileBudgetAmount(context.Background(), b.BudgetID, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(reconciled.Amount)
	suite.True(reconciled.Amount.Equal(dec("250")))
}

func (suite *BudgetManagerTestSuite) TestSpendingCalculations() {
	ctx := context.Background()
	b := suite.create("1000")
	suite.Require().NoError(suite.saveAllocations(b.BudgetID, "food", "400"))
	suite.ledger.expenses["e1"] = domain.Expense{ExpenseID: "e1", CategoryID: "food", ConvertedAmount: dec("100"), Date: suite.month.AddDate(0, 0, 2)}
	suite.ledger.expenses["e2"] = domain.Expense{ExpenseID: "e2", CategoryID: "leisure", ConvertedAmount: dec("150"), Date: suite.month.AddDate(0, 0, 5)}
	suite.ledger.expenses["e3"] = domain.Expense{ExpenseID: "e3", CategoryID: "leisure", ConvertedAmount: dec("999"), Date: domain.AddMonths(suite.month, 1)}

	expenses, err := suite.manager.ExpensesForBudget(ctx, *b)
	suite.Require().NoError(err)
	suite.Len(expenses, 2)

	nonBudgeted, err := suite.manager.CalculateNonBudgetedSpending(ctx, b.BudgetID)
	suite.Require().NoError(err)
	suite.True(nonBudgeted.Equal(dec("150")))

	total, err := suite.manager.CalculateTotalCategoryBudget(ctx, b.BudgetID)
	suite.Require().NoError(err)
	suite.True(total.Equal(dec("400")))

	suite.True(suite.manager.CalculatePercentage(dec("250"), dec("1000")).Equal(dec("25")))
	suite.True(suite.manager.CalculatePercentage(dec("250"), dec("0")).IsZero())
	suite.True(suite.manager.IsCurrentMonth(*b))

	summary, err := suite.manager.GetBudgetSummary(ctx, b.BudgetID)
	suite.Require().NoError(err)
	suite.True(summary.TotalSpent.Equal(dec("250")))
	suite.True(summary.Percentage.Equal(dec("25")))
	suite.True(summary.EverythingElse.Equal(dec("600")))
	suite.True(summary.IsCurrentMonth)
	suite.Equal("1 000,00 $", summary.FormattedBudgetTotal)
	suite.Require().Len(summary.Categories, 1)
	suite.True(summary.Categories[0].Spent.Equal(dec("100")))
	suite.True(summary.Categories[0].Percentage.Equal(dec("25")))
}

func (suite *BudgetManagerTestSuite) TestGetCurrentMonthBudget() {
	_, err := suite.manager.GetCurrentMonthBudget(context.Background())
	suite.ErrorIs(err, apperrors.ErrNotFound)

	created := suite.create("1000")
	current, err := suite.manager.GetCurrentMonthBudget(context.Background())
	suite.Require().NoError(err)
	suite.Equal(created.BudgetID, current.BudgetID)
}

func (suite *BudgetManagerTestSuite) TestMutationWhileBusyFails() {
	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	suite.ledger.onSaveBudget = func() error {
		if first {
			first = false
			close(entered)
			<-release
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := suite.manager.CreateBudget(context.Background(), dto.CreateBudgetRequest{Amount: decPtr("100")}, "user-1")
		done <- err
	}()
	<-entered

	_, err := suite.manager.DeleteBudget(context.Background(), "anything", "user-1")
	suite.ErrorIs(err, apperrors.ErrOperationInProgress)

	close(release)
	suite.NoError(<-done)

	// The flag is released once the operation completes.
	_, err = suite.manager.DeleteBudget(context.Background(), "anything", "user-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestBudgetManager(t *testing.T) {
	suite.Run(t, new(BudgetManagerTestSuite))
}
