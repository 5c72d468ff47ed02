package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/SscSPs/budget_engine/internal/models"
	"github.com/SscSPs/budget_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxBudgetRepository stores budgets and their category budgets.
type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) *PgxBudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryWithTx = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, anchor_month, amount, currency_code, alert_threshold, created_at, created_by, last_updated_at, last_updated_by`

func scanBudget(row pgx.Row) (models.Budget, error) {
	var b models.Budget
	err := row.Scan(
		&b.BudgetID,
		&b.AnchorMonth,
		&b.Amount,
		&b.CurrencyCode,
		&b.AlertThreshold,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		return b, err
	}
	// DATE columns come back as UTC midnight; anchors live in local time.
	b.AnchorMonth = time.Date(b.AnchorMonth.Year(), b.AnchorMonth.Month(), 1, 0, 0, 0, 0, time.Local)
	return b, nil
}

// anchorDate strips the location so the DATE column stores the local calendar day.
func anchorDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (r *PgxBudgetRepository) findBudget(ctx context.Context, query string, args ...any) (*domain.Budget, error) {
	m, err := scanBudget(r.DB(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find budget", err)
	}
	b := mapping.ToDomainBudget(m)
	return &b, nil
}

func (r *PgxBudgetRepository) listBudgets(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query budgets", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Budget, error) {
		return scanBudget(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan budgets", err)
	}
	return mapping.ToDomainBudgetSlice(ms), nil
}

// FindBudgetByID retrieves a budget by its identifier.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return r.findBudget(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE budget_id = $1;`, budgetID)
}

// FindBudgetByMonth retrieves the budget anchored on the month containing month.
func (r *PgxBudgetRepository) FindBudgetByMonth(ctx context.Context, month time.Time) (*domain.Budget, error) {
	return r.findBudget(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE anchor_month = $1;`, anchorDate(month))
}

// ListBudgetsFrom lists budgets anchored at or after month, oldest first.
func (r *PgxBudgetRepository) ListBudgetsFrom(ctx context.Context, month time.Time) ([]domain.Budget, error) {
	return r.listBudgets(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE anchor_month >= $1 ORDER BY anchor_month ASC;`, anchorDate(month))
}

// ListBudgetsByCurrency lists budgets stamped with currencyCode, oldest first.
func (r *PgxBudgetRepository) ListBudgetsByCurrency(ctx context.Context, currencyCode string) ([]domain.Budget, error) {
	return r.listBudgets(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE currency_code = $1 ORDER BY anchor_month ASC;`, currencyCode)
}

// SaveBudget inserts a budget. The unique anchor month turns races into ErrDuplicate.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	query := `INSERT INTO budgets (` + budgetColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.BudgetID, anchorDate(m.AnchorMonth), m.Amount, m.CurrencyCode, m.AlertThreshold,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: budget for %s", apperrors.ErrDuplicate, domain.MonthKey(budget.AnchorMonth))
		}
		return apperrors.NewAppError(500, "failed to save budget", err)
	}
	return nil
}

// UpdateBudget overwrites amount, currency and threshold of a budget.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)
	query := `
		UPDATE budgets
		SET amount = $2, currency_code = $3, alert_threshold = $4, last_updated_at = $5, last_updated_by = $6
		WHERE budget_id = $1;
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		m.BudgetID, m.Amount, m.CurrencyCode, m.AlertThreshold, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update budget", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBudgets removes budgets. Category budgets go with them through the foreign key cascade.
func (r *PgxBudgetRepository) DeleteBudgets(ctx context.Context, budgetIDs []string) error {
	if len(budgetIDs) == 0 {
		return nil
	}
	if _, err := r.DB(ctx).Exec(ctx, `DELETE FROM budgets WHERE budget_id = ANY($1);`, budgetIDs); err != nil {
		return apperrors.NewAppError(500, "failed to delete budgets", err)
	}
	return nil
}

const categoryBudgetColumns = `category_budget_id, budget_id, category_id, category_name, amount, currency_code, year, month, created_at, created_by, last_updated_at, last_updated_by`

// ListCategoryBudgets lists the category budgets of a budget ordered by category name.
func (r *PgxBudgetRepository) ListCategoryBudgets(ctx context.Context, budgetID string) ([]domain.CategoryBudget, error) {
	query := `SELECT ` + categoryBudgetColumns + ` FROM category_budgets WHERE budget_id = $1 ORDER BY category_name, category_id;`
	rows, err := r.DB(ctx).Query(ctx, query, budgetID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query category budgets", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CategoryBudget, error) {
		var cb models.CategoryBudget
		err := row.Scan(
			&cb.CategoryBudgetID, &cb.BudgetID, &cb.CategoryID, &cb.CategoryName, &cb.Amount,
			&cb.CurrencyCode, &cb.Year, &cb.Month,
			&cb.CreatedAt, &cb.CreatedBy, &cb.LastUpdatedAt, &cb.LastUpdatedBy,
		)
		return cb, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan category budgets", err)
	}
	return mapping.ToDomainCategoryBudgetSlice(ms), nil
}

// SaveCategoryBudgets inserts category budgets in one batch.
func (r *PgxBudgetRepository) SaveCategoryBudgets(ctx context.Context, categoryBudgets []domain.CategoryBudget) error {
	if len(categoryBudgets) == 0 {
		return nil
	}
	return r.RunInTx(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, cb := range categoryBudgets {
			m := mapping.ToModelCategoryBudget(cb)
			batch.Queue(`INSERT INTO category_budgets (`+categoryBudgetColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				m.CategoryBudgetID, m.BudgetID, m.CategoryID, m.CategoryName, m.Amount, m.CurrencyCode,
				m.Year, m.Month, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
		}
		results := r.DB(ctx).SendBatch(ctx, batch)
		for range categoryBudgets {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: category budget", apperrors.ErrDuplicate)
				}
				return apperrors.NewAppError(500, "failed to save category budget", err)
			}
		}
		if err := results.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to save category budgets", err)
		}
		return nil
	})
}

// UpdateCategoryBudget overwrites amount and currency of a category budget.
func (r *PgxBudgetRepository) UpdateCategoryBudget(ctx context.Context, categoryBudget domain.CategoryBudget) error {
	m := mapping.ToModelCategoryBudget(categoryBudget)
	query := `
		UPDATE category_budgets
		SET amount = $2, currency_code = $3, last_updated_at = $4, last_updated_by = $5
		WHERE category_budget_id = $1;
	`
	tag, err := r.DB(ctx).Exec(ctx, query, m.CategoryBudgetID, m.Amount, m.CurrencyCode, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update category budget", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCategoryBudgetsByBudget removes every category budget owned by the given budgets.
func (r *PgxBudgetRepository) DeleteCategoryBudgetsByBudget(ctx context.Context, budgetIDs []string) error {
	if len(budgetIDs) == 0 {
		return nil
	}
	if _, err := r.DB(ctx).Exec(ctx, `DELETE FROM category_budgets WHERE budget_id = ANY($1);`, budgetIDs); err != nil {
		return apperrors.NewAppError(500, "failed to delete category budgets", err)
	}
	return nil
}
