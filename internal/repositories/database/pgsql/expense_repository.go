package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/SscSPs/budget_engine/internal/models"
	"github.com/SscSPs/budget_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxExpenseRepository stores ledger expenses and reads categories.
type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) *PgxExpenseRepository {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)
	_ portsrepo.CategoryReader          = (*PgxExpenseRepository)(nil)
)

const expenseColumns = `expense_id, category_id, description, original_amount, original_currency, converted_amount, conversion_rate, expense_date, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxExpenseRepository) listExpenses(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Expense, error) {
		var e models.Expense
		err := row.Scan(
			&e.ExpenseID, &e.CategoryID, &e.Description, &e.OriginalAmount, &e.OriginalCurrency,
			&e.ConvertedAmount, &e.ConversionRate, &e.ExpenseDate,
			&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
		)
		return e, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan expenses", err)
	}
	return mapping.ToDomainExpenseSlice(ms), nil
}

// ListExpensesBetween lists expenses dated in [from, to), oldest first.
func (r *PgxExpenseRepository) ListExpensesBetween(ctx context.Context, from, to time.Time) ([]domain.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE expense_date >= $1 AND expense_date < $2 ORDER BY expense_date, expense_id;`,
		from, to)
}

// ListAllExpenses lists the whole ledger, oldest first.
func (r *PgxExpenseRepository) ListAllExpenses(ctx context.Context) ([]domain.Expense, error) {
	return r.listExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY expense_date, expense_id;`)
}

// SaveExpense inserts an expense.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	_, err := r.DB(ctx).Exec(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		m.ExpenseID, m.CategoryID, m.Description, m.OriginalAmount, m.OriginalCurrency,
		m.ConvertedAmount, m.ConversionRate, m.ExpenseDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save expense", err)
	}
	return nil
}

// UpdateConvertedAmount re-stamps the converted amount and rate of an expense.
func (r *PgxExpenseRepository) UpdateConvertedAmount(ctx context.Context, expenseID string, amount, rate decimal.Decimal) error {
	tag, err := r.DB(ctx).Exec(ctx,
		`UPDATE expenses SET converted_amount = $2, conversion_rate = $3, last_updated_at = NOW() WHERE expense_id = $1;`,
		expenseID, amount, rate)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update expense", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindCategoryByID retrieves a category by id.
func (r *PgxExpenseRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	var m models.Category
	err := r.DB(ctx).QueryRow(ctx, `SELECT category_id, name, icon FROM categories WHERE category_id = $1;`, categoryID).
		Scan(&m.CategoryID, &m.Name, &m.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find category", err)
	}
	c := mapping.ToDomainCategory(m)
	return &c, nil
}

// FindCategoriesByIDs retrieves categories keyed by id. Unknown ids are left out.
func (r *PgxExpenseRepository) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	out := make(map[string]domain.Category, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	cats, err := r.queryCategories(ctx, `SELECT category_id, name, icon FROM categories WHERE category_id = ANY($1);`, categoryIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		out[c.CategoryID] = c
	}
	return out, nil
}

// ListCategories lists every category by name.
func (r *PgxExpenseRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return r.queryCategories(ctx, `SELECT category_id, name, icon FROM categories ORDER BY name;`)
}

func (r *PgxExpenseRepository) queryCategories(ctx context.Context, query string, args ...any) ([]domain.Category, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query categories", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Category, error) {
		var m models.Category
		err := row.Scan(&m.CategoryID, &m.Name, &m.Icon)
		return m, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan categories", err)
	}
	cats := make([]domain.Category, len(ms))
	for i, m := range ms {
		cats[i] = mapping.ToDomainCategory(m)
	}
	return cats, nil
}
