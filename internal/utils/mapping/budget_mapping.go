package mapping

import (
	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/models"
	"github.com/shopspring/decimal"
)

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

// ToModelBudget converts a domain Budget to a model Budget
func ToModelBudget(d domain.Budget) models.Budget {
	return models.Budget{
		BudgetID:       d.BudgetID,
		AnchorMonth:    d.AnchorMonth,
		Amount:         toNullDecimal(d.Amount),
		CurrencyCode:   d.CurrencyCode,
		AlertThreshold: toNullDecimal(d.AlertThreshold),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBudget converts a model Budget to a domain Budget
func ToDomainBudget(m models.Budget) domain.Budget {
	return domain.Budget{
		BudgetID:       m.BudgetID,
		AnchorMonth:    m.AnchorMonth,
		Amount:         fromNullDecimal(m.Amount),
		CurrencyCode:   m.CurrencyCode,
		AlertThreshold: fromNullDecimal(m.AlertThreshold),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBudgetSlice converts model budgets to domain budgets
func ToDomainBudgetSlice(ms []models.Budget) []domain.Budget {
	ds := make([]domain.Budget, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBudget(m)
	}
	return ds
}

// ToModelCategoryBudget converts a domain CategoryBudget to a model CategoryBudget
func ToModelCategoryBudget(d domain.CategoryBudget) models.CategoryBudget {
	return models.CategoryBudget{
		CategoryBudgetID: d.CategoryBudgetID,
		BudgetID:         d.BudgetID,
		CategoryID:       d.CategoryID,
		CategoryName:     d.CategoryName,
		Amount:           d.Amount,
		CurrencyCode:     d.CurrencyCode,
		Year:             d.Year,
		Month:            d.Month,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategoryBudget converts a model CategoryBudget to a domain CategoryBudget
func ToDomainCategoryBudget(m models.CategoryBudget) domain.CategoryBudget {
	return domain.CategoryBudget{
		CategoryBudgetID: m.CategoryBudgetID,
		BudgetID:         m.BudgetID,
		CategoryID:       m.CategoryID,
		CategoryName:     m.CategoryName,
		Amount:           m.Amount,
		CurrencyCode:     m.CurrencyCode,
		Year:             m.Year,
		Month:            m.Month,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCategoryBudgetSlice converts model category budgets to domain ones
func ToDomainCategoryBudgetSlice(ms []models.CategoryBudget) []domain.CategoryBudget {
	ds := make([]domain.CategoryBudget, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCategoryBudget(m)
	}
	return ds
}
