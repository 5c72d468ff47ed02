package mapping

import (
	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:        d.ExpenseID,
		CategoryID:       d.CategoryID,
		Description:      d.Description,
		OriginalAmount:   d.OriginalAmount,
		OriginalCurrency: d.OriginalCurrency,
		ConvertedAmount:  d.ConvertedAmount,
		ConversionRate:   d.ConversionRate,
		ExpenseDate:      d.Date,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:        m.ExpenseID,
		CategoryID:       m.CategoryID,
		Description:      m.Description,
		OriginalAmount:   m.OriginalAmount,
		OriginalCurrency: m.OriginalCurrency,
		ConvertedAmount:  m.ConvertedAmount,
		ConversionRate:   m.ConversionRate,
		Date:             m.ExpenseDate,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainExpenseSlice converts model expenses to domain expenses
func ToDomainExpenseSlice(ms []models.Expense) []domain.Expense {
	ds := make([]domain.Expense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}

// ToDomainCategory converts a model Category to a domain Category
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{CategoryID: m.CategoryID, Name: m.Name, Icon: m.Icon}
}
