package mapping

import (
	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/models"
)

// ToModelExchangeRate converts a domain rate record to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRateRecord) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID: d.ExchangeRateID,
		CurrencyCode:   d.CurrencyCode,
		RateToPivot:    d.RateToPivot,
		EffectiveDate:  d.EffectiveDate,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain rate record
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRateRecord {
	return domain.ExchangeRateRecord{
		ExchangeRateID: m.ExchangeRateID,
		CurrencyCode:   m.CurrencyCode,
		RateToPivot:    m.RateToPivot,
		EffectiveDate:  m.EffectiveDate,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainExchangeRateSlice converts model rates to domain records
func ToDomainExchangeRateSlice(ms []models.ExchangeRate) []domain.ExchangeRateRecord {
	ds := make([]domain.ExchangeRateRecord, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExchangeRate(m)
	}
	return ds
}
