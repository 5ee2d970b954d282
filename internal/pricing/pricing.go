// Package pricing turns a set of selected services into a tax-inclusive quote.
// All arithmetic is decimal; amounts are rounded to minor-unit precision.
package pricing

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/service-booking-backend/internal/catalog"
	"github.com/nekogravitycat/service-booking-backend/internal/pkg/apperror"
)

// MinorUnits is the number of decimal places money is rounded to.
const MinorUnits = 2

// DefaultTaxRate is the fixed consumption-tax rate.
var DefaultTaxRate = decimal.RequireFromString("0.125")

var (
	ErrNoServices      = apperror.New(http.StatusBadRequest, "at least one service is required")
	ErrInvalidServices = apperror.New(http.StatusBadRequest, "some services are invalid")
)

// Line is the priced snapshot of one selected service.
type Line struct {
	ServiceID   string
	ServiceName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Quote is the result of pricing a selection.
type Quote struct {
	Lines     []Line
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	Currency  string
	Duration  time.Duration
}

// Calculator prices service selections. It has no side effects.
type Calculator struct {
	TaxRate  decimal.Decimal
	Currency string
}

// NewCalculator returns a Calculator for the given rate and currency.
func NewCalculator(taxRate decimal.Decimal, currency string) *Calculator {
	return &Calculator{TaxRate: taxRate, Currency: currency}
}

// DedupeIDs drops repeated ids while keeping first-seen order.
func DedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Quote prices the services resolved for requestedIDs on behalf of providerID.
// Every requested id must resolve to exactly one active service of that provider.
func (c *Calculator) Quote(providerID string, requestedIDs []string, services []catalog.Service) (*Quote, error) {
	ids := DedupeIDs(requestedIDs)
	if len(ids) == 0 {
		return nil, ErrNoServices
	}
	if len(services) != len(ids) {
		return nil, ErrInvalidServices
	}

	byID := make(map[string]catalog.Service, len(services))
	for _, s := range services {
		if s.ProviderID != providerID || !s.IsActive {
			return nil, ErrInvalidServices
		}
		byID[s.ID] = s
	}

	q := &Quote{
		Lines:    make([]Line, 0, len(ids)),
		Subtotal: decimal.Zero,
		Currency: c.Currency,
	}
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, ErrInvalidServices
		}
		const quantity = 1
		unit := s.BasePrice.Round(MinorUnits)
		line := Line{
			ServiceID:   s.ID,
			ServiceName: s.Name,
			Quantity:    quantity,
			UnitPrice:   unit,
			Total:       unit.Mul(decimal.NewFromInt(quantity)),
		}
		q.Lines = append(q.Lines, line)
		q.Subtotal = q.Subtotal.Add(line.Total)
		q.Duration += s.Duration
	}

	q.TaxAmount = Tax(q.Subtotal, c.TaxRate)
	q.Total = q.Subtotal.Add(q.TaxAmount)
	return q, nil
}

// Tax returns subtotal × rate rounded half away from zero to minor units.
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(MinorUnits)
}
