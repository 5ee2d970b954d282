package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/service-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidLocation = apperror.Validation("invalid location for this provider")
)

// ProviderLocation asserts that a location is usable by a provider.
type ProviderLocation struct {
	ProviderID   string
	ProviderName string
	LocationID   string
	LocationName string
	IsPrimary    bool
	IsActive     bool
}

// Service is a bookable offering owned by exactly one provider.
type Service struct {
	ID         string
	ProviderID string
	Name       string
	BasePrice  decimal.Decimal
	Duration   time.Duration
	IsActive   bool
}
