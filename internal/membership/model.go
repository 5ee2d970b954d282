package membership

import (
	"time"

	"github.com/nekogravitycat/service-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotMember = apperror.NotFound("user is not an active member of this provider")
)

// Membership links a user to a provider with capability flags ("provider user").
type Membership struct {
	ID                 string
	ProviderID         string
	UserID             string
	IsOwner            bool
	CanManageBookings  bool
	CanManageServices  bool
	CanManageLocations bool
	CanViewAnalytics   bool
	IsActive           bool
	CreatedAt          time.Time
}

// Capabilities is what an actor may do within one provider, resolved once per request.
// The zero value means "no standing in this provider".
type Capabilities struct {
	ProviderID   string
	UserID       string
	MembershipID string

	IsMember           bool
	IsOwner            bool
	CanManageBookings  bool
	CanManageServices  bool
	CanManageLocations bool
	CanViewAnalytics   bool
}

// FromMembership converts an active membership into capabilities.
// A nil or inactive membership yields no standing.
func FromMembership(m *Membership) Capabilities {
	if m == nil || !m.IsActive {
		return Capabilities{}
	}
	return Capabilities{
		ProviderID:         m.ProviderID,
		UserID:             m.UserID,
		MembershipID:       m.ID,
		IsMember:           true,
		IsOwner:            m.IsOwner,
		CanManageBookings:  m.CanManageBookings,
		CanManageServices:  m.CanManageServices,
		CanManageLocations: m.CanManageLocations,
		CanViewAnalytics:   m.CanViewAnalytics,
	}
}

// ManagesBookings reports owner or booking-manager standing.
func (c Capabilities) ManagesBookings() bool {
	return c.IsMember && (c.IsOwner || c.CanManageBookings)
}
