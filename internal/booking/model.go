package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/service-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.NotFound("booking not found")
	ErrPartyRequired        = apperror.Validation("exactly one of customerId or guestInfo is required")
	ErrPartyConflict        = apperror.Validation("customerId and guestInfo are mutually exclusive")
	ErrInvalidGuestInfo     = apperror.Validation("guestInfo requires firstName, lastName and a valid email")
	ErrCustomerNotFound     = apperror.Validation("customer account not found")
	ErrInvalidTimeRange     = apperror.Validation("start time must be before end time")
	ErrInvalidStatus        = apperror.Validation("invalid booking status")
	ErrSameStatus           = apperror.Validation("booking already has this status")
	ErrAssigneeNotMember    = apperror.Validation("assigned user is not an active member of this provider")
	ErrInvalidMembership    = apperror.Validation("provider membership is not an active membership of the assigned user")
	ErrInvalidReference     = apperror.Validation("booking references an unknown record")
	ErrEmailRequired        = apperror.Validation("email is required")
	ErrCustomerUpdateClosed = apperror.Validation("booking can only be modified while pending or confirmed")
	ErrForbidden            = apperror.Forbidden("forbidden")
	ErrUnauthenticated      = apperror.New(http.StatusUnauthorized, "unauthorized")
	ErrNotCancellable       = apperror.State("booking can no longer be cancelled")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CustomerEditable reports whether the booking's customer may still change it.
func (s Status) CustomerEditable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// GuestInfo is the contact data embedded in a guest booking.
type GuestInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
}

// Party is who the booking is for: exactly one of Identified or Guest.
type Party interface {
	isParty()
}

// Identified is a booking made for a registered account.
type Identified struct {
	CustomerID string
}

// Guest is a booking made without an account.
type Guest struct {
	Info GuestInfo
}

func (Identified) isParty() {}
func (Guest) isParty()      {}

// NewParty builds the booking party from the two optional request inputs,
// rejecting both-present and neither-present.
func NewParty(customerID string, guest *GuestInfo) (Party, error) {
	customerID = strings.TrimSpace(customerID)
	switch {
	case customerID != "" && guest != nil:
		return nil, ErrPartyConflict
	case customerID != "":
		return Identified{CustomerID: customerID}, nil
	case guest != nil:
		info, err := normalizeGuest(*guest)
		if err != nil {
			return nil, err
		}
		return Guest{Info: info}, nil
	default:
		return nil, ErrPartyRequired
	}
}

func normalizeGuest(g GuestInfo) (GuestInfo, error) {
	g.FirstName = strings.TrimSpace(g.FirstName)
	g.LastName = strings.TrimSpace(g.LastName)
	g.Email = NormalizeEmail(g.Email)
	if g.Phone != nil {
		p := strings.TrimSpace(*g.Phone)
		if p == "" {
			g.Phone = nil
		} else {
			g.Phone = &p
		}
	}
	if g.FirstName == "" || g.LastName == "" || !strings.Contains(g.Email, "@") {
		return g, ErrInvalidGuestInfo
	}
	return g, nil
}

// NormalizeEmail is applied to guest emails on write and on lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Item is the per-service line captured at creation time.
// UnitPrice is a snapshot and never changes afterwards.
type Item struct {
	ID          string
	BookingID   string
	ServiceID   string
	ServiceName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type Booking struct {
	ID    string
	Party Party

	ProviderID   string
	ProviderName string
	LocationID   string
	LocationName string

	AssignedUserID       *string
	ProviderMembershipID *string

	StartTime time.Time
	EndTime   time.Time

	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
	Currency    string

	Status             Status
	CustomerNotes      *string
	ProviderNotes      *string
	CancellationReason *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	Items []Item
}

// IsGuestBooking mirrors which side of the party is present.
func (b *Booking) IsGuestBooking() bool {
	_, ok := b.Party.(Guest)
	return ok
}

// CustomerID returns the registered customer, if any.
func (b *Booking) CustomerID() (string, bool) {
	if p, ok := b.Party.(Identified); ok {
		return p.CustomerID, true
	}
	return "", false
}

// Guest returns the embedded guest info, if any.
func (b *Booking) Guest() (GuestInfo, bool) {
	if p, ok := b.Party.(Guest); ok {
		return p.Info, true
	}
	return GuestInfo{}, false
}

// IsAssignedTo reports whether userID performs this booking.
func (b *Booking) IsAssignedTo(userID string) bool {
	return userID != "" && b.AssignedUserID != nil && *b.AssignedUserID == userID
}

// Filter narrows a listing. Empty fields do not filter.
type Filter struct {
	CustomerID     string
	ProviderID     string
	GuestEmail     string
	Status         Status
	LocationID     string
	AssignedUserID string
	StartDate      *time.Time // start_time >= StartDate
	EndDate        *time.Time // start_time <= EndDate
	Page           int
	Limit          int // 0 means unpaginated
	Descending     bool
}

// Actor is the caller of an operation. UserID is empty for anonymous callers.
type Actor struct {
	UserID string
}

// IsAnonymous reports whether the caller presented no identity.
func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}
