package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/service-booking-backend/internal/catalog"
	"github.com/nekogravitycat/service-booking-backend/internal/membership"
	"github.com/nekogravitycat/service-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/service-booking-backend/internal/pricing"
)

type CreateRequest struct {
	CustomerID           string
	Guest                *GuestInfo
	ProviderID           string
	LocationID           string
	AssignedUserID       string
	ProviderMembershipID string
	StartTime            time.Time
	EndTime              time.Time
	ServiceIDs           []string
	CustomerNotes        *string
}

// UpdateRequest is a partial update; nil fields are left unchanged.
// An empty AssignedUserID clears the assignment.
type UpdateRequest struct {
	StartTime      *time.Time
	EndTime        *time.Time
	CustomerNotes  *string
	AssignedUserID *string
}

type SetStatusRequest struct {
	Status        string
	ProviderNotes *string
}

type CancelRequest struct {
	Reason *string
}

// ListQuery carries the caller-facing filters shared by the listing views.
type ListQuery struct {
	Status         string
	LocationID     string
	AssignedUserID string
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	Limit          int
}

// CustomerDirectory answers whether a registered account exists.
type CustomerDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Notifier receives booking-created events. Implementations must not block.
type Notifier interface {
	BookingCreated(bookingID string)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Get(ctx context.Context, actor Actor, id string, guestEmail string) (*Booking, error)
	ListForCustomer(ctx context.Context, actor Actor, q ListQuery) ([]*Booking, int, error)
	ListForProvider(ctx context.Context, actor Actor, providerID string, q ListQuery) ([]*Booking, int, error)
	ListForGuest(ctx context.Context, email string) ([]*Booking, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (*Booking, error)
	SetStatus(ctx context.Context, actor Actor, id string, req SetStatusRequest) (*Booking, error)
	Assign(ctx context.Context, actor Actor, id string, assignedUserID string) (*Booking, error)
	Cancel(ctx context.Context, actor Actor, id string, req CancelRequest) (*Booking, error)
}

type service struct {
	repo        Repository
	customers   CustomerDirectory
	catalog     catalog.Reader
	memberships membership.Service
	pricing     *pricing.Calculator
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
}

func NewService(
	repo Repository,
	customers CustomerDirectory,
	catalogReader catalog.Reader,
	memberships membership.Service,
	calc *pricing.Calculator,
	notifier Notifier,
	log *zap.Logger,
) Service {
	return &service{
		repo:        repo,
		customers:   customers,
		catalog:     catalogReader,
		memberships: memberships,
		pricing:     calc,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// 1. Validate party and time range
	party, err := NewParty(req.CustomerID, req.Guest)
	if err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	// 2. Registered customer must exist
	if p, ok := party.(Identified); ok {
		exists, err := s.customers.Exists(ctx, p.CustomerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCustomerNotFound
		}
	}

	// 3. Location must be actively linked to the provider
	loc, err := s.catalog.GetActiveProviderLocation(ctx, req.ProviderID, req.LocationID)
	if err != nil {
		return nil, err
	}

	// 4. Optional staffing references must be active members of the provider
	// and, when both are given, name the same person.
	var assignedUserID, membershipID *string
	if id := strings.TrimSpace(req.AssignedUserID); id != "" {
		m, err := s.memberships.GetActiveMember(ctx, req.ProviderID, id)
		if err != nil {
			return nil, mapMemberError(err, ErrAssigneeNotMember)
		}
		assignedUserID = &m.UserID
		membershipID = &m.ID
	}
	if id := strings.TrimSpace(req.ProviderMembershipID); id != "" {
		m, err := s.memberships.GetActiveByID(ctx, req.ProviderID, id)
		if err != nil {
			return nil, mapMemberError(err, ErrInvalidMembership)
		}
		if assignedUserID != nil && *assignedUserID != m.UserID {
			return nil, ErrInvalidMembership
		}
		assignedUserID = &m.UserID
		membershipID = &m.ID
	}

	// 5-6. Resolve services and price them
	ids := pricing.DedupeIDs(req.ServiceIDs)
	services, err := s.catalog.ListActiveServices(ctx, req.ProviderID, ids)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricing.Quote(req.ProviderID, ids, services)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		Party:                party,
		ProviderID:           req.ProviderID,
		ProviderName:         loc.ProviderName,
		LocationID:           loc.LocationID,
		LocationName:         loc.LocationName,
		AssignedUserID:       assignedUserID,
		ProviderMembershipID: membershipID,
		StartTime:            req.StartTime.UTC(),
		EndTime:              req.EndTime.UTC(),
		Subtotal:             quote.Subtotal,
		TaxAmount:            quote.TaxAmount,
		TotalAmount:          quote.Total,
		Currency:             quote.Currency,
		Status:               StatusPending,
		CustomerNotes:        trimmedOrNil(req.CustomerNotes),
		Items:                make([]Item, 0, len(quote.Lines)),
	}
	for _, l := range quote.Lines {
		b.Items = append(b.Items, Item{
			ServiceID:   l.ServiceID,
			ServiceName: l.ServiceName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
	}

	// 7. Persist booking and items atomically
	if err := s.persist(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("provider_id", b.ProviderID),
		zap.Bool("guest", b.IsGuestBooking()),
		zap.String("total", b.TotalAmount.StringFixed(pricing.MinorUnits)),
	)

	// 8. Fire-and-forget notification
	s.notifier.BookingCreated(b.ID)

	return b, nil
}

// persist writes b and its items inside one transaction. The deferred rollback
// releases the transaction on every exit path, panics included.
func (s *service) persist(ctx context.Context, b *Booking) (err error) {
	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return s.internal("begin booking transaction", err)
	}
	defer func() {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			s.log.Error("booking rollback failed", zap.Error(rbErr))
		}
	}()

	if err := uow.InsertBooking(ctx, b); err != nil {
		return s.internal("insert booking", err)
	}
	if err := uow.InsertItems(ctx, b.ID, b.Items); err != nil {
		return s.internal("insert booking items", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return s.internal("commit booking", err)
	}
	return nil
}

// internal passes application errors through and hides everything else.
func (s *service) internal(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error("booking persistence failed", zap.String("op", op), zap.Error(err))
	return apperror.Internal(err)
}

func (s *service) Get(ctx context.Context, actor Actor, id string, guestEmail string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caps, err := s.memberships.Resolve(ctx, b.ProviderID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(actor, caps, b, guestEmail); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListForCustomer(ctx context.Context, actor Actor, q ListQuery) ([]*Booking, int, error) {
	if actor.IsAnonymous() {
		return nil, 0, ErrUnauthenticated
	}

	f, err := q.filter()
	if err != nil {
		return nil, 0, err
	}
	f.CustomerID = actor.UserID
	return s.repo.List(ctx, f)
}

func (s *service) ListForProvider(ctx context.Context, actor Actor, providerID string, q ListQuery) ([]*Booking, int, error) {
	if actor.IsAnonymous() {
		return nil, 0, ErrUnauthenticated
	}

	caps, err := s.memberships.Resolve(ctx, providerID, actor.UserID)
	if err != nil {
		return nil, 0, err
	}

	f, err := q.filter()
	if err != nil {
		return nil, 0, err
	}
	f.ProviderID = providerID

	f, ok, err := narrowProviderFilter(actor, caps, f)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, nil
	}
	return s.repo.List(ctx, f)
}

func (s *service) ListForGuest(ctx context.Context, email string) ([]*Booking, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	bookings, _, err := s.repo.List(ctx, Filter{GuestEmail: email, Descending: true})
	return bookings, err
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (*Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caps, err := s.memberships.Resolve(ctx, b.ProviderID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeUpdate(actor, caps, b); err != nil {
		return nil, err
	}

	newStart, newEnd := b.StartTime, b.EndTime
	if req.StartTime != nil {
		newStart = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		newEnd = req.EndTime.UTC()
	}
	if !newEnd.After(newStart) {
		return nil, ErrInvalidTimeRange
	}

	if req.AssignedUserID != nil {
		if id := strings.TrimSpace(*req.AssignedUserID); id == "" {
			b.AssignedUserID = nil
			b.ProviderMembershipID = nil
		} else {
			m, err := s.memberships.GetActiveMember(ctx, b.ProviderID, id)
			if err != nil {
				return nil, mapMemberError(err, ErrAssigneeNotMember)
			}
			b.AssignedUserID = &m.UserID
			b.ProviderMembershipID = &m.ID
		}
	}

	b.StartTime, b.EndTime = newStart, newEnd
	if req.CustomerNotes != nil {
		b.CustomerNotes = trimmedOrNil(req.CustomerNotes)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) SetStatus(ctx context.Context, actor Actor, id string, req SetStatusRequest) (*Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caps, err := s.memberships.Resolve(ctx, b.ProviderID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeManage(caps); err != nil {
		return nil, err
	}

	next, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if next == b.Status {
		return nil, ErrSameStatus
	}
	if next == StatusCancelled && b.Status.IsTerminal() {
		return nil, ErrNotCancellable
	}

	s.applyStatus(b, next)
	if req.ProviderNotes != nil {
		b.ProviderNotes = trimmedOrNil(req.ProviderNotes)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("booking status changed",
		zap.String("booking_id", b.ID),
		zap.String("status", string(b.Status)),
		zap.String("actor", actor.UserID),
	)
	return b, nil
}

func (s *service) Assign(ctx context.Context, actor Actor, id string, assignedUserID string) (*Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caps, err := s.memberships.Resolve(ctx, b.ProviderID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeManage(caps); err != nil {
		return nil, err
	}

	m, err := s.memberships.GetActiveMember(ctx, b.ProviderID, strings.TrimSpace(assignedUserID))
	if err != nil {
		return nil, mapMemberError(err, ErrAssigneeNotMember)
	}
	b.AssignedUserID = &m.UserID
	b.ProviderMembershipID = &m.ID

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string, req CancelRequest) (*Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caps, err := s.memberships.Resolve(ctx, b.ProviderID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCancel(actor, caps, b); err != nil {
		return nil, err
	}

	s.applyStatus(b, StatusCancelled)
	if req.Reason != nil {
		b.CancellationReason = trimmedOrNil(req.Reason)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// applyStatus moves b to next and stamps the matching audit time.
func (s *service) applyStatus(b *Booking, next Status) {
	now := s.now().UTC()
	b.Status = next
	switch next {
	case StatusConfirmed:
		b.ConfirmedAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	case StatusCancelled:
		b.CancelledAt = &now
	}
}

func (q ListQuery) filter() (Filter, error) {
	f := Filter{
		LocationID:     q.LocationID,
		AssignedUserID: q.AssignedUserID,
		StartDate:      q.StartDate,
		EndDate:        q.EndDate,
		Page:           q.Page,
		Limit:          q.Limit,
	}
	if q.Status != "" {
		st, err := ParseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return f, ErrInvalidTimeRange
	}
	return f, nil
}

func mapMemberError(err error, notMember error) error {
	if errors.Is(err, membership.ErrNotMember) {
		return notMember
	}
	return err
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
