package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/service-booking-backend/internal/catalog"
	"github.com/nekogravitycat/service-booking-backend/internal/membership"
)

// memStore is an in-memory Repository whose units of work only publish
// a booking on Commit.
type memStore struct {
	mu        sync.Mutex
	bookings  map[string]*Booking
	seq       int
	itemsErr  error
	rollbacks int
	commits   int
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]*Booking{}}
}

func cloneBooking(b *Booking) *Booking {
	c := *b
	c.Items = append([]Item(nil), b.Items...)
	return &c
}

func (s *memStore) put(b *Booking) *Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		s.seq++
		b.ID = fmt.Sprintf("b-%d", s.seq)
	}
	s.bookings[b.ID] = cloneBooking(b)
	return b
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) Begin(context.Context) (UnitOfWork, error) {
	return &memTx{store: s}, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBooking(b), nil
}

func (s *memStore) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Booking
	for _, b := range s.bookings {
		if f.CustomerID != "" {
			if id, ok := b.CustomerID(); !ok || id != f.CustomerID {
				continue
			}
		}
		if f.ProviderID != "" && b.ProviderID != f.ProviderID {
			continue
		}
		if f.GuestEmail != "" {
			if g, ok := b.Guest(); !ok || g.Email != f.GuestEmail {
				continue
			}
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.LocationID != "" && b.LocationID != f.LocationID {
			continue
		}
		if f.AssignedUserID != "" && !b.IsAssignedTo(f.AssignedUserID) {
			continue
		}
		if f.StartDate != nil && b.StartTime.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && b.StartTime.After(*f.EndDate) {
			continue
		}
		out = append(out, cloneBooking(b))
	}

	sort.Slice(out, func(i, j int) bool {
		if f.Descending {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})

	total := len(out)
	if f.Limit > 0 {
		start := (f.Page - 1) * f.Limit
		if start > total {
			start = total
		}
		end := start + f.Limit
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (s *memStore) Update(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	s.bookings[b.ID] = cloneBooking(b)
	return nil
}

type memTx struct {
	store  *memStore
	staged *Booking
	done   bool
}

func (t *memTx) InsertBooking(_ context.Context, b *Booking) error {
	t.store.mu.Lock()
	t.store.seq++
	b.ID = fmt.Sprintf("b-%d", t.store.seq)
	t.store.mu.Unlock()

	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	t.staged = cloneBooking(b)
	return nil
}

func (t *memTx) InsertItems(_ context.Context, bookingID string, items []Item) error {
	if t.store.itemsErr != nil {
		return t.store.itemsErr
	}
	for i := range items {
		items[i].ID = fmt.Sprintf("%s-i%d", bookingID, i+1)
		items[i].BookingID = bookingID
	}
	t.staged.Items = append([]Item(nil), items...)
	return nil
}

func (t *memTx) Commit(context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.bookings[t.staged.ID] = t.staged
	t.store.commits++
	t.done = true
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	return nil
}

type memCustomers map[string]bool

func (m memCustomers) Exists(_ context.Context, id string) (bool, error) {
	return m[id], nil
}

type memCatalog struct {
	locations []catalog.ProviderLocation
	services  []catalog.Service
}

func (c *memCatalog) GetActiveProviderLocation(_ context.Context, providerID, locationID string) (*catalog.ProviderLocation, error) {
	for _, l := range c.locations {
		if l.ProviderID == providerID && l.LocationID == locationID && l.IsActive {
			l := l
			return &l, nil
		}
	}
	return nil, catalog.ErrInvalidLocation
}

func (c *memCatalog) ListActiveServices(_ context.Context, providerID string, ids []string) ([]catalog.Service, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []catalog.Service
	for _, s := range c.services {
		if want[s.ID] && s.ProviderID == providerID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

type memMembers []*membership.Membership

func (m memMembers) GetActive(_ context.Context, providerID, userID string) (*membership.Membership, error) {
	for _, mm := range m {
		if mm.ProviderID == providerID && mm.UserID == userID && mm.IsActive {
			return mm, nil
		}
	}
	return nil, membership.ErrNotMember
}

func (m memMembers) GetActiveByID(_ context.Context, id string) (*membership.Membership, error) {
	for _, mm := range m {
		if mm.ID == id && mm.IsActive {
			return mm, nil
		}
	}
	return nil, membership.ErrNotMember
}

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (n *recordingNotifier) BookingCreated(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
