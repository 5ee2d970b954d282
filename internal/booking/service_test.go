package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/service-booking-backend/internal/catalog"
	"github.com/nekogravitycat/service-booking-backend/internal/membership"
	"github.com/nekogravitycat/service-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/service-booking-backend/internal/pricing"
)

var (
	t0    = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	t1    = t0.Add(time.Hour)
	owner = Actor{UserID: "owner"}
	desk  = Actor{UserID: "desk"}
	staff = Actor{UserID: "staff"}
	cust1 = Actor{UserID: "cust1"}
	cust2 = Actor{UserID: "cust2"}
	anon  = Actor{}
)

type fixture struct {
	svc      Service
	store    *memStore
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	cat := &memCatalog{
		locations: []catalog.ProviderLocation{
			{ProviderID: "p1", ProviderName: "Salon", LocationID: "loc1", LocationName: "Shibuya", IsActive: true},
			{ProviderID: "p1", LocationID: "loc-closed", LocationName: "Old", IsActive: false},
		},
		services: []catalog.Service{
			{ID: "s-cut", ProviderID: "p1", Name: "Cut", BasePrice: money("1500"), Duration: 45 * time.Minute, IsActive: true},
			{ID: "s-color", ProviderID: "p1", Name: "Color", BasePrice: money("800"), Duration: 30 * time.Minute, IsActive: true},
			{ID: "s-off", ProviderID: "p1", Name: "Retired", BasePrice: money("100"), IsActive: false},
			{ID: "s-foreign", ProviderID: "p2", Name: "Massage", BasePrice: money("1000"), IsActive: true},
		},
	}
	members := memMembers{
		{ID: "m-owner", ProviderID: "p1", UserID: "owner", IsOwner: true, IsActive: true},
		{ID: "m-desk", ProviderID: "p1", UserID: "desk", CanManageBookings: true, IsActive: true},
		{ID: "m-staff", ProviderID: "p1", UserID: "staff", IsActive: true},
		{ID: "m-staff2", ProviderID: "p1", UserID: "staff2", IsActive: true},
		{ID: "m-gone", ProviderID: "p1", UserID: "gone", IsActive: false},
		{ID: "m-p2", ProviderID: "p2", UserID: "other", IsOwner: true, IsActive: true},
	}
	notifier := &recordingNotifier{}

	svc := NewService(
		store,
		memCustomers{"cust1": true, "cust2": true},
		cat,
		membership.NewService(members),
		pricing.NewCalculator(pricing.DefaultTaxRate, "USD"),
		notifier,
		zap.NewNop(),
	)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return now }

	return &fixture{svc: svc, store: store, notifier: notifier, now: now}
}

func identifiedRequest() CreateRequest {
	return CreateRequest{
		CustomerID: "cust1",
		ProviderID: "p1",
		LocationID: "loc1",
		StartTime:  t0,
		EndTime:    t1,
		ServiceIDs: []string{"s-cut", "s-color"},
	}
}

func guestRequest(email string) CreateRequest {
	req := identifiedRequest()
	req.CustomerID = ""
	req.Guest = &GuestInfo{FirstName: "Aki", LastName: "Sato", Email: email}
	return req
}

func statusCode(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func TestCreate_Identified(t *testing.T) {
	f := newFixture(t)
	notes := "  window seat  "
	req := identifiedRequest()
	req.AssignedUserID = "staff"
	req.CustomerNotes = &notes

	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.False(t, b.IsGuestBooking())
	id, ok := b.CustomerID()
	assert.True(t, ok)
	assert.Equal(t, "cust1", id)
	assert.Equal(t, "Salon", b.ProviderName)
	assert.Equal(t, "Shibuya", b.LocationName)
	assert.Equal(t, "window seat", *b.CustomerNotes)

	assert.True(t, b.Subtotal.Equal(money("2300")))
	assert.True(t, b.TaxAmount.Equal(money("287.50")))
	assert.True(t, b.TotalAmount.Equal(money("2587.50")))
	assert.Equal(t, "USD", b.Currency)

	require.Len(t, b.Items, 2)
	assert.Equal(t, "s-cut", b.Items[0].ServiceID)
	assert.Equal(t, 1, b.Items[0].Quantity)
	assert.True(t, b.Items[0].UnitPrice.Equal(money("1500")))
	assert.Equal(t, "s-color", b.Items[1].ServiceID)

	require.NotNil(t, b.AssignedUserID)
	assert.Equal(t, "staff", *b.AssignedUserID)
	require.NotNil(t, b.ProviderMembershipID)
	assert.Equal(t, "m-staff", *b.ProviderMembershipID)

	assert.Equal(t, []string{b.ID}, f.notifier.ids)

	stored, err := f.store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestCreate_Guest(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), guestRequest("  A@B.com "))
	require.NoError(t, err)

	assert.True(t, b.IsGuestBooking())
	g, ok := b.Guest()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", g.Email)
	_, ok = b.CustomerID()
	assert.False(t, ok)
}

func TestCreate_ValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"both parties", func(r *CreateRequest) {
			r.Guest = &GuestInfo{FirstName: "A", LastName: "B", Email: "a@b.com"}
		}, ErrPartyConflict},
		{"no party", func(r *CreateRequest) { r.CustomerID = "" }, ErrPartyRequired},
		{"guest without email", func(r *CreateRequest) {
			r.CustomerID = ""
			r.Guest = &GuestInfo{FirstName: "A", LastName: "B"}
		}, ErrInvalidGuestInfo},
		{"unknown customer", func(r *CreateRequest) { r.CustomerID = "ghost" }, ErrCustomerNotFound},
		{"end before start", func(r *CreateRequest) { r.EndTime = r.StartTime.Add(-time.Minute) }, ErrInvalidTimeRange},
		{"zero length", func(r *CreateRequest) { r.EndTime = r.StartTime }, ErrInvalidTimeRange},
		{"unlinked location", func(r *CreateRequest) { r.LocationID = "loc-x" }, catalog.ErrInvalidLocation},
		{"inactive location link", func(r *CreateRequest) { r.LocationID = "loc-closed" }, catalog.ErrInvalidLocation},
		{"assignee not member", func(r *CreateRequest) { r.AssignedUserID = "cust2" }, ErrAssigneeNotMember},
		{"assignee inactive", func(r *CreateRequest) { r.AssignedUserID = "gone" }, ErrAssigneeNotMember},
		{"membership of other provider", func(r *CreateRequest) { r.ProviderMembershipID = "m-p2" }, ErrInvalidMembership},
		{"membership of another member", func(r *CreateRequest) {
			r.AssignedUserID = "staff"
			r.ProviderMembershipID = "m-desk"
		}, ErrInvalidMembership},
		{"no services", func(r *CreateRequest) { r.ServiceIDs = nil }, pricing.ErrNoServices},
		{"foreign service", func(r *CreateRequest) { r.ServiceIDs = []string{"s-cut", "s-foreign"} }, pricing.ErrInvalidServices},
		{"inactive service", func(r *CreateRequest) { r.ServiceIDs = []string{"s-off"} }, pricing.ErrInvalidServices},
		{"unknown service", func(r *CreateRequest) { r.ServiceIDs = []string{"s-cut", "nope"} }, pricing.ErrInvalidServices},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := identifiedRequest()
			tc.mutate(&req)

			_, err := f.svc.Create(context.Background(), req)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, http.StatusBadRequest, statusCode(err))
			assert.Equal(t, 0, f.store.count())
			assert.Empty(t, f.notifier.ids)
		})
	}
}

func TestCreate_ItemFailureLeavesNothing(t *testing.T) {
	f := newFixture(t)
	f.store.itemsErr = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), identifiedRequest())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, statusCode(err))
	assert.NotContains(t, err.Error(), "disk full")

	assert.Equal(t, 0, f.store.count())
	assert.Equal(t, 1, f.store.rollbacks)
	assert.Equal(t, 0, f.store.commits)
	assert.Empty(t, f.notifier.ids)
}

func TestCreate_DuplicateServiceIDsCollapse(t *testing.T) {
	f := newFixture(t)
	req := identifiedRequest()
	req.ServiceIDs = []string{"s-cut", "s-cut"}

	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, b.Items, 1)
	assert.True(t, b.Subtotal.Equal(money("1500")))
}

func TestCreate_MembershipImpliesAssignee(t *testing.T) {
	f := newFixture(t)
	req := identifiedRequest()
	req.ProviderMembershipID = "m-staff2"

	b, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, b.AssignedUserID)
	assert.Equal(t, "staff2", *b.AssignedUserID)
	assert.Equal(t, "m-staff2", *b.ProviderMembershipID)

	req.AssignedUserID = "staff2"
	b, err = f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "m-staff2", *b.ProviderMembershipID)
}

func TestGet_GuestEmailGate(t *testing.T) {
	f := newFixture(t)
	b, err := f.svc.Create(context.Background(), guestRequest("a@b.com"))
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), anon, b.ID, "wrong@b.com")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(context.Background(), anon, b.ID, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.Get(context.Background(), anon, b.ID, "A@B.COM")
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), anon, b.ID, "")
	assert.NoError(t, err)
}

func TestGet_IdentifiedBooking(t *testing.T) {
	f := newFixture(t)
	b, err := f.svc.Create(context.Background(), identifiedRequest())
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), cust1, b.ID, "")
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), desk, b.ID, "")
	assert.NoError(t, err)

	_, err = f.svc.Get(context.Background(), cust2, b.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(context.Background(), anon, b.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(context.Background(), staff, b.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(context.Background(), cust1, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("customer cancels pending booking", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusPending})
		reason := " schedule clash "

		got, err := f.svc.Cancel(ctx, cust1, b.ID, CancelRequest{Reason: &reason})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.Equal(t, "schedule clash", *got.CancellationReason)
		require.NotNil(t, got.CancelledAt)
		assert.True(t, got.CancelledAt.Equal(f.now))
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusCompleted})

		_, err := f.svc.Cancel(ctx, cust1, b.ID, CancelRequest{})
		require.ErrorIs(t, err, ErrNotCancellable)
		assert.Equal(t, http.StatusBadRequest, statusCode(err))
		assert.Equal(t, apperror.KindState, apperror.KindOf(err))

		stored, _ := f.store.GetByID(ctx, b.ID)
		assert.Equal(t, StatusCompleted, stored.Status)
	})

	t.Run("no-show and cancelled are terminal too", func(t *testing.T) {
		for _, st := range []Status{StatusNoShow, StatusCancelled} {
			b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: st})
			_, err := f.svc.Cancel(ctx, owner, b.ID, CancelRequest{})
			assert.ErrorIs(t, err, ErrNotCancellable)
		}
	})

	t.Run("any active member may cancel", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusConfirmed})
		got, err := f.svc.Cancel(ctx, staff, b.ID, CancelRequest{})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
	})

	t.Run("strangers are rejected", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusPending})
		_, err := f.svc.Cancel(ctx, cust2, b.ID, CancelRequest{})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.Cancel(ctx, anon, b.ID, CancelRequest{})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusPending})

	_, err := f.svc.SetStatus(ctx, staff, b.ID, SetStatusRequest{Status: "CONFIRMED"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.SetStatus(ctx, cust1, b.ID, SetStatusRequest{Status: "CONFIRMED"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.SetStatus(ctx, desk, b.ID, SetStatusRequest{Status: "BOGUS"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.SetStatus(ctx, desk, b.ID, SetStatusRequest{Status: "PENDING"})
	assert.ErrorIs(t, err, ErrSameStatus)

	notes := "deposit received"
	got, err := f.svc.SetStatus(ctx, desk, b.ID, SetStatusRequest{Status: "confirmed", ProviderNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	require.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, "deposit received", *got.ProviderNotes)

	got, err = f.svc.SetStatus(ctx, owner, b.ID, SetStatusRequest{Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	_, err = f.svc.SetStatus(ctx, owner, b.ID, SetStatusRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusConfirmed})

	_, err := f.svc.Assign(ctx, desk, b.ID, "cust2")
	require.ErrorIs(t, err, ErrAssigneeNotMember)
	assert.Equal(t, http.StatusBadRequest, statusCode(err))
	stored, _ := f.store.GetByID(ctx, b.ID)
	assert.Nil(t, stored.AssignedUserID)

	_, err = f.svc.Assign(ctx, staff, b.ID, "staff")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Assign(ctx, desk, b.ID, "staff2")
	require.NoError(t, err)
	assert.Equal(t, "staff2", *got.AssignedUserID)
	require.NotNil(t, got.ProviderMembershipID)
	assert.Equal(t, "m-staff2", *got.ProviderMembershipID)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestAssign_ReplacesMembershipOfPreviousAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := identifiedRequest()
	req.AssignedUserID = "staff"

	b, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "m-staff", *b.ProviderMembershipID)

	_, err = f.svc.Assign(ctx, desk, b.ID, "staff2")
	require.NoError(t, err)

	stored, err := f.store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "staff2", *stored.AssignedUserID)
	assert.Equal(t, "m-staff2", *stored.ProviderMembershipID)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("customer edits pending booking", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusPending, StartTime: t0, EndTime: t1})
		newEnd := t1.Add(30 * time.Minute)
		notes := "bring photos"

		got, err := f.svc.Update(ctx, cust1, b.ID, UpdateRequest{EndTime: &newEnd, CustomerNotes: &notes})
		require.NoError(t, err)
		assert.True(t, got.EndTime.Equal(newEnd))
		assert.True(t, got.StartTime.Equal(t0))
		assert.Equal(t, "bring photos", *got.CustomerNotes)
	})

	t.Run("customer blocked outside editable statuses", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusCompleted, StartTime: t0, EndTime: t1})
		notes := "late"
		_, err := f.svc.Update(ctx, cust1, b.ID, UpdateRequest{CustomerNotes: &notes})
		require.ErrorIs(t, err, ErrCustomerUpdateClosed)
		assert.Equal(t, http.StatusBadRequest, statusCode(err))
	})

	t.Run("member edits and reassigns", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusCompleted, StartTime: t0, EndTime: t1})
		assignee := "staff2"
		got, err := f.svc.Update(ctx, staff, b.ID, UpdateRequest{AssignedUserID: &assignee})
		require.NoError(t, err)
		assert.Equal(t, "staff2", *got.AssignedUserID)
		require.NotNil(t, got.ProviderMembershipID)
		assert.Equal(t, "m-staff2", *got.ProviderMembershipID)

		bad := "cust2"
		_, err = f.svc.Update(ctx, staff, b.ID, UpdateRequest{AssignedUserID: &bad})
		assert.ErrorIs(t, err, ErrAssigneeNotMember)

		none := ""
		got, err = f.svc.Update(ctx, staff, b.ID, UpdateRequest{AssignedUserID: &none})
		require.NoError(t, err)
		assert.Nil(t, got.AssignedUserID)
		assert.Nil(t, got.ProviderMembershipID)

		stored, err := f.store.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.ProviderMembershipID)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusPending, StartTime: t0, EndTime: t1})
		start := t1.Add(time.Hour)
		_, err := f.svc.Update(ctx, cust1, b.ID, UpdateRequest{StartTime: &start})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("strangers are rejected", func(t *testing.T) {
		b := f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", Status: StatusPending, StartTime: t0, EndTime: t1})
		_, err := f.svc.Update(ctx, cust2, b.ID, UpdateRequest{})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func seedProviderBookings(f *fixture) {
	assigned := func(id string) *string { return &id }
	f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", LocationID: "loc1", Status: StatusPending, StartTime: t0, AssignedUserID: assigned("staff")})
	f.store.put(&Booking{Party: Identified{CustomerID: "cust2"}, ProviderID: "p1", LocationID: "loc1", Status: StatusConfirmed, StartTime: t0.Add(time.Hour), AssignedUserID: assigned("staff2")})
	f.store.put(&Booking{Party: Guest{Info: GuestInfo{FirstName: "A", LastName: "B", Email: "a@b.com"}}, ProviderID: "p1", LocationID: "loc1", Status: StatusPending, StartTime: t0.Add(2 * time.Hour)})
	f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p2", Status: StatusPending, StartTime: t0})
}

func TestListForProvider(t *testing.T) {
	f := newFixture(t)
	seedProviderBookings(f)
	ctx := context.Background()
	q := ListQuery{Page: 1, Limit: 20}

	_, _, err := f.svc.ListForProvider(ctx, cust1, "p1", q)
	assert.ErrorIs(t, err, ErrForbidden)

	items, total, err := f.svc.ListForProvider(ctx, desk, "p1", q)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)

	items, total, err = f.svc.ListForProvider(ctx, staff, "p1", q)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "staff", *items[0].AssignedUserID)

	other := q
	other.AssignedUserID = "staff2"
	items, total, err = f.svc.ListForProvider(ctx, staff, "p1", other)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	filtered := q
	filtered.Status = "confirmed"
	items, _, err = f.svc.ListForProvider(ctx, owner, "p1", filtered)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, StatusConfirmed, items[0].Status)

	paged := ListQuery{Page: 2, Limit: 2}
	items, total, err = f.svc.ListForProvider(ctx, owner, "p1", paged)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)
}

func TestListForCustomer(t *testing.T) {
	f := newFixture(t)
	seedProviderBookings(f)
	ctx := context.Background()

	_, _, err := f.svc.ListForCustomer(ctx, anon, ListQuery{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	items, total, err := f.svc.ListForCustomer(ctx, cust1, ListQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, b := range items {
		id, _ := b.CustomerID()
		assert.Equal(t, "cust1", id)
	}

	from, to := t1, t0
	_, _, err = f.svc.ListForCustomer(ctx, cust1, ListQuery{StartDate: &from, EndDate: &to, Page: 1, Limit: 20})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, _, err = f.svc.ListForCustomer(ctx, cust1, ListQuery{Status: "LOST", Page: 1, Limit: 20})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListForGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := Guest{Info: GuestInfo{FirstName: "A", LastName: "B", Email: "a@b.com"}}
	older := f.store.put(&Booking{Party: guest, ProviderID: "p1", StartTime: t0})
	newer := f.store.put(&Booking{Party: guest, ProviderID: "p1", StartTime: t0.Add(24 * time.Hour)})
	f.store.put(&Booking{Party: Identified{CustomerID: "cust1"}, ProviderID: "p1", StartTime: t0})

	_, err := f.svc.ListForGuest(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmailRequired)

	items, err := f.svc.ListForGuest(ctx, "A@b.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)
}
