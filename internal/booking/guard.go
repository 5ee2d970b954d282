package booking

import "github.com/nekogravitycat/service-booking-backend/internal/membership"

// Authorization rules. Each takes the capabilities resolved once for the request
// and never queries storage itself.

func isOwningCustomer(actor Actor, b *Booking) bool {
	if actor.IsAnonymous() {
		return false
	}
	id, ok := b.CustomerID()
	return ok && id == actor.UserID
}

// canStaffView applies the provider-side visibility rule: managers see every booking,
// other members only those assigned to them.
func canStaffView(actor Actor, caps membership.Capabilities, b *Booking) bool {
	if !caps.IsMember {
		return false
	}
	return caps.ManagesBookings() || b.IsAssignedTo(actor.UserID)
}

// authorizeView decides a single-booking read. email is the optional guest email
// supplied by the caller.
func authorizeView(actor Actor, caps membership.Capabilities, b *Booking, email string) error {
	if isOwningCustomer(actor, b) || canStaffView(actor, caps, b) {
		return nil
	}

	guest, ok := b.Guest()
	if !ok {
		return ErrForbidden
	}
	if email == "" {
		return nil
	}
	if NormalizeEmail(email) != guest.Email {
		return ErrForbidden
	}
	return nil
}

// authorizeManage gates status changes and assignment.
func authorizeManage(caps membership.Capabilities) error {
	if !caps.ManagesBookings() {
		return ErrForbidden
	}
	return nil
}

// authorizeUpdate gates field edits. Any active team member may edit; the owning
// customer may edit only while the booking is pending or confirmed.
func authorizeUpdate(actor Actor, caps membership.Capabilities, b *Booking) error {
	if caps.IsMember {
		return nil
	}
	if isOwningCustomer(actor, b) {
		if !b.Status.CustomerEditable() {
			return ErrCustomerUpdateClosed
		}
		return nil
	}
	return ErrForbidden
}

// authorizeCancel gates cancellation by the owning customer or any active team member,
// then blocks terminal bookings.
func authorizeCancel(actor Actor, caps membership.Capabilities, b *Booking) error {
	if !caps.IsMember && !isOwningCustomer(actor, b) {
		return ErrForbidden
	}
	if b.Status.IsTerminal() {
		return ErrNotCancellable
	}
	return nil
}

// narrowProviderFilter applies role scoping to a provider listing. ok is false
// when the narrowed filter can match nothing.
func narrowProviderFilter(actor Actor, caps membership.Capabilities, f Filter) (Filter, bool, error) {
	if !caps.IsMember {
		return f, false, ErrForbidden
	}
	if caps.ManagesBookings() {
		return f, true, nil
	}
	if f.AssignedUserID != "" && f.AssignedUserID != actor.UserID {
		return f, false, nil
	}
	f.AssignedUserID = actor.UserID
	return f, true, nil
}
