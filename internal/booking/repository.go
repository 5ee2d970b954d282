package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Begin opens the transactional scope used to create a booking with its items.
	Begin(ctx context.Context) (UnitOfWork, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Update persists the mutable fields of b: times, notes, assignment, status and audit stamps.
	Update(ctx context.Context, b *Booking) error
}

// UnitOfWork is an open transaction. Rollback after a successful Commit is a no-op,
// so callers defer Rollback right after Begin.
type UnitOfWork interface {
	InsertBooking(ctx context.Context, b *Booking) error
	InsertItems(ctx context.Context, bookingID string, items []Item) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction failed: %w", err)
	}
	return &pgxUnitOfWork{tx: tx}, nil
}

type pgxUnitOfWork struct {
	tx   pgx.Tx
	done bool
}

func (u *pgxUnitOfWork) InsertBooking(ctx context.Context, b *Booking) error {
	var (
		customerID                               *string
		guestFirst, guestLast, guestEmail, phone *string
	)
	switch p := b.Party.(type) {
	case Identified:
		customerID = &p.CustomerID
	case Guest:
		guestFirst, guestLast, guestEmail = &p.Info.FirstName, &p.Info.LastName, &p.Info.Email
		phone = p.Info.Phone
	default:
		return ErrPartyRequired
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"customer_id", "is_guest_booking", "guest_first_name", "guest_last_name", "guest_email", "guest_phone",
			"provider_id", "location_id", "assigned_user_id", "provider_membership_id",
			"start_time", "end_time", "subtotal", "tax_amount", "total_amount", "currency",
			"status", "customer_notes",
		).
		Values(
			customerID, b.IsGuestBooking(), guestFirst, guestLast, guestEmail, phone,
			b.ProviderID, b.LocationID, b.AssignedUserID, b.ProviderMembershipID,
			b.StartTime, b.EndTime, b.Subtotal.StringFixed(2), b.TaxAmount.StringFixed(2), b.TotalAmount.StringFixed(2), b.Currency,
			b.Status, b.CustomerNotes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := u.tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapWriteError("create booking", err)
	}
	return nil
}

func (u *pgxUnitOfWork) InsertItems(ctx context.Context, bookingID string, items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("create booking items failed: no items")
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	builder := psql.Insert("public.booking_items").
		Columns("booking_id", "service_id", "quantity", "unit_price", "total")
	for _, it := range items {
		builder = builder.Values(bookingID, it.ServiceID, it.Quantity, it.UnitPrice.StringFixed(2), it.Total.StringFixed(2))
	}
	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("build create booking items query failed: %w", err)
	}

	rows, err := u.tx.Query(ctx, query, args...)
	if err != nil {
		return mapWriteError("create booking items", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(items) {
			break
		}
		if err := rows.Scan(&items[i].ID); err != nil {
			return fmt.Errorf("scan booking item id failed: %w", err)
		}
		items[i].BookingID = bookingID
		i++
	}
	if err := rows.Err(); err != nil {
		return mapWriteError("create booking items", err)
	}
	return nil
}

func (u *pgxUnitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking transaction failed: %w", err)
	}
	u.done = true
	return nil
}

func (u *pgxUnitOfWork) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback booking transaction failed: %w", err)
	}
	return nil
}

const (
	constraintTimeRange = "bookings_time_range_check"
	constraintParty     = "bookings_party_check"
)

// mapWriteError turns foreign key and known check violations into validation errors
// and wraps the rest.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.ForeignKeyViolation:
			return ErrInvalidReference
		case pgErr.Code == pgerrcode.CheckViolation && pgErr.ConstraintName == constraintTimeRange:
			return ErrInvalidTimeRange
		case pgErr.Code == pgerrcode.CheckViolation && pgErr.ConstraintName == constraintParty:
			return ErrPartyRequired
		}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

var bookingColumns = []string{
	"b.id", "b.customer_id", "b.is_guest_booking",
	"b.guest_first_name", "b.guest_last_name", "b.guest_email", "b.guest_phone",
	"b.provider_id", "p.name", "b.location_id", "l.name",
	"b.assigned_user_id", "b.provider_membership_id",
	"b.start_time", "b.end_time",
	"b.subtotal::text", "b.tax_amount::text", "b.total_amount::text", "b.currency",
	"b.status", "b.customer_notes", "b.provider_notes", "b.cancellation_reason",
	"b.created_at", "b.updated_at", "b.confirmed_at", "b.completed_at", "b.cancelled_at",
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := append(append([]string{}, bookingColumns...), extra...)
	return psql.Select(cols...).
		From("public.bookings b").
		Join("public.providers p ON b.provider_id = p.id").
		Join("public.locations l ON b.location_id = l.id")
}

// scanBooking reads bookingColumns (plus any extra destinations) from row.
func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b                         Booking
		customerID                *string
		isGuest                   bool
		first, last, email, phone *string
		subtotal, tax, total      string
	)
	dest := []any{
		&b.ID, &customerID, &isGuest,
		&first, &last, &email, &phone,
		&b.ProviderID, &b.ProviderName, &b.LocationID, &b.LocationName,
		&b.AssignedUserID, &b.ProviderMembershipID,
		&b.StartTime, &b.EndTime,
		&subtotal, &tax, &total, &b.Currency,
		&b.Status, &b.CustomerNotes, &b.ProviderNotes, &b.CancellationReason,
		&b.CreatedAt, &b.UpdatedAt, &b.ConfirmedAt, &b.CompletedAt, &b.CancelledAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if isGuest {
		info := GuestInfo{Phone: phone}
		if first != nil {
			info.FirstName = *first
		}
		if last != nil {
			info.LastName = *last
		}
		if email != nil {
			info.Email = *email
		}
		b.Party = Guest{Info: info}
	} else if customerID != nil {
		b.Party = Identified{CustomerID: *customerID}
	}

	var err error
	if b.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("parse subtotal: %w", err)
	}
	if b.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("parse tax amount: %w", err)
	}
	if b.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total amount: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}

	if err := r.attachItems(ctx, []*Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings("count(*) OVER() AS total_count")

	if filter.CustomerID != "" {
		query = query.Where(squirrel.Eq{"b.customer_id": filter.CustomerID})
	}
	if filter.ProviderID != "" {
		query = query.Where(squirrel.Eq{"b.provider_id": filter.ProviderID})
	}
	if filter.GuestEmail != "" {
		query = query.Where(squirrel.Eq{"b.is_guest_booking": true, "b.guest_email": filter.GuestEmail})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.LocationID != "" {
		query = query.Where(squirrel.Eq{"b.location_id": filter.LocationID})
	}
	if filter.AssignedUserID != "" {
		query = query.Where(squirrel.Eq{"b.assigned_user_id": filter.AssignedUserID})
	}
	if filter.StartDate != nil {
		query = query.Where(squirrel.GtOrEq{"b.start_time": *filter.StartDate})
	}
	if filter.EndDate != nil {
		query = query.Where(squirrel.LtOrEq{"b.start_time": *filter.EndDate})
	}

	orderDir := "ASC"
	if filter.Descending {
		orderDir = "DESC"
	}
	query = query.OrderBy("b.start_time "+orderDir, "b.id "+orderDir)

	if filter.Limit > 0 {
		if filter.Page < 1 {
			filter.Page = 1
		}
		offset := (filter.Page - 1) * filter.Limit
		query = query.Limit(uint64(filter.Limit)).Offset(uint64(offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// attachItems loads the line items of all bookings in one query.
func (r *pgxRepository) attachItems(ctx context.Context, bookings []*Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	byID := make(map[string]*Booking, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"bi.id", "bi.booking_id", "bi.service_id", "s.name", "bi.quantity", "bi.unit_price::text", "bi.total::text",
	).
		From("public.booking_items bi").
		Join("public.services s ON bi.service_id = s.id").
		Where(squirrel.Eq{"bi.booking_id": ids}).
		OrderBy("bi.created_at", "bi.id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build list booking items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list booking items failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it          Item
			unit, total string
		)
		if err := rows.Scan(&it.ID, &it.BookingID, &it.ServiceID, &it.ServiceName, &it.Quantity, &unit, &total); err != nil {
			return fmt.Errorf("scan booking item failed: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return fmt.Errorf("parse unit price: %w", err)
		}
		if it.Total, err = decimal.NewFromString(total); err != nil {
			return fmt.Errorf("parse item total: %w", err)
		}
		if b, ok := byID[it.BookingID]; ok {
			b.Items = append(b.Items, it)
		}
	}
	return rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("customer_notes", b.CustomerNotes).
		Set("provider_notes", b.ProviderNotes).
		Set("assigned_user_id", b.AssignedUserID).
		Set("provider_membership_id", b.ProviderMembershipID).
		Set("status", b.Status).
		Set("cancellation_reason", b.CancellationReason).
		Set("confirmed_at", b.ConfirmedAt).
		Set("completed_at", b.CompletedAt).
		Set("cancelled_at", b.CancelledAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return mapWriteError("update booking", err)
	}
	return nil
}
