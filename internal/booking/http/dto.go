package http

import (
	"time"

	"github.com/nekogravitycat/service-booking-backend/internal/booking"
	"github.com/nekogravitycat/service-booking-backend/internal/pkg/request"
)

type GuestInfoBody struct {
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone"`
}

type CreateBookingRequest struct {
	CustomerID           string         `json:"customerId" binding:"omitempty,uuid"`
	GuestInfo            *GuestInfoBody `json:"guestInfo"`
	ProviderID           string         `json:"providerId" binding:"required,uuid"`
	LocationID           string         `json:"locationId" binding:"required,uuid"`
	AssignedUserID       string         `json:"assignedUserId" binding:"omitempty,uuid"`
	ProviderMembershipID string         `json:"providerMembershipId" binding:"omitempty,uuid"`
	StartTime            time.Time      `json:"startTime" binding:"required"`
	EndTime              time.Time      `json:"endTime" binding:"required"`
	ServiceIDs           []string       `json:"serviceIds" binding:"required,min=1,dive,uuid"`
	CustomerNotes        *string        `json:"customerNotes"`
}

func (r *CreateBookingRequest) toDomain() booking.CreateRequest {
	req := booking.CreateRequest{
		CustomerID:           r.CustomerID,
		ProviderID:           r.ProviderID,
		LocationID:           r.LocationID,
		AssignedUserID:       r.AssignedUserID,
		ProviderMembershipID: r.ProviderMembershipID,
		StartTime:            r.StartTime,
		EndTime:              r.EndTime,
		ServiceIDs:           r.ServiceIDs,
		CustomerNotes:        r.CustomerNotes,
	}
	if r.GuestInfo != nil {
		req.Guest = &booking.GuestInfo{
			FirstName: r.GuestInfo.FirstName,
			LastName:  r.GuestInfo.LastName,
			Email:     r.GuestInfo.Email,
			Phone:     r.GuestInfo.Phone,
		}
	}
	return req
}

// ListBookingsRequest defines query parameters for the caller's own bookings.
type ListBookingsRequest struct {
	request.ListParams
	Status    string     `form:"status"`
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (r *ListBookingsRequest) toQuery() booking.ListQuery {
	return booking.ListQuery{
		Status:    r.Status,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Page:      r.Page,
		Limit:     r.Limit,
	}
}

// ListProviderBookingsRequest adds the staff-side filters.
type ListProviderBookingsRequest struct {
	ListBookingsRequest
	LocationID     string `form:"locationId" binding:"omitempty,uuid"`
	AssignedUserID string `form:"assignedUserId" binding:"omitempty,uuid"`
}

func (r *ListProviderBookingsRequest) toQuery() booking.ListQuery {
	q := r.ListBookingsRequest.toQuery()
	q.LocationID = r.LocationID
	q.AssignedUserID = r.AssignedUserID
	return q
}

type GuestLookupRequest struct {
	Email string `form:"email" binding:"required,email"`
}

type GetBookingRequest struct {
	Email string `form:"email"`
}

type UpdateBookingRequest struct {
	StartTime      *time.Time `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	CustomerNotes  *string    `json:"customerNotes"`
	AssignedUserID *string    `json:"assignedUserId" binding:"omitempty,uuid"`
}

type UpdateStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	ProviderNotes *string `json:"providerNotes"`
}

type AssignRequest struct {
	AssignedUserID string `json:"assignedUserId" binding:"required,uuid"`
}

type CancelRequest struct {
	Reason *string `json:"reason"`
}

type GuestInfoResponse struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Total       string `json:"total"`
}

// BookingResponse renders money as fixed two-decimal strings.
type BookingResponse struct {
	ID                   string             `json:"id"`
	CustomerID           *string            `json:"customerId"`
	IsGuestBooking       bool               `json:"isGuestBooking"`
	GuestInfo            *GuestInfoResponse `json:"guestInfo,omitempty"`
	ProviderID           string             `json:"providerId"`
	ProviderName         string             `json:"providerName"`
	LocationID           string             `json:"locationId"`
	LocationName         string             `json:"locationName"`
	AssignedUserID       *string            `json:"assignedUserId"`
	ProviderMembershipID *string            `json:"providerMembershipId"`
	StartTime            time.Time          `json:"startTime"`
	EndTime              time.Time          `json:"endTime"`
	Subtotal             string             `json:"subtotal"`
	TaxAmount            string             `json:"taxAmount"`
	TotalAmount          string             `json:"totalAmount"`
	Currency             string             `json:"currency"`
	Status               string             `json:"status"`
	CustomerNotes        *string            `json:"customerNotes"`
	ProviderNotes        *string            `json:"providerNotes"`
	CancellationReason   *string            `json:"cancellationReason,omitempty"`
	Items                []ItemResponse     `json:"items"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
	ConfirmedAt          *time.Time         `json:"confirmedAt,omitempty"`
	CompletedAt          *time.Time         `json:"completedAt,omitempty"`
	CancelledAt          *time.Time         `json:"cancelledAt,omitempty"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                   b.ID,
		IsGuestBooking:       b.IsGuestBooking(),
		ProviderID:           b.ProviderID,
		ProviderName:         b.ProviderName,
		LocationID:           b.LocationID,
		LocationName:         b.LocationName,
		AssignedUserID:       b.AssignedUserID,
		ProviderMembershipID: b.ProviderMembershipID,
		StartTime:            b.StartTime,
		EndTime:              b.EndTime,
		Subtotal:             b.Subtotal.StringFixed(2),
		TaxAmount:            b.TaxAmount.StringFixed(2),
		TotalAmount:          b.TotalAmount.StringFixed(2),
		Currency:             b.Currency,
		Status:               string(b.Status),
		CustomerNotes:        b.CustomerNotes,
		ProviderNotes:        b.ProviderNotes,
		CancellationReason:   b.CancellationReason,
		Items:                make([]ItemResponse, 0, len(b.Items)),
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
		ConfirmedAt:          b.ConfirmedAt,
		CompletedAt:          b.CompletedAt,
		CancelledAt:          b.CancelledAt,
	}
	if id, ok := b.CustomerID(); ok {
		resp.CustomerID = &id
	}
	if g, ok := b.Guest(); ok {
		resp.GuestInfo = &GuestInfoResponse{
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     g.Phone,
		}
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:          it.ID,
			ServiceID:   it.ServiceID,
			ServiceName: it.ServiceName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Total:       it.Total.StringFixed(2),
		})
	}
	return resp
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}
