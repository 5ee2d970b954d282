// Package notify delivers booking-created events to an outside channel.
// Delivery is best effort: a failed send never affects the booking.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EventBookingCreated is the event type published for new bookings.
const EventBookingCreated = "booking.created"

// Sink sends one booking-created notification.
type Sink interface {
	BookingCreated(ctx context.Context, bookingID string) error
}

// LogSink only writes the event to the log.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) BookingCreated(_ context.Context, bookingID string) error {
	s.log.Info("booking created notification", zap.String("booking_id", bookingID))
	return nil
}

// Mailer is satisfied by *gomail.Dialer.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSink mails the booking admin address.
type EmailSink struct {
	mailer Mailer
	from   string
	to     string
}

func NewEmailSink(mailer Mailer, from, to string) *EmailSink {
	return &EmailSink{mailer: mailer, from: from, to: to}
}

// NewSMTPMailer builds a gomail dialer for the given server.
func NewSMTPMailer(host string, port int, user, pass string) *gomail.Dialer {
	return gomail.NewDialer(host, port, user, pass)
}

func (s *EmailSink) BookingCreated(ctx context.Context, bookingID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", "New booking "+bookingID)
	m.SetBody("text/plain", fmt.Sprintf("A new booking was created.\n\nBooking ID: %s\n", bookingID))

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("send booking email failed: %w", err)
	}
	return nil
}

// Publisher is satisfied by *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes a JSON event on a pub/sub channel.
type RedisSink struct {
	client  Publisher
	channel string
	now     func() time.Time
}

func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel, now: time.Now}
}

type event struct {
	Type      string    `json:"type"`
	BookingID string    `json:"bookingId"`
	At        time.Time `json:"at"`
}

func (s *RedisSink) BookingCreated(ctx context.Context, bookingID string) error {
	payload, err := json.Marshal(event{
		Type:      EventBookingCreated,
		BookingID: bookingID,
		At:        s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode booking event failed: %w", err)
	}

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish booking event failed: %w", err)
	}
	return nil
}
