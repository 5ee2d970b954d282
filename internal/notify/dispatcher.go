package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher runs a Sink off the request path. Each send gets its own
// timeout and is detached from the caller's context.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sink Sink, timeout time.Duration, log *zap.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, timeout: timeout, log: log}
}

// BookingCreated schedules a notification and returns immediately.
func (d *Dispatcher) BookingCreated(bookingID string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.send(bookingID); err != nil {
			d.log.Warn("booking notification failed",
				zap.String("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}()
}

func (d *Dispatcher) send(bookingID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notification sink panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.sink.BookingCreated(ctx, bookingID)
}

// Wait blocks until every scheduled notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
