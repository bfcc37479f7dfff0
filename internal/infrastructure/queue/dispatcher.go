package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/api/metrics"
	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrQueueFull is returned by Enqueue when the shard's buffer is at capacity.
// Callers should surface it as a retryable condition so the payment provider
// redelivers the webhook.
var ErrQueueFull = errors.New("payment queue full")

// PaymentEvent is one payment-confirmed notification from the processor.
// The core only depends on "payment has cleared for order X".
type PaymentEvent struct {
	OrderID   string
	Provider  string
	Reference string
}

// Dispatcher routes payment events to a fixed set of workers using consistent
// hashing on the order id, guaranteeing per-order processing order: a
// redelivered webhook can never race its own first delivery.
type Dispatcher struct {
	workers  []chan PaymentEvent
	grouping ports.GroupingService
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, grouping ports.GroupingService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan PaymentEvent, numWorkers),
		grouping: grouping,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan PaymentEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its order id. It never
// blocks: when the shard's buffer is full it returns ErrQueueFull and the
// event is dropped, leaving redelivery to the provider.
func (d *Dispatcher) Enqueue(event PaymentEvent) error {
	idx := d.shardIndex(event.OrderID)
	select {
	case d.workers[idx] <- event:
		metrics.PaymentQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.PaymentEventsTotal.WithLabelValues("rejected").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan PaymentEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.PaymentQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, event PaymentEvent) {
	_, err := d.grouping.CreateGroupsForOrder(ctx, event.OrderID)
	switch {
	case err == nil:
		metrics.PaymentEventsTotal.WithLabelValues("grouped").Inc()
	case errors.Is(err, domain.ErrAlreadyGrouped):
		// Webhook redelivery: the first delivery already grouped the order.
		metrics.PaymentEventsTotal.WithLabelValues("duplicate").Inc()
		d.log.Debug().Str("order_id", event.OrderID).Msg("payment event for already-grouped order skipped")
	default:
		metrics.PaymentEventsTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("order_id", event.OrderID).
			Int("worker_id", workerID).
			Msg("payment event processing failed")
	}
}
