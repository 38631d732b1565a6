package events

import (
	"context"
	"sync"
	"time"

	"github.com/jhruby/digplan/internal/models"
	"github.com/jhruby/digplan/pkg/logger"
)

const (
	defaultQueueSize   = 256
	deliveryRetries    = 3
	deliveryBackoff    = 200 * time.Millisecond
	deliveryBackoffMax = 5 * time.Second
)

// Subscriber consumes domain events. A failing handler is retried with
// backoff and eventually dropped; delivery never affects the emitting
// operation.
type Subscriber interface {
	Name() string
	Handle(event models.Event) error
}

// Dispatcher is an in-process asynchronous event bus. Publish is
// non-blocking: when the queue is full the event is dropped with a
// warning, since every event here is advisory.
type Dispatcher struct {
	queue       chan models.Event
	subscribers []Subscriber
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:  make(chan models.Event, defaultQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Subscribe registers a subscriber. Must be called before Start.
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.subscribers = append(d.subscribers, s)
}

// Start launches the delivery loop
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.ctx.Done():
				return
			case event := <-d.queue:
				d.deliver(event)
			}
		}
	}()
	logger.WithField("subscribers", len(d.subscribers)).Info("Event dispatcher started")
}

// Stop shuts the dispatcher down and waits for the in-flight delivery
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

// Publish enqueues an event for asynchronous delivery
func (d *Dispatcher) Publish(event models.Event) {
	select {
	case d.queue <- event:
	default:
		logger.WithField("event_type", event.Type()).Warn("Event queue full, dropping event")
	}
}

func (d *Dispatcher) deliver(event models.Event) {
	for _, subscriber := range d.subscribers {
		backoff := deliveryBackoff
		var err error
		for attempt := 0; attempt <= deliveryRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-d.ctx.Done():
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > deliveryBackoffMax {
					backoff = deliveryBackoffMax
				}
			}
			if err = subscriber.Handle(event); err == nil {
				break
			}
		}
		if err != nil {
			logger.WithError(err).WithFields(map[string]interface{}{
				"subscriber": subscriber.Name(),
				"event_type": event.Type(),
			}).Error("Event delivery failed after retries")
		}
	}
}
