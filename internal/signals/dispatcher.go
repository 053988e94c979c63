package signals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/credcascade/internal/cascade"
	"github.com/Aman-CERP/credcascade/internal/entity"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// ErrNilHandler is returned when creating a Dispatcher without a handler.
var ErrNilHandler = errors.New("event handler is required")

// Handler reacts to mutation events. *cascade.Processor is the production
// implementation.
type Handler interface {
	HandleSave(ctx context.Context, e entity.Entity) error
	HandleDelete(ctx context.Context, e entity.Entity) error
}

// DispatchStats counts dispatched events.
type DispatchStats struct {
	Dispatched int64
	Failed     int64
}

// Dispatcher feeds mutation events to a Handler. Events are handled one at a
// time, so no two cascades ever run concurrently against the index.
type Dispatcher struct {
	handler Handler
	mu      sync.Mutex

	dispatched atomic.Int64
	failed     atomic.Int64
}

// NewDispatcher creates a dispatcher for h.
func NewDispatcher(h Handler) (*Dispatcher, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	return &Dispatcher{handler: h}, nil
}

// Dispatch handles a single event and returns the cascade's error.
// It blocks while another event is being handled.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.handle(ctx, ev)
	d.dispatched.Add(1)
	if err != nil {
		d.failed.Add(1)
	}
	return err
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) error {
	if ev.Entity == nil {
		return cerrors.EntityError("event has no entity", nil).
			WithDetail("operation", ev.Op.String())
	}

	start := time.Now()
	var err error
	switch ev.Op {
	case OpSave:
		err = d.handler.HandleSave(ctx, ev.Entity)
	case OpDelete:
		err = d.handler.HandleDelete(ctx, ev.Entity)
	default:
		return cerrors.InternalError(fmt.Sprintf("unknown operation %d", int(ev.Op)), nil)
	}

	slog.Debug("event_dispatched",
		slog.String("operation", ev.Op.String()),
		slog.String("entity", ev.Entity.Key().String()),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil))
	return err
}

// Run dispatches events from the channel until it is closed or ctx is done.
// A failed event is logged and counted, and Run continues with the next
// one. Returns nil when the channel closes and ctx.Err() on cancellation.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := d.Dispatch(ctx, ev); err != nil {
				attrs := []any{slog.String("operation", ev.Op.String())}
				if ev.Entity != nil {
					attrs = append(attrs, slog.String("entity", ev.Entity.Key().String()))
				}
				for _, a := range cerrors.LogAttrs(err) {
					attrs = append(attrs, a)
				}
				slog.Warn("event_dispatch_failed", attrs...)
			}
		}
	}
}

// Stats returns a snapshot of the dispatch counters.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Dispatched: d.dispatched.Load(),
		Failed:     d.failed.Load(),
	}
}

var _ Handler = (*cascade.Processor)(nil)
