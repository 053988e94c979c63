package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Aman-CERP/credcascade/internal/entity"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// DefaultMaxDepth is the default limit on relation hops from the entity that
// triggered an event.
const DefaultMaxDepth = 64

var (
	// ErrNilBackend is returned when creating a Processor without a backend.
	ErrNilBackend = errors.New("index backend is required")

	// ErrMalformedEntity matches errors for entities that lack the attributes
	// needed to index them or to follow their relations.
	ErrMalformedEntity = cerrors.New(cerrors.ErrCodeMalformedEntity, "malformed entity", nil)

	// ErrMaxDepthExceeded is returned when a cascade goes deeper than the
	// configured maximum depth.
	ErrMaxDepthExceeded = cerrors.New(cerrors.ErrCodeDepthExceeded, "maximum cascade depth exceeded", nil)
)

// Backend is the search index the processor forwards its decisions to.
// Both operations must be idempotent.
type Backend interface {
	WriteToIndex(ctx context.Context, e entity.Entity) error
	RemoveFromIndex(ctx context.Context, e entity.Entity) error
}

// Stats counts what a Processor has done since it was created.
type Stats struct {
	Writes     uint64 // documents written
	Removes    uint64 // documents removed
	Suppressed uint64 // saves whose cascade the policy suppressed
	Revisits   uint64 // entities skipped because the event already handled them
}

// Processor propagates save and delete events across declared relations.
//
// A Processor keeps no state between calls other than its counters and is
// safe for concurrent use when its Backend is. It does not serialize
// cascades itself; callers that may touch the same topic concurrently
// must coordinate (see the signals package).
type Processor struct {
	backend    Backend
	policy     Policy
	resolver   Resolver
	maxDepth   int
	cycleGuard bool

	writes     atomic.Uint64
	removes    atomic.Uint64
	suppressed atomic.Uint64
	revisits   atomic.Uint64
}

// Option configures a Processor.
type Option func(*Processor)

// WithPolicy replaces the DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(proc *Processor) {
		if p != nil {
			proc.policy = p
		}
	}
}

// WithMaxDepth sets the maximum number of relation hops from the triggering
// entity. Zero or a negative value disables the limit.
func WithMaxDepth(depth int) Option {
	return func(proc *Processor) {
		proc.maxDepth = depth
	}
}

// WithoutCycleGuard disables the per-event visited set. Entities reachable
// through several paths are then processed once per path, and a cyclic
// relation graph only stops at the depth limit.
func WithoutCycleGuard() Option {
	return func(proc *Processor) {
		proc.cycleGuard = false
	}
}

// NewProcessor creates a Processor forwarding to backend.
//
// Returns ErrNilBackend if backend is nil.
func NewProcessor(backend Backend, opts ...Option) (*Processor, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	p := &Processor{
		backend:    backend,
		policy:     DefaultPolicy{},
		maxDepth:   DefaultMaxDepth,
		cycleGuard: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// traversal is the state of one top-level event.
type traversal struct {
	visited map[entity.Key]struct{}
}

func (p *Processor) newTraversal() *traversal {
	t := &traversal{}
	if p.cycleGuard {
		t.visited = make(map[entity.Key]struct{})
	}
	return t
}

// HandleSave writes e to the index and, when the policy allows it, saves
// every entity reachable through e's declared relations.
//
// The entity's own document is written before any related entity is
// touched, and regardless of the policy. The first error aborts the rest of
// the cascade; work already done is not undone.
func (p *Processor) HandleSave(ctx context.Context, e entity.Entity) error {
	return p.save(ctx, e, 0, p.newTraversal())
}

// HandleDelete removes every entity reachable through e's declared
// relations from the index and then removes e itself.
//
// Unlike HandleSave, the walk ignores the policy: documents derived from a
// deleted entity are always cleaned up.
func (p *Processor) HandleDelete(ctx context.Context, e entity.Entity) error {
	return p.delete(ctx, e, 0, p.newTraversal())
}

// Stats returns a snapshot of the processor counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Writes:     p.writes.Load(),
		Removes:    p.removes.Load(),
		Suppressed: p.suppressed.Load(),
		Revisits:   p.revisits.Load(),
	}
}

func (p *Processor) save(ctx context.Context, e entity.Entity, depth int, t *traversal) error {
	key, err := p.enter(ctx, e, depth, t)
	if err != nil || key == nil {
		return err
	}

	if err := p.backend.WriteToIndex(ctx, e); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	p.writes.Add(1)

	rels := e.Relations()
	if len(rels) == 0 {
		return nil
	}

	ok, err := p.policy.ShouldCascade(e)
	if err != nil {
		return fmt.Errorf("reindex policy for %s: %w", key, err)
	}
	if !ok {
		p.suppressed.Add(1)
		slog.Debug("cascade_suppressed",
			slog.String("entity", key.String()),
			slog.Int("depth", depth))
		return nil
	}

	return p.walk(e, rels, func(related entity.Entity) error {
		return p.save(ctx, related, depth+1, t)
	})
}

func (p *Processor) delete(ctx context.Context, e entity.Entity, depth int, t *traversal) error {
	key, err := p.enter(ctx, e, depth, t)
	if err != nil || key == nil {
		return err
	}

	if rels := e.Relations(); len(rels) > 0 {
		err := p.walk(e, rels, func(related entity.Entity) error {
			return p.delete(ctx, related, depth+1, t)
		})
		if err != nil {
			return err
		}
	}

	if err := p.backend.RemoveFromIndex(ctx, e); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	p.removes.Add(1)
	return nil
}

// enter validates e and records it in the traversal. A nil key with a nil
// error means e was already handled during this event.
func (p *Processor) enter(ctx context.Context, e entity.Entity, depth int, t *traversal) (*entity.Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if entity.IsNil(e) {
		return nil, cerrors.New(cerrors.ErrCodeMalformedEntity, "nil entity", nil).
			WithDetail("type", fmt.Sprintf("%T", e))
	}

	key := e.Key()
	if !key.Valid() {
		return nil, cerrors.New(cerrors.ErrCodeMalformedEntity,
			fmt.Sprintf("entity %q has no identity", key.String()), nil).
			WithDetail("kind", string(key.Kind))
	}

	if p.maxDepth > 0 && depth > p.maxDepth {
		return nil, cerrors.New(cerrors.ErrCodeDepthExceeded,
			fmt.Sprintf("cascade reached %s at depth %d (limit %d)", key, depth, p.maxDepth), nil).
			WithDetail("entity", key.String()).
			WithSuggestion("check the declared relations for a cycle or raise cascade.max_depth")
	}

	if t.visited != nil {
		if _, seen := t.visited[key]; seen {
			p.revisits.Add(1)
			slog.Debug("cascade_revisit_skipped",
				slog.String("entity", key.String()),
				slog.Int("depth", depth))
			return nil, nil
		}
		t.visited[key] = struct{}{}
	}

	return &key, nil
}

// walk resolves each declared relation of e in order and calls fn for every
// related entity, stopping at the first error.
func (p *Processor) walk(e entity.Entity, rels []entity.Relation, fn func(entity.Entity) error) error {
	for _, rel := range rels {
		related, err := p.resolver.Resolve(e, rel.Name)
		if err != nil {
			return err
		}
		slog.Debug("cascade_relation_resolved",
			slog.String("entity", e.Key().String()),
			slog.String("relation", rel.Name),
			slog.String("shape", rel.Shape.String()),
			slog.Int("related", len(related)))

		for _, r := range related {
			if err := fn(r); err != nil {
				return err
			}
		}
	}
	return nil
}

