// Package signals turns persistence-layer mutation events into cascade
// calls, one event at a time.
package signals

import (
	"time"

	"github.com/Aman-CERP/credcascade/internal/entity"
)

// Op is the mutation an Event reports.
type Op int

const (
	// OpSave indicates an entity was created or updated.
	OpSave Op = iota
	// OpDelete indicates an entity is being deleted.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpSave:
		return "SAVE"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Event is one mutation emitted by the persistence layer.
type Event struct {
	// Op is the mutation type.
	Op Op

	// Entity is the entity the mutation applies to.
	Entity entity.Entity

	// Timestamp is when the mutation happened.
	Timestamp time.Time
}

// Saved returns an OpSave event for e stamped with the current time.
func Saved(e entity.Entity) Event {
	return Event{Op: OpSave, Entity: e, Timestamp: time.Now()}
}

// Deleted returns an OpDelete event for e stamped with the current time.
func Deleted(e entity.Entity) Event {
	return Event{Op: OpDelete, Entity: e, Timestamp: time.Now()}
}
