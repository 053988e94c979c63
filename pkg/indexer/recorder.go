package indexer

import (
	"context"
	"sync"

	"github.com/Aman-CERP/credcascade/internal/cascade"
	"github.com/Aman-CERP/credcascade/internal/entity"
)

// CallOp is the backend operation a Call records.
type CallOp string

const (
	CallWrite  CallOp = "write"
	CallRemove CallOp = "remove"
)

// Call is one backend call seen by a Recorder.
type Call struct {
	Op  CallOp
	Key entity.Key
}

// String returns "op kind:id".
func (c Call) String() string {
	return string(c.Op) + " " + c.Key.String()
}

// Recorder is a Backend that records the calls it receives, in order,
// without touching any index.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// WriteToIndex implements cascade.Backend.
func (r *Recorder) WriteToIndex(_ context.Context, e entity.Entity) error {
	r.record(CallWrite, e)
	return nil
}

// RemoveFromIndex implements cascade.Backend.
func (r *Recorder) RemoveFromIndex(_ context.Context, e entity.Entity) error {
	r.record(CallRemove, e)
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
}

func (r *Recorder) record(op CallOp, e entity.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Op: op, Key: e.Key()})
}

var _ cascade.Backend = (*Recorder)(nil)
