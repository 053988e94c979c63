package signals

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aman-CERP/credcascade/internal/cascade"
	"github.com/Aman-CERP/credcascade/internal/entity"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
	"github.com/Aman-CERP/credcascade/pkg/indexer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Started by bleve's package init through pkg/indexer; they live for
		// the whole process.
		goleak.IgnoreAnyFunction("github.com/blevesearch/bleve_index_api.AnalysisWorker"),
	)
}

// fakeHandler records handled events and tracks concurrent calls.
type fakeHandler struct {
	mu      sync.Mutex
	handled []string
	failOn  string

	active  atomic.Int32
	overlap atomic.Bool
}

func (f *fakeHandler) handle(op string, e entity.Entity) error {
	if f.active.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.active.Add(-1)
	time.Sleep(time.Millisecond)

	key := e.Key().String()
	f.mu.Lock()
	f.handled = append(f.handled, op+":"+key)
	f.mu.Unlock()

	if key == f.failOn {
		return errors.New("backend unavailable")
	}
	return nil
}

func (f *fakeHandler) HandleSave(_ context.Context, e entity.Entity) error {
	return f.handle("save", e)
}

func (f *fakeHandler) HandleDelete(_ context.Context, e entity.Entity) error {
	return f.handle("delete", e)
}

func (f *fakeHandler) Handled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.handled...)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "SAVE", OpSave.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "UNKNOWN", Op(42).String())
}

func TestNewDispatcher_NilHandler(t *testing.T) {
	d, err := NewDispatcher(nil)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestDispatcher_Dispatch(t *testing.T) {
	h := &fakeHandler{}
	d, err := NewDispatcher(h)
	require.NoError(t, err)
	ctx := context.Background()

	topic := &entity.Topic{ID: "t1"}
	require.NoError(t, d.Dispatch(ctx, Saved(topic)))
	require.NoError(t, d.Dispatch(ctx, Deleted(topic)))

	assert.Equal(t, []string{"save:topic:t1", "delete:topic:t1"}, h.Handled())
	assert.Equal(t, DispatchStats{Dispatched: 2}, d.Stats())
}

func TestDispatcher_Dispatch_InvalidEvents(t *testing.T) {
	d, err := NewDispatcher(&fakeHandler{})
	require.NoError(t, err)
	ctx := context.Background()

	err = d.Dispatch(ctx, Event{Op: OpSave})
	assert.Equal(t, cerrors.ErrCodeMalformedEntity, cerrors.GetCode(err))

	err = d.Dispatch(ctx, Event{Op: Op(9), Entity: &entity.Topic{ID: "t1"}})
	assert.Equal(t, cerrors.ErrCodeInternal, cerrors.GetCode(err))

	assert.Equal(t, DispatchStats{Dispatched: 2, Failed: 2}, d.Stats())
}

func TestDispatcher_Dispatch_Serializes(t *testing.T) {
	h := &fakeHandler{}
	d, err := NewDispatcher(h)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Dispatch(context.Background(), Saved(&entity.Topic{ID: "t1"}))
		}()
	}
	wg.Wait()

	assert.False(t, h.overlap.Load(), "cascades must not overlap")
	assert.Len(t, h.Handled(), 8)
}

func TestDispatcher_Run_ContinuesAfterFailure(t *testing.T) {
	h := &fakeHandler{failOn: "topic:bad"}
	d, err := NewDispatcher(h)
	require.NoError(t, err)

	events := make(chan Event, 3)
	events <- Saved(&entity.Topic{ID: "t1"})
	events <- Saved(&entity.Topic{ID: "bad"})
	events <- Deleted(&entity.Topic{ID: "t2"})
	close(events)

	require.NoError(t, d.Run(context.Background(), events))

	assert.Equal(t, []string{"save:topic:t1", "save:topic:bad", "delete:topic:t2"}, h.Handled())
	assert.Equal(t, DispatchStats{Dispatched: 3, Failed: 1}, d.Stats())
}

func TestDispatcher_Run_StopsOnCancel(t *testing.T) {
	d, err := NewDispatcher(&fakeHandler{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, events) }()

	events <- Saved(&entity.Topic{ID: "t1"})
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int64(1), d.Stats().Dispatched)
}

func TestDispatcher_WithProcessor(t *testing.T) {
	rec := indexer.NewRecorder()
	proc, err := cascade.NewProcessor(rec)
	require.NoError(t, err)
	d, err := NewDispatcher(proc)
	require.NoError(t, err)

	topic := &entity.Topic{ID: "t1", Type: "registration"}
	licence := &entity.CredentialType{ID: "ct1", Description: "licence"}
	cs1 := &entity.CredentialSet{ID: "cs1", Topic: topic, CredentialType: licence}
	topic.CredentialSets = []*entity.CredentialSet{cs1}

	events := make(chan Event, 2)
	events <- Saved(cs1)
	events <- Deleted(cs1)
	close(events)
	require.NoError(t, d.Run(context.Background(), events))

	var got []string
	for _, c := range rec.Calls() {
		got = append(got, c.String())
	}
	assert.Equal(t, []string{
		"write credential_set:cs1",
		"write topic:t1",
		"remove topic:t1",
		"remove credential_set:cs1",
	}, got)
}
