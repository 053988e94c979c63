package cascade

import (
	"context"
	"fmt"
	"sync"

	"github.com/Aman-CERP/credcascade/internal/entity"
)

// recordingBackend records every backend call in order.
type recordingBackend struct {
	mu    sync.Mutex
	calls []string

	// failOn makes the call for this "op:kind:id" return an error.
	failOn string
}

func (b *recordingBackend) record(op string, e entity.Entity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	call := op + ":" + e.Key().String()
	if call == b.failOn {
		return fmt.Errorf("backend unavailable")
	}
	b.calls = append(b.calls, call)
	return nil
}

func (b *recordingBackend) WriteToIndex(_ context.Context, e entity.Entity) error {
	return b.record("write", e)
}

func (b *recordingBackend) RemoveFromIndex(_ context.Context, e entity.Entity) error {
	return b.record("remove", e)
}

func (b *recordingBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// node is a generic entity whose relations are set up by each test.
type node struct {
	id   string
	rels []entity.Relation
}

func (n *node) Key() entity.Key { return entity.Key{Kind: "node", ID: n.id} }

func (n *node) Relations() []entity.Relation { return n.rels }

func linkOne(from *node, name string, to *node) {
	from.rels = append(from.rels, entity.One(name, func() entity.Entity {
		if to == nil {
			return nil
		}
		return to
	}))
}

func linkMany(from *node, name string, to ...*node) {
	from.rels = append(from.rels, entity.Many(name, func() []entity.Entity {
		out := make([]entity.Entity, 0, len(to))
		for _, n := range to {
			out = append(out, n)
		}
		return out
	}))
}

// credentialGraph builds a topic with one credential set per credential type.
func credentialGraph(topicType string, types ...*entity.CredentialType) (*entity.Topic, []*entity.CredentialSet) {
	topic := &entity.Topic{ID: "t1", Type: topicType}
	sets := make([]*entity.CredentialSet, 0, len(types))
	for i, ct := range types {
		cs := &entity.CredentialSet{ID: fmt.Sprintf("cs%d", i+1), Topic: topic, CredentialType: ct}
		topic.CredentialSets = append(topic.CredentialSets, cs)
		sets = append(sets, cs)
	}
	return topic, sets
}
