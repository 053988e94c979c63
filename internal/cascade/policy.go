package cascade

import (
	"github.com/Aman-CERP/credcascade/internal/entity"
)

// Policy decides whether saving an entity should propagate to its related
// entities. It never affects the entity's own index entry.
type Policy interface {
	ShouldCascade(e entity.Entity) (bool, error)
}

// DefaultPolicy cascades for every entity unless the entity kind supplies
// its own rule by implementing entity.CascadeGate.
type DefaultPolicy struct{}

// ShouldCascade implements Policy. The result is computed on every call.
func (DefaultPolicy) ShouldCascade(e entity.Entity) (bool, error) {
	if gate, ok := e.(entity.CascadeGate); ok {
		return gate.ShouldCascade()
	}
	return true, nil
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(e entity.Entity) (bool, error)

// ShouldCascade implements Policy.
func (f PolicyFunc) ShouldCascade(e entity.Entity) (bool, error) {
	return f(e)
}

var (
	_ Policy = DefaultPolicy{}
	_ Policy = PolicyFunc(nil)
)
