package cascade

import (
	"fmt"

	"github.com/Aman-CERP/credcascade/internal/entity"
	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// ErrUnknownRelation is returned when an entity is asked for a relation it
// does not declare.
var ErrUnknownRelation = cerrors.New(cerrors.ErrCodeUnknownRelation, "relation not declared", nil)

// Resolver resolves declared relations to the entities they currently
// reference.
type Resolver struct{}

// Resolve returns the entities the named relation of e currently points at.
//
// A ShapeMany relation yields its members in their natural order; a
// ShapeOne relation yields a one-element slice, or nothing when the
// reference is absent. Resolve never modifies the entity.
func (Resolver) Resolve(e entity.Entity, name string) ([]entity.Entity, error) {
	for _, rel := range e.Relations() {
		if rel.Name != name {
			continue
		}
		return resolveRelation(rel), nil
	}
	return nil, cerrors.New(cerrors.ErrCodeUnknownRelation,
		fmt.Sprintf("%s does not declare relation %q", e.Key(), name), nil).
		WithDetail("entity", e.Key().String()).
		WithDetail("relation", name)
}

func resolveRelation(rel entity.Relation) []entity.Entity {
	switch rel.Shape {
	case entity.ShapeMany:
		return rel.Members()
	default:
		if target := rel.Target(); target != nil {
			return []entity.Entity{target}
		}
		return nil
	}
}
