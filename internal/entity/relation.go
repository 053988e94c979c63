package entity

// Shape states what a relation resolves to.
type Shape int

const (
	// ShapeOne resolves to zero or one entity.
	ShapeOne Shape = iota
	// ShapeMany resolves to an ordered collection of entities.
	ShapeMany
)

// String returns a human-readable representation of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeOne:
		return "one"
	case ShapeMany:
		return "many"
	default:
		return "unknown"
	}
}

// Relation is a named edge from an entity to one entity or a collection.
// Build relations with One or Many.
type Relation struct {
	Name  string
	Shape Shape

	one  func() Entity
	many func() []Entity
}

// One declares a relation to a single entity. get returns nil when the
// reference is absent.
func One(name string, get func() Entity) Relation {
	return Relation{Name: name, Shape: ShapeOne, one: get}
}

// Many declares a relation to an ordered collection of entities.
func Many(name string, list func() []Entity) Relation {
	return Relation{Name: name, Shape: ShapeMany, many: list}
}

// Target returns the current single value of a ShapeOne relation.
// It returns nil for an absent reference, including a nil pointer returned
// through the Entity interface, or a relation of another shape.
func (r Relation) Target() Entity {
	if r.Shape != ShapeOne || r.one == nil {
		return nil
	}
	if target := r.one(); !IsNil(target) {
		return target
	}
	return nil
}

// Members returns the current members of a ShapeMany relation in their
// natural order. It returns nil for a relation of another shape.
func (r Relation) Members() []Entity {
	if r.Shape != ShapeMany || r.many == nil {
		return nil
	}
	return r.many()
}
