// Package entity defines the indexable entities of the credential registry
// and the relations the cascade layer walks between them.
//
// Every indexable entity implements Entity. Relations are declared
// statically with their shape (one entity or an ordered collection), so
// resolving a relation never has to guess what it points at. Relations are
// lookup-only: nothing on either side of an edge owns the other.
package entity

import (
	"fmt"
	"reflect"
)

// Kind tags the type of an entity.
type Kind string

const (
	KindCredentialSet  Kind = "credential_set"
	KindTopic          Kind = "topic"
	KindCredentialType Kind = "credential_type"
)

// Key is the opaque identity of an entity.
type Key struct {
	Kind Kind
	ID   string
}

// String returns "kind:id".
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

// Valid reports whether the key identifies an entity.
func (k Key) Valid() bool {
	return k.Kind != "" && k.ID != ""
}

// Entity is anything that participates in indexing.
type Entity interface {
	// Key returns the identity of the entity.
	Key() Key

	// Relations returns the declared relations to traverse when the entity
	// changes, in traversal order. Entities that declare none return nil.
	Relations() []Relation
}

// IsNil reports whether e is nil or a nil pointer (or other nil-able value)
// wrapped in a non-nil interface.
func IsNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// NoRelations can be embedded by entities that declare no relations.
type NoRelations struct{}

// Relations implements Entity.
func (NoRelations) Relations() []Relation { return nil }

// CascadeGate is implemented by entity kinds that override the default
// "always cascade" rule.
type CascadeGate interface {
	// ShouldCascade reports whether a save of this entity should propagate
	// to its related entities. It is evaluated against live state each call.
	ShouldCascade() (bool, error)
}

// Texter is implemented by entities that provide their own text for the
// search document.
type Texter interface {
	IndexText() string
}
