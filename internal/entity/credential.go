package entity

import (
	"fmt"
	"strings"

	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// RelationTopic is the relation from a credential set to its topic.
const RelationTopic = "topic"

// CredentialType describes a kind of credential.
type CredentialType struct {
	NoRelations

	ID          string
	Description string
}

// Key implements Entity.
func (ct *CredentialType) Key() Key {
	return Key{Kind: KindCredentialType, ID: ct.ID}
}

// IndexText implements Texter.
func (ct *CredentialType) IndexText() string {
	return ct.Description
}

// Topic is the subject credentials are issued about.
type Topic struct {
	NoRelations

	ID   string
	Type string

	// CredentialSets are the credential sets referencing this topic, in
	// insertion order.
	CredentialSets []*CredentialSet
}

// Key implements Entity.
func (t *Topic) Key() Key {
	return Key{Kind: KindTopic, ID: t.ID}
}

// IndexText implements Texter. The topic document carries the credential
// types of its current credential sets, which is why saving a set refreshes
// its topic.
func (t *Topic) IndexText() string {
	parts := []string{t.Type}
	for _, cs := range t.CredentialSets {
		if cs == nil || cs.CredentialType == nil {
			continue
		}
		parts = append(parts, cs.CredentialType.Description)
	}
	return strings.Join(parts, "\n")
}

// CredentialSet groups the credentials of one type issued for a topic.
type CredentialSet struct {
	ID             string
	Topic          *Topic
	CredentialType *CredentialType
}

// Key implements Entity.
func (cs *CredentialSet) Key() Key {
	return Key{Kind: KindCredentialSet, ID: cs.ID}
}

// Relations implements Entity. A credential set refreshes its topic.
func (cs *CredentialSet) Relations() []Relation {
	return []Relation{
		One(RelationTopic, func() Entity { return cs.Topic }),
	}
}

// IndexText implements Texter.
func (cs *CredentialSet) IndexText() string {
	if cs.CredentialType == nil {
		return ""
	}
	return cs.CredentialType.Description
}

// Foundational reports whether the topic's type equals the credential
// type's description.
func (cs *CredentialSet) Foundational() (bool, error) {
	if err := cs.validate(); err != nil {
		return false, err
	}
	return cs.Topic.Type == cs.CredentialType.Description, nil
}

// Redundant reports whether another credential set currently on the same
// topic shares this set's credential type.
func (cs *CredentialSet) Redundant() (bool, error) {
	if err := cs.validate(); err != nil {
		return false, err
	}
	for _, other := range cs.Topic.CredentialSets {
		if other == nil || other.ID == cs.ID || other.CredentialType == nil {
			continue
		}
		if other.CredentialType.ID == cs.CredentialType.ID {
			return true, nil
		}
	}
	return false, nil
}

// ShouldCascade implements CascadeGate. Foundational and redundant credential
// sets never propagate to their topic.
func (cs *CredentialSet) ShouldCascade() (bool, error) {
	foundational, err := cs.Foundational()
	if err != nil || foundational {
		return false, err
	}
	redundant, err := cs.Redundant()
	if err != nil || redundant {
		return false, err
	}
	return true, nil
}

func (cs *CredentialSet) validate() error {
	switch {
	case cs.Topic == nil:
		return cerrors.EntityError(fmt.Sprintf("%s has no topic", cs.Key()), nil).
			WithDetail("entity", cs.Key().String())
	case cs.CredentialType == nil:
		return cerrors.EntityError(fmt.Sprintf("%s has no credential type", cs.Key()), nil).
			WithDetail("entity", cs.Key().String())
	}
	return nil
}

var (
	_ Entity      = (*CredentialSet)(nil)
	_ Entity      = (*Topic)(nil)
	_ Entity      = (*CredentialType)(nil)
	_ CascadeGate = (*CredentialSet)(nil)
)
