package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Aman-CERP/credcascade/internal/errors"
)

// valueEntity is an entity with a value receiver, which can never be nil.
type valueEntity struct{ NoRelations }

func (valueEntity) Key() Key { return Key{Kind: "value", ID: "v"} }

func attach(topic *Topic, sets ...*CredentialSet) {
	for _, cs := range sets {
		cs.Topic = topic
		topic.CredentialSets = append(topic.CredentialSets, cs)
	}
}

func TestCredentialSet_Relations_DeclaresTopic(t *testing.T) {
	topic := &Topic{ID: "t1", Type: "business"}
	cs := &CredentialSet{ID: "cs1", CredentialType: &CredentialType{ID: "ct1", Description: "licence"}}
	attach(topic, cs)

	rels := cs.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, RelationTopic, rels[0].Name)
	assert.Equal(t, ShapeOne, rels[0].Shape)
	assert.Same(t, topic, rels[0].Target())
}

func TestCredentialSet_Relations_AbsentTopicResolvesToNil(t *testing.T) {
	cs := &CredentialSet{ID: "cs1"}

	rels := cs.Relations()
	require.Len(t, rels, 1)
	// assert.Nil would accept a typed nil; compare the interface itself.
	assert.True(t, rels[0].Target() == nil, "nil *Topic must not leak through as a non-nil Entity")
}

func TestIsNil(t *testing.T) {
	var topic *Topic
	var set *CredentialSet

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(topic))
	assert.True(t, IsNil(set))
	assert.False(t, IsNil(&Topic{ID: "t1"}))
	assert.False(t, IsNil(valueEntity{}))
}

func TestCredentialSet_ShouldCascade(t *testing.T) {
	registration := &CredentialType{ID: "ct-reg", Description: "registration"}
	licence := &CredentialType{ID: "ct-lic", Description: "licence"}

	t.Run("foundational set is suppressed", func(t *testing.T) {
		topic := &Topic{ID: "t1", Type: "registration"}
		cs := &CredentialSet{ID: "cs1", CredentialType: registration}
		attach(topic, cs)

		foundational, err := cs.Foundational()
		require.NoError(t, err)
		assert.True(t, foundational)

		ok, err := cs.ShouldCascade()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("only set of its type cascades", func(t *testing.T) {
		topic := &Topic{ID: "t1", Type: "registration"}
		cs := &CredentialSet{ID: "cs1", CredentialType: licence}
		attach(topic, cs)

		ok, err := cs.ShouldCascade()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("redundant sets suppress each other", func(t *testing.T) {
		topic := &Topic{ID: "t1", Type: "registration"}
		first := &CredentialSet{ID: "cs1", CredentialType: licence}
		attach(topic, first)

		ok, err := first.ShouldCascade()
		require.NoError(t, err)
		assert.True(t, ok, "first set is alone on the topic")

		second := &CredentialSet{ID: "cs2", CredentialType: licence}
		attach(topic, second)

		ok, err = second.ShouldCascade()
		require.NoError(t, err)
		assert.False(t, ok)

		// Re-evaluated against the live collection, the first set is now
		// redundant as well.
		ok, err = first.ShouldCascade()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("same type on another topic is not redundant", func(t *testing.T) {
		t1 := &Topic{ID: "t1", Type: "registration"}
		t2 := &Topic{ID: "t2", Type: "registration"}
		a := &CredentialSet{ID: "cs1", CredentialType: licence}
		b := &CredentialSet{ID: "cs2", CredentialType: licence}
		attach(t1, a)
		attach(t2, b)

		redundant, err := a.Redundant()
		require.NoError(t, err)
		assert.False(t, redundant)
	})

	t.Run("different types on one topic are not redundant", func(t *testing.T) {
		topic := &Topic{ID: "t1", Type: "business"}
		a := &CredentialSet{ID: "cs1", CredentialType: licence}
		b := &CredentialSet{ID: "cs2", CredentialType: registration}
		attach(topic, a, b)

		ok, err := a.ShouldCascade()
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestCredentialSet_ShouldCascade_MalformedEntity(t *testing.T) {
	noTopic := &CredentialSet{ID: "cs1", CredentialType: &CredentialType{ID: "ct1"}}
	_, err := noTopic.ShouldCascade()
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeMalformedEntity, cerrors.GetCode(err))

	noType := &CredentialSet{ID: "cs2", Topic: &Topic{ID: "t1"}}
	_, err = noType.ShouldCascade()
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeMalformedEntity, cerrors.GetCode(err))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "topic:t1", (&Topic{ID: "t1"}).Key().String())
	assert.True(t, Key{Kind: KindTopic, ID: "t1"}.Valid())
	assert.False(t, Key{Kind: KindTopic}.Valid())
	assert.False(t, Key{ID: "t1"}.Valid())
}

func TestRelation_ShapeAccessors(t *testing.T) {
	topic := &Topic{ID: "t1"}
	one := One("topic", func() Entity { return topic })
	many := Many("sets", func() []Entity { return []Entity{topic} })

	assert.Equal(t, "one", one.Shape.String())
	assert.Equal(t, "many", many.Shape.String())
	assert.Nil(t, one.Members())
	assert.Nil(t, many.Target())
	assert.Same(t, topic, one.Target())
	assert.Len(t, many.Members(), 1)
	assert.Nil(t, (&Topic{}).Relations())
}

func TestTopic_IndexText_IncludesCurrentCredentialTypes(t *testing.T) {
	topic := &Topic{ID: "t1", Type: "registration"}
	assert.Equal(t, "registration", topic.IndexText())

	licence := &CredentialType{ID: "ct1", Description: "business licence"}
	topic.CredentialSets = append(topic.CredentialSets,
		&CredentialSet{ID: "cs1", Topic: topic, CredentialType: licence},
		&CredentialSet{ID: "cs2", Topic: topic})

	assert.Equal(t, "registration\nbusiness licence", topic.IndexText())
	assert.Equal(t, "business licence", topic.CredentialSets[0].IndexText())
	assert.Empty(t, topic.CredentialSets[1].IndexText())
}
