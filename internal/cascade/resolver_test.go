package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/credcascade/internal/entity"
)

func TestResolver_Resolve(t *testing.T) {
	a, b, c := &node{id: "a"}, &node{id: "b"}, &node{id: "c"}

	t.Run("single reference yields one entity", func(t *testing.T) {
		n := &node{id: "x"}
		linkOne(n, "parent", a)

		got, err := Resolver{}.Resolve(n, "parent")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Same(t, a, got[0])
	})

	t.Run("absent reference yields nothing", func(t *testing.T) {
		n := &node{id: "x"}
		linkOne(n, "parent", nil)

		got, err := Resolver{}.Resolve(n, "parent")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("nil pointer reference yields nothing", func(t *testing.T) {
		n := &node{id: "x"}
		var topic *entity.Topic
		n.rels = append(n.rels, entity.One("topic", func() entity.Entity { return topic }))

		got, err := Resolver{}.Resolve(n, "topic")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("collection keeps its order", func(t *testing.T) {
		n := &node{id: "x"}
		linkMany(n, "children", c, a, b)

		got, err := Resolver{}.Resolve(n, "children")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Key().ID, got[1].Key().ID, got[2].Key().ID})
	})

	t.Run("empty collection yields nothing", func(t *testing.T) {
		n := &node{id: "x"}
		linkMany(n, "children")

		got, err := Resolver{}.Resolve(n, "children")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("undeclared relation is an error", func(t *testing.T) {
		_, err := Resolver{}.Resolve(&node{id: "x"}, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownRelation)
	})

	t.Run("credential set resolves its topic", func(t *testing.T) {
		topic, sets := credentialGraph("business", &entity.CredentialType{ID: "ct1", Description: "licence"})

		got, err := Resolver{}.Resolve(sets[0], entity.RelationTopic)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Same(t, topic, got[0])
	})
}
