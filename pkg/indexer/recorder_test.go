package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/credcascade/internal/cascade"
	"github.com/Aman-CERP/credcascade/internal/entity"
)

func callStrings(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

func TestRecorder_TracesCascadeOrder(t *testing.T) {
	rec := NewRecorder()
	proc, err := cascade.NewProcessor(rec)
	require.NoError(t, err)
	ctx := context.Background()

	topic := &entity.Topic{ID: "t1", Type: "registration"}
	cs := &entity.CredentialSet{
		ID: "cs1", Topic: topic,
		CredentialType: &entity.CredentialType{ID: "ct1", Description: "licence"},
	}
	topic.CredentialSets = []*entity.CredentialSet{cs}

	require.NoError(t, proc.HandleSave(ctx, cs))
	assert.Equal(t, []string{
		"write credential_set:cs1",
		"write topic:t1",
	}, callStrings(rec.Calls()))

	rec.Reset()
	require.NoError(t, proc.HandleDelete(ctx, cs))
	assert.Equal(t, []string{
		"remove topic:t1",
		"remove credential_set:cs1",
	}, callStrings(rec.Calls()))
}

func TestRecorder_CallsReturnsCopy(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.WriteToIndex(context.Background(), &plain{id: "p1"}))

	calls := rec.Calls()
	calls[0].Op = CallRemove

	assert.Equal(t, CallWrite, rec.Calls()[0].Op)
}
