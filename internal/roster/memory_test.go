package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAssignsSequentialIDs(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	id1, err := ms.Create(ctx, Fields{Name: "a"})
	require.NoError(t, err)
	id2, err := ms.Create(ctx, Fields{Name: "b"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
	assert.Equal(t, StatusUnset, ms.Get(id1).Status)
	assert.Nil(t, ms.Get(id1).StatusAt)
}

func TestMemoryStoreIDsNotReusedAfterDelete(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	id1, _ := ms.Create(ctx, Fields{Name: "a"})
	gone, err := ms.Delete(ctx, id1)
	require.NoError(t, err)
	require.True(t, gone)

	id2, _ := ms.Create(ctx, Fields{Name: "b"})
	assert.Greater(t, id2, id1)

	// The deleted ID stays unknown to the update pipeline.
	_, ok, err := ms.SetStatus(ctx, id1, StatusAvailable, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDeleteUnknownIsNoop(t *testing.T) {
	ms := NewMemoryStore()
	gone, err := ms.Delete(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, gone)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	id, _ := ms.Create(ctx, Fields{Name: "old", Room: "101"})
	ok, err := ms.Update(ctx, id, Fields{Name: "new", Room: "202"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", ms.Get(id).Name)
	assert.Equal(t, "202", ms.Get(id).Room)

	ok, err = ms.Update(ctx, 999, Fields{Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreSetStatusReportsOld(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()
	id, _ := ms.Create(ctx, Fields{Name: "a"})

	old, ok, err := ms.SetStatus(ctx, id, StatusAvailable, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusUnset, old)

	old, ok, err = ms.SetStatus(ctx, id, StatusUnavailable, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusAvailable, old)
	assert.Equal(t, StatusUnavailable, ms.Get(id).Status)
}

func TestMemoryStoreListOrdering(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	_, _ = ms.Create(ctx, Fields{Name: "zed", Department: "eng", Room: "2"})
	_, _ = ms.Create(ctx, Fields{Name: "amy", Department: "eng", Room: "1"})
	_, _ = ms.Create(ctx, Fields{Name: "bob", Department: "admin", Room: "9"})

	all, err := ms.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bob", all[0].Name)
	assert.Equal(t, "amy", all[1].Name)
	assert.Equal(t, "zed", all[2].Name)
}

func TestStatusWireEncoding(t *testing.T) {
	require.Nil(t, StatusUnset.Wire())

	av := StatusAvailable.Wire()
	require.NotNil(t, av)
	assert.Equal(t, 1, *av)

	un := StatusUnavailable.Wire()
	require.NotNil(t, un)
	assert.Equal(t, 0, *un)

	assert.Equal(t, StatusUnset, StatusFromWire(nil))
	assert.Equal(t, StatusAvailable, StatusFromWire(av))
	assert.Equal(t, StatusUnavailable, StatusFromWire(un))
}
