package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func TestMemoryStore_AddFindUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, CollectionAlumni, map[string]any{"Student ID": "1001", "Major": "Physics"})
	require.NoError(t, err)
	_, err = store.Add(ctx, CollectionAlumni, map[string]any{"Student ID": "1002", "Major": "History"})
	require.NoError(t, err)

	found, err := store.FindBy(ctx, CollectionAlumni, "Student ID", "1001")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	require.NoError(t, store.Update(ctx, CollectionAlumni, id, map[string]any{"Major": "Data Science"}))

	doc, err := store.Get(ctx, CollectionAlumni, id)
	require.NoError(t, err)
	assert.Equal(t, "Data Science", doc.Data["Major"])
	assert.Equal(t, "1001", doc.Data["Student ID"])
}

func TestMemoryStore_FindByComparesNumbersAsText(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(CollectionReferenceStudents, "a", map[string]any{"Student ID": float64(2021001)})

	found, err := store.FindBy(ctx, CollectionReferenceStudents, "Student ID", "2021001")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestMemoryStore_ReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(CollectionEvents, "e1", map[string]any{"eventTitle": "Gala"})

	doc, err := store.Get(ctx, CollectionEvents, "e1")
	require.NoError(t, err)
	doc.Data["eventTitle"] = "changed"

	again, err := store.Get(ctx, CollectionEvents, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Gala", again.Data["eventTitle"])
}

func TestMemoryStore_MissingDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, CollectionAdmins, "nope")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	err = store.Update(ctx, CollectionAdmins, "nope", map[string]any{"status": "active"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestMemoryStore_AllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Add(ctx, CollectionEvents, map[string]any{"eventTitle": title})
		require.NoError(t, err)
	}

	docs, err := store.All(ctx, CollectionEvents)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "first", docs[0].Data["eventTitle"])
	assert.Equal(t, "third", docs[2].Data["eventTitle"])
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Add(ctx, CollectionEvents, map[string]any{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValues_Coercion(t *testing.T) {
	s, ok := AsString(float64(2019))
	assert.True(t, ok)
	assert.Equal(t, "2019", s)

	i, ok := AsInt("2020")
	assert.True(t, ok)
	assert.Equal(t, 2020, i)

	_, ok = AsInt(2020.5)
	assert.False(t, ok)

	b, ok := AsBool("Yes")
	assert.True(t, ok)
	assert.True(t, b)

	ts, ok := AsTime("2024-03-01T10:00:00Z")
	assert.True(t, ok)
	assert.Equal(t, time.March, ts.Month())

	assert.True(t, ValuesEqual(int64(7), "7"))
	assert.False(t, ValuesEqual(nil, ""))
}
