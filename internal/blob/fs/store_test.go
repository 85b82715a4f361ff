package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutOverwritesAndGet(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, s.Driver())

	require.NoError(t, s.Put(ctx, "records/GLB-1.json", []byte(`{"v":1}`), blob.JSON))
	require.NoError(t, s.Put(ctx, "records/GLB-1.json", []byte(`{"v":2}`), blob.JSON))

	got, err := s.Get(ctx, "records/GLB-1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))
}

func TestStoreMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "records/none.json")
	assert.ErrorIs(t, err, blob.ErrNotFound)
	assert.NoError(t, s.Delete(context.Background(), "records/none.json"))
}

func TestStoreRejectsUnsafeKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "/abs", "records/x.tmp"} {
		assert.ErrorIs(t, s.Put(ctx, key, []byte("x"), blob.PutOptions{}), blob.ErrInvalidKey, key)
	}
}

func TestStoreListNestedAndLegacyKeys(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	keys := []string{"records/b.json", "records/a.json", "index.json", "main@c.json", "main@/d.json"}
	for _, k := range keys {
		require.NoError(t, s.Put(ctx, k, []byte("{}"), blob.JSON))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "records", "partial.json.123.tmp"), []byte("x"), 0o644))

	records, err := s.List(ctx, "records/")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "records/a.json", records[0].Key)
	assert.Equal(t, int64(2), records[0].Size)

	legacy, err := s.List(ctx, "main@")
	require.NoError(t, err)
	require.Len(t, legacy, 2)
	assert.Equal(t, "main@/d.json", legacy[0].Key)
	assert.Equal(t, "main@c.json", legacy[1].Key)

	require.NoError(t, s.Delete(ctx, "main@/d.json"))
	legacy, err = s.List(ctx, "main@")
	require.NoError(t, err)
	assert.Len(t, legacy, 1)
}
