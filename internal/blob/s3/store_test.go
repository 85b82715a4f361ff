package s3

import (
	"context"
	"testing"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests("")
	assert.Equal(t, blob.DriverS3, s.Driver())

	require.NoError(t, s.Put(ctx, "records/GLB-25-000001-AB12.json", []byte(`{"version":1}`), blob.JSON))
	require.NoError(t, s.Put(ctx, "records/GLB-25-000001-AB12.json", []byte(`{"version":2}`), blob.JSON))

	got, err := s.Get(ctx, "records/GLB-25-000001-AB12.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(got))
}

func TestMockStoreMissingKey(t *testing.T) {
	s := NewMockForTests("")

	_, err := s.Get(context.Background(), "records/missing.json")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestMockStoreListAndDeleteWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests("bookings")

	for _, k := range []string{"records/b.json", "records/a.json", "index.json"} {
		require.NoError(t, s.Put(ctx, k, []byte("{}"), blob.JSON))
	}

	infos, err := s.List(ctx, "records/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "records/a.json", infos[0].Key)
	assert.Equal(t, "records/b.json", infos[1].Key)
	assert.Equal(t, int64(2), infos[0].Size)

	require.NoError(t, s.Delete(ctx, "records/a.json"))
	infos, err = s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "index.json", infos[0].Key)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", normalizePrefix(" / "))
	assert.Equal(t, "site/bookings/", normalizePrefix("/site/bookings/"))
}
