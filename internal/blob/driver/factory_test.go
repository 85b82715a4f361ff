package driver

import (
	"context"
	"testing"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/smallbiznis/greenleaf/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.BlobConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverMemory, store.Driver())

	store, err = Open(ctx, config.BlobConfig{FSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, store.Driver())

	_, err = Open(ctx, config.BlobConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = Open(ctx, config.BlobConfig{Driver: "gcs"})
	assert.Error(t, err)
}
