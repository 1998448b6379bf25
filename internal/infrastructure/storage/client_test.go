package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/rtCamp/next-crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Disabled(t *testing.T) {
	c, err := NewClient(config.New())
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	assert.ErrorIs(t, c.Put(ctx, "k", strings.NewReader("x"), 1, "text/plain"), ErrDisabled)
	assert.ErrorIs(t, c.Copy(ctx, "a", "b"), ErrDisabled)
	assert.ErrorIs(t, c.Delete(ctx, "k"), ErrDisabled)
}

func TestNewClient_Enabled(t *testing.T) {
	cfg := config.New()
	cfg.StorageEndpoint = "localhost:9000"
	cfg.StorageAccessKey = "minio"
	cfg.StorageSecretKey = "minio123"

	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.True(t, c.Enabled())
	assert.Equal(t, "ncrm-files", c.bucket)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("../../quote.pdf", false)
	assert.True(t, strings.HasPrefix(key, "files/"))
	assert.True(t, strings.HasSuffix(key, "/quote.pdf"))

	key = ObjectKey(`C:\scans\id.png`, true)
	assert.True(t, strings.HasPrefix(key, "private/files/"))
	assert.True(t, strings.HasSuffix(key, "/id.png"))

	assert.NotEqual(t, ObjectKey("a.txt", false), ObjectKey("a.txt", false))
}
