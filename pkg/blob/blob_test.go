package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsfresh/pkg/config"
)

func TestCleanKey(t *testing.T) {
	cases := map[string]string{
		"dog.jpg":            "dog.jpg",
		"/images/dog.jpg":    "images/dog.jpg",
		"../../etc/passwd":   "etc/passwd",
		"images/../../x.png": "x.png",
	}
	for in, want := range cases {
		got, err := CleanKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := CleanKey("  ")
	assert.Error(t, err)
}

func TestLocalPutDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/media/")
	require.NoError(t, err)

	info, err := store.Put(context.Background(), "dog.jpg", strings.NewReader("woof"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/dog.jpg", info.URL)
	assert.Equal(t, int64(4), info.Size)

	data, err := os.ReadFile(filepath.Join(dir, "dog.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "woof", string(data))

	_, err = store.Put(context.Background(), "dog.jpg", strings.NewReader("again"), "image/jpeg")
	assert.ErrorIs(t, err, ErrExists)

	require.NoError(t, store.Delete(context.Background(), "dog.jpg"))
	_, err = os.Stat(filepath.Join(dir, "dog.jpg"))
	assert.True(t, os.IsNotExist(err))

	// deleting a missing blob is not an error
	assert.NoError(t, store.Delete(context.Background(), "dog.jpg"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	_, err := store.Put(context.Background(), "cat.jpg", strings.NewReader("meow"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, store.Has("cat.jpg"))

	require.NoError(t, store.Delete(context.Background(), "cat.jpg"))
	assert.False(t, store.Has("cat.jpg"))
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), &config.BlobConfig{Driver: "local", LocalDir: t.TempDir(), MediaURL: "/media/"})
	require.NoError(t, err)
	assert.Equal(t, DriverLocal, store.Driver())

	_, err = New(context.Background(), &config.BlobConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestS3URL(t *testing.T) {
	store, err := NewS3(context.Background(), S3Config{
		Bucket:          "fresh",
		Region:          "us-west-2",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		KeyPrefix:       "images/",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)

	key, err := store.objectKey("dog.jpg")
	require.NoError(t, err)
	assert.Equal(t, "images/dog.jpg", key)
	assert.Equal(t, "http://localhost:9000/fresh/images/dog.jpg", store.URL(key))
}
