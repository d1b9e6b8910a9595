package filestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStageAndFetch(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	uri, err := store.Stage(context.Background(), "imports/run-1/extracto.csv", []byte("hola"))
	require.NoError(t, err)
	assert.Contains(t, uri, "file://")

	data, err := store.Fetch(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, []byte("hola"), data)
}

func TestFilenameFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/imports/abc/extracto.csv", "extracto.csv"},
		{"gs://bucket/file.xlsx", "file.xlsx"},
		{"gs://bucket", "bucket"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FilenameFromURI(tt.uri))
	}
}

func TestSplitURI(t *testing.T) {
	bucket, object, err := splitURI("gs://b/imports/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "imports/x.csv", object)

	_, _, err = splitURI("http://b/x.csv")
	assert.Error(t, err)

	_, _, err = splitURI("gs://bucket-only")
	assert.Error(t, err)
}
