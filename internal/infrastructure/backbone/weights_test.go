package backbone

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureWeights_DownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("onnx-bytes"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "models", "resnet50.onnx")

	require.NoError(t, EnsureWeights(context.Background(), srv.Client(), path, srv.URL))
	require.NoError(t, EnsureWeights(context.Background(), srv.Client(), path, srv.URL))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "onnx-bytes", string(data))
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnsureWeights_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "resnet50.onnx")
	err := EnsureWeights(context.Background(), srv.Client(), path, srv.URL)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureWeights_NoURL(t *testing.T) {
	err := EnsureWeights(context.Background(), nil, filepath.Join(t.TempDir(), "x.onnx"), "")
	assert.Error(t, err)
}
