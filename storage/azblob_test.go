package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// fakeBlobService implements the subset of the Azure Blob REST API the
// driver uses: put, get, head, and delete on one container.
type fakeBlobService struct {
	mu    sync.Mutex
	blobs map[string][]byte
	fail  bool
}

func (f *fakeBlobService) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("sv") != "test-sas" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		key, ok := strings.CutPrefix(r.URL.Path, "/test-container/")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			f.blobs[key] = body
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet, http.MethodHead:
			data, ok := f.blobs[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			if r.Method == http.MethodGet {
				w.Write(data)
			}
		case http.MethodDelete:
			if _, ok := f.blobs[key]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(f.blobs, key)
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newTestAzureBackend(t *testing.T) (*AzureBlobBackend, *fakeBlobService) {
	t.Helper()
	fake := &fakeBlobService{blobs: make(map[string][]byte)}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	backend, err := NewAzureBlobBackend(AzureBlobConfig{
		Endpoint:  srv.URL,
		Container: "test-container",
		SASToken:  "sv=test-sas",
	}, testLogger())
	require.NoError(t, err)
	return backend, fake
}

func TestAzureBlobBackend_RoundTrip(t *testing.T) {
	backend, _ := newTestAzureBackend(t)
	ctx := context.Background()
	payload := []byte("hello azure")

	require.NoError(t, backend.Save(ctx, "a.txt", payload))

	data, err := backend.LoadOnce(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	ok, err := backend.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, backend.Delete(ctx, "a.txt"))
	require.NoError(t, backend.Delete(ctx, "a.txt")) // absent blob is fine

	ok, err = backend.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAzureBlobBackend_MissingBlobIsNotFound(t *testing.T) {
	backend, _ := newTestAzureBackend(t)

	_, err := backend.LoadOnce(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestAzureBlobBackend_ServerFailureIsTransport(t *testing.T) {
	backend, fake := newTestAzureBackend(t)
	ctx := context.Background()
	fake.fail = true

	assert.ErrorIs(t, backend.Save(ctx, "a.txt", []byte("x")), interfaces.ErrTransport)

	_, err := backend.Exists(ctx, "a.txt")
	assert.ErrorIs(t, err, interfaces.ErrTransport)
}

func TestAzureBlobBackend_RequiresConfiguration(t *testing.T) {
	_, err := NewAzureBlobBackend(AzureBlobConfig{Container: "c"}, testLogger())
	assert.ErrorIs(t, err, interfaces.ErrConfiguration)

	_, err = NewAzureBlobBackend(AzureBlobConfig{AccountName: "acct"}, testLogger())
	assert.ErrorIs(t, err, interfaces.ErrConfiguration)
}
