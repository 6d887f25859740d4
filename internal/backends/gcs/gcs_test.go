package gcs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// newFakeGCS serves a canned object listing and media downloads the way
// the JSON API does, so the backend can be exercised without network
// access.
func newFakeGCS(t *testing.T, objects map[string]string) (*httptest.Server, *[]string) {
	t.Helper()

	var prefixes []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			for name, content := range objects {
				if r.URL.Path == "/b/bucket/o/"+name {
					_, _ = w.Write([]byte(content))
					return
				}
			}
			http.NotFound(w, r)
			return
		}

		prefixes = append(prefixes, r.URL.Query().Get("prefix"))
		items := make([]map[string]any, 0, len(objects))
		for name, content := range objects {
			items = append(items, map[string]any{
				"name": name,
				// The JSON API encodes uint64 sizes as strings.
				"size": strconv.Itoa(len(content)),
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, &prefixes
}

func newTestRemoteFS(t *testing.T, endpoint string) *RemoteFS {
	t.Helper()

	fs, err := Factory(context.Background(), domain.BackendAddress{Backend: domain.BackendGS, Root: "bucket"},
		map[string]string{"anonymous": "true", "endpoint": endpoint})
	require.NoError(t, err)
	return fs.(*RemoteFS)
}

// TestRemoteFS_List tests listing with prefix and shallow filtering
func TestRemoteFS_List(t *testing.T) {
	server, prefixes := newFakeGCS(t, map[string]string{
		"data/a.txt":     "alpha",
		"data/sub/b.txt": "beta42",
		"database/x.txt": "db",
	})
	fs := newTestRemoteFS(t, server.URL)

	objects, err := fs.List(context.Background(), "bucket/data", true)

	require.NoError(t, err)
	require.Len(t, objects, 2)
	keys := []string{objects[0].Key, objects[1].Key}
	assert.Contains(t, keys, "bucket/data/a.txt")
	assert.Contains(t, keys, "bucket/data/sub/b.txt")
	assert.Equal(t, []string{"data"}, *prefixes)

	shallow, err := fs.List(context.Background(), "bucket/data", false)
	require.NoError(t, err)
	require.Len(t, shallow, 1)
	assert.Equal(t, "bucket/data/a.txt", shallow[0].Key)
	assert.Equal(t, int64(5), shallow[0].Size)
}

// TestRemoteFS_Fetch tests streaming an object to disk
func TestRemoteFS_Fetch(t *testing.T) {
	server, _ := newFakeGCS(t, map[string]string{"a.txt": "alpha"})
	fs := newTestRemoteFS(t, server.URL)
	localPath := filepath.Join(t.TempDir(), "a.txt")

	err := fs.Fetch(context.Background(), "bucket/a.txt", localPath)

	require.NoError(t, err)
	data, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}

// TestRemoteFS_Fetch_Missing tests download failure propagation
func TestRemoteFS_Fetch_Missing(t *testing.T) {
	server, _ := newFakeGCS(t, nil)
	fs := newTestRemoteFS(t, server.URL)

	err := fs.Fetch(context.Background(), "bucket/missing.txt", filepath.Join(t.TempDir(), "m.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get object bucket/missing.txt")
}

// TestFactory_BadCredentialsFile tests factory failure on unreadable keys
func TestFactory_BadCredentialsFile(t *testing.T) {
	_, err := Factory(context.Background(), domain.BackendAddress{Backend: domain.BackendGS, Root: "bucket"},
		map[string]string{"credentials_file": filepath.Join(t.TempDir(), "absent.json")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create storage service")
}

// TestFactory_AccessToken tests that a pre-issued token is accepted
func TestFactory_AccessToken(t *testing.T) {
	fs, err := Factory(context.Background(), domain.BackendAddress{Backend: domain.BackendGS, Root: "bucket"},
		map[string]string{"access_token": "ya29.token"})

	require.NoError(t, err)
	require.NotNil(t, fs)
	assert.NoError(t, fs.Close())
}
