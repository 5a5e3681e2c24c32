package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content type detection.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// TestE2E_BasicCRUD_Filesystem runs the HTTP lifecycle against a local data directory.
func TestE2E_BasicCRUD_Filesystem(t *testing.T) {
	baseURL, cleanup := startServer(t, ServerConfig{
		Port:           getOpenPort(t),
		Backend:        "filesystem",
		DataPath:       t.TempDir(),
		Bucket:         "images",
		AllowedBuckets: []string{"thumbs"},
		StorageBucket:  "thumbs",
		StorageRoot:    "cache",
	})
	defer cleanup()

	runBasicCRUDTests(t, baseURL)
}

// TestE2E_BasicCRUD_Minio runs the HTTP lifecycle against MinIO.
func TestE2E_BasicCRUD_Minio(t *testing.T) {
	endpoint := getSharedMinio(t)
	createBuckets(t, endpoint, "images", "thumbs")

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:           getOpenPort(t),
		Backend:        "minio",
		Endpoint:       endpoint,
		AccessKey:      minioUser,
		SecretKey:      minioPassword,
		Bucket:         "images",
		AllowedBuckets: []string{"thumbs"},
		StorageBucket:  "thumbs",
		StorageRoot:    "cache",
	})
	defer cleanup()

	runBasicCRUDTests(t, baseURL)
	runPresignTests(t, baseURL)
}

// TestE2E_BasicCRUD_S3 runs the HTTP lifecycle through the AWS SDK backend
// pointed at MinIO.
func TestE2E_BasicCRUD_S3(t *testing.T) {
	endpoint := getSharedMinio(t)
	createBuckets(t, endpoint, "images", "thumbs")

	baseURL, cleanup := startServer(t, ServerConfig{
		Port:           getOpenPort(t),
		Backend:        "aws",
		Endpoint:       endpoint,
		AccessKey:      minioUser,
		SecretKey:      minioPassword,
		Bucket:         "images",
		AllowedBuckets: []string{"thumbs"},
		StorageBucket:  "thumbs",
		StorageRoot:    "s3",
	})
	defer cleanup()

	runBasicCRUDTests(t, baseURL)
	runPresignTests(t, baseURL)
}

func runBasicCRUDTests(t *testing.T, baseURL string) {
	t.Helper()
	client := &http.Client{}

	body := append(append([]byte{}, pngHeader...), []byte("rest of the image")...)

	// PUT stores under the storage bucket and root path
	req, err := http.NewRequest(http.MethodPut, baseURL+"/a//b/photo.png", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("X-Amz-Meta-Owner", "alice")

	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var putResult struct {
		Bucket      string `json:"bucket"`
		Key         string `json:"key"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&putResult))
	_ = resp.Body.Close()

	assert.Equal(t, "thumbs", putResult.Bucket)
	assert.True(t, strings.HasSuffix(putResult.Key, "/a/b/photo.png"), "key %q", putResult.Key)
	assert.NotContains(t, putResult.Key, "//")
	assert.Equal(t, "image/png", putResult.ContentType)
	assert.Equal(t, int64(len(body)), putResult.Size)

	objectPath := "/thumbs/" + putResult.Key

	// resolve maps the allowed bucket prefix
	resp, err = client.Get(baseURL + "/_resolve" + objectPath)
	require.NoError(t, err)
	var resolved struct {
		Bucket string `json:"bucket"`
		Key    string `json:"key"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&resolved))
	_ = resp.Body.Close()
	assert.Equal(t, "thumbs", resolved.Bucket)
	assert.Equal(t, putResult.Key, resolved.Key)

	// GET loads through the resolver
	resp, err = client.Get(baseURL + objectPath)
	require.NoError(t, err)
	got, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, body, got)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "store", resp.Header.Get("X-Tcaws-Source"))

	// unknown first segments fall back to the default bucket
	resp, err = client.Get(baseURL + "/_resolve/unknown/x.png")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&resolved))
	_ = resp.Body.Close()
	assert.Equal(t, "images", resolved.Bucket)
	assert.Equal(t, "unknown/x.png", resolved.Key)

	resp, err = client.Get(baseURL + "/unknown/x.png")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// DELETE removes from the storage bucket
	req, err = http.NewRequest(http.MethodDelete, baseURL+"/a/b/photo.png", http.NoBody)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(baseURL + objectPath)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// deleting again behaves the same on every backend
	req, err = http.NewRequest(http.MethodDelete, baseURL+"/a/b/photo.png", http.NoBody)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func runPresignTests(t *testing.T, baseURL string) {
	t.Helper()
	client := &http.Client{}

	req, err := http.NewRequest(http.MethodPut, baseURL+"/presigned.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	var putResult struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&putResult))
	_ = resp.Body.Close()

	resp, err = client.Get(baseURL + "/_presign/thumbs/" + putResult.Key + "?expires=60")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var presigned struct {
		URL    string `json:"url"`
		Method string `json:"method"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&presigned))
	_ = resp.Body.Close()
	assert.Equal(t, http.MethodGet, presigned.Method)

	// the presigned URL is usable without credentials
	resp, err = client.Get(presigned.URL)
	require.NoError(t, err)
	got, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pngHeader, got)
}

// TestE2E_CLI_Filesystem exercises the object commands without a server.
func TestE2E_CLI_Filesystem(t *testing.T) {
	configPath := createConfigFile(t, ServerConfig{
		Port:           8888,
		Backend:        "filesystem",
		DataPath:       t.TempDir(),
		Bucket:         "images",
		AllowedBuckets: []string{"photos"},
		StorageBucket:  "photos",
	})

	localFile := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(localFile, pngHeader, 0o600))

	out, err := runCLI(t, configPath, "--json", "put", localFile, "a/b.png")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "a/b.png"`)
	assert.Contains(t, out, `"content_type": "image/png"`)

	out, err = runCLI(t, configPath, "-q", "resolve", "photos/a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "photos/a/b.png\n", out)

	out, err = runCLI(t, configPath, "get", "--stdout", "photos/a/b.png")
	require.NoError(t, err)
	assert.Equal(t, string(pngHeader), out)

	_, err = runCLI(t, configPath, "delete", "a/b.png")
	require.NoError(t, err)

	_, err = runCLI(t, configPath, "get", "--stdout", "photos/a/b.png")
	assert.Error(t, err)
}
