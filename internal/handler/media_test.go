package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLibraryFile drops content into the library root under name.
func writeLibraryFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestListMediaEmpty(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/media")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var media []map[string]any
	decodeResponse(t, resp, &media)
	assert.NotNil(t, media)
	assert.Empty(t, media)
}

func TestListMediaLimitOffset(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	for _, url := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		createMedia(t, ts, cid, url)
	}

	resp, err := http.Get(ts.URL + "/media?limit=2&offset=1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var media []struct {
		URL string `json:"url"`
	}
	decodeResponse(t, resp, &media)
	require.Len(t, media, 2)
	assert.Equal(t, "b.mp4", media[0].URL)
}

func TestCreateMediaDuplicateURL(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	createMedia(t, ts, cid, "a.mp4")

	resp := doJSON(t, "POST", ts.URL+"/media", map[string]any{
		"url":        "a.mp4",
		"checksum":   "other",
		"collection": cid,
	})

	env := requireErrorCode(t, resp, http.StatusBadRequest, "UNIQUE_CONSTRAINT_ERROR")
	assert.Equal(t, "[url] field set must be unique", env.Error.Message)
}

func TestCreateMediaMissingChecksum(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")

	resp := doJSON(t, "POST", ts.URL+"/media", map[string]any{
		"url":        "a.mp4",
		"collection": cid,
	})

	env := requireErrorCode(t, resp, http.StatusBadRequest, "NOT_NULL_VIOLATION")
	assert.Equal(t, "Field 'checksum' cannot be null", env.Error.Message)
}

func TestFindMediaStreamsFile(t *testing.T) {
	ts, root := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "song.mp4")
	writeLibraryFile(t, root, "song.mp4", "file contents")

	resp, err := http.Get(ts.URL + "/media/" + itoa(id))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(data))
	assert.Equal(t, `inline; filename="song.mp4"`, resp.Header.Get("Content-Disposition"))
}

func TestDownloadMediaUsesAttachmentDisposition(t *testing.T) {
	ts, root := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "song.mp4")
	writeLibraryFile(t, root, "song.mp4", "x")

	resp, err := http.Get(ts.URL + "/media/" + itoa(id) + "/download")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, `attachment; filename="song.mp4"`, resp.Header.Get("Content-Disposition"))
}

func TestServeMediaFilenamePrefersMetadataName(t *testing.T) {
	ts, root := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "song.mp4")
	writeLibraryFile(t, root, "song.mp4", "x")

	resp := doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/metadata", map[string]any{
		"name": "My Song",
	})
	requireOK(t, resp, http.StatusOK)

	resp, err := http.Get(ts.URL + "/media/" + itoa(id) + "/view")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, `inline; filename="My Song"`, resp.Header.Get("Content-Disposition"))
}

func TestFindMediaMissingFileIs404(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "gone.mp4")

	resp, err := http.Get(ts.URL + "/media/" + itoa(id))
	require.NoError(t, err)

	requireErrorCode(t, resp, http.StatusNotFound, "MEDIA_OBJECT_NOT_FOUND")
}

func TestFindMediaInvalidID(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/media/abc")
	require.NoError(t, err)

	requireErrorCode(t, resp, http.StatusBadRequest, "INVALID_MEDIA_OBJECT_ID")
}

func TestFindMediaNotFound(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/media/999")
	require.NoError(t, err)

	requireErrorCode(t, resp, http.StatusNotFound, "MEDIA_OBJECT_NOT_FOUND")
}

func TestFindMediaInfoScrubsURL(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "secret/location.mp4")

	resp, err := http.Get(ts.URL + "/media/" + itoa(id) + "/info")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	decodeResponse(t, resp, &raw)
	assert.NotContains(t, raw, "url")
	assert.Equal(t, "deadbeef", raw["checksum"])
}

func TestDeleteMedia(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "a.mp4")

	resp := doJSON(t, "DELETE", ts.URL+"/media/"+itoa(id), nil)
	requireOK(t, resp, http.StatusOK)

	resp, err := http.Get(ts.URL + "/media/" + itoa(id) + "/info")
	require.NoError(t, err)
	requireErrorCode(t, resp, http.StatusNotFound, "MEDIA_OBJECT_NOT_FOUND")
}

func fetchMediaMetadata(t *testing.T, ts *httptest.Server, id int64) map[string]string {
	t.Helper()
	resp, err := http.Get(ts.URL + "/media/" + itoa(id) + "/metadata")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var meta map[string]string
	decodeResponse(t, resp, &meta)
	return meta
}

func TestMediaMetadataLifecycle(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "a.mp4")

	assert.Empty(t, fetchMediaMetadata(t, ts, id))

	resp := doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/metadata", map[string]any{
		"artist": "Miles Davis",
		"year":   1959,
	})
	requireOK(t, resp, http.StatusOK)

	assert.Equal(t, map[string]string{"artist": "Miles Davis", "year": "1959"},
		fetchMediaMetadata(t, ts, id))

	// Null deletes, other keys upsert.
	resp = doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/metadata", map[string]any{
		"artist": nil,
		"label":  "Columbia",
	})
	requireOK(t, resp, http.StatusOK)

	assert.Equal(t, map[string]string{"year": "1959", "label": "Columbia"},
		fetchMediaMetadata(t, ts, id))

	// PUT replaces everything; null keys are skipped.
	resp = doJSON(t, "PUT", ts.URL+"/media/"+itoa(id)+"/metadata", map[string]any{
		"title": "Kind of Blue",
		"skip":  nil,
	})
	requireOK(t, resp, http.StatusOK)

	assert.Equal(t, map[string]string{"title": "Kind of Blue"},
		fetchMediaMetadata(t, ts, id))
}

func TestUpdateMediaMetadataRejectsNonScalar(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "a.mp4")

	resp := doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/metadata", map[string]any{
		"bad": map[string]any{"nested": true},
	})

	requireErrorCode(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestMediaMetadataForMissingMedia(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/media/999/metadata")
	require.NoError(t, err)

	requireErrorCode(t, resp, http.StatusNotFound, "MEDIA_OBJECT_NOT_FOUND")
}

func TestCreateAndListMediaArtwork(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "a.mp4")

	resp := doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/artwork", map[string]any{
		"format": "png",
		"url":    "art/cover.png",
		"tag":    "cover",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/media/" + itoa(id) + "/artwork")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var artwork []map[string]any
	decodeResponse(t, resp, &artwork)
	require.Len(t, artwork, 1)
	assert.Equal(t, "png", artwork[0]["format"])
	assert.Equal(t, "cover", artwork[0]["tag"])
	assert.NotContains(t, artwork[0], "url")
}

func TestCreateMediaArtworkDuplicate(t *testing.T) {
	ts, _ := testServer(t)
	cid := createCollection(t, ts, "library")
	id := createMedia(t, ts, cid, "a.mp4")

	body := map[string]any{"format": "png", "url": "art/cover.png"}
	resp := doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/artwork", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, "POST", ts.URL+"/media/"+itoa(id)+"/artwork", body)

	env := requireErrorCode(t, resp, http.StatusBadRequest, "UNIQUE_CONSTRAINT_ERROR")
	assert.Equal(t, "[mediaId, format, url] field set must be unique", env.Error.Message)
}
