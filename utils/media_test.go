package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t,
		"https://res.example.com/upload/so_1/v17/report.jpg",
		ThumbnailURL("https://res.example.com/upload/v17/report.mp4"))

	assert.Equal(t,
		"https://res.example.com/upload/so_1/v17/report.jpg",
		ThumbnailURL("https://res.example.com/upload/v17/report.webm"))

	// URLs without a video extension only get the frame segment.
	assert.Equal(t,
		"https://res.example.com/upload/so_1/v17/report",
		ThumbnailURL("https://res.example.com/upload/v17/report"))
}

func TestHTTPUploader_Upload(t *testing.T) {
	var gotFolder, gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFolder = r.FormValue("folder")
		if _, header, err := r.FormFile("file"); err == nil {
			gotFilename = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://res.example.com/upload/v17/report.mp4"}`))
	}))
	defer server.Close()

	t.Setenv("MEDIA_UPLOAD_URL", server.URL)
	uploader, err := NewHTTPUploader()
	require.NoError(t, err)

	url, err := uploader.Upload(context.Background(), strings.NewReader("fake video bytes"), "report.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/upload/v17/report.mp4", url)
	assert.Equal(t, "report-videos", gotFolder)
	assert.Equal(t, "report.mp4", gotFilename)
}

func TestHTTPUploader_HostErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage full", http.StatusInternalServerError)
	}))
	defer server.Close()

	t.Setenv("MEDIA_UPLOAD_URL", server.URL)
	uploader, err := NewHTTPUploader()
	require.NoError(t, err)

	_, err = uploader.Upload(context.Background(), strings.NewReader("bytes"), "report.mp4")
	assert.Error(t, err)
}

func TestHTTPUploader_MissingSecureURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	t.Setenv("MEDIA_UPLOAD_URL", server.URL)
	uploader, err := NewHTTPUploader()
	require.NoError(t, err)

	_, err = uploader.Upload(context.Background(), strings.NewReader("bytes"), "report.mp4")
	assert.Error(t, err)
}

func TestNewHTTPUploader_Unconfigured(t *testing.T) {
	t.Setenv("MEDIA_UPLOAD_URL", "")

	_, err := NewHTTPUploader()
	assert.Error(t, err)
}
