package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// Uploader stores raw evidence bytes with the media host and returns a
// durable URL. Upload failures must fail the whole request; callers never
// persist a record pointing at a URL that was not returned.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// HTTPUploader streams files to the configured media host. The host answers
// with a Cloudinary-style JSON body carrying the durable secure_url.
type HTTPUploader struct {
	uploadURL string
	client    *http.Client
}

// NewHTTPUploader reads MEDIA_UPLOAD_URL and builds an uploader with a
// bounded request timeout.
func NewHTTPUploader() (*HTTPUploader, error) {
	uploadURL := os.Getenv("MEDIA_UPLOAD_URL")
	if uploadURL == "" {
		return nil, fmt.Errorf("MEDIA_UPLOAD_URL environment variable is not set")
	}
	return &HTTPUploader{
		uploadURL: uploadURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (u *HTTPUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read upload payload: %w", err)
	}
	if err := writer.WriteField("folder", "report-videos"); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("media upload failed with status %d", resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("media host returned no secure_url")
	}
	return result.SecureURL, nil
}

var videoExtRe = regexp.MustCompile(`\.(mp4|webm|mov)$`)

// ThumbnailURL rewrites a stored video URL into its still-frame thumbnail:
// the frame at one second, forced to JPEG.
func ThumbnailURL(videoURL string) string {
	thumb := strings.Replace(videoURL, "/upload/", "/upload/so_1/", 1)
	return videoExtRe.ReplaceAllString(thumb, ".jpg")
}
