package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"
	"civicconnect-be/models"
	"civicconnect-be/routes"
	"civicconnect-be/store"
	"civicconnect-be/utils"
)

type fakeUploader struct {
	url      string
	err      error
	calls    int
	lastName string
}

func (f *fakeUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	f.calls++
	f.lastName = filename
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	return f.url, nil
}

type testEnv struct {
	router  *gin.Engine
	users   *store.MemoryUserStore
	issues  *store.MemoryIssueStore
	uploads *fakeUploader
}

// newTestEnv wires the handlers against in-memory stores and a fake media
// host. The report route is registered without the redis-backed rate
// limiter so tests need no redis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:   store.NewMemoryUserStore(),
		issues:  store.NewMemoryIssueStore(),
		uploads: &fakeUploader{url: "https://media.example.com/upload/v123/report.mp4"},
	}
	ctrl := controllers.New(env.users, env.issues, env.uploads)

	r := gin.New()
	routes.AuthRoutes(r, ctrl)
	routes.UserIssueRoutes(r, ctrl)
	r.POST("/report-issue", middlewares.AuthMiddleware(), ctrl.ReportIssue)
	r.GET("/thumbnail", ctrl.GetThumbnail)
	env.router = r
	return env
}

// addUser seeds a user and returns it with a signed token. The email is
// derived from the name, so names must be unique within a test.
func (env *testEnv) addUser(t *testing.T, name, department string, loc *models.GeoPoint) (*models.User, string) {
	t.Helper()
	now := time.Now()
	user := &models.User{
		Name:       name,
		Email:      strings.ToLower(name) + "@example.com",
		Department: department,
		Location:   loc,
		FirstTime:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, env.users.Create(context.Background(), user))

	token, err := utils.GenerateToken(user.ID.Hex(), department)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) seedIssue(t *testing.T, creator primitive.ObjectID, category models.IssueCategory, visibleTo []primitive.ObjectID) *models.Issue {
	t.Helper()
	now := time.Now()
	issue := &models.Issue{
		Title:     "Seeded issue",
		Category:  category,
		VideoURL:  "https://media.example.com/upload/v123/seed.mp4",
		Location:  models.GeoPoint{Lat: 12.97, Lng: 77.59},
		CreatedBy: creator,
		VisibleTo: visibleTo,
		Verifications: models.Verifications{
			Real: []primitive.ObjectID{},
			Fake: []primitive.ObjectID{},
		},
		Progress: models.Progress{
			Reported: models.StageRecord{Completed: true, Date: &now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, env.issues.Create(context.Background(), issue))
	return issue
}

func (env *testEnv) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// doMultipart sends a multipart form; videoField names the form file to
// attach, or "" for none.
func (env *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, videoField string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if videoField != "" {
		part, err := writer.CreateFormFile(videoField, "evidence.mp4")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake video bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func hasCookie(resp *http.Response, name string) bool {
	for _, c := range resp.Cookies() {
		if c.Name == name && c.Value != "" {
			return true
		}
	}
	return false
}
