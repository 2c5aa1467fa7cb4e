package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicconnect-be/models"
)

func registerBody(name, email string) map[string]string {
	return map[string]string{
		"name":     name,
		"email":    email,
		"password": "s3cret-pass",
	}
}

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodPost, "/auth/register", "", registerBody("Asha", "asha@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Name      string `json:"name"`
		FirstTime bool   `json:"firstTime"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "Asha", resp.Name)
	assert.True(t, resp.FirstTime)

	// Passwords are stored hashed.
	user, err := env.users.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.True(t, user.ComparePassword("s3cret-pass"))

	// Duplicate email.
	w = env.doJSON(http.MethodPost, "/auth/register", "", registerBody("Imposter", "asha@example.com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterUser_Validation(t *testing.T) {
	env := newTestEnv(t)

	body := registerBody("Asha", "asha@example.com")
	body["password"] = "short"
	w := env.doJSON(http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = registerBody("Asha", "not-an-email")
	w = env.doJSON(http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = registerBody("Asha", "asha@example.com")
	body["department"] = "Gas"
	w = env.doJSON(http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterUser_DepartmentAccount(t *testing.T) {
	env := newTestEnv(t)

	body := registerBody("RoadDept", "road@example.com")
	body["department"] = "Road"
	w := env.doJSON(http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	user, err := env.users.FindByEmail(context.Background(), "road@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Road", user.Department)
}

func TestLoginUser(t *testing.T) {
	env := newTestEnv(t)
	w := env.doJSON(http.MethodPost, "/auth/register", "", registerBody("Asha", "asha@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasCookie(w.Result(), "auth_token"))
	var resp struct {
		Email     string `json:"email"`
		FirstTime bool   `json:"firstTime"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "asha@example.com", resp.Email)
	assert.True(t, resp.FirstTime)

	// Wrong password and unknown email read the same.
	w = env.doJSON(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.doJSON(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "Asha", "", nil)

	w := env.doJSON(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		User models.User `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, user.ID, resp.User.ID)

	w = env.doJSON(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMe_CookieAuth(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "Asha", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		User models.User `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogoutUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodGet, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The cookie is cleared, not reissued.
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
}
