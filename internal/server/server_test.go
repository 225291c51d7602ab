package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"atelier/internal/config"
	"atelier/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Str0ng!Password"

var (
	setupOnce sync.Once
	testApp   *fiber.App
	testSrv   *Server
)

// setupApp builds the server once for the package. Prometheus collectors
// register globally, so a second server instance would panic.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	setupOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		if err != nil {
			panic(err)
		}
		if err := db.AutoMigrate(database.AllModels()...); err != nil {
			panic(err)
		}

		avatarDir, err := os.MkdirTemp("", "atelier-avatars")
		if err != nil {
			panic(err)
		}
		cfg := &config.Config{
			JWTSecret:    "test-secret-key",
			Env:          "test",
			AvatarDir:    avatarDir,
			FeatureFlags: "weekly_ranking",
		}
		srv, err := NewServerWithDeps(cfg, db, nil)
		if err != nil {
			panic(err)
		}

		app := fiber.New()
		srv.SetupMiddleware(app)
		srv.SetupRoutes(app)

		testApp = app
		testSrv = srv
	})
	return testApp
}

func jsonRequest(t *testing.T, method, path string, body any, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, res *http.Response, dest any) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(dest))
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, ""), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, res, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)
	username := fmt.Sprintf("flowuser%d", time.Now().UnixNano()%1e9)
	registerUser(t, app, username)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    username + "@example.com",
		"password": testPassword,
	}, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, res, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, username, body.User.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupApp(t)
	username := fmt.Sprintf("wrongpw%d", time.Now().UnixNano()%1e9)
	registerUser(t, app, username)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    username + "@example.com",
		"password": "Wr0ng!Password",
	}, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestBannedAccountCannotLogin(t *testing.T) {
	app := setupApp(t)
	username := fmt.Sprintf("banned%d", time.Now().UnixNano()%1e9)
	registerUser(t, app, username)

	err := testSrv.db.Exec("UPDATE users SET is_banned = ? WHERE username = ?", true, username).Error
	require.NoError(t, err)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    username + "@example.com",
		"password": testPassword,
	}, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	var body struct {
		Token string `json:"token"`
		Code  string `json:"code"`
		Type  string `json:"type"`
	}
	decodeBody(t, res, &body)
	assert.Empty(t, body.Token, "restricted accounts must never receive a token")
	assert.Equal(t, "ACCOUNT_STATE", body.Code)
	assert.Equal(t, "ACCOUNT_BANNED", body.Type)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app := setupApp(t)

	res, err := app.Test(jsonRequest(t, http.MethodGet, "/api/users/me", nil, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	res, err = app.Test(jsonRequest(t, http.MethodGet, "/api/users/me", nil, "not-a-token"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestProjectLikeToggle(t *testing.T) {
	app := setupApp(t)
	suffix := time.Now().UnixNano() % 1e9
	ownerToken := registerUser(t, app, fmt.Sprintf("owner%d", suffix))
	fanToken := registerUser(t, app, fmt.Sprintf("fan%d", suffix))

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/projects/", map[string]any{
		"title":       "Raku Firing Notes",
		"description": "Photos from the weekend firing",
		"tags":        []string{"ceramics"},
	}, ownerToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	var project struct {
		ID uint `json:"id"`
	}
	decodeBody(t, res, &project)
	require.NotZero(t, project.ID)

	likePath := fmt.Sprintf("/api/projects/%d/like", project.ID)
	res, err = app.Test(jsonRequest(t, http.MethodPost, likePath, nil, fanToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var like struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likesCount"`
	}
	decodeBody(t, res, &like)
	assert.True(t, like.Liked)
	assert.EqualValues(t, 1, like.LikesCount)

	// A repeated like does not inflate the count.
	res, err = app.Test(jsonRequest(t, http.MethodPost, likePath, nil, fanToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	decodeBody(t, res, &like)
	assert.True(t, like.Liked)
	assert.EqualValues(t, 1, like.LikesCount)

	res, err = app.Test(jsonRequest(t, http.MethodDelete, likePath, nil, fanToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	decodeBody(t, res, &like)
	assert.False(t, like.Liked)
	assert.EqualValues(t, 0, like.LikesCount)
}

func TestPrivateProjectHiddenFromAnonymous(t *testing.T) {
	app := setupApp(t)
	suffix := time.Now().UnixNano() % 1e9
	ownerToken := registerUser(t, app, fmt.Sprintf("priv%d", suffix))

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/projects/", map[string]any{
		"title":      "Studio Drafts",
		"visibility": "private",
	}, ownerToken), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	var project struct {
		ID uint `json:"id"`
	}
	decodeBody(t, res, &project)

	path := fmt.Sprintf("/api/projects/%d", project.ID)
	res, err = app.Test(jsonRequest(t, http.MethodGet, path, nil, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode, "hidden content reads as absent")

	res, err = app.Test(jsonRequest(t, http.MethodGet, path, nil, ownerToken), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestRankingEndpointsResponseShape(t *testing.T) {
	app := setupApp(t)

	for _, tc := range []struct {
		path string
		key  string
	}{
		{"/api/ranking/global", "users"},
		{"/api/ranking/weekly", "users"},
		{"/api/ranking/projects", "projects"},
		{"/api/ranking/tags", "tags"},
	} {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, res.StatusCode, tc.path)

		var body map[string]json.RawMessage
		decodeBody(t, res, &body)
		assert.Contains(t, body, tc.key, tc.path)
	}
}

func TestUserProfileHidesEmailFromOtherViewers(t *testing.T) {
	app := setupApp(t)

	suffix := time.Now().UnixNano() % 1e9
	targetName := fmt.Sprintf("shown%d", suffix)
	targetToken := registerUser(t, app, targetName)
	viewerToken := registerUser(t, app, fmt.Sprintf("viewer%d", suffix))

	fetch := func(token string) map[string]json.RawMessage {
		res, err := app.Test(jsonRequest(t, http.MethodGet, "/api/users/"+targetName, nil, token), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, res.StatusCode)
		var body struct {
			User map[string]json.RawMessage `json:"user"`
		}
		decodeBody(t, res, &body)
		return body.User
	}

	assert.NotContains(t, fetch(viewerToken), "email")
	assert.NotContains(t, fetch(""), "email")
	assert.Contains(t, fetch(targetToken), "email", "self view keeps the full profile")
}

func TestLivenessEndpoint(t *testing.T) {
	app := setupApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
