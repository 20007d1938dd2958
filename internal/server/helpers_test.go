package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsdesk/internal/config"
	"newsdesk/internal/middleware"
	"newsdesk/internal/session"
	"newsdesk/internal/store"
	"newsdesk/internal/testutil"
	"newsdesk/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	app   *fiber.App
	srv   *Server
	docs  *testutil.FakeDocuments
	files *testutil.FakeFiles
}

// newTestFixture wires a Server over in-memory gateways and registers the
// real routes, without the outer middleware stack.
func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	docs := testutil.NewFakeDocuments()
	files := testutil.NewFakeFiles()
	cfg := &config.Config{
		Port:            "0",
		JWTSecret:       "unit-test-secret-at-least-32-chars!!",
		PageSize:        6,
		LatestPostCount: 3,
	}

	provider := session.NewCredentialProvider(docs, cfg.JWTSecret)
	posts := store.NewPostStore(docs)
	auth := store.NewAuthStore(provider)

	srv := &Server{
		config:        cfg,
		docs:          docs,
		files:         files,
		session:       provider,
		posts:         posts,
		auth:          auth,
		postEditor:    workflow.NewPostEditor(posts, auth, docs, files),
		profileEditor: workflow.NewProfileEditor(docs, files),
		registrar:     workflow.NewRegistrar(provider, docs, files),
	}
	middleware.Init(provider)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testFixture{app: app, srv: srv, docs: docs, files: files}
}

func (f *testFixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// registerUser creates an account through the real endpoint, which also
// signs the identity in, and returns its token and user id.
func (f *testFixture) registerUser(t *testing.T, email, nickname string) (token, userID string) {
	t.Helper()

	resp := f.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": "secret1",
		"nickname": nickname,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	require.NotEmpty(t, body.User.ID)
	return body.Token, body.User.ID
}

// createPost submits a post through the real endpoint and returns its id.
func (f *testFixture) createPost(t *testing.T, token, title string, categories []string) string {
	t.Helper()

	resp := f.request(t, http.MethodPost, "/api/posts", token, fiber.Map{
		"title":      title,
		"categories": categories,
		"imageMode":  "link",
		"imageLink":  "https://cdn.example/img.png",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &post)
	require.NotEmpty(t, post.ID)
	return post.ID
}
