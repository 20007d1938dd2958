package server

import (
	"net/http"
	"testing"
	"time"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *testFixture) seedPost(id, title, authorID string, created time.Time, categories ...string) {
	f.docs.Seed("posts", id, gateway.Fields{
		"title":       title,
		"description": "",
		"image":       "",
		"categories":  categories,
		"authorId":    authorID,
		"createdAt":   created,
	})
}

type postListBody struct {
	Posts     []models.Post `json:"posts"`
	Page      int           `json:"page"`
	PageCount int           `json:"pageCount"`
	Total     int           `json:"total"`
}

func TestListPostsEndpoint(t *testing.T) {
	f := newTestFixture(t)
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	f.seedPost("p1", "Budget Vote", "u1", base, "Politics")
	f.seedPost("p2", "Ancient Find", "u1", base.Add(time.Hour), "Science")
	f.seedPost("p3", "Cup Final", "u2", base.Add(2*time.Hour), "Sports")

	t.Run("alphabetical listing with pagination", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/api/posts/?page=1&pageSize=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		require.Len(t, body.Posts, 2)
		assert.Equal(t, "Ancient Find", body.Posts[0].Title)
		assert.Equal(t, "Budget Vote", body.Posts[1].Title)
		assert.Equal(t, 1, body.Page)
		assert.Equal(t, 2, body.PageCount)
		assert.Equal(t, 3, body.Total)
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/api/posts/?page=5&pageSize=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		assert.Empty(t, body.Posts)
		assert.Equal(t, 3, body.Total)
	})

	t.Run("latest returns newest first", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/api/posts/?latest=2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		require.Len(t, body.Posts, 2)
		assert.Equal(t, "p3", body.Posts[0].ID)
		assert.Equal(t, "p2", body.Posts[1].ID)
	})

	t.Run("category filter", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/api/posts/?category=Science", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		require.Len(t, body.Posts, 1)
		assert.Equal(t, "p2", body.Posts[0].ID)
	})

	t.Run("latest without a count falls back to the configured default", func(t *testing.T) {
		// Four posts seeded, LATEST_POST_COUNT is 3 in the test config.
		f.seedPost("p4", "Market Rally", "u2", base.Add(3*time.Hour), "World")

		for _, query := range []string{"latest=true", "latest=0"} {
			resp := f.request(t, http.MethodGet, "/api/posts/?"+query, "", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body postListBody
			decodeBody(t, resp, &body)
			require.Len(t, body.Posts, f.srv.config.LatestPostCount)
			assert.Equal(t, "p4", body.Posts[0].ID)
		}
	})
}

func TestSearchPostsEndpoint(t *testing.T) {
	f := newTestFixture(t)
	now := time.Now().UTC()
	f.seedPost("l1", "Launch Day Arrives", "u1", now, "Tech")
	f.seedPost("l2", "Rocket launch delayed", "u1", now, "Science")
	f.seedPost("e1", "Election Results", "u2", now, "Politics")

	resp := f.request(t, http.MethodGet, "/api/posts/search?q=launch&categories=Science,Sports", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body postListBody
	decodeBody(t, resp, &body)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "l2", body.Posts[0].ID)
}

func TestListCategoriesEndpoint(t *testing.T) {
	f := newTestFixture(t)

	resp := f.request(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Categories []string `json:"categories"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, []string{"World", "Politics", "Tech", "Science", "Culture", "Sports"}, body.Categories)
}

func TestGetPostEndpoint(t *testing.T) {
	f := newTestFixture(t)
	f.seedPost("p1", "Budget Vote", "u1", time.Now().UTC(), "Politics")

	t.Run("found", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/api/posts/p1", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, "Budget Vote", post.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := f.request(t, http.MethodGet, "/api/posts/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreatePostEndpoint(t *testing.T) {
	f := newTestFixture(t)
	token, userID := f.registerUser(t, "author@example.com", "author")

	t.Run("requires token", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/api/posts/", "", fiber.Map{
			"title": "Launch Day", "categories": []string{"Tech"},
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		id := f.createPost(t, token, "Launch Day", []string{"Tech"})

		remote := f.docs.Doc("posts", id)
		require.NotNil(t, remote)
		assert.Equal(t, userID, remote.Fields["authorId"])

		profile := f.docs.Doc("users", userID)
		require.NotNil(t, profile)
		assert.Contains(t, profile.Fields["newsIds"], id)
	})

	t.Run("author comes from the request token, not the last sign-in", func(t *testing.T) {
		// A second registration moves the shared session to the new user.
		// A post created with the first author's token must still be theirs.
		_, latestID := f.registerUser(t, "latest@example.com", "latest")

		id := f.createPost(t, token, "Exclusive Report", []string{"Culture"})

		remote := f.docs.Doc("posts", id)
		require.NotNil(t, remote)
		assert.Equal(t, userID, remote.Fields["authorId"])

		authorProfile := f.docs.Doc("users", userID)
		require.NotNil(t, authorProfile)
		assert.Contains(t, authorProfile.Fields["newsIds"], id)
		latestProfile := f.docs.Doc("users", latestID)
		require.NotNil(t, latestProfile)
		assert.NotContains(t, latestProfile.Fields["newsIds"], id)
	})

	t.Run("validation failure", func(t *testing.T) {
		resp := f.request(t, http.MethodPost, "/api/posts/", token, fiber.Map{
			"title": "", "categories": []string{},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Fields map[string]string `json:"fields"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, "Title is required", body.Fields["title"])
		assert.Equal(t, "Please select at least one category", body.Fields["categories"])
	})
}

func TestUpdatePostEndpoint(t *testing.T) {
	f := newTestFixture(t)
	authorToken, _ := f.registerUser(t, "author@example.com", "author")
	postID := f.createPost(t, authorToken, "Launch Day", []string{"Tech"})

	t.Run("author may edit", func(t *testing.T) {
		resp := f.request(t, http.MethodPut, "/api/posts/"+postID, authorToken, fiber.Map{
			"title":       "Launch Day",
			"description": "Expanded report.",
			"categories":  []string{"Tech", "Science"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, "Expanded report.", post.Description)

		remote := f.docs.Doc("posts", postID)
		require.NotNil(t, remote)
		assert.Equal(t, "Expanded report.", remote.Fields["description"])
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		otherToken, _ := f.registerUser(t, "other@example.com", "other")

		resp := f.request(t, http.MethodPut, "/api/posts/"+postID, otherToken, fiber.Map{
			"title": "Hijacked", "categories": []string{"Tech"},
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		remote := f.docs.Doc("posts", postID)
		require.NotNil(t, remote)
		assert.NotEqual(t, "Hijacked", remote.Fields["title"])
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := f.request(t, http.MethodPut, "/api/posts/missing", authorToken, fiber.Map{
			"title": "X", "categories": []string{"Tech"},
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeletePostEndpoint(t *testing.T) {
	f := newTestFixture(t)
	token, userID := f.registerUser(t, "author@example.com", "author")
	postID := f.createPost(t, token, "Launch Day", []string{"Tech"})

	t.Run("non-author is rejected", func(t *testing.T) {
		otherToken, _ := f.registerUser(t, "other@example.com", "other")
		resp := f.request(t, http.MethodDelete, "/api/posts/"+postID, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.NotNil(t, f.docs.Doc("posts", postID))
	})

	t.Run("author may delete, and newsIds is pruned", func(t *testing.T) {
		resp := f.request(t, http.MethodDelete, "/api/posts/"+postID, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Nil(t, f.docs.Doc("posts", postID))
		profile := f.docs.Doc("users", userID)
		require.NotNil(t, profile)
		assert.NotContains(t, profile.Fields["newsIds"], postID)
	})

	t.Run("deleted id is gone", func(t *testing.T) {
		resp := f.request(t, http.MethodDelete, "/api/posts/"+postID, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
