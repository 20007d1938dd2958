package server

import (
	"errors"

	"newsdesk/internal/feed"
	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/observability"
	"newsdesk/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// refreshPosts triggers a full fetch of the post collection. A failed fetch
// leaves the previous snapshot available, so list views degrade to stale
// data instead of erroring.
func (s *Server) refreshPosts(c *fiber.Ctx) {
	if err := s.posts.FetchAll(c.UserContext()); err != nil {
		observability.Logger.WarnContext(c.UserContext(), "serving stale post snapshot", "error", err)
	}
}

// ListPosts handles GET /api/posts. Query parameters:
//   - latest[=N]: the N most recent posts, LATEST_POST_COUNT when N is absent
//   - category=<label>: posts carrying the category
//   - page=<n>: page of the alphabetical listing (1-based)
func (s *Server) ListPosts(c *fiber.Ctx) error {
	s.refreshPosts(c)
	snapshot := s.posts.Snapshot()

	if raw := c.Query("latest"); raw != "" {
		n := c.QueryInt("latest", s.config.LatestPostCount)
		if n < 1 {
			n = s.config.LatestPostCount
		}
		return c.JSON(fiber.Map{"posts": feed.Latest(snapshot, n)})
	}

	if category := c.Query("category"); category != "" {
		return c.JSON(fiber.Map{"posts": feed.FilterByCategory(snapshot, category)})
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", s.config.PageSize)
	if pageSize < 1 {
		pageSize = s.config.PageSize
	}
	sorted := feed.SortByTitle(snapshot)
	return c.JSON(fiber.Map{
		"posts":     feed.Paginate(sorted, page, pageSize),
		"page":      page,
		"pageCount": feed.PageCount(len(sorted), pageSize),
		"total":     len(sorted),
	})
}

// SearchPosts handles GET /api/posts/search?q=...&categories=a,b
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	s.refreshPosts(c)

	var categories []string
	if raw := c.Query("categories"); raw != "" {
		categories = splitCSV(raw)
	}

	results := feed.Search(s.posts.Snapshot(), c.Query("q"), categories)
	return c.JSON(fiber.Map{"posts": results})
}

// ListCategories handles GET /api/categories
func (s *Server) ListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": models.Categories()})
}

// GetPost handles GET /api/posts/:id. An unknown id is a normal not-found
// outcome, not a failure.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id := c.Params("id")

	if post, ok := s.posts.Get(id); ok {
		return c.JSON(post)
	}

	doc, err := s.docs.Get(c.UserContext(), "posts", id)
	if errors.Is(err, gateway.ErrNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", id))
	}
	if err != nil {
		return s.respondError(c, models.NewGatewayError("fetching post", err))
	}
	return c.JSON(models.PostFromDocument(*doc))
}

// CreatePost handles POST /api/posts. Accepts JSON or a multipart form with
// an optional "image" file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, err := s.parsePostForm(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postEditor.Submit(c.UserContext(), form, nil, currentIdentity(c))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Only the author may edit.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	existing, err := s.loadOwnPost(c)
	if err != nil {
		return nil // response already written
	}

	form, parseErr := s.parsePostForm(c)
	if parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, submitErr := s.postEditor.Submit(c.UserContext(), form, existing, currentIdentity(c))
	if submitErr != nil {
		return s.respondError(c, submitErr)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete. The
// local snapshot entry is removed only after the gateway acknowledges.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	existing, err := s.loadOwnPost(c)
	if err != nil {
		return nil // response already written
	}

	if err := s.posts.Delete(c.UserContext(), existing.ID); err != nil {
		return s.respondError(c, err)
	}

	// Prune the id from the author's newsIds so the profile stays
	// consistent with the collection. Best-effort: the delete itself has
	// already succeeded.
	if err := s.docs.RemoveFromSet(c.UserContext(), "users", existing.AuthorID, "newsIds", existing.ID); err != nil {
		observability.Logger.WarnContext(c.UserContext(), "failed to prune newsIds",
			"user_id", existing.AuthorID, "post_id", existing.ID, "error", err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// loadOwnPost resolves the :id route parameter to a post owned by the
// requester, writing the error response itself on failure.
func (s *Server) loadOwnPost(c *fiber.Ctx) (*models.Post, error) {
	id := c.Params("id")
	identity := currentIdentity(c)

	post, ok := s.posts.Get(id)
	if !ok {
		doc, err := s.docs.Get(c.UserContext(), "posts", id)
		if errors.Is(err, gateway.ErrNotFound) {
			_ = models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", id))
			return nil, errResponseWritten
		}
		if err != nil {
			_ = s.respondError(c, models.NewGatewayError("fetching post", err))
			return nil, errResponseWritten
		}
		post = models.PostFromDocument(*doc)
	}

	if identity == nil || post.AuthorID != identity.ID {
		_ = models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the author may modify this post"))
		return nil, errResponseWritten
	}

	return &post, nil
}

func (s *Server) parsePostForm(c *fiber.Ctx) (workflow.PostForm, error) {
	if isMultipart(c) {
		image, err := formFile(c, "image")
		if err != nil {
			return workflow.PostForm{}, err
		}
		return workflow.PostForm{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Categories:  formValues(c, "categories"),
			ImageMode:   c.FormValue("imageMode", workflow.ImageModeFile),
			ImageLink:   c.FormValue("imageLink"),
			ImageFile:   image,
		}, nil
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Categories  []string `json:"categories"`
		ImageMode   string   `json:"imageMode"`
		ImageLink   string   `json:"imageLink"`
	}
	if err := c.BodyParser(&req); err != nil {
		return workflow.PostForm{}, err
	}
	mode := req.ImageMode
	if mode == "" {
		mode = workflow.ImageModeFile
	}
	return workflow.PostForm{
		Title:       req.Title,
		Description: req.Description,
		Categories:  req.Categories,
		ImageMode:   mode,
		ImageLink:   req.ImageLink,
	}, nil
}
