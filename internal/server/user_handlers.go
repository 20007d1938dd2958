package server

import (
	"errors"

	"newsdesk/internal/cache"
	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/users/:id, returning the profile document and
// the posts authored by that user. An unknown id is a normal not-found
// outcome.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()

	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		doc, err := s.docs.Get(ctx, "users", id)
		if err != nil {
			return err
		}
		user = models.UserFromDocument(*doc)
		return nil
	})
	if errors.Is(err, gateway.ErrNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", id))
	}
	if err != nil {
		return s.respondError(c, models.NewGatewayError("fetching profile", err))
	}

	docs, err := s.docs.Query(ctx, "posts", "authorId", id)
	if err != nil {
		return s.respondError(c, models.NewGatewayError("fetching authored posts", err))
	}
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, models.PostFromDocument(doc))
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"posts": posts,
	})
}

// UpdateMyProfile handles PUT /api/users/me. Accepts JSON or a multipart
// form with an optional "avatar" file.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	identity := currentIdentity(c)
	ctx := c.UserContext()

	doc, err := s.docs.Get(ctx, "users", identity.ID)
	if errors.Is(err, gateway.ErrNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", identity.ID))
	}
	if err != nil {
		return s.respondError(c, models.NewGatewayError("fetching profile", err))
	}
	current := models.UserFromDocument(*doc)

	form, parseErr := s.parseProfileForm(c)
	if parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.profileEditor.Submit(ctx, identity.ID, current, form)
	if err != nil {
		return s.respondError(c, err)
	}

	cache.InvalidateUser(ctx, identity.ID)

	return c.JSON(updated)
}

func (s *Server) parseProfileForm(c *fiber.Ctx) (workflow.ProfileForm, error) {
	if isMultipart(c) {
		avatar, err := formFile(c, "avatar")
		if err != nil {
			return workflow.ProfileForm{}, err
		}
		return workflow.ProfileForm{
			Nickname:   c.FormValue("nickname"),
			Bio:        c.FormValue("bio"),
			AvatarMode: c.FormValue("avatarMode", workflow.ImageModeFile),
			AvatarLink: c.FormValue("avatarLink"),
			AvatarFile: avatar,
		}, nil
	}

	var req struct {
		Nickname   string `json:"nickname"`
		Bio        string `json:"bio"`
		AvatarMode string `json:"avatarMode"`
		AvatarLink string `json:"avatarLink"`
	}
	if err := c.BodyParser(&req); err != nil {
		return workflow.ProfileForm{}, err
	}
	mode := req.AvatarMode
	if mode == "" {
		mode = workflow.ImageModeFile
	}
	return workflow.ProfileForm{
		Nickname:   req.Nickname,
		Bio:        req.Bio,
		AvatarMode: mode,
		AvatarLink: req.AvatarLink,
	}, nil
}
