package server

import (
	"newsdesk/internal/models"
	"newsdesk/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register. Accepts JSON or a multipart form
// with an optional "avatar" file.
func (s *Server) Register(c *fiber.Ctx) error {
	form, err := s.parseRegistrationForm(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	identity, err := s.registrar.Register(c.UserContext(), form)
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.session.IssueToken(identity)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  identity,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	identity, err := s.registrar.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.session.IssueToken(identity)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  identity,
	})
}

// Logout handles POST /api/auth/logout. The shared session is cleared only
// when it belongs to the requester, so one user's logout cannot sign out
// another user's session.
func (s *Server) Logout(c *fiber.Ctx) error {
	identity := currentIdentity(c)
	if current := s.auth.Current(); current == nil || (identity != nil && current.ID == identity.ID) {
		s.registrar.SignOut()
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

func (s *Server) parseRegistrationForm(c *fiber.Ctx) (workflow.RegistrationForm, error) {
	if isMultipart(c) {
		avatar, err := formFile(c, "avatar")
		if err != nil {
			return workflow.RegistrationForm{}, err
		}
		return workflow.RegistrationForm{
			Email:      c.FormValue("email"),
			Password:   c.FormValue("password"),
			Nickname:   c.FormValue("nickname"),
			Bio:        c.FormValue("bio"),
			AvatarMode: c.FormValue("avatarMode", workflow.ImageModeFile),
			AvatarLink: c.FormValue("avatarLink"),
			AvatarFile: avatar,
		}, nil
	}

	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Nickname   string `json:"nickname"`
		Bio        string `json:"bio"`
		AvatarMode string `json:"avatarMode"`
		AvatarLink string `json:"avatarLink"`
	}
	if err := c.BodyParser(&req); err != nil {
		return workflow.RegistrationForm{}, err
	}
	mode := req.AvatarMode
	if mode == "" {
		mode = workflow.ImageModeFile
	}
	return workflow.RegistrationForm{
		Email:      req.Email,
		Password:   req.Password,
		Nickname:   req.Nickname,
		Bio:        req.Bio,
		AvatarMode: mode,
		AvatarLink: req.AvatarLink,
	}, nil
}
