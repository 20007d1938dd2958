package workflow

import (
	"context"
	"errors"
	"strings"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/observability"
	"newsdesk/internal/session"
	"newsdesk/internal/validation"
)

// RegistrationForm is the submitted account-creation form.
type RegistrationForm struct {
	Email      string
	Password   string
	Nickname   string
	Bio        string
	AvatarMode string
	AvatarLink string
	AvatarFile *FileUpload
}

// Registrar handles account creation and sign-in against the session
// provider, creating the profile document alongside the credential.
type Registrar struct {
	provider session.Provider
	docs     gateway.DocumentGateway
	files    gateway.FileGateway
}

// NewRegistrar wires the registrar to its collaborators.
func NewRegistrar(provider session.Provider, docs gateway.DocumentGateway, files gateway.FileGateway) *Registrar {
	return &Registrar{provider: provider, docs: docs, files: files}
}

// Register creates the credential, uploads the avatar if one was chosen, and
// writes the profile document keyed by the new identity's subject value.
func (w *Registrar) Register(ctx context.Context, form RegistrationForm) (*models.Identity, error) {
	if errs := w.validate(form); errs.Any() {
		return nil, errs
	}

	identity, err := w.provider.Register(ctx, form.Email, form.Password)
	if errors.Is(err, session.ErrEmailInUse) {
		return nil, &models.AppError{Code: "EMAIL_IN_USE", Message: "This email is already in use."}
	}
	if err != nil {
		observability.GatewayErrors.WithLabelValues("session", "register").Inc()
		return nil, models.NewGatewayError("account creation", err)
	}

	avatar, err := w.resolveAvatar(ctx, form)
	if err != nil {
		observability.GatewayErrors.WithLabelValues("files", "upload").Inc()
		return nil, models.NewGatewayError("avatar upload", err)
	}

	user := models.User{
		ID:       identity.ID,
		Email:    form.Email,
		Nickname: form.Nickname,
		Bio:      form.Bio,
		Avatar:   avatar,
		NewsIDs:  []string{},
	}
	if err := w.docs.Set(ctx, usersCollection, identity.ID, user.Fields()); err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "set").Inc()
		return nil, models.NewGatewayError("creating profile", err)
	}

	return identity, nil
}

// SignIn authenticates an existing account.
func (w *Registrar) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	errs := models.FieldErrors{}
	if err := validation.ValidateEmail(email); err != nil {
		errs.Set("email", err.Error())
	}
	if password == "" {
		errs.Set("password", "Password is required")
	}
	if errs.Any() {
		return nil, errs
	}

	identity, err := w.provider.SignIn(ctx, email, password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		return nil, models.NewUnauthorizedError("Incorrect email or password.")
	}
	if err != nil {
		observability.GatewayErrors.WithLabelValues("session", "signIn").Inc()
		return nil, models.NewGatewayError("sign-in", err)
	}
	return identity, nil
}

// SignOut ends the current session.
func (w *Registrar) SignOut() {
	w.provider.SignOut()
}

func (w *Registrar) validate(form RegistrationForm) models.FieldErrors {
	errs := models.FieldErrors{}

	if err := validation.ValidateEmail(form.Email); err != nil {
		errs.Set("email", err.Error())
	}
	if err := validation.ValidatePassword(form.Password); err != nil {
		errs.Set("password", err.Error())
	}
	if err := validation.ValidateNickname(form.Nickname); err != nil {
		errs.Set("nickname", err.Error())
	}
	// An avatar link is optional at registration; validate only when given.
	if form.AvatarMode == ImageModeLink {
		if link := strings.TrimSpace(form.AvatarLink); link != "" && !isValidURL(link) {
			errs.Set("avatarLink", "Please enter a valid URL")
		}
	}

	return errs
}

func (w *Registrar) resolveAvatar(ctx context.Context, form RegistrationForm) (string, error) {
	switch {
	case form.AvatarMode == ImageModeFile && form.AvatarFile != nil:
		return w.files.Upload(ctx, uploadPath("avatars", form.AvatarFile.Name), form.AvatarFile.Content)
	case form.AvatarMode == ImageModeLink && strings.TrimSpace(form.AvatarLink) != "":
		return strings.TrimSpace(form.AvatarLink), nil
	}
	return "", nil
}
