package workflow

import (
	"context"
	"strings"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/observability"
	"newsdesk/internal/validation"
)

// ProfileForm is the submitted profile-update form.
type ProfileForm struct {
	Nickname   string
	Bio        string
	AvatarMode string
	AvatarLink string
	AvatarFile *FileUpload
}

// ProfileEditor validates and submits the profile-update form. It owns no
// shared store: the merged user is returned for the caller to reflect into
// its own displayed state.
type ProfileEditor struct {
	docs  gateway.DocumentGateway
	files gateway.FileGateway
}

// NewProfileEditor wires the editor to its collaborators.
func NewProfileEditor(docs gateway.DocumentGateway, files gateway.FileGateway) *ProfileEditor {
	return &ProfileEditor{docs: docs, files: files}
}

// Submit updates the user document for userID from the form. current is the
// displayed profile, used to retain the avatar when no new one is supplied.
func (w *ProfileEditor) Submit(ctx context.Context, userID string, current models.User, form ProfileForm) (models.User, error) {
	if errs := w.validate(form); errs.Any() {
		return models.User{}, errs
	}

	avatar, err := w.resolveAvatar(ctx, userID, form, current.Avatar)
	if err != nil {
		observability.GatewayErrors.WithLabelValues("files", "upload").Inc()
		return models.User{}, models.NewGatewayError("avatar upload", err)
	}

	if err := w.docs.Update(ctx, usersCollection, userID, gateway.Fields{
		"nickname": form.Nickname,
		"bio":      form.Bio,
		"avatar":   avatar,
	}); err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "update").Inc()
		return models.User{}, models.NewGatewayError("updating profile", err)
	}

	updated := current
	updated.ID = userID
	updated.Nickname = form.Nickname
	updated.Bio = form.Bio
	updated.Avatar = avatar
	return updated, nil
}

func (w *ProfileEditor) validate(form ProfileForm) models.FieldErrors {
	errs := models.FieldErrors{}

	if err := validation.ValidateNickname(form.Nickname); err != nil {
		errs.Set("nickname", err.Error())
	}
	if form.AvatarMode == ImageModeLink {
		link := strings.TrimSpace(form.AvatarLink)
		if link == "" {
			errs.Set("avatarLink", "Avatar link is required")
		} else if !isValidURL(link) {
			errs.Set("avatarLink", "Invalid URL format")
		}
	}

	return errs
}

func (w *ProfileEditor) resolveAvatar(ctx context.Context, userID string, form ProfileForm, current string) (string, error) {
	switch {
	case form.AvatarMode == ImageModeFile && form.AvatarFile != nil:
		return w.files.Upload(ctx, uploadPath("avatars", userID+"-"+form.AvatarFile.Name), form.AvatarFile.Content)
	case form.AvatarMode == ImageModeLink && strings.TrimSpace(form.AvatarLink) != "":
		return strings.TrimSpace(form.AvatarLink), nil
	}
	return current, nil
}
