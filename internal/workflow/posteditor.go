package workflow

import (
	"context"
	"errors"
	"strings"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/observability"
	"newsdesk/internal/store"
)

const usersCollection = "users"

// PostForm is the submitted create/edit-post form.
type PostForm struct {
	Title       string
	Description string
	Categories  []string
	ImageMode   string
	ImageLink   string
	ImageFile   *FileUpload
}

// PostEditor validates and submits the create/edit-post form, orchestrating
// the optional file upload before the document write and reconciling the
// result into the post store.
type PostEditor struct {
	posts *store.PostStore
	auth  *store.AuthStore
	docs  gateway.DocumentGateway
	files gateway.FileGateway
}

// NewPostEditor wires the editor to its collaborators.
func NewPostEditor(posts *store.PostStore, auth *store.AuthStore, docs gateway.DocumentGateway, files gateway.FileGateway) *PostEditor {
	return &PostEditor{posts: posts, auth: auth, docs: docs, files: files}
}

// Submit runs the workflow for a new post (existing == nil) or an edit of an
// existing one, on behalf of identity. A nil identity falls back to the
// session store's current identity; callers handling authenticated requests
// must pass the request's own identity so authorship never depends on which
// session was broadcast last. Validation failures return a FieldErrors before
// any gateway call; gateway failures return a single global-scoped error and
// leave the form retryable.
func (w *PostEditor) Submit(ctx context.Context, form PostForm, existing *models.Post, identity *models.Identity) (*models.Post, error) {
	if identity == nil {
		identity = w.auth.Current()
	}

	if errs := w.validate(form, existing, identity); errs.Any() {
		return nil, errs
	}

	image, err := w.resolveImage(ctx, form, existing)
	if err != nil {
		observability.GatewayErrors.WithLabelValues("files", "upload").Inc()
		return nil, models.NewGatewayError("image upload", err)
	}

	if existing != nil {
		return w.submitEdit(ctx, form, existing, image)
	}
	return w.submitCreate(ctx, form, identity, image)
}

func (w *PostEditor) validate(form PostForm, existing *models.Post, identity *models.Identity) models.FieldErrors {
	errs := models.FieldErrors{}

	if existing == nil && identity == nil {
		errs.Set("global", "You must be logged in to create a post.")
	}
	if strings.TrimSpace(form.Title) == "" {
		errs.Set("title", "Title is required")
	}
	if len(form.Categories) == 0 {
		errs.Set("categories", "Please select at least one category")
	}
	if form.ImageMode == ImageModeLink {
		link := strings.TrimSpace(form.ImageLink)
		if link == "" {
			errs.Set("imageLink", "Image URL is required")
		} else if !isValidURL(link) {
			errs.Set("imageLink", "Invalid URL format")
		}
	}

	return errs
}

// resolveImage picks the image URL: a freshly uploaded file wins, then a
// supplied link, then the existing post's image when editing without a new
// file.
func (w *PostEditor) resolveImage(ctx context.Context, form PostForm, existing *models.Post) (string, error) {
	switch {
	case form.ImageMode == ImageModeFile && form.ImageFile != nil:
		return w.files.Upload(ctx, uploadPath("post-images", form.ImageFile.Name), form.ImageFile.Content)
	case form.ImageMode == ImageModeLink:
		return strings.TrimSpace(form.ImageLink), nil
	case existing != nil:
		return existing.Image, nil
	}
	return "", nil
}

func (w *PostEditor) submitCreate(ctx context.Context, form PostForm, identity *models.Identity, image string) (*models.Post, error) {
	post := models.Post{
		Title:       form.Title,
		Description: form.Description,
		Image:       image,
		Categories:  form.Categories,
		AuthorID:    identity.ID,
	}

	id, err := w.posts.Add(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id

	// Record the post against its author. Add-to-set semantics keep this
	// idempotent; a retried submission cannot duplicate the id.
	if err := w.appendNewsID(ctx, identity.ID, id); err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "addToSet").Inc()
		return nil, models.NewGatewayError("updating author profile", err)
	}

	return &post, nil
}

func (w *PostEditor) appendNewsID(ctx context.Context, userID, postID string) error {
	_, err := w.docs.Get(ctx, usersCollection, userID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return w.docs.AddToSet(ctx, usersCollection, userID, "newsIds", postID)
}

func (w *PostEditor) submitEdit(ctx context.Context, form PostForm, existing *models.Post, image string) (*models.Post, error) {
	patch := models.PostPatch{
		Title:       &form.Title,
		Description: &form.Description,
		Image:       &image,
		Categories:  form.Categories,
	}

	if err := w.posts.Update(ctx, existing.ID, patch); err != nil {
		return nil, err
	}

	updated := *existing
	patch.ApplyTo(&updated)
	return &updated, nil
}
