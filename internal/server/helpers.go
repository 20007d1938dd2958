package server

import (
	"errors"
	"mime/multipart"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// statusForError maps application errors to HTTP status codes.
func statusForError(err error) int {
	switch e := err.(type) {
	case models.FieldErrors:
		return fiber.StatusBadRequest
	case *models.AppError:
		switch e.Code {
		case "VALIDATION_ERROR":
			return fiber.StatusBadRequest
		case "UNAUTHORIZED":
			return fiber.StatusUnauthorized
		case "FORBIDDEN":
			return fiber.StatusForbidden
		case "NOT_FOUND":
			return fiber.StatusNotFound
		case "EMAIL_IN_USE":
			return fiber.StatusConflict
		case "GATEWAY_ERROR":
			return fiber.StatusBadGateway
		}
	}
	return fiber.StatusInternalServerError
}

// respondError writes the standardized error body with the mapped status.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}

// currentIdentity returns the identity set by the auth middleware.
func currentIdentity(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals("identity").(*models.Identity)
	return identity
}

// isMultipart reports whether the request body is a multipart form.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// formFile opens a multipart file field as a workflow upload, or returns nil
// when the field is absent.
func formFile(c *fiber.Ctx, field string) (*workflow.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*workflow.FileUpload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &workflow.FileUpload{Name: header.Filename, Content: f}, nil
}

// formValues returns every value of a repeated multipart field.
func formValues(c *fiber.Ctx, field string) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.Value[field]
}

// splitCSV splits a comma-separated query value, dropping empty items.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
