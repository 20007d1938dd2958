// Package workflow implements the portal's validate-then-submit user actions:
// post create/edit, profile update, and registration/sign-in. Each workflow
// validates locally first (no gateway traffic on validation failure), then
// runs its gateway calls strictly in sequence, then reconciles the outcome
// into local state.
package workflow

import (
	"fmt"
	"io"
	"time"

	"newsdesk/internal/validation"

	"github.com/google/uuid"
)

// Image source modes for the editor forms.
const (
	ImageModeFile = "file"
	ImageModeLink = "link"
)

// FileUpload is a file chosen in an editor form.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// uploadPath qualifies an uploaded object name for uniqueness with a
// time-based prefix, keeping the original filename visible.
func uploadPath(prefix, filename string) string {
	return fmt.Sprintf("%s/%d-%s-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8], filename)
}

func isValidURL(s string) bool {
	return validation.ValidateURL(s) == nil
}
