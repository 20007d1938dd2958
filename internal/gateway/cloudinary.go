package gateway

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryFiles implements FileGateway on Cloudinary object storage.
type CloudinaryFiles struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryFiles builds a file gateway from a CLOUDINARY_URL-style
// connection string. folder prefixes every uploaded object.
func NewCloudinaryFiles(url, folder string) (*CloudinaryFiles, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &CloudinaryFiles{cld: cld, folder: folder}, nil
}

// Upload stores the object under path and returns its retrieval URL.
func (g *CloudinaryFiles) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	result, err := g.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: path,
		Folder:   g.folder,
	})
	if err != nil {
		return "", err
	}
	// The SDK reports some API failures in the body instead of err.
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}
