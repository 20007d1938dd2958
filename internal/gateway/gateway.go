// Package gateway defines the call contracts this application requires from
// its external collaborators (document database, object storage, session
// provider) and their managed-service implementations.
package gateway

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no document has the given id. A missing
// document is a normal outcome, not a gateway failure.
var ErrNotFound = errors.New("document not found")

// Fields is a partial or full document payload keyed by field name.
type Fields map[string]any

// Document is a stored record together with its gateway-assigned id.
type Document struct {
	ID     string
	Fields Fields
}

// serverTimestamp is a write-time sentinel. Gateways replace it with their own
// clock when the write is applied, so document timestamps never come from the
// caller's clock.
type serverTimestamp struct{}

// ServerTimestamp returns the sentinel value for a gateway-assigned timestamp.
func ServerTimestamp() any {
	return serverTimestamp{}
}

// IsServerTimestamp reports whether v is the write-time timestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// DocumentGateway is collection-scoped CRUD over a remote document store.
type DocumentGateway interface {
	// Create stores a new document and returns its assigned id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Set stores a document under a caller-chosen id, overwriting any
	// previous content.
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([]Document, error)
	// Update merges the given fields into an existing document.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Query returns the documents whose field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
	// AddToSet appends value to an array field unless already present.
	AddToSet(ctx context.Context, collection, id, field string, value any) error
	// RemoveFromSet removes every occurrence of value from an array field.
	RemoveFromSet(ctx context.Context, collection, id, field string, value any) error
}

// FileGateway is binary object storage that yields a stable retrieval URL
// once the upload completes.
type FileGateway interface {
	Upload(ctx context.Context, path string, r io.Reader) (string, error)
}
