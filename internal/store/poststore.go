// Package store holds the process-wide in-memory mirrors of remote state:
// the post collection and the current session identity.
package store

import (
	"context"
	"sync"
	"time"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"
	"newsdesk/internal/observability"
)

const postsCollection = "posts"

// PostStore is the single in-memory mirror of the remote post collection.
// All mutation traffic funnels through it so every view observes the same
// snapshot. Mutations touch the local mirror only after the gateway
// acknowledges the write; a rejected write leaves the mirror untouched.
//
// Operations are not serialized against each other: if two mutations on the
// same id are in flight, the last acknowledgment to arrive wins.
type PostStore struct {
	docs gateway.DocumentGateway

	mu    sync.RWMutex
	posts []models.Post
}

// NewPostStore creates an empty store over the given document gateway.
func NewPostStore(docs gateway.DocumentGateway) *PostStore {
	return &PostStore{docs: docs}
}

// FetchAll replaces the entire snapshot with the remote collection. On
// failure the previous snapshot stays available and the error is returned;
// callers rendering a feed may treat stale-but-available as success.
func (s *PostStore) FetchAll(ctx context.Context) error {
	docs, err := s.docs.List(ctx, postsCollection)
	if err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "list").Inc()
		observability.Logger.ErrorContext(ctx, "failed to fetch posts", "error", err)
		return models.NewGatewayError("fetching posts", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, models.PostFromDocument(doc))
	}

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return nil
}

// Add writes a new post through the gateway and, once acknowledged, prepends
// it to the snapshot. Returns the gateway-assigned id.
func (s *PostStore) Add(ctx context.Context, post models.Post) (string, error) {
	id, err := s.docs.Create(ctx, postsCollection, post.Fields())
	if err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "create").Inc()
		observability.Logger.ErrorContext(ctx, "failed to add post", "error", err)
		observability.StoreMutations.WithLabelValues("add", "rejected").Inc()
		return "", models.NewGatewayError("creating post", err)
	}

	post.ID = id
	// The gateway assigns the durable timestamp; mirror an approximation
	// locally so the new post sorts as newest until the next full fetch.
	post.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.posts = append([]models.Post{post}, s.posts...)
	s.mu.Unlock()

	observability.StoreMutations.WithLabelValues("add", "applied").Inc()
	return id, nil
}

// Update writes the patch through the gateway for the given id and, once
// acknowledged, merges the same fields into the matching local entry in
// place. Position in the snapshot is preserved.
func (s *PostStore) Update(ctx context.Context, id string, patch models.PostPatch) error {
	if err := s.docs.Update(ctx, postsCollection, id, patch.Fields()); err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "update").Inc()
		observability.Logger.ErrorContext(ctx, "failed to update post", "post_id", id, "error", err)
		observability.StoreMutations.WithLabelValues("update", "rejected").Inc()
		return models.NewGatewayError("updating post", err)
	}

	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			patch.ApplyTo(&s.posts[i])
			break
		}
	}
	s.mu.Unlock()

	observability.StoreMutations.WithLabelValues("update", "applied").Inc()
	return nil
}

// Delete removes the remote document, then the matching local entry. If the
// gateway rejects the delete the entry stays in the snapshot: a delete that
// did not durably succeed is never reflected locally.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, postsCollection, id); err != nil {
		observability.GatewayErrors.WithLabelValues("documents", "delete").Inc()
		observability.Logger.ErrorContext(ctx, "failed to delete post", "post_id", id, "error", err)
		observability.StoreMutations.WithLabelValues("delete", "rejected").Inc()
		return models.NewGatewayError("deleting post", err)
	}

	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	observability.StoreMutations.WithLabelValues("delete", "applied").Inc()
	return nil
}

// Snapshot returns a copy of the current mirror for derivations.
func (s *PostStore) Snapshot() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Get returns the cached post with the given id, if present.
func (s *PostStore) Get(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Len returns the number of cached posts.
func (s *PostStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
