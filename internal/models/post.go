package models

import (
	"time"

	"newsdesk/internal/gateway"
)

// Post is a single news entry mirrored from the remote post collection.
// The ID is assigned by the document gateway on creation and never changes.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Categories  []string  `json:"categories"`
	AuthorID    string    `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields returns the document payload for a create write. The creation
// timestamp is a gateway sentinel resolved server-side at write time.
func (p Post) Fields() gateway.Fields {
	return gateway.Fields{
		"title":       p.Title,
		"description": p.Description,
		"image":       p.Image,
		"categories":  p.Categories,
		"authorId":    p.AuthorID,
		"createdAt":   gateway.ServerTimestamp(),
	}
}

// HasCategory reports whether the post carries the given category label.
func (p Post) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// PostFromDocument rebuilds a Post from a gateway document, normalizing a
// missing or malformed timestamp to the zero time.
func PostFromDocument(doc gateway.Document) Post {
	p := Post{ID: doc.ID}
	p.Title, _ = doc.Fields["title"].(string)
	p.Description, _ = doc.Fields["description"].(string)
	p.Image, _ = doc.Fields["image"].(string)
	p.AuthorID, _ = doc.Fields["authorId"].(string)
	p.Categories = stringSlice(doc.Fields["categories"])
	if ts, ok := doc.Fields["createdAt"].(time.Time); ok {
		p.CreatedAt = ts
	}
	return p
}

// PostPatch carries the fields of an edit write. Nil pointers (and a nil
// category slice) mean "leave unchanged"; edits never touch authorId or
// createdAt.
type PostPatch struct {
	Title       *string
	Description *string
	Image       *string
	Categories  []string
}

// Fields returns only the set fields, for a partial document update.
func (p PostPatch) Fields() gateway.Fields {
	fields := gateway.Fields{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.Categories != nil {
		fields["categories"] = p.Categories
	}
	return fields
}

// ApplyTo merges the set fields into a cached post in place.
func (p PostPatch) ApplyTo(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Description != nil {
		post.Description = *p.Description
	}
	if p.Image != nil {
		post.Image = *p.Image
	}
	if p.Categories != nil {
		post.Categories = p.Categories
	}
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
