// Package feed derives the portal's list views from a post snapshot. Every
// function is pure: inputs are never mutated and equal inputs yield equal
// outputs, so views can be recomputed whenever the snapshot or a filter
// changes.
package feed

import (
	"sort"
	"strings"

	"newsdesk/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Latest returns the n most recent posts, newest first. Posts with no
// timestamp sort as the oldest; ties keep their snapshot order.
func Latest(posts []models.Post, n int) []models.Post {
	sorted := clone(posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}

// SortByTitle returns the posts ordered by locale-aware title comparison.
func SortByTitle(posts []models.Post) []models.Post {
	sorted := clone(posts)
	c := collate.New(language.English)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Title, sorted[j].Title) < 0
	})
	return sorted
}

// Paginate windows posts into fixed-size pages. Pages are 1-based; a page
// beyond the end is empty.
func Paginate(posts []models.Post, page, pageSize int) []models.Post {
	if page < 1 || pageSize < 1 {
		return []models.Post{}
	}
	start := (page - 1) * pageSize
	if start >= len(posts) {
		return []models.Post{}
	}
	end := start + pageSize
	if end > len(posts) {
		end = len(posts)
	}
	return clone(posts[start:end])
}

// PageCount returns the number of pages needed for total posts.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// FilterByCategory returns the posts carrying the given category label.
func FilterByCategory(posts []models.Post, category string) []models.Post {
	out := []models.Post{}
	for _, p := range posts {
		if p.HasCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// Search returns the posts whose title contains the query case-insensitively
// and whose category set intersects the selected categories. An empty
// category selection matches every post; an empty query matches every title.
func Search(posts []models.Post, query string, categories []string) []models.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Post{}
	for _, p := range posts {
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		if len(categories) > 0 && !intersects(p.Categories, categories) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func intersects(a, b []string) bool {
	for _, label := range b {
		for _, c := range a {
			if c == label {
				return true
			}
		}
	}
	return false
}

func clone(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}
