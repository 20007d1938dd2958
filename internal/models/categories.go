package models

// postCategories is the fixed set of category labels offered by the portal.
// Display order matches this order.
var postCategories = []string{
	"World",
	"Politics",
	"Tech",
	"Science",
	"Culture",
	"Sports",
}

// Categories returns a copy of the category label set.
func Categories() []string {
	out := make([]string, len(postCategories))
	copy(out, postCategories)
	return out
}

// IsKnownCategory reports whether the label is one of the portal's categories.
func IsKnownCategory(label string) bool {
	for _, c := range postCategories {
		if c == label {
			return true
		}
	}
	return false
}

// ToggleCategory adds the label to the set if absent, removes it if present.
// Duplicates are impossible under this operation; insertion order is kept.
func ToggleCategory(set []string, label string) []string {
	for i, c := range set {
		if c == label {
			return append(append([]string{}, set[:i]...), set[i+1:]...)
		}
	}
	return append(append([]string{}, set...), label)
}
