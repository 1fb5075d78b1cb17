package services

import (
	"sort"
	"strings"

	"recipebox/internal/model"
)

// SortOption orders a recipe list.
type SortOption string

const (
	SortDate   SortOption = "date"
	SortRating SortOption = "rating"
)

// ParseSortOption maps a query value to a SortOption, defaulting to date.
func ParseSortOption(s string) SortOption {
	if SortOption(strings.ToLower(strings.TrimSpace(s))) == SortRating {
		return SortRating
	}
	return SortDate
}

// FilterAndSort narrows recipes by a free-text query and a set of tags and
// returns them in the requested order. The query matches any title or any
// ingredient name in every language, case-insensitively. A recipe must carry
// every tag in tags. The input slice is not modified.
func FilterAndSort(recipes []model.Recipe, query string, tags []string, order SortOption) []model.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if q != "" && !matchesQuery(r, q) {
			continue
		}
		if !hasAllTags(r, tags) {
			continue
		}
		out = append(out, r)
	}

	switch order {
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			ri, rj := ratingOf(out[i]), ratingOf(out[j])
			if ri != rj {
				return ri > rj
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

func matchesQuery(r model.Recipe, q string) bool {
	for _, lang := range model.Languages {
		if strings.Contains(strings.ToLower(r.Title(lang)), q) {
			return true
		}
		for _, ing := range r.Ingredients(lang) {
			if strings.Contains(strings.ToLower(ing.Name), q) {
				return true
			}
		}
	}
	return false
}

func hasAllTags(r model.Recipe, tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range r.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func ratingOf(r model.Recipe) int {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}
