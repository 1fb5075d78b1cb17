package model

// TagCategory groups tags for display and filtering.
type TagCategory string

const (
	CategoryDietary      TagCategory = "dietary"
	CategoryDietStyle    TagCategory = "dietStyle"
	CategoryMealType     TagCategory = "mealType"
	CategoryCourse       TagCategory = "course"
	CategoryProtein      TagCategory = "protein"
	CategoryCookingStyle TagCategory = "cookingStyle"
)

// Tag is an entry of the controlled recipe tag vocabulary.
type Tag struct {
	Key      string      `json:"key"`
	Emoji    string      `json:"emoji"`
	Category TagCategory `json:"category"`
}

// Tags is the controlled vocabulary, in prompt order.
var Tags = []Tag{
	{"vegetarian", "\U0001F331", CategoryDietary},
	{"vegan", "\U0001F957", CategoryDietary},
	{"glutenFree", "\U0001F33E", CategoryDietary},
	{"lactoseFree", "\U0001F95B", CategoryDietary},
	{"nutFree", "\U0001F95C", CategoryDietary},

	{"lowCarb", "\U0001F966", CategoryDietStyle},
	{"keto", "\U0001F951", CategoryDietStyle},
	{"paleo", "\U0001F969", CategoryDietStyle},

	{"breakfast", "\U0001F373", CategoryMealType},
	{"lunch", "\U0001F35C", CategoryMealType},
	{"dinner", "\U0001F35D", CategoryMealType},
	{"dessert", "\U0001F370", CategoryMealType},
	{"snack", "\U0001F36A", CategoryMealType},
	{"beverage", "\U0001F379", CategoryMealType},

	{"appetizer", "\U0001F959", CategoryCourse},
	{"mainCourse", "\U0001F356", CategoryCourse},
	{"sideDish", "\U0001F954", CategoryCourse},
	{"soup", "\U0001F35C", CategoryCourse},
	{"salad", "\U0001F957", CategoryCourse},

	{"pork", "\U0001F437", CategoryProtein},
	{"chicken", "\U0001F414", CategoryProtein},
	{"beef", "\U0001F42E", CategoryProtein},
	{"lamb", "\U0001F411", CategoryProtein},
	{"turkey", "\U0001F983", CategoryProtein},
	{"fish", "\U0001F41F", CategoryProtein},
	{"seafood", "\U0001F990", CategoryProtein},

	{"quickEasy", "⚡", CategoryCookingStyle},
	{"slowCook", "\U0001F958", CategoryCookingStyle},
}

// LookupTag finds a vocabulary entry by key.
func LookupTag(key string) (Tag, bool) {
	for _, t := range Tags {
		if t.Key == key {
			return t, true
		}
	}
	return Tag{}, false
}

// TagKeys returns the vocabulary keys in order.
func TagKeys() []string {
	keys := make([]string, 0, len(Tags))
	for _, t := range Tags {
		keys = append(keys, t.Key)
	}
	return keys
}

// TagsByCategory returns the vocabulary entries belonging to c.
func TagsByCategory(c TagCategory) []Tag {
	var out []Tag
	for _, t := range Tags {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// UniqueTags drops blank and repeated tags, keeping first occurrences in order.
func UniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
