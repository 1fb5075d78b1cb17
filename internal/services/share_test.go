package services

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/model"
)

func strPtr(s string) *string { return &s }

func shareFixture() model.Recipe {
	r := model.NewRecipe(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r.TitleEnglish = "Pancakes"
	r.TitleSwedish = "Pannkakor"
	r.Servings = intPtr(4)
	r.PrepTime = strPtr("10 min")
	r.CookTime = strPtr("20 min")
	r.Rating = intPtr(4)
	r.Tags = []string{"breakfast", "unknownTag", "vegetarian"}
	r.IngredientsEnglish = []model.Ingredient{
		{ID: "1", Text: "2 eggs", Amount: strPtr("2"), Name: "eggs"},
		{ID: "2", Text: "300 ml milk", Amount: strPtr("300"), Unit: strPtr("ml"), Name: "milk"},
		{ID: "3", Text: "salt", Name: "salt"},
	}
	r.IngredientsSwedish = []model.Ingredient{{ID: "4", Text: "2 ägg", Amount: strPtr("2"), Name: "ägg"}}
	r.InstructionsEnglish = []string{"Whisk", "Fry"}
	r.InstructionsSwedish = []string{"Vispa", "Stek"}
	r.NotesEnglish = strPtr("Serve warm")
	return r
}

func TestShareText(t *testing.T) {
	breakfast, _ := model.LookupTag("breakfast")
	vegetarian, _ := model.LookupTag("vegetarian")

	want := strings.Join([]string{
		"Pancakes",
		"",
		"Servings: 4 | Prep: 10 min | Cook: 20 min",
		"Rating: ★★★★☆ (4/5)",
		"",
		"Tags: " + breakfast.Emoji + " breakfast " + vegetarian.Emoji + " vegetarian",
		"",
		"INGREDIENTS:",
		"- 2 eggs",
		"- 300 ml milk",
		"- salt",
		"",
		"INSTRUCTIONS:",
		"1. Whisk",
		"2. Fry",
		"",
		"NOTES:",
		"Serve warm",
		"",
	}, "\n")

	assert.Equal(t, want, ShareText(shareFixture(), model.LanguageEnglish))
}

func TestShareTextSwedishUsesLegacyNotesAndSkipsEmptySections(t *testing.T) {
	r := shareFixture()
	r.Servings, r.PrepTime, r.CookTime, r.Rating = nil, nil, nil, nil
	r.Tags = nil
	r.NotesEnglish = nil
	r.LegacyNotes = strPtr("Old note")

	got := ShareText(r, model.LanguageSwedish)
	assert.True(t, strings.HasPrefix(got, "Pannkakor\n\n\nINGREDIENTS:\n- 2 ägg\n"), got)
	assert.Contains(t, got, "1. Vispa\n2. Stek\n")
	assert.True(t, strings.HasSuffix(got, "NOTES:\nOld note\n"), got)
	assert.NotContains(t, got, "Tags:")
	assert.NotContains(t, got, "Rating:")
}

func TestShoppingList(t *testing.T) {
	list := ShoppingList(shareFixture(), model.LanguageEnglish)
	assert.Equal(t, "1.0", list.Version)
	require.Len(t, list.Items, 3)

	assert.Equal(t, "eggs", list.Items[0].Name)
	require.NotNil(t, list.Items[0].Quantity)
	assert.Equal(t, "2", *list.Items[0].Quantity)

	require.NotNil(t, list.Items[1].Quantity)
	assert.Equal(t, "300 ml", *list.Items[1].Quantity)

	assert.Nil(t, list.Items[2].Quantity)
}

func TestShoppingListLink(t *testing.T) {
	list := ShoppingList(shareFixture(), model.LanguageSwedish)
	link, err := ShoppingListLink(list)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "quickyshoppy://import?data="))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(link, "quickyshoppy://import?data="))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "1.0", decoded["version"])
	items := decoded["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"name": "ägg", "quantity": "2"}, items[0])
}
