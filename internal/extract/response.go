package extract

import (
	"strings"

	"github.com/google/uuid"

	"recipebox/internal/jsonfield"
	"recipebox/internal/model"
)

// newID generates ingredient and recipe ids; tests swap it.
var newID = uuid.NewString

// ExtractJSONObject returns the text between the first '{' and the last
// '}' of raw. When there is no such span raw is returned unchanged so the
// JSON decoder reports the failure.
func ExtractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// IntermediateRecipe is the defensively parsed model output, before it is
// turned into a Recipe.
type IntermediateRecipe struct {
	TitleEnglish  string
	TitleSwedish  string
	TitleRomanian string

	IngredientsEnglish  []model.Ingredient
	IngredientsSwedish  []model.Ingredient
	IngredientsRomanian []model.Ingredient

	InstructionsEnglish  []string
	InstructionsSwedish  []string
	InstructionsRomanian []string

	NotesEnglish  *string
	NotesSwedish  *string
	NotesRomanian *string

	Tags             []string
	Servings         *int
	PrepTime         *string
	CookTime         *string
	DetectedLanguage *string
}

// ParseIntermediate decodes jsonText and reads every field independently.
// Only invalid JSON (or a non-object document) is an error; missing or
// wrong-typed fields fall back to empty values.
func ParseIntermediate(jsonText string) (IntermediateRecipe, error) {
	obj, err := jsonfield.Decode(jsonText)
	if err != nil {
		return IntermediateRecipe{}, err
	}

	return IntermediateRecipe{
		TitleEnglish:  obj.String("titleEnglish"),
		TitleSwedish:  obj.String("titleSwedish"),
		TitleRomanian: obj.String("titleRomanian"),

		IngredientsEnglish:  parseIngredients(obj, "ingredientsEnglish"),
		IngredientsSwedish:  parseIngredients(obj, "ingredientsSwedish"),
		IngredientsRomanian: parseIngredients(obj, "ingredientsRomanian"),

		InstructionsEnglish:  obj.Strings("instructionsEnglish"),
		InstructionsSwedish:  obj.Strings("instructionsSwedish"),
		InstructionsRomanian: obj.Strings("instructionsRomanian"),

		NotesEnglish:  nonEmpty(obj.OptString("notesEnglish")),
		NotesSwedish:  nonEmpty(obj.OptString("notesSwedish")),
		NotesRomanian: nonEmpty(obj.OptString("notesRomanian")),

		Tags:             obj.Strings("tags"),
		Servings:         positive(obj.Int("servings")),
		PrepTime:         obj.OptString("prepTime"),
		CookTime:         obj.OptString("cookTime"),
		DetectedLanguage: obj.OptString("detectedLanguage"),
	}, nil
}

// parseIngredients reads the object elements of an ingredient array. Ids
// in the payload are ignored and fresh ones assigned.
func parseIngredients(obj jsonfield.Object, key string) []model.Ingredient {
	items := obj.Objects(key)
	out := make([]model.Ingredient, 0, len(items))
	for _, item := range items {
		out = append(out, model.Ingredient{
			ID:     newID(),
			Text:   item.String("text"),
			Amount: item.OptString("amount"),
			Unit:   item.OptString("unit"),
			Name:   item.String("name"),
		})
	}
	return out
}

func positive(n *int) *int {
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// NoteUpdate describes what a translation says about one note field.
type NoteUpdate struct {
	// Set is false when the field was absent and the original is kept.
	Set   bool
	Value *string
}

// PartialTranslation holds the Swedish and Romanian fields present in a
// translation response. Nil fields keep the recipe's current values.
type PartialTranslation struct {
	TitleSwedish  *string
	TitleRomanian *string

	IngredientsSwedish  []model.Ingredient
	IngredientsRomanian []model.Ingredient

	InstructionsSwedish  []string
	InstructionsRomanian []string

	NotesSwedish  NoteUpdate
	NotesRomanian NoteUpdate
}

// ParseTranslation decodes a translation response. Empty or malformed
// fields are treated as absent.
func ParseTranslation(jsonText string) (PartialTranslation, error) {
	obj, err := jsonfield.Decode(jsonText)
	if err != nil {
		return PartialTranslation{}, err
	}

	return PartialTranslation{
		TitleSwedish:         nonEmpty(obj.OptString("titleSwedish")),
		TitleRomanian:        nonEmpty(obj.OptString("titleRomanian")),
		IngredientsSwedish:   nilIfEmpty(parseIngredients(obj, "ingredientsSwedish")),
		IngredientsRomanian:  nilIfEmpty(parseIngredients(obj, "ingredientsRomanian")),
		InstructionsSwedish:  nilIfEmpty(obj.Strings("instructionsSwedish")),
		InstructionsRomanian: nilIfEmpty(obj.Strings("instructionsRomanian")),
		NotesSwedish:         noteUpdate(obj, "notesSwedish"),
		NotesRomanian:        noteUpdate(obj, "notesRomanian"),
	}, nil
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// noteUpdate keeps the original on absence, clears it on an explicit null
// and replaces it with a non-empty string.
func noteUpdate(obj jsonfield.Object, key string) NoteUpdate {
	switch obj.Presence(key) {
	case jsonfield.Null:
		return NoteUpdate{Set: true}
	case jsonfield.Present:
		if s := nonEmpty(obj.OptString(key)); s != nil {
			return NoteUpdate{Set: true, Value: s}
		}
	}
	return NoteUpdate{}
}
