package model

import (
	"time"

	"github.com/google/uuid"
)

// Language identifies one of the content languages a recipe carries.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageSwedish  Language = "sv"
	LanguageRomanian Language = "ro"
)

// Languages lists the supported languages in display order.
var Languages = []Language{LanguageEnglish, LanguageSwedish, LanguageRomanian}

// DisplayName returns the language name as shown to users.
func (l Language) DisplayName() string {
	switch l {
	case LanguageSwedish:
		return "Svenska"
	case LanguageRomanian:
		return "Română"
	default:
		return "English"
	}
}

// ParseLanguage maps a language code to a Language, defaulting to English.
func ParseLanguage(code string) Language {
	switch Language(code) {
	case LanguageSwedish:
		return LanguageSwedish
	case LanguageRomanian:
		return LanguageRomanian
	default:
		return LanguageEnglish
	}
}

// Ingredient is a single ingredient line. IDs are always generated locally.
type Ingredient struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Amount *string `json:"amount"`
	Unit   *string `json:"unit"`
	Name   string  `json:"name"`
}

// Source records where a recipe was extracted from.
type Source struct {
	Type     string `json:"type"`
	URL      string `json:"url,omitempty"`
	PhotoKey string `json:"photoKey,omitempty"`
}

const (
	SourceImage = "image"
	SourceText  = "text"
	SourceURL   = "url"
)

// Recipe is the canonical multilingual recipe record.
type Recipe struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	TitleEnglish  string `json:"titleEnglish"`
	TitleSwedish  string `json:"titleSwedish"`
	TitleRomanian string `json:"titleRomanian"`

	IngredientsEnglish  []Ingredient `json:"ingredientsEnglish"`
	IngredientsSwedish  []Ingredient `json:"ingredientsSwedish"`
	IngredientsRomanian []Ingredient `json:"ingredientsRomanian"`

	InstructionsEnglish  []string `json:"instructionsEnglish"`
	InstructionsSwedish  []string `json:"instructionsSwedish"`
	InstructionsRomanian []string `json:"instructionsRomanian"`

	NotesEnglish  *string `json:"notesEnglish"`
	NotesSwedish  *string `json:"notesSwedish"`
	NotesRomanian *string `json:"notesRomanian"`
	// LegacyNotes is the language-independent note kept from older records.
	LegacyNotes *string `json:"notes"`

	Tags             []string `json:"tags"`
	Servings         *int     `json:"servings"`
	PrepTime         *string  `json:"prepTime"`
	CookTime         *string  `json:"cookTime"`
	Rating           *int     `json:"rating"`
	DetectedLanguage *string  `json:"detectedLanguage"`

	Source *Source `json:"source,omitempty"`
}

// NewRecipe returns an empty recipe shell with a fresh id.
func NewRecipe(now time.Time) Recipe {
	return Recipe{
		ID:                   uuid.NewString(),
		CreatedAt:            now,
		UpdatedAt:            now,
		IngredientsEnglish:   []Ingredient{},
		IngredientsSwedish:   []Ingredient{},
		IngredientsRomanian:  []Ingredient{},
		InstructionsEnglish:  []string{},
		InstructionsSwedish:  []string{},
		InstructionsRomanian: []string{},
		Tags:                 []string{},
	}
}

func (r Recipe) Title(lang Language) string {
	switch lang {
	case LanguageSwedish:
		return r.TitleSwedish
	case LanguageRomanian:
		return r.TitleRomanian
	default:
		return r.TitleEnglish
	}
}

func (r Recipe) Ingredients(lang Language) []Ingredient {
	switch lang {
	case LanguageSwedish:
		return r.IngredientsSwedish
	case LanguageRomanian:
		return r.IngredientsRomanian
	default:
		return r.IngredientsEnglish
	}
}

func (r Recipe) Instructions(lang Language) []string {
	switch lang {
	case LanguageSwedish:
		return r.InstructionsSwedish
	case LanguageRomanian:
		return r.InstructionsRomanian
	default:
		return r.InstructionsEnglish
	}
}

// Notes returns the note for lang, falling back to the legacy note.
func (r Recipe) Notes(lang Language) *string {
	var n *string
	switch lang {
	case LanguageSwedish:
		n = r.NotesSwedish
	case LanguageRomanian:
		n = r.NotesRomanian
	default:
		n = r.NotesEnglish
	}
	if n == nil {
		return r.LegacyNotes
	}
	return n
}

// OrEmpty returns s, or an empty non-nil slice when s is nil so it encodes as [].
func OrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
