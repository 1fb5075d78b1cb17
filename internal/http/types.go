package http

import "recipebox/internal/model"

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RecipeResponse wraps a single recipe.
type RecipeResponse struct {
	Success bool         `json:"success"`
	Data    model.Recipe `json:"data"`
}

// RecipeListResponse wraps a filtered recipe list.
type RecipeListResponse struct {
	Success bool           `json:"success"`
	Data    []model.Recipe `json:"data"`
}

type ExtractTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type ExtractURLRequest struct {
	URL        string `json:"url" validate:"required"`
	UseBrowser *bool  `json:"useBrowser,omitempty"`
}

// ExtractImageRequest is the JSON form of an image upload; Data is base64.
type ExtractImageRequest struct {
	Data     string `json:"data" validate:"required,base64"`
	MimeType string `json:"mimeType,omitempty"`
}

// RecipeRequest is the editable part of a recipe as sent by clients.
type RecipeRequest struct {
	TitleEnglish  string `json:"titleEnglish" validate:"required"`
	TitleSwedish  string `json:"titleSwedish"`
	TitleRomanian string `json:"titleRomanian"`

	IngredientsEnglish  []model.Ingredient `json:"ingredientsEnglish"`
	IngredientsSwedish  []model.Ingredient `json:"ingredientsSwedish"`
	IngredientsRomanian []model.Ingredient `json:"ingredientsRomanian"`

	InstructionsEnglish  []string `json:"instructionsEnglish"`
	InstructionsSwedish  []string `json:"instructionsSwedish"`
	InstructionsRomanian []string `json:"instructionsRomanian"`

	NotesEnglish  *string `json:"notesEnglish"`
	NotesSwedish  *string `json:"notesSwedish"`
	NotesRomanian *string `json:"notesRomanian"`
	Notes         *string `json:"notes"`

	Tags             []string      `json:"tags" validate:"dive,required"`
	Servings         *int          `json:"servings" validate:"omitempty,gt=0"`
	PrepTime         *string       `json:"prepTime"`
	CookTime         *string       `json:"cookTime"`
	Rating           *int          `json:"rating" validate:"omitempty,min=1,max=5"`
	DetectedLanguage *string       `json:"detectedLanguage"`
	Source           *model.Source `json:"source,omitempty"`
}

type AssignMealRequest struct {
	RecipeID string `json:"recipeId" validate:"required"`
	Language string `json:"language,omitempty" validate:"omitempty,oneof=en sv ro"`
}

// ShareResponse carries the plain-text export.
type ShareResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

// ShoppingListResponse carries the export and its import link.
type ShoppingListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Link    string      `json:"link"`
}

// TagResponse is one vocabulary entry.
type TagResponse struct {
	Key      string `json:"key"`
	Emoji    string `json:"emoji"`
	Category string `json:"category"`
}
