package extract

import (
	"fmt"
	"strings"
)

// ExtractionPrompt asks the model for the full multilingual recipe JSON.
// The response parser depends on the field names it lists.
const ExtractionPrompt = `You are a recipe extraction assistant. Extract the recipe information from the provided content and return it as a JSON object.

IMPORTANT: Return ONLY valid JSON, no additional text or explanation.

The JSON must have this exact structure:
{
  "titleEnglish": "Recipe title in English",
  "titleSwedish": "Recipe title in Swedish",
  "titleRomanian": "Recipe title in Romanian",
  "ingredientsEnglish": [
    {"text": "full ingredient text", "amount": "2", "unit": "cups", "name": "flour"}
  ],
  "ingredientsSwedish": [
    {"text": "full ingredient text in Swedish", "amount": "475", "unit": "ml", "name": "vetemjöl"}
  ],
  "ingredientsRomanian": [
    {"text": "full ingredient text in Romanian", "amount": "475", "unit": "ml", "name": "făină"}
  ],
  "instructionsEnglish": ["Step 1...", "Step 2..."],
  "instructionsSwedish": ["Steg 1...", "Steg 2..."],
  "instructionsRomanian": ["Pasul 1...", "Pasul 2..."],
  "servings": 4,
  "prepTime": "15 mins",
  "cookTime": "30 mins",
  "tags": ["vegetarian", "quickEasy"],
  "detectedLanguage": "English"
}

Rules:
1. Convert all measurements to metric (g, ml, kg, L)
2. Translate all content to English, Swedish, and Romanian
3. Detect and include relevant tags from: vegetarian, vegan, glutenFree, lactoseFree, nutFree, lowCarb, keto, paleo, breakfast, lunch, dinner, dessert, snack, beverage, appetizer, mainCourse, sideDish, soup, salad, pork, chicken, beef, lamb, turkey, fish, seafood, quickEasy, slowCook
4. Extract servings as integer, times as strings
5. Ensure all arrays have matching lengths across languages`

// translationPrompt wraps an existing recipe's JSON (the %s verb) and asks
// for the Swedish and Romanian fields only.
const translationPrompt = `Translate the following recipe content to Swedish and Romanian. Return ONLY valid JSON with the translations.

Input recipe:
%s

Return JSON with this structure:
{
  "titleSwedish": "...",
  "titleRomanian": "...",
  "ingredientsSwedish": [{"text": "...", "amount": "...", "unit": "...", "name": "..."}],
  "ingredientsRomanian": [{"text": "...", "amount": "...", "unit": "...", "name": "..."}],
  "instructionsSwedish": ["..."],
  "instructionsRomanian": ["..."],
  "notesSwedish": "..." or null,
  "notesRomanian": "..." or null
}`

func textPrompt(text string) string {
	return ExtractionPrompt + "\n\nRecipe content:\n" + text
}

func urlPrompt(url, htmlContent string) string {
	var b strings.Builder
	b.WriteString(ExtractionPrompt)
	b.WriteString("\n\nURL: ")
	b.WriteString(url)
	b.WriteString("\n\nPage content:\n")
	b.WriteString(htmlContent)
	return b.String()
}

func translatePrompt(recipeJSON string) string {
	return fmt.Sprintf(translationPrompt, recipeJSON)
}
