package model

import (
	"strings"
	"time"
)

// MealType identifies a slot within a day's meal plan.
type MealType string

const (
	MealLunch  MealType = "LUNCH"
	MealDinner MealType = "DINNER"
)

// ParseMealType accepts the slot name case-insensitively.
func ParseMealType(s string) (MealType, bool) {
	switch MealType(strings.ToUpper(strings.TrimSpace(s))) {
	case MealLunch:
		return MealLunch, true
	case MealDinner:
		return MealDinner, true
	}
	return "", false
}

// MealSlot references a recipe by id and caches its title so a plan can be
// rendered without resolving the live recipe.
type MealSlot struct {
	ID         string   `json:"id"`
	MealType   MealType `json:"mealType"`
	RecipeID   *string  `json:"recipeId"`
	RecipeName *string  `json:"recipeName"`
}

// MealPlan holds the lunch and dinner slots of one calendar day.
type MealPlan struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LunchSlot  MealSlot  `json:"lunchSlot"`
	DinnerSlot MealSlot  `json:"dinnerSlot"`
}

// DateLayout is the ISO date format used as the meal plan key.
const DateLayout = "2006-01-02"

// Slot returns a pointer to the slot for mealType.
func (p *MealPlan) Slot(mealType MealType) *MealSlot {
	if mealType == MealDinner {
		return &p.DinnerSlot
	}
	return &p.LunchSlot
}
