package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recipebox/internal/model"
	"recipebox/internal/store"
)

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD or for an
// inverted range.
var ErrInvalidDate = errors.New("invalid date")

// MealPlanStore persists meal plans keyed by ISO date.
type MealPlanStore interface {
	GetMealPlan(ctx context.Context, date string) (model.MealPlan, error)
	UpsertMealPlan(ctx context.Context, p model.MealPlan) error
	ListMealPlans(ctx context.Context, from, to string) ([]model.MealPlan, error)
}

// RecipeReader loads a single recipe.
type RecipeReader interface {
	GetRecipe(ctx context.Context, id string) (model.Recipe, error)
}

// MealPlanner assigns recipes to the lunch and dinner slots of a day.
// Plans are created the first time a day is touched.
type MealPlanner struct {
	plans   MealPlanStore
	recipes RecipeReader
	now     func() time.Time
	newID   func() string
}

func NewMealPlanner(plans MealPlanStore, recipes RecipeReader) *MealPlanner {
	return &MealPlanner{plans: plans, recipes: recipes, now: time.Now, newID: uuid.NewString}
}

// Range returns the stored plans between from and to inclusive.
func (m *MealPlanner) Range(ctx context.Context, from, to string) ([]model.MealPlan, error) {
	f, err := parseDate(from)
	if err != nil {
		return nil, err
	}
	t, err := parseDate(to)
	if err != nil {
		return nil, err
	}
	if t.Before(f) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidDate, to, from)
	}
	return m.plans.ListMealPlans(ctx, from, to)
}

// Assign places a recipe in a slot, caching its title in lang.
func (m *MealPlanner) Assign(ctx context.Context, date string, mealType model.MealType, recipeID string, lang model.Language) (model.MealPlan, error) {
	if _, err := parseDate(date); err != nil {
		return model.MealPlan{}, err
	}
	recipe, err := m.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return model.MealPlan{}, err
	}

	plan, err := m.loadOrCreate(ctx, date)
	if err != nil {
		return model.MealPlan{}, err
	}

	name := recipe.Title(lang)
	if name == "" {
		name = recipe.TitleEnglish
	}
	id := recipe.ID
	slot := plan.Slot(mealType)
	slot.RecipeID = &id
	slot.RecipeName = &name

	return m.save(ctx, plan)
}

// Clear empties a slot. Clearing a day without a plan is a no-op.
func (m *MealPlanner) Clear(ctx context.Context, date string, mealType model.MealType) (model.MealPlan, error) {
	if _, err := parseDate(date); err != nil {
		return model.MealPlan{}, err
	}
	plan, err := m.loadOrCreate(ctx, date)
	if err != nil {
		return model.MealPlan{}, err
	}

	slot := plan.Slot(mealType)
	slot.RecipeID = nil
	slot.RecipeName = nil

	return m.save(ctx, plan)
}

// Swap exchanges the lunch and dinner recipes of a day. The slots keep their
// own ids and meal types.
func (m *MealPlanner) Swap(ctx context.Context, date string) (model.MealPlan, error) {
	if _, err := parseDate(date); err != nil {
		return model.MealPlan{}, err
	}
	plan, err := m.plans.GetMealPlan(ctx, date)
	if err != nil {
		return model.MealPlan{}, err
	}

	plan.LunchSlot.RecipeID, plan.DinnerSlot.RecipeID = plan.DinnerSlot.RecipeID, plan.LunchSlot.RecipeID
	plan.LunchSlot.RecipeName, plan.DinnerSlot.RecipeName = plan.DinnerSlot.RecipeName, plan.LunchSlot.RecipeName

	return m.save(ctx, plan)
}

func (m *MealPlanner) loadOrCreate(ctx context.Context, date string) (model.MealPlan, error) {
	plan, err := m.plans.GetMealPlan(ctx, date)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.MealPlan{}, err
	}

	now := m.now().UTC()
	return model.MealPlan{
		ID:         m.newID(),
		Date:       date,
		CreatedAt:  now,
		UpdatedAt:  now,
		LunchSlot:  model.MealSlot{ID: m.newID(), MealType: model.MealLunch},
		DinnerSlot: model.MealSlot{ID: m.newID(), MealType: model.MealDinner},
	}, nil
}

func (m *MealPlanner) save(ctx context.Context, plan model.MealPlan) (model.MealPlan, error) {
	plan.UpdatedAt = m.now().UTC()
	if err := m.plans.UpsertMealPlan(ctx, plan); err != nil {
		return model.MealPlan{}, err
	}
	return plan, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
