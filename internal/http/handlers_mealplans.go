package http

import (
	"github.com/gofiber/fiber/v2"

	"recipebox/internal/model"
)

type mealPlanListResponse struct {
	Success bool             `json:"success"`
	Data    []model.MealPlan `json:"data"`
}

type mealPlanResponse struct {
	Success bool           `json:"success"`
	Data    model.MealPlan `json:"data"`
}

// listMealPlansHandler implements GET /v1/mealplans?from=&to=. Without a
// range it returns the current week starting today.
func listMealPlansHandler(c *fiber.Ctx) error {
	today := nowUTC()
	from := c.Query("from", today.Format(model.DateLayout))
	to := c.Query("to", today.AddDate(0, 0, 6).Format(model.DateLayout))

	plans, err := depsFrom(c).Planner.Range(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mealPlanListResponse{Success: true, Data: plans})
}

func mealTypeParam(c *fiber.Ctx) (model.MealType, bool) {
	return model.ParseMealType(c.Params("meal"))
}

// assignMealHandler implements PUT /v1/mealplans/:date/:meal.
func assignMealHandler(c *fiber.Ctx) error {
	mealType, ok := mealTypeParam(c)
	if !ok {
		return badRequest(c, "BAD_REQUEST_INVALID_MEAL", "Meal must be lunch or dinner", nil)
	}

	var req AssignMealRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	plan, err := depsFrom(c).Planner.Assign(c.UserContext(), c.Params("date"), mealType, req.RecipeID, model.ParseLanguage(req.Language))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mealPlanResponse{Success: true, Data: plan})
}

// clearMealHandler implements DELETE /v1/mealplans/:date/:meal.
func clearMealHandler(c *fiber.Ctx) error {
	mealType, ok := mealTypeParam(c)
	if !ok {
		return badRequest(c, "BAD_REQUEST_INVALID_MEAL", "Meal must be lunch or dinner", nil)
	}

	plan, err := depsFrom(c).Planner.Clear(c.UserContext(), c.Params("date"), mealType)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mealPlanResponse{Success: true, Data: plan})
}

// swapMealsHandler implements POST /v1/mealplans/:date/swap.
func swapMealsHandler(c *fiber.Ctx) error {
	plan, err := depsFrom(c).Planner.Swap(c.UserContext(), c.Params("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mealPlanResponse{Success: true, Data: plan})
}
