package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"recipebox/internal/model"
	"recipebox/internal/services"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

const photoLinkTTL = 15 * time.Minute

// listRecipesHandler implements GET /v1/recipes?q=&tags=a,b&sort=date|rating.
func listRecipesHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	all, err := deps.Recipes.ListRecipes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}

	var tags []string
	for _, t := range strings.Split(c.Query("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	out := services.FilterAndSort(all, c.Query("q"), tags, services.ParseSortOption(c.Query("sort")))
	return c.JSON(RecipeListResponse{Success: true, Data: out})
}

func getRecipeHandler(c *fiber.Ctx) error {
	r, err := depsFrom(c).Recipes.GetRecipe(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: r})
}

// createRecipeHandler implements POST /v1/recipes for manually entered
// recipes.
func createRecipeHandler(c *fiber.Ctx) error {
	var req RecipeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	r := req.apply(model.NewRecipe(nowUTC()))
	if err := depsFrom(c).Recipes.InsertRecipe(c.UserContext(), r); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(RecipeResponse{Success: true, Data: r})
}

func updateRecipeHandler(c *fiber.Ctx) error {
	var req RecipeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	deps := depsFrom(c)
	ctx := c.UserContext()
	existing, err := deps.Recipes.GetRecipe(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	updated, err := deps.Recipes.UpdateRecipe(ctx, req.apply(existing), nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: updated})
}

func deleteRecipeHandler(c *fiber.Ctx) error {
	if err := depsFrom(c).Recipes.DeleteRecipe(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// shareRecipeHandler implements GET /v1/recipes/:id/share?lang=.
// ?format=text returns the export as text/plain.
func shareRecipeHandler(c *fiber.Ctx) error {
	r, err := depsFrom(c).Recipes.GetRecipe(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	text := services.ShareText(r, langFrom(c))
	if c.Query("format") == "text" {
		c.Type("text/plain", "utf-8")
		return c.SendString(text)
	}
	return c.JSON(ShareResponse{Success: true, Text: text})
}

// shoppingListHandler implements GET /v1/recipes/:id/shopping-list?lang=.
func shoppingListHandler(c *fiber.Ctx) error {
	r, err := depsFrom(c).Recipes.GetRecipe(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	list := services.ShoppingList(r, langFrom(c))
	link, err := services.ShoppingListLink(list)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ShoppingListResponse{Success: true, Data: list, Link: link})
}

// recipePhotoHandler redirects to a short-lived link for the archived
// source photo of an image extraction.
func recipePhotoHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	r, err := deps.Recipes.GetRecipe(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if deps.Photos == nil || r.Source == nil || r.Source.PhotoKey == "" {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Success: false,
			Code:    "NOT_FOUND",
			Error:   "Recipe has no archived photo",
		})
	}

	url, err := deps.Photos.PresignedURL(c.UserContext(), r.Source.PhotoKey, photoLinkTTL)
	if err != nil {
		return writeError(c, err)
	}
	return c.Redirect(url, fiber.StatusFound)
}

// apply copies the editable fields onto base. Ingredients without an id get
// a fresh one, and tags are de-duplicated in order with blanks dropped.
func (req RecipeRequest) apply(base model.Recipe) model.Recipe {
	base.TitleEnglish = req.TitleEnglish
	base.TitleSwedish = req.TitleSwedish
	base.TitleRomanian = req.TitleRomanian
	base.IngredientsEnglish = withIDs(req.IngredientsEnglish)
	base.IngredientsSwedish = withIDs(req.IngredientsSwedish)
	base.IngredientsRomanian = withIDs(req.IngredientsRomanian)
	base.InstructionsEnglish = model.OrEmpty(req.InstructionsEnglish)
	base.InstructionsSwedish = model.OrEmpty(req.InstructionsSwedish)
	base.InstructionsRomanian = model.OrEmpty(req.InstructionsRomanian)
	base.NotesEnglish = req.NotesEnglish
	base.NotesSwedish = req.NotesSwedish
	base.NotesRomanian = req.NotesRomanian
	base.LegacyNotes = req.Notes
	base.Tags = model.UniqueTags(req.Tags)
	base.Servings = req.Servings
	base.PrepTime = req.PrepTime
	base.CookTime = req.CookTime
	base.Rating = req.Rating
	base.DetectedLanguage = req.DetectedLanguage
	if req.Source != nil {
		base.Source = req.Source
	}
	return base
}

func withIDs(in []model.Ingredient) []model.Ingredient {
	out := make([]model.Ingredient, len(in))
	for i, ing := range in {
		if ing.ID == "" {
			ing.ID = uuid.NewString()
		}
		out[i] = ing
	}
	return out
}
