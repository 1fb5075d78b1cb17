package http

import (
	"github.com/gofiber/fiber/v2"
)

func draftsDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Success: false,
		Code:    "DRAFTS_DISABLED",
		Error:   "Draft storage is not configured",
	})
}

func getDraftHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	if deps.Drafts == nil {
		return draftsDisabled(c)
	}
	r, err := deps.Drafts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: r})
}

// updateDraftHandler replaces the editable fields of a draft and refreshes
// its TTL.
func updateDraftHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	if deps.Drafts == nil {
		return draftsDisabled(c)
	}

	var req RecipeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	draft, err := deps.Drafts.Get(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	draft = req.apply(draft)
	draft.UpdatedAt = nowUTC()
	if err := deps.Drafts.Put(ctx, draft); err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: draft})
}

func deleteDraftHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	if deps.Drafts == nil {
		return draftsDisabled(c)
	}
	if err := deps.Drafts.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// saveDraftHandler implements POST /v1/drafts/:id/save: the draft becomes a
// stored recipe and the draft is dropped.
func saveDraftHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	if deps.Drafts == nil {
		return draftsDisabled(c)
	}

	ctx := c.UserContext()
	draft, err := deps.Drafts.Get(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if err := deps.Recipes.InsertRecipe(ctx, draft); err != nil {
		return writeError(c, err)
	}
	if err := deps.Drafts.Delete(ctx, draft.ID); err != nil {
		loggerFrom(c).Warn("draft_delete_failed", "draft_id", draft.ID, "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(RecipeResponse{Success: true, Data: draft})
}
