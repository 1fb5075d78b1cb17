package http

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"recipebox/internal/config"
)

// extractTextHandler implements POST /v1/extract/text.
func extractTextHandler(c *fiber.Ctx) error {
	var req ExtractTextRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	deps := depsFrom(c)
	r, err := deps.Importer.ImportText(c.UserContext(), req.Text, apiKeyFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: r})
}

// extractURLHandler implements POST /v1/extract/url. The page is fetched
// over HTTP unless useBrowser is set and the rod engine is enabled.
func extractURLHandler(c *fiber.Ctx) error {
	var req ExtractURLRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	cfg := c.Locals("config").(*config.Config)
	useBrowser := req.UseBrowser != nil && *req.UseBrowser
	if useBrowser && !cfg.Rod.Enabled {
		return badRequest(c, "BAD_REQUEST_BROWSER_DISABLED", "Browser rendering is not enabled on this server", nil)
	}

	deps := depsFrom(c)
	r, err := deps.Importer.ImportURL(c.UserContext(), req.URL, useBrowser, apiKeyFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: r})
}

// extractImageHandler implements POST /v1/extract/image. It accepts a
// multipart upload in the "image" field or a JSON body with base64 data.
func extractImageHandler(c *fiber.Ctx) error {
	var (
		data     []byte
		mimeType string
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return badRequest(c, "BAD_REQUEST", "Missing multipart field 'image'", nil)
		}
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "BAD_REQUEST", "Unreadable upload", nil)
		}
		defer f.Close()
		data, err = io.ReadAll(f)
		if err != nil {
			return badRequest(c, "BAD_REQUEST", "Unreadable upload", nil)
		}
		mimeType = fh.Header.Get(fiber.HeaderContentType)
	} else {
		var req ExtractImageRequest
		if ok, err := parseBody(c, &req); !ok {
			return err
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return badRequest(c, "BAD_REQUEST", "Field 'data' must be base64 encoded", nil)
		}
		data = decoded
		mimeType = req.MimeType
	}

	deps := depsFrom(c)
	r, err := deps.Importer.ImportImage(c.UserContext(), data, mimeType, apiKeyFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: r})
}

// translateRecipeHandler implements POST /v1/recipes/:id/translate and
// saves the translated recipe.
func translateRecipeHandler(c *fiber.Ctx) error {
	deps := depsFrom(c)
	ctx := c.UserContext()

	recipe, err := deps.Recipes.GetRecipe(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	translated, err := deps.Importer.Translate(ctx, recipe, apiKeyFrom(c))
	if err != nil {
		return writeError(c, err)
	}

	saved, err := deps.Recipes.UpdateRecipe(ctx, translated, nowUTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(RecipeResponse{Success: true, Data: saved})
}
