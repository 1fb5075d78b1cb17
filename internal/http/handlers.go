package http

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"recipebox/internal/model"
)

var validate = validator.New()

func depsFrom(c *fiber.Ctx) *Deps {
	return c.Locals("deps").(*Deps)
}

func loggerFrom(c *fiber.Ctx) *slog.Logger {
	if l, ok := c.Locals("logger").(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func apiKeyFrom(c *fiber.Ctx) string {
	key, _ := c.Locals("llm_api_key").(string)
	return key
}

func langFrom(c *fiber.Ctx) model.Language {
	return model.ParseLanguage(c.Query("lang"))
}

// parseBody decodes the JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the caller should
// continue.
func parseBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badRequest(c, "BAD_REQUEST_INVALID_JSON", "Bad request, malformed JSON", nil)
	}
	if err := validate.Struct(dst); err != nil {
		return false, badRequest(c, "BAD_REQUEST", "Request validation failed", validationDetails(err))
	}
	return true, nil
}

// validationDetails formats validator errors as field -> message.
func validationDetails(err error) map[string]string {
	details := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		details["_"] = err.Error()
		return details
	}
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			details[field] = fmt.Sprintf("%s is required", field)
		case "gt", "min":
			details[field] = fmt.Sprintf("%s must be at least %s", field, minParam(e))
		case "max":
			details[field] = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "oneof":
			details[field] = fmt.Sprintf("%s must be one of: %s", field, e.Param())
		case "base64":
			details[field] = fmt.Sprintf("%s must be base64 encoded", field)
		default:
			details[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return details
}

func minParam(e validator.FieldError) string {
	if e.Tag() == "gt" {
		return e.Param() + " (exclusive)"
	}
	return e.Param()
}
