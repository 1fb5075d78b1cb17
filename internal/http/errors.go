package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"recipebox/internal/drafts"
	"recipebox/internal/extract"
	"recipebox/internal/formats"
	"recipebox/internal/llm"
	"recipebox/internal/scraper"
	"recipebox/internal/services"
	"recipebox/internal/store"
	"recipebox/internal/transport"
)

// statusClientClosedRequest is used when the caller went away mid-request.
const statusClientClosedRequest = 499

type errorMapping struct {
	status int
	code   string
}

// classifyError maps a pipeline or store error to an HTTP status and code.
func classifyError(err error) errorMapping {
	var httpErr *transport.HTTPError
	var netErr *transport.NetworkError
	var fetchErr *services.FetchError

	switch {
	case errors.Is(err, extract.ErrMissingAPIKey):
		return errorMapping{fiber.StatusPreconditionFailed, "LLM_API_KEY_MISSING"}
	case errors.Is(err, extract.ErrExtractionFailed):
		return errorMapping{fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED"}
	case errors.Is(err, llm.ErrNoTextInResponse):
		return errorMapping{fiber.StatusBadGateway, "LLM_NO_TEXT"}
	case errors.Is(err, formats.ErrUnsupportedMediaType):
		return errorMapping{fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"}
	case errors.Is(err, extract.ErrEmptyInput):
		return errorMapping{fiber.StatusBadRequest, "BAD_REQUEST_EMPTY_INPUT"}
	case errors.Is(err, scraper.ErrInvalidURL):
		return errorMapping{fiber.StatusBadRequest, "BAD_REQUEST_INVALID_URL"}
	case errors.Is(err, services.ErrInvalidDate):
		return errorMapping{fiber.StatusBadRequest, "BAD_REQUEST_INVALID_DATE"}
	case errors.Is(err, scraper.ErrDisallowedByRobots):
		return errorMapping{fiber.StatusForbidden, "FETCH_DISALLOWED"}
	case errors.Is(err, scraper.ErrTooManyRedirects):
		return errorMapping{fiber.StatusBadGateway, "FETCH_TOO_MANY_REDIRECTS"}
	case errors.Is(err, scraper.ErrMissingLocationHeader):
		return errorMapping{fiber.StatusBadGateway, "FETCH_MISSING_LOCATION"}
	case errors.Is(err, store.ErrNotFound), errors.Is(err, drafts.ErrNotFound):
		return errorMapping{fiber.StatusNotFound, "NOT_FOUND"}
	case errors.Is(err, store.ErrConflict):
		return errorMapping{fiber.StatusConflict, "CONFLICT"}
	case errors.Is(err, transport.ErrTimeout):
		return errorMapping{fiber.StatusGatewayTimeout, "TIMEOUT"}
	case errors.Is(err, context.Canceled):
		return errorMapping{statusClientClosedRequest, "CANCELED"}
	case errors.As(err, &httpErr):
		if errors.As(err, &fetchErr) {
			return errorMapping{fiber.StatusBadGateway, "FETCH_HTTP_ERROR"}
		}
		return errorMapping{fiber.StatusBadGateway, "LLM_HTTP_ERROR"}
	case errors.As(err, &netErr):
		return errorMapping{fiber.StatusBadGateway, "NETWORK_ERROR"}
	default:
		return errorMapping{fiber.StatusInternalServerError, "INTERNAL_ERROR"}
	}
}

// writeError sends the error envelope for err.
func writeError(c *fiber.Ctx, err error) error {
	m := classifyError(err)

	resp := ErrorResponse{Success: false, Code: m.code, Error: err.Error()}
	var httpErr *transport.HTTPError
	if errors.As(err, &httpErr) {
		resp.Details = fiber.Map{"status": httpErr.StatusCode, "body": truncate(httpErr.Body, 500)}
	}

	if m.status >= fiber.StatusInternalServerError {
		loggerFrom(c).Warn("request_failed", "request_id", c.Locals("request_id"), "code", m.code, "error", err)
	}
	return c.Status(m.status).JSON(resp)
}

func badRequest(c *fiber.Ctx, code, msg string, details interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success: false,
		Code:    code,
		Error:   msg,
		Details: details,
	})
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
