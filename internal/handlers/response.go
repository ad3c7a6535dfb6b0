package handlers

import (
	"errors"
	"strings"

	"storefront/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindAuth:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err in the JSON envelope. Domain errors keep their
// message and code; anything else is logged and reported as a 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	appErr, ok := apperr.As(err)
	if !ok {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong. Please try again later.",
			"error":   "InternalError",
		})
	}

	body := fiber.Map{
		"success": false,
		"message": appErr.Message,
		"error":   appErr.Code,
	}
	if appErr.Subject != "" {
		body["subject"] = appErr.Subject
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	return c.Status(statusOf(appErr.Kind)).JSON(body)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
		"error":   "InvalidRequestBody",
	})
}

// ErrorHandler renders errors escaping route handlers (including Fiber's own
// 404/405) in the same envelope.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"message": fe.Message,
				"error":   strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", ""),
			})
		}
		return respondError(c, logger, err)
	}
}

// splitCSV splits a comma separated query value, dropping empty entries.
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
