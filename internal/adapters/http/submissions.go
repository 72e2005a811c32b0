package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/ecobin/internal/core/domain"
)

// SubmitBinHandler accepts a proposed collection point for review.
func SubmitBinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sub domain.BinSubmission
		if err := c.BodyParser(&sub); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		receipt, err := deps.Submissions.SubmitBin(c.UserContext(), sub)
		if err != nil {
			return errFromApp(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(receipt)
	}
}

// SubmitContactHandler accepts a contact form message.
func SubmitContactHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var msg domain.ContactMessage
		if err := c.BodyParser(&msg); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		receipt, err := deps.Submissions.SubmitContact(c.UserContext(), msg)
		if err != nil {
			return errFromApp(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(receipt)
	}
}
