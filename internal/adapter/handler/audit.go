package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dolaglobo/mmf-api/internal/core/audit"
)

type AuditHandler struct {
	Audit *audit.Service
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	entries, total, err := h.Audit.List(c.Context(), actingAdmin(c), pageQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "total": total})
}
