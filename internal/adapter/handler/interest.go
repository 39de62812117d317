package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/interest"
)

type InterestHandler struct {
	Engine *interest.Engine
}

type distributeRequest struct {
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	AnnualRate decimal.Decimal `json:"annual_rate,omitempty"`
}

// Distribute runs the daily accrual: for one customer when customer_id is
// given, otherwise across every eligible account.
func (h *InterestHandler) Distribute(c *fiber.Ctx) error {
	var req distributeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
	}

	admin := actingAdmin(c)
	if req.CustomerID != nil {
		txn, err := h.Engine.DistributeOne(c.Context(), admin, *req.CustomerID, req.AnnualRate)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Interest credited", "transaction": txn})
	}

	result, err := h.Engine.DistributeAll(c.Context(), admin, req.AnnualRate)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
