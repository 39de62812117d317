package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dolaglobo/mmf-api/internal/core/wallet"
)

type AccountHandler struct {
	Wallet *wallet.Service
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	snapshot, err := h.Wallet.Account(c.Context(), customerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(snapshot)
}

func (h *AccountHandler) GetProfile(c *fiber.Ctx) error {
	customer, err := h.Wallet.Profile(c.Context(), customerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(customer)
}

func (h *AccountHandler) ListTransactions(c *fiber.Ctx) error {
	txns, total, err := h.Wallet.Transactions(c.Context(), customerID(c), pageQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txns, "total": total})
}
