package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/wallet"
)

// MobileMoneyHandler covers the paybill boundary: deposit initiation, the
// caller-asserted payment confirmation, and withdrawal requests.
type MobileMoneyHandler struct {
	Wallet *wallet.Service
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *MobileMoneyHandler) InitiateDeposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	txn, instructions, err := h.Wallet.InitiateDeposit(c.Context(), customerID(c), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Deposit initiated",
		"transaction_id": txn.ID,
		"amount":         txn.Amount,
		"instructions":   instructions,
	})
}

func (h *MobileMoneyHandler) ConfirmDeposit(c *fiber.Ctx) error {
	txnID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Wallet.ConfirmDeposit(c.Context(), customerID(c), txnID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Deposit confirmed, awaiting verification",
		"transaction": txn,
	})
}

func (h *MobileMoneyHandler) RequestWithdrawal(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	txn, err := h.Wallet.RequestWithdrawal(c.Context(), customerID(c), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Withdrawal requested",
		"transaction_id": txn.ID,
		"amount":         txn.Amount,
		"destination":    txn.MpesaNumber,
	})
}
