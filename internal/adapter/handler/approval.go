package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dolaglobo/mmf-api/internal/core/approval"
)

// ApprovalHandler exposes the staff-side transaction workflow transitions.
type ApprovalHandler struct {
	Gateway *approval.Gateway
}

func (h *ApprovalHandler) VerifyDeposit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Gateway.VerifyDeposit(c.Context(), actingAdmin(c), id, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deposit verified", "transaction": txn})
}

func (h *ApprovalHandler) RejectDeposit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Gateway.RejectDeposit(c.Context(), actingAdmin(c), id, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deposit rejected", "transaction": txn})
}

func (h *ApprovalHandler) ApproveWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Gateway.ApproveWithdrawal(c.Context(), actingAdmin(c), id, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Withdrawal approved", "transaction": txn})
}

func (h *ApprovalHandler) CompleteWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Gateway.CompleteWithdrawal(c.Context(), actingAdmin(c), id, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Withdrawal completed", "transaction": txn})
}

func (h *ApprovalHandler) RejectWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Gateway.RejectWithdrawal(c.Context(), actingAdmin(c), id, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Withdrawal rejected", "transaction": txn})
}

func (h *ApprovalHandler) ReverseWithdrawal(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.Gateway.ReverseWithdrawal(c.Context(), actingAdmin(c), id, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Withdrawal reversed", "transaction": txn})
}
