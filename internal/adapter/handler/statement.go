package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/statement"
)

type StatementHandler struct {
	Statements *statement.Service
}

func (h *StatementHandler) Summary(c *fiber.Ctx) error {
	months := c.QueryInt("months", 3)
	stmt, err := h.Statements.Summarize(c.Context(), customerID(c), months)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stmt)
}

type statementRequest struct {
	Months int    `json:"months"`
	Email  string `json:"email"`
}

func (h *StatementHandler) Request(c *fiber.Ctx) error {
	var req statementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	created, err := h.Statements.Request(c.Context(), customerID(c), req.Months, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *StatementHandler) MyRequests(c *fiber.Ctx) error {
	id := customerID(c)
	reqs, total, err := h.Statements.List(c.Context(), domain.StatementFilter{
		CustomerID: &id,
		Page:       pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"requests": reqs, "total": total})
}

// --- admin side ---

func (h *StatementHandler) AdminList(c *fiber.Ctx) error {
	reqs, total, err := h.Statements.List(c.Context(), domain.StatementFilter{
		Status: domain.StatementStatus(c.Query("status")),
		Page:   pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"requests": reqs, "total": total})
}

type noteRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

func parseNote(c *fiber.Ctx) (noteRequest, error) {
	var req noteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, domain.Validationf("invalid body")
		}
	}
	return req, nil
}

func (h *StatementHandler) Start(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Statements.Start(c.Context(), actingAdmin(c), id, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *StatementHandler) Complete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Statements.Complete(c.Context(), actingAdmin(c), id, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *StatementHandler) Send(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Statements.MarkSent(c.Context(), actingAdmin(c), id, req.Note)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *StatementHandler) Reject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.Statements.Reject(c.Context(), actingAdmin(c), id, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
