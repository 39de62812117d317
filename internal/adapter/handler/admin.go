package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/admins"
	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/ledger"
	"github.com/dolaglobo/mmf-api/internal/core/security"
)

// TransactionLister is the read surface the admin screens need.
type TransactionLister interface {
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error)
}

type AdminHandler struct {
	Admins       *admins.Service
	Ledger       *ledger.Service
	Transactions TransactionLister
	Secret       string
}

type adminRegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AdminHandler) Register(c *fiber.Ctx) error {
	var req adminRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	admin, err := h.Admins.Register(c.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return fail(c, err)
	}
	token, err := security.IssueToken(h.Secret, admin.ID, "admin")
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"admin":        admin,
	})
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	admin, err := h.Admins.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	token, err := security.IssueToken(h.Secret, admin.ID, "admin")
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"admin":        admin,
	})
}

func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	customers, total, err := h.Admins.Customers(c.Context(), domain.CustomerFilter{
		Search: c.Query("search"),
		Page:   pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"customers": customers, "total": total})
}

// ListTransactions is the staff view with the full filter set.
func (h *AdminHandler) ListTransactions(c *fiber.Ctx) error {
	filter := domain.TransactionFilter{
		Type:   domain.TransactionType(c.Query("type")),
		Status: domain.TransactionStatus(c.Query("status")),
		Page:   pageQuery(c),
	}
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, domain.Validationf("invalid customer_id"))
		}
		filter.CustomerID = &id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fail(c, domain.Validationf("invalid from date"))
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fail(c, domain.Validationf("invalid to date"))
		}
		filter.To = &t
	}

	txns, total, err := h.Transactions.ListTransactions(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txns, "total": total})
}

func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	stats, err := h.Admins.Stats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

type adjustRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
	Reason    string          `json:"reason"`
}

func (h *AdminHandler) AdjustBalance(c *fiber.Ctx) error {
	accountID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	txn, err := h.Ledger.Adjust(c.Context(), actingAdmin(c), accountID, req.Amount, ledger.AdjustDirection(req.Direction), req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Balance adjusted", "transaction": txn})
}

func (h *AdminHandler) DeactivateCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	req, err := parseNote(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Admins.DeactivateCustomer(c.Context(), actingAdmin(c), id, req.Reason); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer deactivated"})
}

func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	list, err := h.Admins.List(c.Context(), actingAdmin(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"admins": list})
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	admin, err := h.Admins.ChangeRole(c.Context(), actingAdmin(c), id, req.Role)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated", "admin": admin})
}
