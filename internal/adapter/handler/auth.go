package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dolaglobo/mmf-api/internal/core/security"
	"github.com/dolaglobo/mmf-api/internal/core/wallet"
)

type AuthHandler struct {
	Wallet *wallet.Service
	Secret string
}

type signupRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	PIN   string `json:"pin"`
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	customer, err := h.Wallet.Signup(c.Context(), req.Phone, req.Name, req.PIN)
	if err != nil {
		return fail(c, err)
	}

	token, err := security.IssueToken(h.Secret, customer.ID, "customer")
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         customer,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	customer, err := h.Wallet.Login(c.Context(), req.Phone, req.PIN)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid phone number or PIN"})
	}

	token, err := security.IssueToken(h.Secret, customer.ID, "customer")
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         customer,
	})
}
