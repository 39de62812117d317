package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dolaglobo/mmf-api/internal/adapter/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth        *AuthHandler
	Account     *AccountHandler
	MobileMoney *MobileMoneyHandler
	Statement   *StatementHandler
	Approval    *ApprovalHandler
	Interest    *InterestHandler
	Admin       *AdminHandler
	Audit       *AuditHandler

	Secret      string
	AdminLoader middleware.AdminLoader
	// Extra middleware for the money-moving POSTs (idempotency); nil-able.
	RequestGuards []fiber.Handler
}

// Register mounts the API on the app under /api.
func (h *Handlers) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "Dolaglobo Finance MMF"})
	})

	// Public
	api.Post("/auth/signup", h.Auth.Signup)
	api.Post("/auth/login", h.Auth.Login)
	api.Post("/admin/auth/register", h.Admin.Register)
	api.Post("/admin/auth/login", h.Admin.Login)

	// Customer
	customer := api.Group("", middleware.CustomerProtected(h.Secret))
	customer.Get("/account", h.Account.GetAccount)
	customer.Get("/user/profile", h.Account.GetProfile)
	customer.Get("/transactions", h.Account.ListTransactions)
	customer.Get("/statement", h.Statement.Summary)
	customer.Post("/statements", h.Statement.Request)
	customer.Get("/statements", h.Statement.MyRequests)

	money := customer.Group("", h.RequestGuards...)
	money.Post("/deposits", h.MobileMoney.InitiateDeposit)
	money.Post("/deposits/:id/confirm", h.MobileMoney.ConfirmDeposit)
	money.Post("/withdrawals", h.MobileMoney.RequestWithdrawal)

	// Staff
	admin := api.Group("/admin", middleware.AdminProtected(h.Secret, h.AdminLoader))
	admin.Get("/customers", h.Admin.ListCustomers)
	admin.Post("/customers/:id/deactivate", h.Admin.DeactivateCustomer)
	admin.Get("/transactions", h.Admin.ListTransactions)
	admin.Get("/overview", h.Admin.Overview)
	admin.Post("/accounts/:id/adjust", h.Admin.AdjustBalance)

	admin.Post("/deposits/:id/verify", h.Approval.VerifyDeposit)
	admin.Post("/deposits/:id/reject", h.Approval.RejectDeposit)
	admin.Post("/withdrawals/:id/approve", h.Approval.ApproveWithdrawal)
	admin.Post("/withdrawals/:id/complete", h.Approval.CompleteWithdrawal)
	admin.Post("/withdrawals/:id/reject", h.Approval.RejectWithdrawal)
	admin.Post("/withdrawals/:id/reverse", h.Approval.ReverseWithdrawal)

	admin.Post("/interest/distribute", h.Interest.Distribute)

	admin.Get("/statements", h.Statement.AdminList)
	admin.Post("/statements/:id/start", h.Statement.Start)
	admin.Post("/statements/:id/complete", h.Statement.Complete)
	admin.Post("/statements/:id/send", h.Statement.Send)
	admin.Post("/statements/:id/reject", h.Statement.Reject)

	admin.Get("/audit", h.Audit.List)
	admin.Get("/admins", h.Admin.ListAdmins)
	admin.Patch("/admins/:id/role", h.Admin.ChangeRole)
}
