// Package admins manages staff accounts: registration with the bootstrap
// rule, login, role changes and customer administration.
package admins

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/security"
)

type Store interface {
	CountAdmins(ctx context.Context) (int, error)
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	AdminByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	AdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
	UpdateAdminRole(ctx context.Context, id uuid.UUID, role domain.Role, entry *domain.AuditEntry) error
	SetCustomerActive(ctx context.Context, customerID uuid.UUID, active bool, entry *domain.AuditEntry) error
	ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error)
	SumBalances(ctx context.Context) (decimal.Decimal, error)
	CountCustomers(ctx context.Context) (int, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates a staff account. The first admin ever registered is
// forced to super_admin so the system always has one; everyone after that
// starts as view_only until a super admin raises them.
func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Validationf("valid email is required")
	}
	if name == "" {
		return nil, domain.Validationf("name is required")
	}
	if len(password) < 8 {
		return nil, domain.Validationf("password must be at least 8 characters")
	}
	if existing, err := s.store.AdminByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.Validationf("email already registered")
	}

	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	role := domain.RoleViewOnly
	if count == 0 {
		role = domain.RoleSuperAdmin
	}

	hash, err := security.HashPIN(password)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	slog.Info("Admin registered", "admin_id", admin.ID, "role", role)
	return admin, nil
}

// Login verifies email + password and returns the admin.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Admin, error) {
	admin, err := s.store.AdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, domain.Validationf("invalid email or password")
	}
	if !admin.IsActive || !security.VerifyPIN(password, admin.PasswordHash) {
		return nil, domain.Validationf("invalid email or password")
	}
	return admin, nil
}

// Get returns one admin by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	return s.store.AdminByID(ctx, id)
}

// List returns all staff accounts. Super admin only.
func (s *Service) List(ctx context.Context, actor *domain.Admin) ([]domain.Admin, error) {
	if !actor.Role.Can(domain.ActionManageAdmins) {
		return nil, domain.ErrForbidden
	}
	return s.store.ListAdmins(ctx)
}

// ChangeRole updates another admin's tier. Super admin only; admins cannot
// change their own role.
func (s *Service) ChangeRole(ctx context.Context, actor *domain.Admin, targetID uuid.UUID, role domain.Role) (*domain.Admin, error) {
	if !actor.Role.Can(domain.ActionManageAdmins) {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, domain.Validationf("unknown role %q", role)
	}
	if actor.ID == targetID {
		return nil, domain.Validationf("cannot change your own role")
	}
	target, err := s.store.AdminByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		AdminID:    actor.ID,
		AdminName:  actor.Name,
		Action:     "change_admin_role",
		TargetType: "admin",
		TargetID:   targetID.String(),
		Detail:     map[string]any{"from": string(target.Role), "to": string(role)},
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.UpdateAdminRole(ctx, targetID, role, entry); err != nil {
		return nil, err
	}
	slog.Info("Admin role changed", "target_id", targetID, "role", role, "by", actor.ID)
	return s.store.AdminByID(ctx, targetID)
}

// DeactivateCustomer blocks a customer from transacting. The record and all
// history stay; nothing is deleted.
func (s *Service) DeactivateCustomer(ctx context.Context, actor *domain.Admin, customerID uuid.UUID, reason string) error {
	if !actor.Role.Can(domain.ActionDeactivateCustomer) {
		return domain.ErrForbidden
	}
	if reason == "" {
		return domain.Validationf("deactivation reason is required")
	}
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		AdminID:    actor.ID,
		AdminName:  actor.Name,
		Action:     "deactivate_customer",
		TargetType: "customer",
		TargetID:   customerID.String(),
		Detail:     map[string]any{"reason": reason},
		CreatedAt:  time.Now().UTC(),
	}
	return s.store.SetCustomerActive(ctx, customerID, false, entry)
}

// Customers lists wallet holders with search and pagination. Any staff role
// may read.
func (s *Service) Customers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	filter.Page = filter.Page.Normalize()
	return s.store.ListCustomers(ctx, filter)
}

// Overview is the fund-level read: assets under management and headcount.
type Overview struct {
	AUM           decimal.Decimal `json:"aum"`
	CustomerCount int             `json:"customer_count"`
}

// Stats returns the fund overview.
func (s *Service) Stats(ctx context.Context) (*Overview, error) {
	aum, err := s.store.SumBalances(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{AUM: aum, CustomerCount: count}, nil
}
