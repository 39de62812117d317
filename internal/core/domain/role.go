package domain

// Role is an admin's permission tier.
type Role string

const (
	RoleViewOnly           Role = "view_only"
	RoleTransactionManager Role = "transaction_manager"
	RoleSuperAdmin         Role = "super_admin"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleViewOnly, RoleTransactionManager, RoleSuperAdmin:
		return true
	}
	return false
}

// Action is a privileged operation an admin may attempt.
type Action string

const (
	ActionVerifyDeposit         Action = "verify_deposit"
	ActionRejectDeposit         Action = "reject_deposit"
	ActionApproveWithdrawal     Action = "approve_withdrawal"
	ActionRejectWithdrawal      Action = "reject_withdrawal"
	ActionCompleteWithdrawal    Action = "complete_withdrawal"
	ActionReverseWithdrawal     Action = "reverse_withdrawal"
	ActionDistributeInterest    Action = "distribute_interest"
	ActionDistributeInterestAll Action = "distribute_interest_all"
	ActionAdjustBalance         Action = "adjust_balance"
	ActionProcessStatement      Action = "process_statement"
	ActionViewAuditLog          Action = "view_audit_log"
	ActionManageAdmins          Action = "manage_admins"
	ActionDeactivateCustomer    Action = "deactivate_customer"
)

// levels orders the tiers; a role inherits everything below it.
var levels = map[Role]int{
	RoleViewOnly:           0,
	RoleTransactionManager: 1,
	RoleSuperAdmin:         2,
}

// required maps each action to the minimum role that may perform it.
// This is the single source of truth for authorization; handlers and
// services must not re-implement role checks anywhere else.
var required = map[Action]Role{
	ActionVerifyDeposit:         RoleTransactionManager,
	ActionRejectDeposit:         RoleTransactionManager,
	ActionApproveWithdrawal:     RoleTransactionManager,
	ActionRejectWithdrawal:      RoleTransactionManager,
	ActionCompleteWithdrawal:    RoleTransactionManager,
	ActionProcessStatement:      RoleTransactionManager,
	ActionDistributeInterest:    RoleTransactionManager,
	ActionReverseWithdrawal:     RoleSuperAdmin,
	ActionDistributeInterestAll: RoleSuperAdmin,
	ActionAdjustBalance:         RoleSuperAdmin,
	ActionViewAuditLog:          RoleSuperAdmin,
	ActionManageAdmins:          RoleSuperAdmin,
	ActionDeactivateCustomer:    RoleSuperAdmin,
}

// Can reports whether the role is allowed to perform the action.
func (r Role) Can(a Action) bool {
	min, ok := required[a]
	if !ok {
		return false
	}
	return levels[r] >= levels[min]
}
