package accesscontrol

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrUnknownTemplate   = errors.New("role template not found")
	ErrUnknownPermission = errors.New("unknown permission key")
	QueryTimeoutDuration = time.Second * 5
)

// Role is an organization-scoped bundle of the 16 permission flags.
type Role struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	Name           string       `json:"name"`
	Icon           string       `json:"icon"`
	TemplateKey    *TemplateKey `json:"template_key,omitempty"`
	Permissions    Permissions  `json:"permissions"`
	IsDeleted      bool         `json:"-"`
	CreatedBy      string       `json:"created_by"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OrganizationAccess binds a user to an organization with one role.
type OrganizationAccess struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	RoleID         string    `json:"role_id"`
	IsDeleted      bool      `json:"-"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
	DeletedBy      string    `json:"deleted_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WarehouseAccess restricts a user to a warehouse within an organization.
type WarehouseAccess struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	WarehouseID    string    `json:"warehouse_id"`
	IsDeleted      bool      `json:"-"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
	DeletedBy      string    `json:"deleted_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PermissionOverride is the per-user exception record layered on a role.
type PermissionOverride struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	OrganizationID string          `json:"organization_id"`
	RoleID         string          `json:"role_id"`
	Permissions    PermissionPatch `json:"permissions"`
	CreatedBy      string          `json:"created_by"`
	UpdatedBy      string          `json:"updated_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// EffectivePermissions is the resolved view for one (user, organization).
// An empty WarehouseAccess means every warehouse is allowed.
type EffectivePermissions struct {
	RoleID          string      `json:"role_id"`
	RoleName        string      `json:"role_name"`
	OrganizationID  string      `json:"organization_id"`
	Permissions     Permissions `json:"permissions"`
	WarehouseAccess []string    `json:"warehouse_access"`
}

// UserOrganization summarises one active assignment for org switching.
type UserOrganization struct {
	AccessID         string    `json:"access_id"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	RoleID           string    `json:"role_id"`
	RoleName         string    `json:"role_name"`
	AssignedAt       time.Time `json:"assigned_at"`
}

// Member is one active assignment inside an organization.
type Member struct {
	AccessID   string    `json:"access_id"`
	UserID     string    `json:"user_id"`
	RoleID     string    `json:"role_id"`
	RoleName   string    `json:"role_name"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Organization is the minimal tenant record used for display names.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
