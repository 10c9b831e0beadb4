package accesscontrol

import (
	"fmt"
	"strings"
)

// TemplateKey identifies a built-in role template.
type TemplateKey string

const (
	TemplateOwner    TemplateKey = "OWNER"
	TemplateAdmin    TemplateKey = "ADMIN"
	TemplateAgent    TemplateKey = "AGENT"
	TemplateCustomer TemplateKey = "CUSTOMER"
	TemplateViewer   TemplateKey = "VIEWER"
)

// RoleTemplate seeds new organization roles. Every template spells out all
// 16 flags.
type RoleTemplate struct {
	Key         TemplateKey `json:"template_key"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon"`
	Permissions Permissions `json:"permissions"`
}

var roleTemplates = [...]RoleTemplate{
	{
		Key:  TemplateOwner,
		Name: "Owner",
		Icon: "crown",
		Permissions: Permissions{
			CanViewReceive: true, CanUpdateReceive: true, CanDeleteReceive: true, CanRestoreReceive: true,
			CanViewDeliver: true, CanUpdateDeliver: true, CanDeleteDeliver: true, CanRestoreDeliver: true,
			CanViewReturn: true, CanUpdateReturn: true, CanDeleteReturn: true, CanRestoreReturn: true,
			CanViewTransfer: true, CanUpdateTransfer: true, CanDeleteTransfer: true, CanRestoreTransfer: true,
		},
	},
	{
		// restoring soft-deleted records is reserved to owners
		Key:  TemplateAdmin,
		Name: "Admin",
		Icon: "shield",
		Permissions: Permissions{
			CanViewReceive: true, CanUpdateReceive: true, CanDeleteReceive: true, CanRestoreReceive: false,
			CanViewDeliver: true, CanUpdateDeliver: true, CanDeleteDeliver: true, CanRestoreDeliver: false,
			CanViewReturn: true, CanUpdateReturn: true, CanDeleteReturn: true, CanRestoreReturn: false,
			CanViewTransfer: true, CanUpdateTransfer: true, CanDeleteTransfer: true, CanRestoreTransfer: false,
		},
	},
	{
		Key:  TemplateAgent,
		Name: "Agent",
		Icon: "truck",
		Permissions: Permissions{
			CanViewReceive: true, CanUpdateReceive: true, CanDeleteReceive: false, CanRestoreReceive: false,
			CanViewDeliver: true, CanUpdateDeliver: true, CanDeleteDeliver: false, CanRestoreDeliver: false,
			CanViewReturn: true, CanUpdateReturn: true, CanDeleteReturn: false, CanRestoreReturn: false,
			CanViewTransfer: true, CanUpdateTransfer: true, CanDeleteTransfer: false, CanRestoreTransfer: false,
		},
	},
	{
		Key:  TemplateCustomer,
		Name: "Customer",
		Icon: "user",
		Permissions: Permissions{
			CanViewReceive: true, CanUpdateReceive: false, CanDeleteReceive: false, CanRestoreReceive: false,
			CanViewDeliver: true, CanUpdateDeliver: false, CanDeleteDeliver: false, CanRestoreDeliver: false,
			CanViewReturn: true, CanUpdateReturn: true, CanDeleteReturn: false, CanRestoreReturn: false,
			CanViewTransfer: false, CanUpdateTransfer: false, CanDeleteTransfer: false, CanRestoreTransfer: false,
		},
	},
	{
		Key:  TemplateViewer,
		Name: "Viewer",
		Icon: "eye",
		Permissions: Permissions{
			CanViewReceive: true, CanUpdateReceive: false, CanDeleteReceive: false, CanRestoreReceive: false,
			CanViewDeliver: true, CanUpdateDeliver: false, CanDeleteDeliver: false, CanRestoreDeliver: false,
			CanViewReturn: true, CanUpdateReturn: false, CanDeleteReturn: false, CanRestoreReturn: false,
			CanViewTransfer: true, CanUpdateTransfer: false, CanDeleteTransfer: false, CanRestoreTransfer: false,
		},
	},
}

// ListTemplates returns the built-in catalog in display order.
func ListTemplates() []RoleTemplate {
	out := make([]RoleTemplate, len(roleTemplates))
	copy(out, roleTemplates[:])
	return out
}

// TemplateByKey looks up a template. Keys are matched case-insensitively.
func TemplateByKey(key TemplateKey) (RoleTemplate, error) {
	for _, t := range roleTemplates {
		if strings.EqualFold(string(t.Key), string(key)) {
			return t, nil
		}
	}
	return RoleTemplate{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
}

// IsValidTemplateKey reports whether s names a catalog template.
func IsValidTemplateKey(s string) bool {
	_, err := TemplateByKey(TemplateKey(s))
	return err == nil
}

// RoleFromTemplate builds an unsaved role carrying the template's flags. A
// non-empty customName replaces the template name.
func RoleFromTemplate(key TemplateKey, organizationID, createdBy, customName string) (*Role, error) {
	t, err := TemplateByKey(key)
	if err != nil {
		return nil, err
	}

	name := t.Name
	if strings.TrimSpace(customName) != "" {
		name = strings.TrimSpace(customName)
	}

	tk := t.Key
	return &Role{
		OrganizationID: organizationID,
		Name:           name,
		Icon:           t.Icon,
		TemplateKey:    &tk,
		Permissions:    t.Permissions,
		CreatedBy:      createdBy,
	}, nil
}

// DefaultCustomRoleIcon is used when a custom role is created without one.
const DefaultCustomRoleIcon = "user-cog"

// CustomRole builds an unsaved role from a sparse flag set. Flags missing
// from the patch are false.
func CustomRole(name, organizationID string, patch PermissionPatch, createdBy, icon string) *Role {
	if icon == "" {
		icon = DefaultCustomRoleIcon
	}
	return &Role{
		OrganizationID: organizationID,
		Name:           strings.TrimSpace(name),
		Icon:           icon,
		Permissions:    Permissions{}.Apply(patch),
		CreatedBy:      createdBy,
	}
}

// IsOwner reports whether the role was seeded from the Owner template.
func (r *Role) IsOwner() bool {
	return r.TemplateKey != nil && *r.TemplateKey == TemplateOwner
}

// CanAdminister reports whether holders of the role may change roles,
// members, overrides and warehouse scope in their organization. Only roles
// seeded from the Owner or Admin template qualify; custom roles never do.
func (r *Role) CanAdminister() bool {
	return r.IsOwner() || (r.TemplateKey != nil && *r.TemplateKey == TemplateAdmin)
}
