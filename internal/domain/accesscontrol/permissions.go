package accesscontrol

import (
	"fmt"
	"strings"
)

// PermissionKey names one of the 16 action-domain × operation flags.
type PermissionKey string

const (
	CanViewReceive     PermissionKey = "canViewReceive"
	CanUpdateReceive   PermissionKey = "canUpdateReceive"
	CanDeleteReceive   PermissionKey = "canDeleteReceive"
	CanRestoreReceive  PermissionKey = "canRestoreReceive"
	CanViewDeliver     PermissionKey = "canViewDeliver"
	CanUpdateDeliver   PermissionKey = "canUpdateDeliver"
	CanDeleteDeliver   PermissionKey = "canDeleteDeliver"
	CanRestoreDeliver  PermissionKey = "canRestoreDeliver"
	CanViewReturn      PermissionKey = "canViewReturn"
	CanUpdateReturn    PermissionKey = "canUpdateReturn"
	CanDeleteReturn    PermissionKey = "canDeleteReturn"
	CanRestoreReturn   PermissionKey = "canRestoreReturn"
	CanViewTransfer    PermissionKey = "canViewTransfer"
	CanUpdateTransfer  PermissionKey = "canUpdateTransfer"
	CanDeleteTransfer  PermissionKey = "canDeleteTransfer"
	CanRestoreTransfer PermissionKey = "canRestoreTransfer"
)

// permissionKeys is the canonical flag order. Column lists, scan targets and
// query args are all generated from it.
var permissionKeys = [...]PermissionKey{
	CanViewReceive, CanUpdateReceive, CanDeleteReceive, CanRestoreReceive,
	CanViewDeliver, CanUpdateDeliver, CanDeleteDeliver, CanRestoreDeliver,
	CanViewReturn, CanUpdateReturn, CanDeleteReturn, CanRestoreReturn,
	CanViewTransfer, CanUpdateTransfer, CanDeleteTransfer, CanRestoreTransfer,
}

// PermissionKeys returns all permission keys in canonical order.
func PermissionKeys() []PermissionKey {
	keys := make([]PermissionKey, len(permissionKeys))
	copy(keys[:], permissionKeys[:])
	return keys
}

// ParsePermissionKey validates a key received at an API boundary.
func ParsePermissionKey(s string) (PermissionKey, error) {
	for _, k := range permissionKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
}

// IsValidPermissionKey reports whether s names a known flag.
func IsValidPermissionKey(s string) bool {
	_, err := ParsePermissionKey(s)
	return err == nil
}

// Column returns the snake_case column that stores the flag, e.g.
// canViewReceive -> can_view_receive.
func (k PermissionKey) Column() string {
	var b strings.Builder
	for i, r := range string(k) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Permissions is the fully resolved 16-flag set carried by roles, templates
// and effective permissions.
type Permissions struct {
	CanViewReceive     bool `json:"canViewReceive"`
	CanUpdateReceive   bool `json:"canUpdateReceive"`
	CanDeleteReceive   bool `json:"canDeleteReceive"`
	CanRestoreReceive  bool `json:"canRestoreReceive"`
	CanViewDeliver     bool `json:"canViewDeliver"`
	CanUpdateDeliver   bool `json:"canUpdateDeliver"`
	CanDeleteDeliver   bool `json:"canDeleteDeliver"`
	CanRestoreDeliver  bool `json:"canRestoreDeliver"`
	CanViewReturn      bool `json:"canViewReturn"`
	CanUpdateReturn    bool `json:"canUpdateReturn"`
	CanDeleteReturn    bool `json:"canDeleteReturn"`
	CanRestoreReturn   bool `json:"canRestoreReturn"`
	CanViewTransfer    bool `json:"canViewTransfer"`
	CanUpdateTransfer  bool `json:"canUpdateTransfer"`
	CanDeleteTransfer  bool `json:"canDeleteTransfer"`
	CanRestoreTransfer bool `json:"canRestoreTransfer"`
}

func (p *Permissions) field(k PermissionKey) *bool {
	switch k {
	case CanViewReceive:
		return &p.CanViewReceive
	case CanUpdateReceive:
		return &p.CanUpdateReceive
	case CanDeleteReceive:
		return &p.CanDeleteReceive
	case CanRestoreReceive:
		return &p.CanRestoreReceive
	case CanViewDeliver:
		return &p.CanViewDeliver
	case CanUpdateDeliver:
		return &p.CanUpdateDeliver
	case CanDeleteDeliver:
		return &p.CanDeleteDeliver
	case CanRestoreDeliver:
		return &p.CanRestoreDeliver
	case CanViewReturn:
		return &p.CanViewReturn
	case CanUpdateReturn:
		return &p.CanUpdateReturn
	case CanDeleteReturn:
		return &p.CanDeleteReturn
	case CanRestoreReturn:
		return &p.CanRestoreReturn
	case CanViewTransfer:
		return &p.CanViewTransfer
	case CanUpdateTransfer:
		return &p.CanUpdateTransfer
	case CanDeleteTransfer:
		return &p.CanDeleteTransfer
	case CanRestoreTransfer:
		return &p.CanRestoreTransfer
	}
	return nil
}

// Get returns the flag value; unknown keys are denied.
func (p Permissions) Get(k PermissionKey) bool {
	if f := p.field(k); f != nil {
		return *f
	}
	return false
}

// Set assigns a flag. Unknown keys are ignored.
func (p *Permissions) Set(k PermissionKey, v bool) {
	if f := p.field(k); f != nil {
		*f = v
	}
}

// Apply layers a sparse patch over p flag by flag: defined patch flags win,
// undefined flags keep p's value.
func (p Permissions) Apply(patch PermissionPatch) Permissions {
	out := p
	for _, k := range permissionKeys {
		if v := patch.Get(k); v != nil {
			out.Set(k, *v)
		}
	}
	return out
}

// Covers reports whether every flag granted by other is also granted by p.
func (p Permissions) Covers(other Permissions) bool {
	for _, k := range permissionKeys {
		if other.Get(k) && !p.Get(k) {
			return false
		}
	}
	return true
}

// scanTargets returns pointers to each flag in canonical order.
func (p *Permissions) scanTargets() []any {
	targets := make([]any, 0, len(permissionKeys))
	for _, k := range permissionKeys {
		targets = append(targets, p.field(k))
	}
	return targets
}

func (p Permissions) args() []any {
	args := make([]any, 0, len(permissionKeys))
	for _, k := range permissionKeys {
		args = append(args, p.Get(k))
	}
	return args
}

// PermissionPatch is a sparse flag set. A nil field means "inherit".
type PermissionPatch struct {
	CanViewReceive     *bool `json:"canViewReceive,omitempty"`
	CanUpdateReceive   *bool `json:"canUpdateReceive,omitempty"`
	CanDeleteReceive   *bool `json:"canDeleteReceive,omitempty"`
	CanRestoreReceive  *bool `json:"canRestoreReceive,omitempty"`
	CanViewDeliver     *bool `json:"canViewDeliver,omitempty"`
	CanUpdateDeliver   *bool `json:"canUpdateDeliver,omitempty"`
	CanDeleteDeliver   *bool `json:"canDeleteDeliver,omitempty"`
	CanRestoreDeliver  *bool `json:"canRestoreDeliver,omitempty"`
	CanViewReturn      *bool `json:"canViewReturn,omitempty"`
	CanUpdateReturn    *bool `json:"canUpdateReturn,omitempty"`
	CanDeleteReturn    *bool `json:"canDeleteReturn,omitempty"`
	CanRestoreReturn   *bool `json:"canRestoreReturn,omitempty"`
	CanViewTransfer    *bool `json:"canViewTransfer,omitempty"`
	CanUpdateTransfer  *bool `json:"canUpdateTransfer,omitempty"`
	CanDeleteTransfer  *bool `json:"canDeleteTransfer,omitempty"`
	CanRestoreTransfer *bool `json:"canRestoreTransfer,omitempty"`
}

func (p *PermissionPatch) field(k PermissionKey) **bool {
	switch k {
	case CanViewReceive:
		return &p.CanViewReceive
	case CanUpdateReceive:
		return &p.CanUpdateReceive
	case CanDeleteReceive:
		return &p.CanDeleteReceive
	case CanRestoreReceive:
		return &p.CanRestoreReceive
	case CanViewDeliver:
		return &p.CanViewDeliver
	case CanUpdateDeliver:
		return &p.CanUpdateDeliver
	case CanDeleteDeliver:
		return &p.CanDeleteDeliver
	case CanRestoreDeliver:
		return &p.CanRestoreDeliver
	case CanViewReturn:
		return &p.CanViewReturn
	case CanUpdateReturn:
		return &p.CanUpdateReturn
	case CanDeleteReturn:
		return &p.CanDeleteReturn
	case CanRestoreReturn:
		return &p.CanRestoreReturn
	case CanViewTransfer:
		return &p.CanViewTransfer
	case CanUpdateTransfer:
		return &p.CanUpdateTransfer
	case CanDeleteTransfer:
		return &p.CanDeleteTransfer
	case CanRestoreTransfer:
		return &p.CanRestoreTransfer
	}
	return nil
}

// Get returns the flag or nil when it is not defined.
func (p PermissionPatch) Get(k PermissionKey) *bool {
	if f := p.field(k); f != nil && *f != nil {
		v := **f
		return &v
	}
	return nil
}

// Set defines a flag.
func (p *PermissionPatch) Set(k PermissionKey, v bool) {
	if f := p.field(k); f != nil {
		*f = &v
	}
}

// Merge returns p with every flag defined in next written over it. Flags
// next leaves undefined keep their previous value.
func (p PermissionPatch) Merge(next PermissionPatch) PermissionPatch {
	out := p.clone()
	for _, k := range permissionKeys {
		if v := next.Get(k); v != nil {
			out.Set(k, *v)
		}
	}
	return out
}

// IsEmpty reports whether no flag is defined.
func (p PermissionPatch) IsEmpty() bool {
	for _, k := range permissionKeys {
		if p.Get(k) != nil {
			return false
		}
	}
	return true
}

func (p PermissionPatch) clone() PermissionPatch {
	var out PermissionPatch
	for _, k := range permissionKeys {
		if v := p.Get(k); v != nil {
			out.Set(k, *v)
		}
	}
	return out
}

func (p PermissionPatch) args() []any {
	args := make([]any, 0, len(permissionKeys))
	for _, k := range permissionKeys {
		args = append(args, p.Get(k))
	}
	return args
}

// PatchFromMap converts a request map into a patch, rejecting unknown keys.
func PatchFromMap(m map[string]bool) (PermissionPatch, error) {
	var patch PermissionPatch
	for name, v := range m {
		k, err := ParsePermissionKey(name)
		if err != nil {
			return PermissionPatch{}, err
		}
		patch.Set(k, v)
	}
	return patch, nil
}
