package accesscontrol

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"parcelhub/internal/params"

	"github.com/google/uuid"
)

// memoryDB backs the in-memory stores. One mutex guards every table so each
// upsert is atomic, mirroring the unique indexes of the Postgres schema.
type memoryDB struct {
	mu            sync.RWMutex
	organizations map[string]Organization
	roles         map[string]Role
	access        map[string]OrganizationAccess
	warehouses    map[string]WarehouseAccess
	overrides     map[string]PermissionOverride
}

// MemoryStores groups in-memory implementations of every store sharing one
// dataset. Used by STORAGE_DRIVER=memory and tests.
type MemoryStores struct {
	Organizations *MemoryOrganizationStore
	Roles         *MemoryRoleStore
	Assignments   *MemoryAssignmentStore
	Warehouses    *MemoryWarehouseStore
	Overrides     *MemoryOverrideStore
}

func NewMemoryStores() *MemoryStores {
	db := &memoryDB{
		organizations: make(map[string]Organization),
		roles:         make(map[string]Role),
		access:        make(map[string]OrganizationAccess),
		warehouses:    make(map[string]WarehouseAccess),
		overrides:     make(map[string]PermissionOverride),
	}
	return &MemoryStores{
		Organizations: &MemoryOrganizationStore{db: db},
		Roles:         &MemoryRoleStore{db: db},
		Assignments:   &MemoryAssignmentStore{db: db},
		Warehouses:    &MemoryWarehouseStore{db: db},
		Overrides:     &MemoryOverrideStore{db: db},
	}
}

// organizations

type MemoryOrganizationStore struct {
	db *memoryDB
}

var _ OrganizationStore = (*MemoryOrganizationStore)(nil)

func (s *MemoryOrganizationStore) Create(_ context.Context, id, name, createdBy string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.organizations[id]; ok {
		return fmt.Errorf("organization %s: %w", id, ErrConflict)
	}
	s.db.organizations[id] = Organization{ID: id, Name: name, CreatedBy: createdBy, CreatedAt: time.Now()}
	return nil
}

func (s *MemoryOrganizationStore) Upsert(_ context.Context, id, name, createdBy string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if org, ok := s.db.organizations[id]; ok {
		org.Name = name
		s.db.organizations[id] = org
		return nil
	}
	s.db.organizations[id] = Organization{ID: id, Name: name, CreatedBy: createdBy, CreatedAt: time.Now()}
	return nil
}

// roles

type MemoryRoleStore struct {
	db *memoryDB
}

var _ RoleStore = (*MemoryRoleStore)(nil)

func (s *MemoryRoleStore) CreateFromTemplate(_ context.Context, key TemplateKey, organizationID, createdBy, customName string) (string, error) {
	role, err := RoleFromTemplate(key, organizationID, createdBy, customName)
	if err != nil {
		return "", err
	}
	return s.insert(role), nil
}

func (s *MemoryRoleStore) CreateCustom(_ context.Context, name, organizationID string, permissions PermissionPatch, createdBy, icon string) (string, error) {
	return s.insert(CustomRole(name, organizationID, permissions, createdBy, icon)), nil
}

func (s *MemoryRoleStore) insert(role *Role) string {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now()
	role.ID = uuid.NewString()
	role.CreatedAt = now
	role.UpdatedAt = now
	s.db.roles[role.ID] = *role
	return role.ID
}

func (s *MemoryRoleStore) Get(_ context.Context, roleID string) (*Role, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	role, ok := s.db.roles[roleID]
	if !ok || role.IsDeleted {
		return nil, ErrNotFound
	}
	return &role, nil
}

func (s *MemoryRoleStore) ListForOrganization(_ context.Context, organizationID string) ([]Role, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	roles := []Role{}
	for _, role := range s.db.roles {
		if role.OrganizationID == organizationID && !role.IsDeleted {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].CreatedAt.Before(roles[j].CreatedAt) })
	return roles, nil
}

func (s *MemoryRoleStore) Delete(_ context.Context, roleID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	role, ok := s.db.roles[roleID]
	if !ok || role.IsDeleted {
		return ErrNotFound
	}
	role.IsDeleted = true
	role.UpdatedAt = time.Now()
	s.db.roles[roleID] = role
	return nil
}

// assignments

type MemoryAssignmentStore struct {
	db *memoryDB
}

var _ AssignmentStore = (*MemoryAssignmentStore)(nil)

// activeAccess must be called with the lock held.
func (s *MemoryAssignmentStore) activeAccess(userID, organizationID string) (OrganizationAccess, bool) {
	for _, a := range s.db.access {
		if a.UserID == userID && a.OrganizationID == organizationID && !a.IsDeleted {
			return a, true
		}
	}
	return OrganizationAccess{}, false
}

func (s *MemoryAssignmentStore) Assign(_ context.Context, userID, organizationID, roleID, assignedBy string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now()
	if a, ok := s.activeAccess(userID, organizationID); ok {
		a.RoleID = roleID
		a.UpdatedBy = assignedBy
		a.UpdatedAt = now
		s.db.access[a.ID] = a
		return a.ID, nil
	}

	a := OrganizationAccess{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: organizationID,
		RoleID:         roleID,
		CreatedBy:      assignedBy,
		UpdatedBy:      assignedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.db.access[a.ID] = a
	return a.ID, nil
}

func (s *MemoryAssignmentStore) Revoke(_ context.Context, userID, organizationID, removedBy string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.activeAccess(userID, organizationID)
	if !ok {
		return ErrNotFound
	}
	a.IsDeleted = true
	a.DeletedBy = removedBy
	a.UpdatedBy = removedBy
	a.UpdatedAt = time.Now()
	s.db.access[a.ID] = a
	return nil
}

func (s *MemoryAssignmentStore) GetActiveWithRole(_ context.Context, userID, organizationID string) (*OrganizationAccess, *Role, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	a, ok := s.activeAccess(userID, organizationID)
	if !ok {
		return nil, nil, ErrNotFound
	}
	role, ok := s.db.roles[a.RoleID]
	if !ok || role.IsDeleted {
		return nil, nil, ErrNotFound
	}
	return &a, &role, nil
}

func (s *MemoryAssignmentStore) ListUserOrganizations(_ context.Context, userID string) ([]UserOrganization, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []UserOrganization{}
	for _, a := range s.db.access {
		if a.UserID != userID || a.IsDeleted {
			continue
		}
		role, ok := s.db.roles[a.RoleID]
		if !ok || role.IsDeleted {
			continue
		}
		out = append(out, UserOrganization{
			AccessID:         a.ID,
			OrganizationID:   a.OrganizationID,
			OrganizationName: s.db.organizations[a.OrganizationID].Name,
			RoleID:           a.RoleID,
			RoleName:         role.Name,
			AssignedAt:       a.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.Before(out[j].AssignedAt) })
	return out, nil
}

func (s *MemoryAssignmentStore) ListMembers(_ context.Context, organizationID string, p params.Pagination) ([]Member, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	all := []Member{}
	for _, a := range s.db.access {
		if a.OrganizationID != organizationID || a.IsDeleted {
			continue
		}
		all = append(all, Member{
			AccessID:   a.ID,
			UserID:     a.UserID,
			RoleID:     a.RoleID,
			RoleName:   s.db.roles[a.RoleID].Name,
			AssignedAt: a.CreatedAt,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].AssignedAt.Equal(all[j].AssignedAt) {
			return all[i].AccessID < all[j].AccessID
		}
		return all[i].AssignedAt.Before(all[j].AssignedAt)
	})

	total := len(all)
	if p.Offset >= total {
		return []Member{}, total, nil
	}
	end := p.Offset + p.Limit
	if end > total {
		end = total
	}
	return all[p.Offset:end], total, nil
}

// warehouses

type MemoryWarehouseStore struct {
	db *memoryDB
}

var _ WarehouseStore = (*MemoryWarehouseStore)(nil)

func (s *MemoryWarehouseStore) Assign(_ context.Context, userID, organizationID, warehouseID, assignedBy string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, w := range s.db.warehouses {
		if w.UserID == userID && w.WarehouseID == warehouseID && !w.IsDeleted {
			return w.ID, nil
		}
	}

	w := WarehouseAccess{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: organizationID,
		WarehouseID:    warehouseID,
		CreatedBy:      assignedBy,
		UpdatedBy:      assignedBy,
		CreatedAt:      time.Now(),
	}
	s.db.warehouses[w.ID] = w
	return w.ID, nil
}

func (s *MemoryWarehouseStore) Revoke(_ context.Context, userID, warehouseID, organizationID, removedBy string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, w := range s.db.warehouses {
		if w.UserID != userID || w.WarehouseID != warehouseID || w.IsDeleted {
			continue
		}
		if organizationID != "" && w.OrganizationID != organizationID {
			continue
		}
		w.IsDeleted = true
		w.DeletedBy = removedBy
		w.UpdatedBy = removedBy
		s.db.warehouses[id] = w
	}
	return nil
}

func (s *MemoryWarehouseStore) ListForUser(_ context.Context, userID, organizationID string) ([]string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := []WarehouseAccess{}
	for _, w := range s.db.warehouses {
		if w.UserID == userID && w.OrganizationID == organizationID && !w.IsDeleted {
			rows = append(rows, w)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].WarehouseID < rows[j].WarehouseID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	ids := make([]string, 0, len(rows))
	for _, w := range rows {
		ids = append(ids, w.WarehouseID)
	}
	return ids, nil
}

func (s *MemoryWarehouseStore) HasAccess(ctx context.Context, userID, organizationID, warehouseID string) (bool, error) {
	scope, err := s.ListForUser(ctx, userID, organizationID)
	if err != nil {
		return false, err
	}
	return WarehouseAllowed(scope, warehouseID), nil
}

// overrides

type MemoryOverrideStore struct {
	db *memoryDB
}

var _ OverrideStore = (*MemoryOverrideStore)(nil)

func overrideKey(userID, organizationID string) string {
	return userID + "\x00" + organizationID
}

func (s *MemoryOverrideStore) Set(_ context.Context, userID, organizationID, roleID string, patch PermissionPatch, setBy string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now()
	key := overrideKey(userID, organizationID)
	if o, ok := s.db.overrides[key]; ok {
		o.RoleID = roleID
		o.Permissions = o.Permissions.Merge(patch)
		o.UpdatedBy = setBy
		o.UpdatedAt = now
		s.db.overrides[key] = o
		return nil
	}

	s.db.overrides[key] = PermissionOverride{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: organizationID,
		RoleID:         roleID,
		Permissions:    PermissionPatch{}.Merge(patch),
		CreatedBy:      setBy,
		UpdatedBy:      setBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return nil
}

func (s *MemoryOverrideStore) Get(_ context.Context, userID, organizationID string) (*PermissionOverride, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	o, ok := s.db.overrides[overrideKey(userID, organizationID)]
	if !ok {
		return nil, ErrNotFound
	}
	o.Permissions = PermissionPatch{}.Merge(o.Permissions)
	return &o, nil
}

func (s *MemoryOverrideStore) Clear(_ context.Context, userID, organizationID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := overrideKey(userID, organizationID)
	if _, ok := s.db.overrides[key]; !ok {
		return ErrNotFound
	}
	delete(s.db.overrides, key)
	return nil
}
