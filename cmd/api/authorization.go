package main

import (
	"context"
	"errors"
	"net/http"

	"parcelhub/internal/domain/accesscontrol"

	"github.com/go-chi/chi/v5"
)

// callerAccess is what RequireOrgAdmin resolved for the caller.
type callerAccess struct {
	userID      string
	role        *accesscontrol.Role
	permissions accesscontrol.Permissions
}

// canGrant reports whether the caller may hand out every flag in p.
// Owners may grant anything; admins only what they hold themselves.
func (a *callerAccess) canGrant(p accesscontrol.Permissions) bool {
	if a == nil {
		return false
	}
	return a.role.IsOwner() || a.permissions.Covers(p)
}

// canAssignRole reports whether the caller may put a member on role.
func (a *callerAccess) canAssignRole(role *accesscontrol.Role) bool {
	if a == nil {
		return false
	}
	if a.role.IsOwner() {
		return true
	}
	return !role.IsOwner() && a.permissions.Covers(role.Permissions)
}

// canManageMember reports whether the caller may change targetID's role,
// overrides or warehouse scope. Owners manage everyone. Admins manage
// neither themselves nor owners.
func (app *application) canManageMember(ctx context.Context, a *callerAccess, orgID, targetID string) (bool, error) {
	if a == nil {
		return false, nil
	}
	if a.role.IsOwner() {
		return true, nil
	}
	if targetID == a.userID {
		return false, nil
	}

	_, role, err := app.store.Assignments.GetActiveWithRole(ctx, targetID, orgID)
	if err != nil {
		if errors.Is(err, accesscontrol.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return !role.IsOwner(), nil
}

// authorizeMemberChange answers 403 when the caller may not manage {userID}
// and reports whether the handler should continue.
func (app *application) authorizeMemberChange(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	ok, err := app.canManageMember(ctx, getCallerAccess(r), chi.URLParam(r, "orgID"), chi.URLParam(r, "userID"))
	if err != nil {
		app.internalServerError(w, r, err)
		return false
	}
	if !ok {
		app.forbiddenResponse(w, r)
		return false
	}
	return true
}
