package main

import (
	"context"
	"net/http"
	"time"

	"parcelhub/internal/domain/accesscontrol"
	"parcelhub/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type setOverridesPayload struct {
	RoleID      string          `json:"role_id"`
	Permissions map[string]bool `json:"permissions" validate:"required,min=1,dive,keys,permissionkey,endkeys"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

// getOverridesHandler godoc
//
//	@Summary		Get a member's permission overrides
//	@Description	Only flags that were explicitly overridden are present.
//	@Tags			permissions
//	@Produce		json
//	@Param			orgID	path		string	true	"Organization ID"
//	@Param			userID	path		string	true	"User ID"
//	@Success		200		{object}	accesscontrol.PermissionOverride
//	@Failure		404		{object}	error	"No overrides"
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/overrides [get]
func (app *application) getOverridesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := app.store.Overrides.Get(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, o)
}

// setOverridesHandler godoc
//
//	@Summary		Set permission overrides
//	@Description	Merges the given flags into the member's override record. Flags not sent keep their stored value. Without role_id the member's current role is recorded.
//	@Tags			permissions
//	@Accept			json
//	@Produce		json
//	@Param			orgID	path		string				true	"Organization ID"
//	@Param			userID	path		string				true	"User ID"
//	@Param			body	body		setOverridesPayload	true	"Overrides"
//	@Success		200		{object}	accesscontrol.PermissionOverride
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error	"Member or role not found"
//	@Failure		500		{object}	error
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/overrides [put]
func (app *application) setOverridesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload setOverridesPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	patch, err := accesscontrol.PatchFromMap(payload.Permissions)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.authorizeMemberChange(ctx, w, r) {
		return
	}
	if !getCallerAccess(r).canGrant(accesscontrol.Permissions{}.Apply(patch)) {
		app.forbiddenResponse(w, r)
		return
	}

	userID := chi.URLParam(r, "userID")
	orgID := chi.URLParam(r, "orgID")

	roleID := payload.RoleID
	if roleID == "" {
		roleID, err = app.memberRoleID(ctx, userID, orgID)
	} else {
		_, err = app.store.Roles.Get(ctx, roleID)
	}
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	if err := app.store.Overrides.Set(ctx, userID, orgID, roleID, patch, getCallerID(r)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	o, err := app.store.Overrides.Get(ctx, userID, orgID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, o)
}

// clearOverridesHandler godoc
//
//	@Summary		Clear permission overrides
//	@Description	The member falls back to the flags of their role.
//	@Tags			permissions
//	@Param			orgID	path	string	true	"Organization ID"
//	@Param			userID	path	string	true	"User ID"
//	@Success		204
//	@Failure		404	{object}	error	"No overrides"
//	@Failure		403	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/overrides [delete]
func (app *application) clearOverridesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if !app.authorizeMemberChange(ctx, w, r) {
		return
	}

	if err := app.store.Overrides.Clear(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID")); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getEffectivePermissionsHandler godoc
//
//	@Summary		Resolve effective permissions
//	@Description	Role flags with overrides applied, plus warehouse scope. data is null when the member has no access.
//	@Tags			permissions
//	@Produce		json
//	@Param			orgID	path		string	true	"Organization ID"
//	@Param			userID	path		string	true	"User ID"
//	@Success		200		{object}	accesscontrol.EffectivePermissions
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/permissions [get]
func (app *application) getEffectivePermissionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	eff, err := app.store.Resolver.GetEffectivePermissions(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"))
	metrics.ObserveCheck(metrics.CheckEffective, start, eff != nil, err)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, eff)
}

// checkPermissionHandler godoc
//
//	@Summary		Check one permission
//	@Tags			permissions
//	@Produce		json
//	@Param			orgID			path		string	true	"Organization ID"
//	@Param			userID			path		string	true	"User ID"
//	@Param			permissionKey	path		string	true	"Permission key, e.g. canViewReceive"
//	@Success		200				{object}	checkResponse
//	@Failure		400				{object}	error	"Unknown permission key"
//	@Failure		500				{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/permissions/{permissionKey} [get]
func (app *application) checkPermissionHandler(w http.ResponseWriter, r *http.Request) {
	// unknown keys are a client error, not a failed check
	if _, err := accesscontrol.ParsePermissionKey(chi.URLParam(r, "permissionKey")); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.check(w, r, metrics.CheckPermission, func(ctx context.Context, userID, orgID string) (bool, error) {
		return app.store.Resolver.HasPermission(ctx, userID, orgID, chi.URLParam(r, "permissionKey"))
	})
}

// checkWarehouseAccessHandler godoc
//
//	@Summary		Check warehouse access
//	@Tags			warehouses
//	@Produce		json
//	@Param			orgID		path		string	true	"Organization ID"
//	@Param			userID		path		string	true	"User ID"
//	@Param			warehouseID	path		string	true	"Warehouse ID"
//	@Success		200			{object}	checkResponse
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/warehouses/{warehouseID}/access [get]
func (app *application) checkWarehouseAccessHandler(w http.ResponseWriter, r *http.Request) {
	app.check(w, r, metrics.CheckWarehouse, func(ctx context.Context, userID, orgID string) (bool, error) {
		return app.store.Resolver.HasWarehouseAccess(ctx, userID, orgID, chi.URLParam(r, "warehouseID"))
	})
}

func (app *application) check(w http.ResponseWriter, r *http.Request, kind string, fn func(ctx context.Context, userID, orgID string) (bool, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	allowed, err := fn(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"))
	metrics.ObserveCheck(kind, start, allowed, err)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, checkResponse{Allowed: allowed})
}
