package main

import (
	"context"
	"net/http"
	"time"

	"parcelhub/internal/domain/accesscontrol"
	"parcelhub/internal/params"

	"github.com/go-chi/chi/v5"
)

type assignMemberPayload struct {
	RoleID string `json:"role_id" validate:"required"`
}

type assignWarehousePayload struct {
	WarehouseID string `json:"warehouse_id" validate:"required,max=100"`
}

type membersResponse struct {
	Members    []accesscontrol.Member `json:"members"`
	Pagination params.Pagination      `json:"pagination"`
}

// listMembersHandler godoc
//
//	@Summary		List organization members
//	@Tags			members
//	@Produce		json
//	@Param			orgID	path		string	true	"Organization ID"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Page size"
//	@Success		200		{object}	membersResponse
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members [get]
func (app *application) listMembersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p := params.ParsePagination(r.URL.Query())

	members, total, err := app.store.Assignments.ListMembers(ctx, chi.URLParam(r, "orgID"), p)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, membersResponse{Members: members, Pagination: p})
}

// assignMemberHandler godoc
//
//	@Summary		Assign a member's role
//	@Description	Creates the user's access to the organization, or changes the role on the existing access.
//	@Tags			members
//	@Accept			json
//	@Produce		json
//	@Param			orgID	path		string				true	"Organization ID"
//	@Param			userID	path		string				true	"User ID"
//	@Param			body	body		assignMemberPayload	true	"Role assignment"
//	@Success		200		{object}	createdResponse
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error	"Role not found"
//	@Failure		500		{object}	error
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID} [put]
func (app *application) assignMemberHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload assignMemberPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// the role may belong to another organization; only existence is checked
	role, err := app.store.Roles.Get(ctx, payload.RoleID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	if !app.authorizeMemberChange(ctx, w, r) {
		return
	}
	if !getCallerAccess(r).canAssignRole(role) {
		app.forbiddenResponse(w, r)
		return
	}

	id, err := app.store.Assignments.Assign(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"), payload.RoleID, getCallerID(r))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, createdResponse{ID: id})
}

// revokeMemberHandler godoc
//
//	@Summary		Revoke a member's access
//	@Tags			members
//	@Param			orgID	path	string	true	"Organization ID"
//	@Param			userID	path	string	true	"User ID"
//	@Success		204
//	@Failure		404	{object}	error	"No active access"
//	@Failure		500	{object}	error
//	@Failure		403	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID} [delete]
func (app *application) revokeMemberHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if !app.authorizeMemberChange(ctx, w, r) {
		return
	}

	err := app.store.Assignments.Revoke(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"), getCallerID(r))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listMemberWarehousesHandler godoc
//
//	@Summary		List a member's warehouse scope
//	@Description	An empty list means the member may access every warehouse.
//	@Tags			warehouses
//	@Produce		json
//	@Param			orgID	path		string	true	"Organization ID"
//	@Param			userID	path		string	true	"User ID"
//	@Success		200		{array}		string
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/warehouses [get]
func (app *application) listMemberWarehousesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ids, err := app.store.Warehouses.ListForUser(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, ids)
}

// assignWarehouseHandler godoc
//
//	@Summary		Scope a member to a warehouse
//	@Description	Idempotent. Repeating the call returns the existing record id.
//	@Tags			warehouses
//	@Accept			json
//	@Produce		json
//	@Param			orgID	path		string					true	"Organization ID"
//	@Param			userID	path		string					true	"User ID"
//	@Param			body	body		assignWarehousePayload	true	"Warehouse"
//	@Success		200		{object}	createdResponse
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/warehouses [post]
func (app *application) assignWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload assignWarehousePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.authorizeMemberChange(ctx, w, r) {
		return
	}

	id, err := app.store.Warehouses.Assign(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "orgID"), payload.WarehouseID, getCallerID(r))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, createdResponse{ID: id})
}

// revokeWarehouseHandler godoc
//
//	@Summary		Remove a warehouse from a member's scope
//	@Description	Removing the last warehouse restores access to every warehouse.
//	@Tags			warehouses
//	@Param			orgID		path	string	true	"Organization ID"
//	@Param			userID		path	string	true	"User ID"
//	@Param			warehouseID	path	string	true	"Warehouse ID"
//	@Success		204
//	@Failure		500	{object}	error
//	@Failure		403	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/members/{userID}/warehouses/{warehouseID} [delete]
func (app *application) revokeWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if !app.authorizeMemberChange(ctx, w, r) {
		return
	}

	err := app.store.Warehouses.Revoke(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "warehouseID"), chi.URLParam(r, "orgID"), getCallerID(r))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// memberRoleID returns the role the member is currently assigned in the
// organization, for override records that omit role_id.
func (app *application) memberRoleID(ctx context.Context, userID, orgID string) (string, error) {
	access, _, err := app.store.Assignments.GetActiveWithRole(ctx, userID, orgID)
	if err != nil {
		return "", err
	}
	return access.RoleID, nil
}
