package main

import (
	"context"
	"net/http"
	"time"

	"parcelhub/internal/domain/accesscontrol"

	"github.com/go-chi/chi/v5"
)

type createCustomRolePayload struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Icon        string          `json:"icon" validate:"omitempty,max=50"`
	Permissions map[string]bool `json:"permissions" validate:"dive,keys,permissionkey,endkeys"`
}

type createRoleFromTemplatePayload struct {
	TemplateKey string `json:"template_key" validate:"required,templatekey"`
	Name        string `json:"name" validate:"omitempty,max=100"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// listTemplatesHandler godoc
//
//	@Summary		List role templates
//	@Description	Returns the five built-in role templates with their permission flags.
//	@Tags			roles
//	@Produce		json
//	@Success		200	{array}		accesscontrol.RoleTemplate
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/roles/templates [get]
func (app *application) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, accesscontrol.ListTemplates())
}

// listRolesHandler godoc
//
//	@Summary		List organization roles
//	@Tags			roles
//	@Produce		json
//	@Param			orgID	path		string	true	"Organization ID"
//	@Success		200		{array}		accesscontrol.Role
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/roles [get]
func (app *application) listRolesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	roles, err := app.store.Roles.ListForOrganization(ctx, chi.URLParam(r, "orgID"))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, roles)
}

// createCustomRoleHandler godoc
//
//	@Summary		Create a custom role
//	@Description	Flags not present in permissions are denied.
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			orgID	path		string					true	"Organization ID"
//	@Param			body	body		createCustomRolePayload	true	"Role payload"
//	@Success		201		{object}	createdResponse
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/roles [post]
func (app *application) createCustomRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload createCustomRolePayload
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

	if !getCallerAccess(r).canGrant(accesscontrol.Permissions{}.Apply(patch)) {
		app.forbiddenResponse(w, r)
		return
	}

	id, err := app.store.Roles.CreateCustom(ctx, payload.Name, chi.URLParam(r, "orgID"), patch, getCallerID(r), payload.Icon)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, createdResponse{ID: id})
}

// createRoleFromTemplateHandler godoc
//
//	@Summary		Create a role from a template
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			orgID	path		string							true	"Organization ID"
//	@Param			body	body		createRoleFromTemplatePayload	true	"Template payload"
//	@Success		201		{object}	createdResponse
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/roles/from-template [post]
func (app *application) createRoleFromTemplateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload createRoleFromTemplatePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	key := accesscontrol.TemplateKey(payload.TemplateKey)
	orgID := chi.URLParam(r, "orgID")

	candidate, err := accesscontrol.RoleFromTemplate(key, orgID, getCallerID(r), payload.Name)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}
	if !getCallerAccess(r).canAssignRole(candidate) {
		app.forbiddenResponse(w, r)
		return
	}

	id, err := app.store.Roles.CreateFromTemplate(ctx, key, orgID, getCallerID(r), payload.Name)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, createdResponse{ID: id})
}

// getRoleHandler godoc
//
//	@Summary		Get a role
//	@Tags			roles
//	@Produce		json
//	@Param			orgID	path		string	true	"Organization ID"
//	@Param			roleID	path		string	true	"Role ID"
//	@Success		200		{object}	accesscontrol.Role
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/roles/{roleID} [get]
func (app *application) getRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	role, ok := app.roleInOrganization(ctx, w, r)
	if !ok {
		return
	}

	app.jsonResponse(w, http.StatusOK, role)
}

// deleteRoleHandler godoc
//
//	@Summary		Delete a role
//	@Description	Soft-deletes the role. Members assigned to it lose access until reassigned.
//	@Tags			roles
//	@Param			orgID	path	string	true	"Organization ID"
//	@Param			roleID	path	string	true	"Role ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Failure		403	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/roles/{roleID} [delete]
func (app *application) deleteRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	role, ok := app.roleInOrganization(ctx, w, r)
	if !ok {
		return
	}

	// admins may only remove roles they could hand out themselves
	if !getCallerAccess(r).canAssignRole(role) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Roles.Delete(ctx, role.ID); err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// roleInOrganization loads {roleID} and 404s when it belongs to another
// organization.
func (app *application) roleInOrganization(ctx context.Context, w http.ResponseWriter, r *http.Request) (*accesscontrol.Role, bool) {
	role, err := app.store.Roles.Get(ctx, chi.URLParam(r, "roleID"))
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return nil, false
	}
	if role.OrganizationID != chi.URLParam(r, "orgID") {
		app.notFoundResponse(w, r, accesscontrol.ErrNotFound)
		return nil, false
	}
	return role, true
}
