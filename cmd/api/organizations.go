package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type bootstrapOrganizationPayload struct {
	Name string `json:"name" validate:"required,max=200"`
}

// bootstrapOrganizationHandler godoc
//
//	@Summary		Bootstrap an organization
//	@Description	Registers the organization, creates its Owner role and makes the caller the owner. Fails if the organization is already registered or has roles.
//	@Tags			organizations
//	@Accept			json
//	@Produce		json
//	@Param			orgID	path		string							true	"Organization ID"
//	@Param			body	body		bootstrapOrganizationPayload	true	"Organization payload"
//	@Success		201		{object}	storage.Bootstrap
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error	"Organization already bootstrapped"
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/organizations/{orgID}/bootstrap [post]
func (app *application) bootstrapOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload bootstrapOrganizationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	orgID := chi.URLParam(r, "orgID")
	callerID := getCallerID(r)

	out, err := app.store.BootstrapOrganization(ctx, orgID, payload.Name, callerID)
	if err != nil {
		app.storeErrorResponse(w, r, err)
		return
	}

	app.logger.Infow("organization bootstrapped", "organization_id", orgID, "owner", callerID)
	app.jsonResponse(w, http.StatusCreated, out)
}

// listMyOrganizationsHandler godoc
//
//	@Summary		List the caller's organizations
//	@Description	Returns every organization the caller has active access to, for org switching.
//	@Tags			organizations
//	@Produce		json
//	@Success		200	{array}		accesscontrol.UserOrganization
//	@Failure		401	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/me/organizations [get]
func (app *application) listMyOrganizationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orgs, err := app.store.Assignments.ListUserOrganizations(ctx, getCallerID(r))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, orgs)
}
