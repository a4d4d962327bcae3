package controllers

import (
	"context"
	"net/http"

	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// AdminController handles the operator-level overrides
type AdminController struct {
	AdminService *services.AdminService
}

// RequireAdmin wraps a handler with the X-Admin-Email authorization check.
func (c *AdminController) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.AdminService.Authorize(context.Background(), r.Header.Get("X-Admin-Email")); err != nil {
			WriteErrorResponse(w, err)
			return
		}
		next(w, r)
	}
}

// ListAccountsHandler returns every account record.
func (c *AdminController) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := c.AdminService.ListAccounts(context.Background())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, accounts)
}

// ListCouplesHandler returns a summary row per couple.
func (c *AdminController) ListCouplesHandler(w http.ResponseWriter, r *http.Request) {
	couples, err := c.AdminService.ListCouples(context.Background())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, couples)
}

// DeleteAccountHandler force-deletes an account and its pending invites.
func (c *AdminController) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	if err := c.AdminService.ForceDeleteAccount(context.Background(), accountID); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Account deleted", "accountId": accountID})
}

// DeleteCoupleHandler force-deletes a couple, clearing both members' links.
func (c *AdminController) DeleteCoupleHandler(w http.ResponseWriter, r *http.Request) {
	coupleID := mux.Vars(r)["coupleId"]
	if err := c.AdminService.ForceDeleteCouple(context.Background(), coupleID); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Couple deleted", "coupleId": coupleID})
}
