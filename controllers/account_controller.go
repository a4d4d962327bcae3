package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// AccountController handles HTTP requests for account records
type AccountController struct {
	AccountService *services.AccountService
}

// SyncAccountHandler upserts the identity tuple delivered by the identity
// provider after sign-in.
func (c *AccountController) SyncAccountHandler(w http.ResponseWriter, r *http.Request) {
	var identity services.IdentityTuple
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := c.AccountService.SyncAccount(context.Background(), identity)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, account)
}

// GetAccountHandler fetches one account by id.
func (c *AccountController) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	account, err := c.AccountService.GetAccount(context.Background(), accountID)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, account)
}

// AvatarUploadURLHandler returns a presigned PUT URL for the account's avatar.
func (c *AccountController) AvatarUploadURLHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	var payload struct {
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FileType == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	url, key, err := services.GenerateAvatarUploadURL(accountID, payload.FileType)
	if err != nil {
		http.Error(w, "Failed to generate pre-signed URL", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

// AvatarReadURLHandler returns a presigned GET URL for a stored avatar key.
func (c *AccountController) AvatarReadURLHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	url, err := services.GenerateAvatarReadURL(payload.Key)
	if err != nil {
		http.Error(w, "Failed to generate read pre-signed URL", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
