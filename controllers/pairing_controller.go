package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// PairingController handles HTTP requests for the pairing engine's intents
type PairingController struct {
	PairingService *services.PairingService
}

// SnapshotHandler returns the account's full pairing view: state, couple,
// partner and pending invites.
func (c *PairingController) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	snapshot, err := c.PairingService.Snapshot(context.Background(), accountID)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, snapshot)
}

// SendInviteHandler creates a pending invite to the account owning the given
// email.
func (c *PairingController) SendInviteHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invite, err := c.PairingService.SendInvite(context.Background(), accountID, payload.Email)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusCreated, invite)
}

// AcceptInviteHandler consumes the invite and forms the couple.
func (c *PairingController) AcceptInviteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	couple, err := c.PairingService.AcceptInvite(context.Background(), vars["accountId"], vars["inviteId"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, couple)
}

// DeclineInviteHandler deletes the invite without changing any account.
func (c *PairingController) DeclineInviteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := c.PairingService.DeclineInvite(context.Background(), vars["accountId"], vars["inviteId"]); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Invite declined"})
}

// StartSoloHandler creates (or returns) the account's one-member couple.
func (c *PairingController) StartSoloHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	couple, err := c.PairingService.StartSolo(context.Background(), accountID)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, couple)
}

// GenerateCodeHandler returns the couple with its join code, creating either
// as needed.
func (c *PairingController) GenerateCodeHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	couple, err := c.PairingService.GenerateCode(context.Background(), accountID)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, couple)
}

// JoinWithCodeHandler fills the second slot of the couple holding the code.
func (c *PairingController) JoinWithCodeHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	couple, err := c.PairingService.JoinWithCode(context.Background(), accountID, payload.Code)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, couple)
}

// DisconnectHandler clears the account's couple link.
func (c *PairingController) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	if err := c.PairingService.Disconnect(context.Background(), accountID); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Disconnected"})
}
