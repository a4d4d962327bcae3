package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// SnackController handles HTTP requests for a couple's snack list
type SnackController struct {
	SnackService *services.SnackService
}

// ListSnacksHandler returns every snack for the couple.
func (c *SnackController) ListSnacksHandler(w http.ResponseWriter, r *http.Request) {
	coupleID := mux.Vars(r)["coupleId"]
	snacks, err := c.SnackService.ListSnacks(context.Background(), coupleID)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, snacks)
}

// AddSnackHandler creates a snack on the couple's wheel.
func (c *SnackController) AddSnackHandler(w http.ResponseWriter, r *http.Request) {
	coupleID := mux.Vars(r)["coupleId"]

	var payload struct {
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		CreatedBy     string  `json:"createdBy"`
		CreatedByName string  `json:"createdByName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snack, err := c.SnackService.AddSnack(context.Background(), coupleID, payload.Name, payload.Price, payload.CreatedBy, payload.CreatedByName)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusCreated, snack)
}

// SetSnackActiveHandler moves a snack on or off the wheel.
func (c *SnackController) SetSnackActiveHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var payload struct {
		Active bool   `json:"active"`
		Origin string `json:"origin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.SnackService.SetSnackActive(context.Background(), vars["coupleId"], vars["snackId"], payload.Active, payload.Origin); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Snack updated"})
}

// DeleteSnackHandler removes a snack permanently.
func (c *SnackController) DeleteSnackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := c.SnackService.DeleteSnack(context.Background(), vars["coupleId"], vars["snackId"], r.URL.Query().Get("origin")); err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Snack deleted"})
}
