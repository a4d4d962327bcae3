package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// SpinController handles HTTP requests for wheel spins
type SpinController struct {
	SpinService *services.SpinService
}

// RecentSpinsHandler returns the couple's latest spins, newest first.
func (c *SpinController) RecentSpinsHandler(w http.ResponseWriter, r *http.Request) {
	coupleID := mux.Vars(r)["coupleId"]
	spins, err := c.SpinService.RecentSpins(context.Background(), coupleID)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusOK, spins)
}

// RecordSpinHandler stores a wheel result.
func (c *SpinController) RecordSpinHandler(w http.ResponseWriter, r *http.Request) {
	coupleID := mux.Vars(r)["coupleId"]

	var payload struct {
		SnackName  string  `json:"snackName"`
		Price      float64 `json:"price"`
		SpunBy     string  `json:"spunBy"`
		SpunByName string  `json:"spunByName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	spin, err := c.SpinService.RecordSpin(context.Background(), coupleID, payload.SnackName, payload.Price, payload.SpunBy, payload.SpunByName)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}

	WriteJSONResponse(w, http.StatusCreated, spin)
}
