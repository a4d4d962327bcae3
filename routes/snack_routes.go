package routes

import (
	"snackwheel_server/controllers"
	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// RegisterSnackRoutes registers snack routes under `/api/couples/{coupleId}/snacks`
func RegisterSnackRoutes(router *mux.Router, snackService *services.SnackService) {
	controller := &controllers.SnackController{SnackService: snackService}

	snackRouter := router.PathPrefix("/api/couples/{coupleId}/snacks").Subrouter()
	snackRouter.HandleFunc("", controller.ListSnacksHandler).Methods("GET")
	snackRouter.HandleFunc("", controller.AddSnackHandler).Methods("POST")
	snackRouter.HandleFunc("/{snackId}", controller.SetSnackActiveHandler).Methods("PATCH") // Wheel on/off toggle
	snackRouter.HandleFunc("/{snackId}", controller.DeleteSnackHandler).Methods("DELETE")
}
