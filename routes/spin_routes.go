package routes

import (
	"snackwheel_server/controllers"
	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// RegisterSpinRoutes registers spin routes under `/api/couples/{coupleId}/spins`
func RegisterSpinRoutes(router *mux.Router, spinService *services.SpinService) {
	controller := &controllers.SpinController{SpinService: spinService}

	spinRouter := router.PathPrefix("/api/couples/{coupleId}/spins").Subrouter()
	spinRouter.HandleFunc("", controller.RecentSpinsHandler).Methods("GET") // Last 10, newest first
	spinRouter.HandleFunc("", controller.RecordSpinHandler).Methods("POST")
}
