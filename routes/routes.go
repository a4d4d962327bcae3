package routes

import (
	"snackwheel_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the base routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
}
