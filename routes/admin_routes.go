package routes

import (
	"snackwheel_server/controllers"
	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// RegisterAdminRoutes registers the operator overrides under `/api/admin`.
// Every route is wrapped in the X-Admin-Email authorization check.
func RegisterAdminRoutes(router *mux.Router, adminService *services.AdminService) {
	controller := &controllers.AdminController{AdminService: adminService}

	adminRouter := router.PathPrefix("/api/admin").Subrouter()
	adminRouter.HandleFunc("/accounts", controller.RequireAdmin(controller.ListAccountsHandler)).Methods("GET")
	adminRouter.HandleFunc("/couples", controller.RequireAdmin(controller.ListCouplesHandler)).Methods("GET")
	adminRouter.HandleFunc("/accounts/{accountId}", controller.RequireAdmin(controller.DeleteAccountHandler)).Methods("DELETE")
	adminRouter.HandleFunc("/couples/{coupleId}", controller.RequireAdmin(controller.DeleteCoupleHandler)).Methods("DELETE")
}
