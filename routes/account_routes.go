package routes

import (
	"snackwheel_server/controllers"
	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// RegisterAccountRoutes registers account routes under `/api/accounts`
func RegisterAccountRoutes(router *mux.Router, accountService *services.AccountService) {
	controller := &controllers.AccountController{AccountService: accountService}

	accountRouter := router.PathPrefix("/api/accounts").Subrouter()
	accountRouter.HandleFunc("/sync", controller.SyncAccountHandler).Methods("POST")                              // Identity-provider upsert
	accountRouter.HandleFunc("/{accountId}", controller.GetAccountHandler).Methods("GET")                         // Fetch one account
	accountRouter.HandleFunc("/{accountId}/avatar-upload-url", controller.AvatarUploadURLHandler).Methods("POST") // Presigned avatar PUT
	accountRouter.HandleFunc("/avatar-read-url", controller.AvatarReadURLHandler).Methods("POST")                 // Presigned avatar GET
}
