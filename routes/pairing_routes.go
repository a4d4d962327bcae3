package routes

import (
	"snackwheel_server/controllers"
	"snackwheel_server/services"

	"github.com/gorilla/mux"
)

// RegisterPairingRoutes registers the pairing intents under `/api/pairing`
func RegisterPairingRoutes(router *mux.Router, pairingService *services.PairingService) {
	controller := &controllers.PairingController{PairingService: pairingService}

	pairingRouter := router.PathPrefix("/api/pairing").Subrouter()
	pairingRouter.HandleFunc("/{accountId}", controller.SnapshotHandler).Methods("GET")                             // Current pairing view
	pairingRouter.HandleFunc("/{accountId}/invites", controller.SendInviteHandler).Methods("POST")                  // Send invite by email
	pairingRouter.HandleFunc("/{accountId}/invites/{inviteId}/accept", controller.AcceptInviteHandler).Methods("POST")
	pairingRouter.HandleFunc("/{accountId}/invites/{inviteId}/decline", controller.DeclineInviteHandler).Methods("POST")
	pairingRouter.HandleFunc("/{accountId}/solo", controller.StartSoloHandler).Methods("POST")                      // Start solo session
	pairingRouter.HandleFunc("/{accountId}/code", controller.GenerateCodeHandler).Methods("POST")                   // Generate/reuse join code
	pairingRouter.HandleFunc("/{accountId}/join", controller.JoinWithCodeHandler).Methods("POST")                   // Join by code
	pairingRouter.HandleFunc("/{accountId}/disconnect", controller.DisconnectHandler).Methods("POST")               // Clear own couple link
}
