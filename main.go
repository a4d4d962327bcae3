package main

import (
	"log"
	"net/http"

	"snackwheel_server/config"
	"snackwheel_server/routes"
	"snackwheel_server/services"
	"snackwheel_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize the Socket.IO server; both partners subscribe through it to
	// converge on pairing changes without polling.
	socketServer := socket.NewServer()
	go func() {
		if err := socketServer.IO.Serve(); err != nil {
			log.Fatalf("Socket.IO serve error: %v", err)
		}
	}()
	defer socketServer.IO.Close()

	// Initialize Services
	accountService := &services.AccountService{Dynamo: dynamoService}
	pairingService := &services.PairingService{Dynamo: dynamoService, Accounts: accountService, Notify: socketServer}
	snackService := &services.SnackService{Dynamo: dynamoService, Notify: socketServer}
	spinService := &services.SpinService{Dynamo: dynamoService, Notify: socketServer}
	adminService := &services.AdminService{
		Dynamo:      dynamoService,
		Accounts:    accountService,
		Notify:      socketServer,
		AdminEmails: cfg.AdminEmails,
	}

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer.IO)

	// Register routes
	routes.RegisterRoutes(r)
	routes.RegisterAccountRoutes(r, accountService)
	routes.RegisterPairingRoutes(r, pairingService)
	routes.RegisterSnackRoutes(r, snackService)
	routes.RegisterSpinRoutes(r, spinService)
	routes.RegisterAdminRoutes(r, adminService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Email"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
