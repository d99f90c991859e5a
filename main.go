package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"mentacrush_server/config"
	"mentacrush_server/repositories"
	"mentacrush_server/repositories/dynamo"
	"mentacrush_server/repositories/memory"
	"mentacrush_server/repositories/redisfeed"
	"mentacrush_server/routes"
	"mentacrush_server/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Pick the storage backend. Production runs on DynamoDB; the memory
	// backend exists for local development without AWS credentials.
	var (
		profileStore  repositories.ProfileStore
		hintStore     repositories.HintStore
		chatStore     repositories.ChatStore
		activityStore repositories.ActivityStore
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Println("🔄 Using in-memory stores")
		profileStore = memory.NewProfileStore()
		hintStore = memory.NewHintStore()
		chatStore = memory.NewChatStore()
		activityStore = memory.NewActivityStore()
	default:
		log.Println("Initializing DynamoDB client...")
		dynamoClient := dynamo.InitializeDynamoDBClient(cfg.AWSRegion)
		dynamoService := &dynamo.DynamoService{Client: dynamoClient}
		profileStore = dynamo.NewProfileStore(dynamoService)
		hintStore = dynamo.NewHintStore(dynamoService)
		chatStore = dynamo.NewChatStore(dynamoService)
		activityStore = dynamo.NewActivityStore(dynamoService)
		log.Println("DynamoDB client initialized.")
	}

	// The notification feed lives in Redis so pushes fan out across server
	// instances; the memory feed serves single-process development.
	var notificationStore repositories.NotificationStore
	switch cfg.FeedBackend {
	case config.BackendMemory:
		log.Println("🔄 Using in-memory notification feed")
		notificationStore = memory.NewNotificationStore()
	default:
		log.Printf("Connecting to Redis at %s...", cfg.RedisAddr)
		redisClient, err := redisfeed.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		notificationStore = redisfeed.NewNotificationStore(redisClient)
		log.Println("✅ Redis connected.")
	}

	// Initialize Services
	activityService := &services.ActivityService{Store: activityStore}
	userProfileService := &services.UserProfileService{Store: profileStore, Activities: activityService}
	hintService := &services.HintService{Store: hintStore}
	chatService := services.NewChatService(chatStore)
	notificationService := &services.NotificationService{Store: notificationStore}
	matchService := &services.MatchService{
		Hints:         hintService,
		Chats:         chatService,
		Notifications: notificationService,
		Profiles:      userProfileService,
		Activities:    activityService,
	}
	authService := &services.AuthService{
		Secret:     []byte(cfg.JWTSecret),
		Profiles:   profileStore,
		Activities: activityService,
	}

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to MentaCrush")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Register API and websocket routes
	routes.Register(r, routes.Services{
		Auth:          authService,
		Profiles:      userProfileService,
		Hints:         hintService,
		Match:         matchService,
		Chats:         chatService,
		Notifications: notificationService,
		Activities:    activityService,
	})

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
