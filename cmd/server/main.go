// @title           Photo Enhance Backend API
// @version         1.0.0
// @description     Backend API for enhancing single images through the Topaz Image API. Each request submits the image, polls the remote job to completion, validates and downloads the result, and returns the processed image in one synchronous call.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"os"

	"photo-enhance-backend/internal/config"
	"photo-enhance-backend/internal/database"
	"photo-enhance-backend/internal/handlers"
	"photo-enhance-backend/internal/middleware"
	"photo-enhance-backend/internal/supabase"
	"photo-enhance-backend/internal/topaz"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	topazLogger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "topaz").Logger()
	notFoundPending := cfg.TopazStatus404Pending
	topazClient := topaz.NewClient(topaz.Options{
		APIKey:               cfg.TopazAPIKey,
		BaseURL:              cfg.TopazAPIBaseURL,
		NotFoundMeansPending: &notFoundPending,
		Logger:               &topazLogger,
	})

	var dbClient *database.Client
	if cfg.DatabaseURL != "" {
		dbClient, err = database.NewClient(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			log.Println("Job records will not be persisted. Please configure DATABASE_URL properly.")
		} else {
			defer dbClient.Close()

			migrator, err := database.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
			}
		}
	} else {
		log.Println("Warning: DATABASE_URL not set. Job records will not be persisted.")
	}

	var storageClient *supabase.StorageClient
	var realtimeClient *supabase.RealtimeClient
	if cfg.SupabaseURL != "" && cfg.SupabasePublishableKey != "" {
		storageClient, err = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		if err != nil {
			log.Printf("Warning: Failed to initialize storage client: %v", err)
		}

		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Supabase client: %v", err)
		} else {
			realtimeClient = supabase.NewRealtimeClient(supabaseClient.Supabase)
		}
	} else {
		log.Println("Warning: Supabase not configured. Results will not be stored.")
	}

	enhanceHandler := handlers.NewEnhanceHandler(topazClient, dbClient, storageClient, realtimeClient, cfg.JobTimeout)
	jobsHandler := handlers.NewJobsHandler(topazClient, dbClient)
	catalogHandler := handlers.NewCatalogHandler()

	router := gin.Default()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/enhance", enhanceHandler.Enhance)
	api.GET("/jobs", jobsHandler.ListJobs)
	api.GET("/jobs/:process_id/status", jobsHandler.GetJobStatus)
	api.GET("/jobs/:process_id/result", jobsHandler.GetJobResult)
	api.GET("/models", catalogHandler.GetCatalog)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
