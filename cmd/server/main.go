package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/planmaster/planmaster/internal/ai"
	"github.com/planmaster/planmaster/internal/config"
	"github.com/planmaster/planmaster/internal/database"
	"github.com/planmaster/planmaster/internal/handlers"
	"github.com/planmaster/planmaster/internal/repository"
	"github.com/planmaster/planmaster/internal/services"
	"github.com/planmaster/planmaster/pkg/email"
	"github.com/planmaster/planmaster/pkg/logger"
	"github.com/planmaster/planmaster/pkg/middleware"
	"github.com/planmaster/planmaster/pkg/otp"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.AppEnv)
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	// --- External collaborators ---
	aiClient := ai.NewChatClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
	generator := ai.NewGenerator(aiClient)
	mailer := email.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppEnv != "production")
	otpStore := otp.NewMemoryStore(cfg.OTPTTL)

	// --- Services ---
	userService := services.NewUserService(userRepo, mailer, otpStore)
	goalService := services.NewGoalService(goalRepo, generator)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	goalHandler := handlers.NewGoalHandler(goalService)

	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/forgot-password", userHandler.ForgotPasswordHandler).Methods("POST")
	router.HandleFunc("/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	// Goal routes require authentication
	protectedRoutes := router.PathPrefix("/goals").Subrouter()
	protectedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	protectedRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	protectedRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	protectedRoutes.HandleFunc("/{id}", goalHandler.ReplaceRoadmapHandler).Methods("PUT")
	protectedRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")
	protectedRoutes.HandleFunc("/{id}/tasks/{taskId}/toggle", goalHandler.ToggleTaskHandler).Methods("PATCH")

	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	port := cfg.Port
	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
