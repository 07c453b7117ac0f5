package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	database "fintrack/db"
	"fintrack/internal/auth"
	"fintrack/internal/bank"
	"fintrack/internal/finance/application"
	"fintrack/internal/finance/infrastructure"
	"fintrack/internal/finance/interfaces"
	"fintrack/internal/user"
)

const staleSyncAge = 6 * time.Hour

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errs ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errs) > 0 && len(errs[0]) > 0 {
		payload["errors"] = errs[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router             *http.ServeMux
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	dashboardHandler   *interfaces.DashboardHandler
	transactionHandler *interfaces.TransactionHandler
	accountHandler     *interfaces.AccountHandler
	syncHandler        *interfaces.SyncHandler
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	dashboardHandler *interfaces.DashboardHandler,
	transactionHandler *interfaces.TransactionHandler,
	accountHandler *interfaces.AccountHandler,
	syncHandler *interfaces.SyncHandler,
) *Server {
	return &Server{
		authHandler:        authHandler,
		authService:        authService,
		userHandler:        userHandler,
		dashboardHandler:   dashboardHandler,
		transactionHandler: transactionHandler,
		accountHandler:     accountHandler,
		syncHandler:        syncHandler,
		router:             http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET Provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/2fa/verify", http.HandlerFunc(s.authHandler.HandleVerifyTwoFactor))
	publicRoutes.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))

	protectedRoutes.Handle("POST /api/protected/change-password",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.userHandler.HandleChangePassword)))

	protectedRoutes.Handle("POST /api/protected/2fa/register",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))

	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorCode)))

	protectedRoutes.Handle("DELETE /api/protected/2fa/disable",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	// DASHBOARD API
	protectedRoutes.Handle("GET /api/protected/dashboard",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.dashboardHandler.GetDashboard)))

	protectedRoutes.Handle("GET /api/protected/charts/spending-by-category",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.dashboardHandler.GetSpendingChart)))

	// TRANSACTIONS API
	protectedRoutes.Handle("GET /api/protected/transactions",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.transactionHandler.GetTransactions)))

	protectedRoutes.Handle("PUT /api/protected/transactions/{transactionID}/category",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.transactionHandler.UpdateCategory)))

	protectedRoutes.Handle("GET /api/protected/categories",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.transactionHandler.GetCategories)))

	// ACCOUNTS API
	protectedRoutes.Handle("GET /api/protected/accounts",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.accountHandler.GetAccounts)))

	protectedRoutes.Handle("POST /api/protected/accounts/link",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.accountHandler.LinkAccount)))

	protectedRoutes.Handle("POST /api/protected/accounts/{accountID}/rename",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.accountHandler.RenameAccount)))

	protectedRoutes.Handle("POST /api/protected/accounts/{accountID}/toggle",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.accountHandler.ToggleAccount)))

	protectedRoutes.Handle("DELETE /api/protected/linked-accounts/{accountID}",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.accountHandler.DeleteLinkedAccount)))

	// SYNC API
	protectedRoutes.Handle("POST /api/protected/sync",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.syncHandler.SyncTransactions)))

	protectedRoutes.Handle("POST /api/protected/demo/generate-data",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.syncHandler.GenerateDemoData)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	// Main router
	mainRouter := http.NewServeMux()

	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server")
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}

	authRepo := auth.NewUserRepository(dbService.DB)
	userRepo := user.NewUserRepository(dbService.DB)

	sessionManager := auth.NewSessionManager()
	sessionManager.StartSessionTokenCleanup(time.Minute)
	jwtManager := auth.NewJWTManager()
	authenticator := auth.Authenticator{}

	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService)
	authService := auth.NewAuthService(authRepo, userService, sessionManager, jwtManager, authenticator)
	authHandler := auth.NewHandler(authService)

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	accountRepo := infrastructure.NewAccountRepository(dbService.DB)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)

	if err := categoryRepo.EnsureDefaults(application.DefaultCategoryNames()); err != nil {
		log.Fatalf("Could not seed categories: %v", err)
	}

	feed := bank.NewSimulator(time.Now().UnixNano())
	categorizer := application.NewCategorizer(application.DefaultCategoryRules())

	resolver := application.NewResolver(accountRepo, transactionRepo)
	aggregator := application.NewAggregator(transactionRepo)
	transactionService := application.NewTransactionService(transactionRepo, categoryRepo)
	accountService := application.NewAccountService(accountRepo, transactionRepo)
	syncService := application.NewSyncService(transactionRepo, accountRepo, categoryRepo, feed, categorizer)

	dashboardHandler := interfaces.NewDashboardHandler(resolver, aggregator, respondJSON, respondError)
	transactionHandler := interfaces.NewTransactionHandler(transactionService, resolver, respondJSON, respondError)
	accountHandler := interfaces.NewAccountHandler(accountService, respondJSON, respondError)
	syncHandler := interfaces.NewSyncHandler(syncService, respondJSON, respondError)

	server := NewServer(authHandler, authService, userHandler, dashboardHandler, transactionHandler, accountHandler, syncHandler)
	server.RegisterRoutes()

	if err := StartSyncScheduler(syncService); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	handler := loggingMiddleware(server.router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func StartSyncScheduler(syncService *application.SyncService) error {
	c := cron.New()
	// Re-sync linked accounts that fell more than staleSyncAge behind.
	_, err := c.AddFunc("@every 6h", func() {
		syncService.SyncStaleLinked(staleSyncAge)
		log.Println("Stale account sync pass finished.")
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
