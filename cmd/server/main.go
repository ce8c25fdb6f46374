package main

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"xenoxy/internal/coach"
	"xenoxy/internal/db"
	"xenoxy/internal/handlers"
	"xenoxy/internal/jobs"
	mw "xenoxy/internal/middleware"
	"xenoxy/internal/services"
	"xenoxy/internal/store/postgres"
	"xenoxy/internal/tracker"
	"xenoxy/internal/xp"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustHexKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Error("required key missing", slog.String("var", name))
		os.Exit(1)
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) != 32 {
		slog.Error("key must be 32 hex-encoded bytes", slog.String("var", name))
		os.Exit(1)
	}
	return key
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	port := mustGetenv("PORT", "8080")
	encryptionKey := mustHexKey("ENCRYPTION_KEY")
	blindIndexKey := mustHexKey("BLIND_INDEX_KEY")

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		slog.Error("failed to ping db", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		slog.Error("failed migrations", slog.Any("err", err))
		os.Exit(1)
	}

	encSvc, err := services.NewEncryptionService(encryptionKey, blindIndexKey)
	if err != nil {
		slog.Error("failed to init encryption", slog.Any("err", err))
		os.Exit(1)
	}

	habitStore := postgres.NewHabitStore(dbConn)
	completionStore := postgres.NewCompletionStore(dbConn)
	profileStore := postgres.NewProfileStore(dbConn)

	trackers := tracker.NewManager(habitStore, completionStore)
	engine := xp.NewEngine(profileStore)

	coachClient := coach.NewClient(
		os.Getenv("OPENAI_API_KEY"),
		mustGetenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
	)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		slog.Error("failed to init zap", slog.Any("err", err))
		os.Exit(1)
	}
	defer zapLogger.Sync()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(zapLogger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(dbConn, encSvc, []byte(jwtSecret))
	profileHandler := handlers.NewProfileHandler(dbConn, engine, encSvc)
	habitsHandler := handlers.NewHabitsHandler(habitStore, trackers, engine)
	statsHandler := handlers.NewStatsHandler(dbConn, trackers, engine)
	coachHandler := handlers.NewCoachHandler(coachClient, engine, trackers, encSvc)
	adminHandler := handlers.NewAdminHandler(dbConn)
	migrateHandler := handlers.NewMigrateHandler(habitStore, completionStore)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Get("/profile", profileHandler.GetMe)
			pr.Put("/profile", profileHandler.UpdateMe)
			pr.Get("/habits", habitsHandler.List)
			pr.Post("/habits", habitsHandler.Create)
			pr.Put("/habits/{habitID}", habitsHandler.Update)
			pr.Delete("/habits/{habitID}", habitsHandler.Delete)
			pr.Post("/habits/{habitID}/complete", habitsHandler.Complete)
			pr.Post("/habits/{habitID}/uncomplete", habitsHandler.Uncomplete)
			pr.Get("/stats", statsHandler.Get)
			pr.Post("/coach/chat", coachHandler.Chat)
			pr.Post("/migrate", migrateHandler.MigrateData)
			pr.Get("/admin/overview", adminHandler.Overview)
		})
	})

	reconciler := jobs.NewLevelReconciler(dbConn, time.Hour)
	if err := reconciler.Start(); err != nil {
		slog.Error("failed to start level reconciler", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	reconciler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
