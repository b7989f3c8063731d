package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/lms-backend/internal"
	"github.com/frahmantamala/lms-backend/internal/auth"
	"github.com/frahmantamala/lms-backend/internal/authz"
	authzPostgres "github.com/frahmantamala/lms-backend/internal/authz/postgres"
	"github.com/frahmantamala/lms-backend/internal/catalog"
	catalogPostgres "github.com/frahmantamala/lms-backend/internal/catalog/postgres"
	"github.com/frahmantamala/lms-backend/internal/core/database"
	"github.com/frahmantamala/lms-backend/internal/core/events"
	"github.com/frahmantamala/lms-backend/internal/course"
	coursePostgres "github.com/frahmantamala/lms-backend/internal/course/postgres"
	"github.com/frahmantamala/lms-backend/internal/enrollment"
	enrollmentPostgres "github.com/frahmantamala/lms-backend/internal/enrollment/postgres"
	"github.com/frahmantamala/lms-backend/internal/transport"
	"github.com/frahmantamala/lms-backend/internal/transport/rest"
	"github.com/frahmantamala/lms-backend/internal/transport/swagger"
	"github.com/frahmantamala/lms-backend/internal/user"
	userPostgres "github.com/frahmantamala/lms-backend/internal/user/postgres"
	"github.com/frahmantamala/lms-backend/internal/userprofile"
	profilePostgres "github.com/frahmantamala/lms-backend/internal/userprofile/postgres"
	"github.com/frahmantamala/lms-backend/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight audit handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	catalogSvc := catalog.NewService(
		catalogPostgres.NewCatalogRepository(deps.Gorm),
		catalog.NewRoleCache(cfg.Cache.RoleCacheSize, cfg.Cache.RoleCacheTTL),
		lg,
	)
	courseSvc := course.NewService(coursePostgres.NewCourseRepository(deps.Gorm), lg)

	userRepo := userPostgres.NewUserRepository(deps.DB)
	// authz only needs user lookups; the profile service needs authz grants
	userLookup := user.NewService(userRepo, nil, lg)

	assignments := authzPostgres.NewAssignmentRepository(deps.Gorm)
	resolver := authz.NewResolver(assignments, catalogSvc)
	authzSvc := authz.NewService(assignments, resolver, catalogSvc, userLookup, courseSvc, time.Now, lg)
	userSvc := user.NewService(userRepo, authzSvc, lg).WithPasswordCost(cfg.Security.BCryptCost)
	profileSvc := userprofile.NewService(profilePostgres.NewProfileRepository(deps.Gorm), userLookup, lg)

	enrollmentSvc := enrollment.NewService(enrollmentPostgres.NewEnrollmentRepository(deps.Gorm), deps.EventBus, time.Now, lg)
	enrollment.NewEventHandler(lg).RegisterEventHandlers(deps.EventBus)

	tokens := auth.NewJWTTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, cfg.Security.AccessTokenDuration)

	var spec *swagger.Spec
	if cfg.API.SpecPath != "" {
		loaded, err := swagger.LoadSpec(context.Background(), cfg.API.SpecPath)
		if err != nil {
			return fmt.Errorf("failed to load openapi spec: %w", err)
		}
		spec = loaded
	}

	rest.RegisterAllRoutes(deps.Router, rest.RouterConfig{
		Health:         rest.NewHealthHandler(deps.DB),
		Guard:          authz.NewGuard(resolver, time.Now, lg),
		Verifier:       tokens,
		Spec:           spec,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         lg,
	}, rest.Handlers{
		Catalog:     catalog.NewHandler(base, catalogSvc),
		Authz:       authz.NewHandler(base, authzSvc),
		Users:       user.NewHandler(base, userSvc),
		Profiles:    userprofile.NewHandler(base, profileSvc),
		Courses:     course.NewHandler(base, courseSvc),
		Enrollments: enrollment.NewHandler(base, enrollmentSvc),
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Env, config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := database.OpenPostgres(db.DB)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gormDB,
		Router:   chi.NewRouter(),
		EventBus: events.NewEventBus(lg),
	}, nil
}

// initDB opens the pgx pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
