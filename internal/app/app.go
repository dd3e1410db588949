package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/rueidis"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "crmtasks/docs"
	"crmtasks/internal/authz"
	"crmtasks/internal/config"
	"crmtasks/internal/handlers"
	"crmtasks/internal/middleware"
	"crmtasks/internal/pdf"
	"crmtasks/internal/realtime"
	"crmtasks/internal/repositories"
	"crmtasks/internal/routes"
	"crmtasks/internal/services"
)

// OpenDB opens and pings the Postgres pool described by cfg.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return sqlx.NewDb(db, "postgres"), nil
}

// Deps are the pieces NewRouter needs. Everything except Service may be nil.
type Deps struct {
	Service services.TaskService
	PDF     pdf.Generator
	Hub     *realtime.TaskHub
	DB      interface{ PingContext(context.Context) error }
	Auth    gin.HandlerFunc
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Printf("[http][panic] %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := d.Auth
	if auth == nil {
		auth = middleware.Anonymous(authz.RoleAdmin)
	}
	pdfGen := d.PDF
	if pdfGen == nil {
		pdfGen = pdf.NewTaskSheetGenerator("")
	}

	h := routes.Handlers{
		Task:      handlers.NewTaskHandler(d.Service),
		Dashboard: handlers.NewDashboardHandler(d.Service, pdfGen),
	}
	if d.Hub != nil {
		h.Realtime = handlers.NewRealtimeHandler(d.Hub)
	}
	if d.DB != nil {
		h.Health = handlers.NewHealthHandler(d.DB)
	}
	return routes.SetupRoutes(router, auth, h)
}

// buildNotifier fans task events out to every configured channel.
// The returned cleanup closes clients that hold connections.
func buildNotifier(cfg *config.Config, db *sqlx.DB, hub *realtime.TaskHub) (services.Notifier, func(), error) {
	cleanup := func() {}
	multi := services.NewMultiNotifier(
		services.NewBroadcastNotifier(repositories.NewNotificationRepository(db)),
	)

	tg, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Location())
	if err != nil {
		return nil, cleanup, fmt.Errorf("telegram: %w", err)
	}
	if tg != nil {
		multi.Add(tg)
	} else {
		log.Printf("[app] telegram notifications disabled")
	}

	if cfg.Email.Enabled() {
		multi.Add(services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.NotifyEmail,
			cfg.Location(),
		))
	}

	if cfg.Redis.Addr != "" {
		client, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{cfg.Redis.Addr}})
		if err != nil {
			return nil, cleanup, fmt.Errorf("redis: %w", err)
		}
		cleanup = client.Close
		multi.Add(services.NewRedisPublisher(client, cfg.Redis.ChannelPrefix))
	}

	// with the listener on, the hub is fed from pg_notify instead
	if !cfg.Realtime.Listen {
		multi.Add(hub)
	}
	log.Printf("[app] %d notification channels active", multi.Len())
	return multi, cleanup, nil
}

func authMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled() {
		log.Printf("[app][warn] no jwt_secret or service_key_hash configured, requests run as admin")
		return middleware.Anonymous(authz.RoleAdmin)
	}
	return middleware.AuthMiddleware(middleware.Credentials{
		JWTKey:         []byte(cfg.JWTSecret),
		ServiceKeyHash: []byte(cfg.ServiceKeyHash),
	})
}

// Run serves HTTP until SIGINT/SIGTERM.
func Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[app][err] close db: %v", err)
		}
	}()

	hub := realtime.NewTaskHub()
	notifier, cleanup, err := buildNotifier(cfg, db, hub)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Realtime.Listen {
		listener := realtime.NewPGListener(cfg.Database.DSN, hub)
		go func() {
			if err := listener.Run(ctx); err != nil {
				log.Printf("[app][listen][err] %v", err)
			}
		}()
	}

	taskService := services.NewTaskService(repositories.NewTaskRepository(db), notifier, cfg.Location())
	router := NewRouter(Deps{
		Service: taskService,
		PDF:     pdf.NewTaskSheetGenerator(cfg.Dashboard.FontPath),
		Hub:     hub,
		DB:      db,
		Auth:    authMiddleware(cfg.Auth),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] listening on %s (today in %s)", srv.Addr, cfg.Location())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, apikey, x-client-info")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
