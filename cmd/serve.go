package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "invoicedesk/docs"
	"invoicedesk/internal/caching"
	"invoicedesk/internal/handlers"
	"invoicedesk/internal/logger"
	"invoicedesk/internal/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Required environment variables:
  DATABASE_URL - PostgreSQL connection string
  JWT_SECRET or JWKS_URL - identity token verification`,
	Example: `  invoicedesk serve
  invoicedesk serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
	serveCmd.Flags().Duration("shutdown-timeout", 15*time.Second, "Time allowed for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	go func() {
		if err := caching.RunInvalidator(ctx, a.cache, a.feed, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("document link invalidator stopped")
		}
	}()

	auth, err := middleware.NewAuthenticator(middleware.AuthConfig{
		Secret:     cfg.JWTSecret,
		JWKSURL:    cfg.JWKSURL,
		OnIdentity: handlers.AutoClaim(a.claims),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer auth.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.RequestLogger(logger.GetLogger()))

	health := handlers.NewHealthHandlers(version)
	health.Register("database", true, func(ctx context.Context) error { return a.pool.Ping(ctx) })
	health.Register("redis", true, func(ctx context.Context) error { return a.redis.Ping(ctx).Err() })
	health.Register("object_storage", false, func(ctx context.Context) error {
		return a.minio.EnsureBucketExists(ctx, cfg.DocumentBucket)
	})
	handlers.RegisterHealth(e, health)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	versions := middleware.NewVersionMiddleware()
	v1 := versions.VersionRoute(e, "v1")
	api := v1.Group("")
	api.Use(auth.Middleware())

	handlers.Routes{
		Invoices:   handlers.NewInvoiceHandlers(a.invoices, a.documents, a.renderer),
		Businesses: handlers.NewBusinessHandlers(a.businesses),
		TDS:        handlers.NewTDSHandlers(a.tds),
		Claims:     handlers.NewClaimHandlers(a.claims, a.feed),
	}.Register(api)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", version).Msg("http server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
