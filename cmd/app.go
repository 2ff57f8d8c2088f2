package main

import (
	"context"
	"fmt"
	"strings"

	"invoicedesk/internal/caching"
	"invoicedesk/internal/claiming"
	"invoicedesk/internal/config"
	"invoicedesk/internal/jobs"
	"invoicedesk/internal/repositories"
	"invoicedesk/internal/services"
	"invoicedesk/internal/settlement"
	"invoicedesk/internal/snapshot"
	"invoicedesk/internal/store"
	"invoicedesk/pkg/database"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds the dependencies shared by the serve and worker commands
type app struct {
	pool     *pgxpool.Pool
	redis    *redis.Client
	asynq    *asynq.Client
	feed     *caching.ChangeFeed
	cache    caching.CacheService
	minio    services.MinioService
	renderer *snapshot.Renderer

	invoices   services.InvoiceServiceInterface
	documents  services.DocumentServiceInterface
	tds        services.TDSServiceInterface
	businesses services.BusinessServiceInterface
	claims     *claiming.Coordinator
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	taxConfig, err := config.LoadTaxConfig(cfg.TaxConfigPath)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolConfig{MaxConns: int32(cfg.DBMaxConns)}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioRegion)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}
	if err := minioSvc.EnsureBucketExists(ctx, cfg.DocumentBucket); err != nil {
		logger.Warn().Err(err).Str("bucket", cfg.DocumentBucket).Msg("document bucket unavailable")
	}

	redisClient := caching.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	asynqClient := asynq.NewClient(redisOpt(cfg))

	feed := caching.NewChangeFeed(redisClient, cfg.ChangeChannel, logger)
	st := store.New(pool, feed, logger)
	cacheSvc := caching.NewRedisCacheService(redisClient)

	invoiceRepo := repositories.NewInvoiceRepo(pool)
	businessRepo := repositories.NewBusinessRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	attachmentRepo := repositories.NewAttachmentRepo(pool)
	tdsRepo := repositories.NewTDSRepo(pool)

	engine := settlement.NewEngine(taxConfig.EngineOptions()...)
	renderer := snapshot.NewRenderer()

	a := &app{
		pool:     pool,
		redis:    redisClient,
		asynq:    asynqClient,
		feed:     feed,
		cache:    cacheSvc,
		minio:    minioSvc,
		renderer: renderer,
	}

	a.invoices = services.NewInvoiceService(
		invoiceRepo, businessRepo, clientRepo, attachmentRepo,
		st, minioSvc, cfg.DocumentBucket, engine,
		services.TaxRules{GSTRate: taxConfig.GSTRate(), TermDays: taxConfig.TermDays()},
		logger,
	)
	a.documents = services.NewDocumentService(
		invoiceRepo, businessRepo, clientRepo, attachmentRepo,
		renderer, minioSvc, cfg.DocumentBucket, cfg.LinkExpiry, cacheSvc,
		jobs.NewArchiveEnqueuer(asynqClient, jobs.DefaultQueue),
		logger,
	)
	a.tds = services.NewTDSService(tdsRepo)
	a.businesses = services.NewBusinessService(st, logger)
	a.claims = claiming.NewCoordinator(businessRepo, st, caching.NewClaimLocker(redisClient, 0), logger)

	return a, nil
}

func (a *app) Close() {
	_ = a.asynq.Close()
	_ = a.redis.Close()
	a.pool.Close()
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	addr := strings.TrimPrefix(strings.TrimPrefix(cfg.RedisAddr, "redis://"), "rediss://")
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
