package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docverify/internal/audit"
	"docverify/internal/eligibility"
	policyhandler "docverify/internal/eligibility/handler"
	"docverify/internal/eligibility/store"
	"docverify/internal/ocr"
	ocrmetrics "docverify/internal/ocr/metrics"
	"docverify/internal/platform/config"
	"docverify/internal/platform/database"
	"docverify/internal/platform/health"
	"docverify/internal/platform/kafka"
	"docverify/internal/platform/redis"
	"docverify/internal/platform/tracer"
	"docverify/internal/verification"
	verificationhandler "docverify/internal/verification/handler"
	verificationmetrics "docverify/internal/verification/metrics"
	"docverify/migrations"
	"docverify/pkg/platform/middleware/metadata"
	"docverify/pkg/platform/middleware/request"
	"docverify/pkg/platform/middleware/requesttime"
)

const (
	auditQueueSize       = 1024
	auditTopicPartitions = 3
	auditTopicReplicas   = 1
	healthCheckPostgres  = "postgres"
	healthCheckRedis     = "redis"
	healthCheckKafka     = "kafka"
)

// infra holds the optional backing services. Each field is nil when its
// configuration is absent.
type infra struct {
	db       *database.Pool
	redis    *redis.Client
	producer *kafka.Producer
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	out := &infra{}

	db, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if db != nil {
		if err := database.Migrate(ctx, db.DB(), migrations.FS); err != nil {
			db.Close() //nolint:errcheck // best-effort cleanup on init failure
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("policy profiles stored in postgres")
		out.db = db
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		out.Close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		log.Info("ocr result cache enabled", "ttl", cfg.Redis.CacheTTL.String())
		out.redis = rdb
	}

	if cfg.Kafka.Brokers != "" {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, auditTopicPartitions, auditTopicReplicas); err != nil {
			out.Close(log)
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
		producerCfg := kafka.DefaultProducerConfig()
		producerCfg.Brokers = cfg.Kafka.Brokers
		producer, err := kafka.NewProducer(producerCfg, log)
		if err != nil {
			out.Close(log)
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		log.Info("audit events published to kafka", "topic", cfg.Kafka.Topic)
		out.producer = producer
	}

	return out, nil
}

// Close releases every configured backing service.
func (i *infra) Close(log *slog.Logger) {
	if i.producer != nil {
		if err := i.producer.Close(); err != nil {
			log.Error("failed to close kafka producer", "error", err)
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Error("failed to close redis client", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Error("failed to close database pool", "error", err)
		}
	}
}

type app struct {
	router      http.Handler
	auditWorker *audit.Worker
}

func buildApp(cfg config.Server, infra *infra, log *slog.Logger) (*app, error) {
	defaults, err := eligibility.LoadDefaults(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy defaults: %w", err)
	}

	var profiles eligibility.ProfileStore = store.NewInMemoryStore()
	if infra.db != nil {
		profiles = store.NewPostgres(infra.db.DB())
	}
	resolver := eligibility.NewResolver(defaults,
		eligibility.WithProfileStore(profiles),
		eligibility.WithLogger(log),
	)

	engine, err := buildEngine(cfg, infra, log)
	if err != nil {
		return nil, err
	}

	auditStore := newAuditStore(cfg, infra, log)
	queue := make(chan audit.Event, auditQueueSize)
	publisher := audit.NewPublisher(auditStore, audit.WithQueue(queue))
	worker := audit.NewWorker(auditStore, queue, log)

	service := verification.New(engine,
		verification.WithLogger(log),
		verification.WithMetrics(verificationmetrics.New()),
		verification.WithTracer(tracer.NewOTel()),
		verification.WithAuditPublisher(publisher),
		verification.WithOCRTimeout(cfg.OCR.Timeout),
	)

	healthHandler := health.New(cfg.Environment)
	if infra.db != nil {
		healthHandler.RegisterCheck(healthCheckPostgres, infra.db.Health)
	}
	if infra.redis != nil {
		healthHandler.RegisterCheck(healthCheckRedis, infra.redis.Health)
	}
	if infra.producer != nil {
		healthHandler.RegisterCheck(healthCheckKafka, infra.producer.Health)
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(log))
	r.Use(request.Recovery(log))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		verificationhandler.New(service, resolver, log,
			verificationhandler.WithMaxUploadBytes(cfg.MaxUploadBytes),
		).Register(r)
		policyhandler.New(resolver, log).Register(r)
	})

	return &app{router: r, auditWorker: worker}, nil
}

// newAuditStore publishes to Kafka when a producer is configured and
// otherwise logs each event without retaining it.
func newAuditStore(cfg config.Server, infra *infra, log *slog.Logger) audit.Store {
	if infra.producer != nil {
		return audit.NewKafkaStore(infra.producer, cfg.Kafka.Topic)
	}
	return audit.NewLogStore(log)
}

func buildEngine(cfg config.Server, infra *infra, log *slog.Logger) (ocr.Engine, error) {
	engine, err := ocr.New(ocr.Options{
		Engine:        cfg.OCR.Engine,
		TesseractPath: cfg.OCR.TesseractPath,
		Language:      cfg.OCR.Language,
		OpenAIKey:     cfg.OCR.OpenAIKey,
		OpenAIModel:   cfg.OCR.OpenAIModel,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("build ocr engine: %w", err)
	}

	m := ocrmetrics.New()
	if infra.redis != nil {
		engine = ocr.NewCached(engine, infra.redis,
			ocr.WithTTL(cfg.Redis.CacheTTL),
			ocr.WithCacheLogger(log),
			ocr.WithCacheMetrics(m),
		)
	}
	return ocr.Instrument(engine, tracer.NewOTel(), m), nil
}
