package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"blog-service/configs"
	"blog-service/internal/auth"
	"blog-service/internal/kafka"
	"blog-service/internal/migrate"
	"blog-service/internal/post"
	"blog-service/internal/ratelimit"
	"blog-service/internal/server"
	"blog-service/internal/shared/db"
	"blog-service/internal/shared/jwt"
	"blog-service/internal/shared/logx"
	"blog-service/internal/shared/redisx"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func initOTEL(ctx context.Context, cfg *configs.Config) (func(context.Context) error, error) {
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OTELEndpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.OTELServiceName),
		attribute.String("deployment.environment", cfg.Env),
	))
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.OTELSampleRatio))),
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func openRepository(cfg *configs.Config, log logrus.FieldLogger) (post.Repository, func(), error) {
	if cfg.StoreDriver == configs.StoreMemory {
		return post.NewMemoryRepository(), func() {}, nil
	}
	store, err := db.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.AutoMigrateAll(store); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return post.NewGormRepository(store), func() { _ = store.Close() }, nil
}

func openPublisher(cfg *configs.Config, log logrus.FieldLogger) (post.EventPublisher, func()) {
	if cfg.KafkaBrokers == "" {
		log.Info("kafka disabled, post events are dropped")
		return post.NopPublisher(), func() {}
	}
	p, err := kafka.NewPublisher(kafka.Options{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		Acks:    cfg.KafkaRequiredAcks,
		Async:   cfg.KafkaAsync,
		Log:     log,
	})
	if err != nil {
		log.WithError(err).Warn("kafka publisher, post events are dropped")
		return post.NopPublisher(), func() {}
	}
	return p, func() { _ = p.Close() }
}

func openLimiter(ctx context.Context, cfg *configs.Config, log logrus.FieldLogger) (ratelimit.Limiter, func()) {
	if cfg.RedisAddr != "" {
		rdb, err := redisx.Open(ctx, cfg.RedisAddr)
		if err == nil {
			return ratelimit.NewRedis(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst), func() { _ = rdb.Close() }
		}
		log.WithError(err).Warn("redis unavailable, using in-process rate limiter")
	}
	return ratelimit.NewLocal(cfg.RateLimitRPS, cfg.RateLimitBurst), func() {}
}

func main() {
	cfg := configs.LoadConfig()
	log := logx.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config")
	}
	log.Info("config: ", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEnabled {
		shutdown, err := initOTEL(ctx, cfg)
		if err != nil {
			log.WithError(err).Fatal("otel exporter")
		}
		defer func() {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(c)
		}()
	}

	repo, closeRepo, err := openRepository(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store")
	}
	defer closeRepo()

	if cfg.SeedPosts {
		if err := repo.Seed(ctx, post.DemoPosts()...); err != nil {
			log.WithError(err).Fatal("seed posts")
		}
	}

	events, closeEvents := openPublisher(cfg, log)
	defer closeEvents()

	limiter, closeLimiter := openLimiter(ctx, cfg, log)
	defer closeLimiter()

	authn, err := auth.NewAuthenticator(cfg.AuthUsername, cfg.AuthPassword, cfg.AuthPasswordHash)
	if err != nil {
		log.WithError(err).Fatal("auth")
	}

	posts := post.NewService(repo, events, log)
	handler := server.NewHandler(server.Deps{
		Posts:   posts,
		Auth:    authn,
		Tokens:  jwt.NewManager(cfg.Secret(), cfg.AccessTTL, cfg.RefreshTTL),
		Limiter: limiter,
		Log:     log,
	})
	if cfg.OTELEnabled {
		handler = otelhttp.NewHandler(handler, "http.server")
	}

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Infof("blog-service listening on %s (store=%s)", cfg.AppPort, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("listen")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
	if err := posts.Close(shCtx); err != nil {
		log.WithError(err).Warn("post events left unpublished")
	}
}
