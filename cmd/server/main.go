package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promanage/backend/internal/audit"
	auditrepo "promanage/backend/internal/audit/repository"
	"promanage/backend/internal/config"
	"promanage/backend/internal/db"
	"promanage/backend/internal/health"
	healthhandler "promanage/backend/internal/health/handler"
	identityhandler "promanage/backend/internal/identity/handler"
	identityrepo "promanage/backend/internal/identity/repository"
	identityservice "promanage/backend/internal/identity/service"
	"promanage/backend/internal/logging"
	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/policy/engine"
	projecthandler "promanage/backend/internal/project/handler"
	projectrepo "promanage/backend/internal/project/repository"
	projectservice "promanage/backend/internal/project/service"
	"promanage/backend/internal/ratelimit"
	"promanage/backend/internal/security"
	"promanage/backend/internal/server"
	taskhandler "promanage/backend/internal/task/handler"
	taskrepo "promanage/backend/internal/task/repository"
	taskservice "promanage/backend/internal/task/service"
	telemetryotel "promanage/backend/internal/telemetry/otel"
	"promanage/backend/internal/upload"
	workspacehandler "promanage/backend/internal/workspace/handler"
	workspacerepo "promanage/backend/internal/workspace/repository"
	workspaceservice "promanage/backend/internal/workspace/service"
)

const serviceName = "promanage-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		fatal(logger, "otel", err)
	}
	providers.SetGlobal()
	metrics, err := telemetryotel.NewAuthMetrics(providers.MeterProvider)
	if err != nil {
		fatal(logger, "otel metrics", err)
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "db", err)
	}
	defer conn.Close()

	policy, err := engine.NewOPAEvaluatorFromFile(ctx, cfg.PolicyFile)
	if err != nil {
		fatal(logger, "policy", err)
	}
	authz := rbac.NewAuthorizer(policy)

	accessTTL, ok := cfg.AccessTTL()
	if !ok {
		logger.Warn("JWT_ACCESS_TTL unparseable, using fallback", "value", cfg.JWTAccessTTL, "ttl", accessTTL)
	}
	refreshTTL, ok := cfg.RefreshTTL()
	if !ok {
		logger.Warn("JWT_REFRESH_TTL unparseable, using fallback", "value", cfg.JWTRefreshTTL, "ttl", refreshTTL)
	}
	tokens, err := security.NewTokenProvider(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, accessTTL, refreshTTL)
	if err != nil {
		fatal(logger, "tokens", err)
	}

	trusted, err := cfg.TrustedProxyList()
	if err != nil {
		fatal(logger, "trusted proxies", err)
	}

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), httpx.ClientIPFromContext)

	kafkaPublisher := notification.NewKafkaPublisher(cfg.KafkaBrokersList(), cfg.NotificationTopic)
	publishers := notification.Multi{
		notification.LogPublisher{Logger: logger},
		telemetryotel.NewEventPublisher(providers.LoggerProvider),
	}
	if kafkaPublisher != nil {
		publishers = append(publishers, kafkaPublisher)
	}

	authSvc := identityservice.NewAuthService(identityrepo.NewPostgresRepository(conn), security.NewHasher(cfg.BcryptCost), tokens)
	workspaceSvc := workspaceservice.NewWorkspaceService(workspacerepo.NewPostgresRepository(conn))
	projectSvc := projectservice.NewProjectService(projectrepo.NewPostgresRepository(conn))
	taskSvc := taskservice.NewTaskService(taskrepo.NewPostgresRepository(conn), auditLogger)

	store, err := upload.NewStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		fatal(logger, "upload", err)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewClient(cfg.RedisURL)
		if err != nil {
			fatal(logger, "redis", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, "ratelimit:auth:", cfg.AuthRateLimit, cfg.AuthRateWindow)
	} else {
		logger.Warn("REDIS_URL not set, auth rate limiting disabled")
	}

	checker := health.NewChecker(conn, policy)

	router := server.NewRouter(server.RouterDeps{
		Identity:       identityhandler.NewHTTP(authSvc, auditLogger, metrics),
		Workspaces:     workspacehandler.NewHTTP(workspaceSvc),
		Projects:       projecthandler.NewHTTP(projectSvc, publishers),
		Tasks:          taskhandler.NewHTTP(taskSvc, publishers),
		Health:         checker,
		Uploads:        store,
		Tokens:         tokens,
		Authorizer:     authz,
		Limiter:        limiter,
		TrustedProxies: trusted,
		CORSOrigins:    cfg.CORSOriginsList(),
	})
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv := server.NewGRPCServer(server.GRPCDeps{
		Sessions:       identityhandler.NewGRPC(authSvc),
		Health:         healthhandler.NewServer(checker, identityhandler.SessionServiceName),
		Tokens:         tokens,
		Audit:          auditLogger,
		Limiter:        limiter,
		TrustedProxies: trusted,
	})
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		fatal(logger, "listen", err)
	}

	errc := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errc:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	grpcSrv.GracefulStop()

	// Let in-flight async notifications finish before closing their sinks.
	time.Sleep(notification.ShutdownDrainDuration)
	if err := kafkaPublisher.Close(); err != nil {
		logger.Warn("kafka close", "error", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", "error", err)
	}
	logger.Info("stopped")
}

// fatal logs err and exits. Deferred cleanups do not run.
func fatal(logger *slog.Logger, what string, err error) {
	logger.Error(what+" failed", "error", err)
	os.Exit(1)
}
