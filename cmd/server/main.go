package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"altdata_backend/internal/app/di"
	"altdata_backend/internal/app/router"
	approvalhandler "altdata_backend/internal/feature/approval/transport/handler"
	cataloghandler "altdata_backend/internal/feature/catalog/transport/handler"
	catalogusecase "altdata_backend/internal/feature/catalog/usecase"
	correlationhandler "altdata_backend/internal/feature/correlation/transport/handler"
	queryparsehandler "altdata_backend/internal/feature/queryparse/transport/handler"
	infradb "altdata_backend/internal/platform/db"
	platformhandler "altdata_backend/internal/platform/http/handler"
	jwtmw "altdata_backend/internal/platform/jwt"
	infraredis "altdata_backend/internal/platform/redis"
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})))

	ctx := context.Background()

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis
	var rdb *redisv9.Client
	if rcfg := infraredis.LoadConfig(); !rcfg.Enabled() {
		slog.Warn("REDIS_HOST is not set. Running without cache.")
	} else if tmp, err := infraredis.NewRedisClient(ctx, rcfg); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("auth secret is not set; every authenticated request will fail", "env", jwtmw.EnvKeyJWTSecret)
	}
	if os.Getenv("APPROVAL_SECRET") == "" {
		slog.Warn("APPROVAL_SECRET is not set; approval links will be neither issued nor accepted")
	}

	// Usecase
	approvalUC := di.NewApprovalUsecase(db, rdb)
	correlationUC := di.NewCorrelationUsecase(di.NewMetricStore(db, rdb))
	queryParseUC, err := di.NewQueryParseUsecase(ctx)
	if err != nil {
		slog.Error("failed to create Gemini client", "error", err)
		os.Exit(1)
	}

	// Handler
	handlers := router.Handlers{
		Ready: platformhandler.Ready(func(ctx context.Context) error {
			return infradb.Ping(ctx, db)
		}),
		Approval:    approvalhandler.NewApprovalHandler(approvalUC),
		Catalog:     cataloghandler.NewCatalogHandler(catalogusecase.NewCatalogUsecase()),
		Correlation: correlationhandler.NewCorrelationHandler(correlationUC),
		QueryParse:  queryparsehandler.NewQueryParseHandler(queryParseUC),
	}

	// ルータ生成
	r := router.NewRouter(router.LoadConfig(), handlers)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
