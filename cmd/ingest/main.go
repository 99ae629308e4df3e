package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"altdata_backend/internal/app/di"
	metrics "altdata_backend/internal/feature/metrics/domain/entity"
	"altdata_backend/internal/feature/metrics/usecase"
	infradb "altdata_backend/internal/platform/db"
	infraredis "altdata_backend/internal/platform/redis"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// キャッシュ無効化のためにRedisへ接続（任意）
	var rdb *redisv9.Client
	if rcfg := infraredis.LoadConfig(); rcfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, rcfg); err == nil {
			rdb = tmp
			defer func() { _ = rdb.Close() }()
		}
	}

	store := di.NewMetricStore(db, rdb)
	failed := false

	// 代替データはDATA_DIRECTORYが設定されている場合のみ取り込む。終値はその後で上書きする
	if src := di.NewAltDataSource(); src != nil {
		summary, err := usecase.NewImportUsecase(src, store).ImportAll(ctx, metrics.Tickers)
		if err != nil {
			slog.Error("import aborted", "error", err)
			os.Exit(1)
		}
		slog.Info("import finished", "succeeded", len(summary.Succeeded), "skipped", len(summary.Skipped), "failed", len(summary.Failed), "rows", summary.Rows)
		failed = len(summary.Failed) > 0
	} else {
		slog.Info("DATA_DIRECTORY is not set; skipping alternative data import")
	}

	uc := usecase.NewIngestUsecase(di.NewMarket(), store, di.NewMarketRateLimiter())

	summary, err := uc.IngestAll(ctx, metrics.Tickers)
	if err != nil {
		slog.Error("ingest aborted", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest finished", "succeeded", len(summary.Succeeded), "failed", len(summary.Failed), "rows", summary.Rows)
	if failed || len(summary.Failed) > 0 {
		os.Exit(1)
	}
}
