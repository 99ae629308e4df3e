package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	approvaladapters "altdata_backend/internal/feature/approval/adapters"
	"altdata_backend/internal/feature/approval/adapters/webhook"
	"altdata_backend/internal/feature/approval/usecase"
	"altdata_backend/internal/platform/cache"
	infrahttp "altdata_backend/internal/platform/http"
)

// NewApprovalUsecase wires the profile store (cached when Redis is available)
// and the admin notifier into an ApprovalUsecase.
func NewApprovalUsecase(db *gorm.DB, rdb *redis.Client) *usecase.ApprovalUsecase {
	profiles := cache.NewCachingProfileRepository(rdb, 0, approvaladapters.NewProfileRepository(db), "profile")

	wcfg := webhook.LoadConfig()
	notifier := webhook.NewNotifier(wcfg, infrahttp.NewHTTPClient(wcfg.Timeout))

	return usecase.NewApprovalUsecase(profiles, notifier, usecase.LoadConfig())
}
