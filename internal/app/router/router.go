// Package router はHTTPルーティングを組み立てます。
package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	approvalhandler "altdata_backend/internal/feature/approval/transport/handler"
	cataloghandler "altdata_backend/internal/feature/catalog/transport/handler"
	correlationhandler "altdata_backend/internal/feature/correlation/transport/handler"
	queryparsehandler "altdata_backend/internal/feature/queryparse/transport/handler"
	platformhandler "altdata_backend/internal/platform/http/handler"
	jwtmw "altdata_backend/internal/platform/jwt"
)

// Config はルーター全体の設定です。
type Config struct {
	// AllowedOrigins が空の場合、すべてのオリジンを許可します。
	AllowedOrigins []string
}

// LoadConfig は CORS_ALLOWED_ORIGINS（カンマ区切り）を読み込みます。
func LoadConfig() Config {
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{AllowedOrigins: origins}
}

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Ready       gin.HandlerFunc
	Approval    *approvalhandler.ApprovalHandler
	Catalog     *cataloghandler.CatalogHandler
	Correlation *correlationhandler.CorrelationHandler
	QueryParse  *queryparsehandler.QueryParseHandler
}

func corsConfig(cfg Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

func NewRouter(cfg Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors.New(corsConfig(cfg)))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	r.GET("/readyz", h.Ready)

	api := r.Group("/api")
	// 管理者がメールのリンクから開く（HMACトークンで保護）
	api.GET("/admin/approve", h.Approval.Approve)
	// ドロップダウン用の一覧
	api.GET("/catalog/tickers", h.Catalog.Tickers)
	api.GET("/catalog/metrics", h.Catalog.Metrics)

	// 認証必須のルート
	authed := api.Group("/")
	authed.Use(jwtmw.AuthRequired())
	{
		authed.GET("/me", h.Approval.Me)
		authed.POST("/notify-admin", h.Approval.NotifyAdmin)
	}

	// 認証 + 管理者承認が必須のルート
	approved := api.Group("/")
	approved.Use(jwtmw.AuthRequired(), h.Approval.RequireApproved())
	{
		approved.POST("/parse-query", h.QueryParse.ParseQuery)
		approved.POST("/correlation", h.Correlation.Correlation)
		approved.POST("/compare", h.Correlation.Compare)
		approved.POST("/discover", h.Correlation.Discover)
	}

	return r
}
