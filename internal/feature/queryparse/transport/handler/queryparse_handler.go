// Package handler はqueryparseフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"altdata_backend/internal/api"
	"altdata_backend/internal/feature/queryparse/domain/entity"
	"altdata_backend/internal/feature/queryparse/usecase"
)

// QueryParseUsecase は自然文クエリ解釈のユースケースインターフェースです。
type QueryParseUsecase interface {
	Parse(ctx context.Context, text string) (entity.ParsedQuery, error)
}

// QueryParseHandler は自然文クエリのHTTPリクエストを処理します。
type QueryParseHandler struct {
	uc QueryParseUsecase
}

// NewQueryParseHandler は新しい QueryParseHandler を作成します。
func NewQueryParseHandler(uc QueryParseUsecase) *QueryParseHandler {
	return &QueryParseHandler{uc: uc}
}

// ParseQuery は自然文を検証済みのクエリパラメータに変換して返します。
// 検証エラーは400と例文、モデル呼び出しの失敗は500を返します。
//
// エンドポイント例:
// POST /api/parse-query {"query":"Show AAPL job postings vs price since 2024"}
func (h *QueryParseHandler) ParseQuery(c *gin.Context) {
	var req api.ParseQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	q, err := h.uc.Parse(c.Request.Context(), req.Query)
	if err != nil {
		var ve *usecase.ValidationError
		if errors.As(err, &ve) {
			slog.Warn("query rejected", "query", req.Query, "reason", ve.Message)
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: ve.Message, Suggestions: ve.Suggestions})
			return
		}
		slog.Error("query interpretation failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "AI service error", Details: err.Error()})
		return
	}

	parsed := api.ParsedQuery{
		Ticker:    string(q.Ticker),
		MetricX:   string(q.MetricX),
		MetricY:   string(q.MetricY),
		StartDate: toDate(q.StartDate),
		EndDate:   toDate(q.EndDate),
	}
	for _, t := range q.Tickers {
		parsed.Tickers = append(parsed.Tickers, string(t))
	}

	c.JSON(http.StatusOK, api.ParseQueryResponse{
		Success:    true,
		Parsed:     parsed,
		Confidence: string(q.Confidence),
	})
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}
