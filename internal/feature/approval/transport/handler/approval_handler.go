// Package handler はapprovalフィーチャーのHTTPハンドラーとGinミドルウェアを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"altdata_backend/internal/api"
	"altdata_backend/internal/feature/approval/domain/entity"
	"altdata_backend/internal/feature/approval/usecase"
	jwtmw "altdata_backend/internal/platform/jwt"
)

// ApprovalUsecase はアカウント承認のユースケースインターフェースを定義します。
type ApprovalUsecase interface {
	Approve(ctx context.Context, userID, token string) error
	NotifyAdmin(ctx context.Context, userID, email string) (string, error)
	CurrentUser(ctx context.Context, userID, email string) (entity.CurrentUser, error)
	RequireApproved(ctx context.Context, userID string) error
}

// ApprovalHandler は承認リンク、ログインユーザー情報、管理者通知を処理します。
type ApprovalHandler struct {
	uc ApprovalUsecase
}

// NewApprovalHandler は新しいApprovalHandlerを生成します。
func NewApprovalHandler(uc ApprovalUsecase) *ApprovalHandler {
	return &ApprovalHandler{uc: uc}
}

const approvedPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>User Approved</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
<h1>User Approved</h1>
<p>The account has been approved and can now sign in.</p>
</body>
</html>`

// Approve は管理者がメールのリンクから開く承認エンドポイントです。
//
// エンドポイント例:
// GET /api/admin/approve?userId=...&token=...
func (h *ApprovalHandler) Approve(c *gin.Context) {
	userID := c.Query("userId")
	err := h.uc.Approve(c.Request.Context(), userID, c.Query("token"))
	switch {
	case err == nil:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(approvedPage))
	case errors.Is(err, usecase.ErrMissingParameters):
		c.String(http.StatusBadRequest, "Missing parameters")
	case errors.Is(err, usecase.ErrInvalidToken):
		slog.Warn("approval with invalid token", "user_id", userID, "remote_addr", c.ClientIP())
		c.String(http.StatusForbidden, "Invalid token")
	case errors.Is(err, usecase.ErrProfileNotFound):
		c.String(http.StatusNotFound, "User not found")
	default:
		slog.Error("failed to approve user", "user_id", userID, "error", err)
		c.String(http.StatusInternalServerError, "Failed to approve user")
	}
}

// Me はサインイン中のユーザーIDとメール、承認状態を返します。
func (h *ApprovalHandler) Me(c *gin.Context) {
	cu, err := h.uc.CurrentUser(c.Request.Context(), c.GetString(jwtmw.ContextUserID), c.GetString(jwtmw.ContextEmail))
	if err != nil {
		slog.Error("failed to load current user", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, api.MeResponse{UserID: cu.ID, Email: cu.Email, Approved: cu.Approved})
}

// NotifyAdmin はサインアップ直後にクライアントから呼ばれ、管理者へ承認依頼を送ります。
// ユーザーIDとメールはJWTのクレームから取得し、リクエストボディは参照しません。
func (h *ApprovalHandler) NotifyAdmin(c *gin.Context) {
	if _, err := h.uc.NotifyAdmin(c.Request.Context(), c.GetString(jwtmw.ContextUserID), c.GetString(jwtmw.ContextEmail)); err != nil {
		if errors.Is(err, usecase.ErrMissingParameters) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "missing user"})
			return
		}
		slog.Error("failed to notify admin", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to notify admin"})
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

// RequireApproved は承認済みユーザーだけを通すミドルウェアです。
// jwtmw.AuthRequired の後段に置きます。
func (h *ApprovalHandler) RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(jwtmw.ContextUserID)
		err := h.uc.RequireApproved(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, usecase.ErrNotApproved):
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{
				Error:   "account pending approval",
				Details: "an administrator must approve this account before data can be queried",
			})
		default:
			slog.Error("failed to check approval", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to check approval"})
		}
	}
}
