// Package webhook はホスト型関数（メール送信）へ承認依頼をPOSTする通知クライアントを提供します。
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"altdata_backend/internal/feature/approval/domain/entity"
	"altdata_backend/internal/feature/approval/usecase"
)

// Config は通知先の設定です。
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// LoadConfig は環境変数から設定を読み込みます。
// APPROVAL_WEBHOOK_URL が空の場合、通知は無効になります。
func LoadConfig() Config {
	return Config{
		URL:     os.Getenv("APPROVAL_WEBHOOK_URL"),
		Token:   os.Getenv("APPROVAL_WEBHOOK_TOKEN"),
		Timeout: 10 * time.Second,
	}
}

// Notifier は承認依頼をJSONでPOSTします。
type Notifier struct {
	cfg    Config
	client *http.Client
}

// NotifierがNotifierを実装していることをコンパイル時に検証します。
var _ usecase.Notifier = (*Notifier)(nil)

// NewNotifier は新しいNotifierを生成します。
func NewNotifier(cfg Config, client *http.Client) *Notifier {
	return &Notifier{cfg: cfg, client: client}
}

type payload struct {
	To           string `json:"to"`
	UserEmail    string `json:"userEmail"`
	UserID       string `json:"userId"`
	ApprovalLink string `json:"approvalLink"`
	SignupDate   string `json:"signupDate"`
}

// NotifyApproval は承認依頼を送信します。2xx以外はエラーとして返します。
func (n *Notifier) NotifyApproval(ctx context.Context, req entity.ApprovalRequest) error {
	if n.cfg.URL == "" {
		return usecase.ErrNotifierDisabled
	}

	body, err := json.Marshal(payload{
		To:           req.To,
		UserEmail:    req.UserEmail,
		UserID:       req.UserID,
		ApprovalLink: req.ApprovalLink,
		SignupDate:   req.SignupDate.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal approval request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if n.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+n.cfg.Token)
	}

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("approval webhook http %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return nil
}
