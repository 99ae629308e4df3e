package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"altdata_backend/internal/feature/approval/domain/entity"
)

// ProfileRepository はuser_profilesテーブルへのアクセスを抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type ProfileRepository interface {
	// FindByID はプロフィールを取得します。存在しない場合は ErrProfileNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.Profile, error)

	// Approve は approved=true と updated_at を書き込みます。該当行がない場合は ErrProfileNotFound を返します。
	Approve(ctx context.Context, id string, at time.Time) error
}

// Notifier は管理者へ承認依頼を届けます（メール送信用のホスト関数など）。
type Notifier interface {
	NotifyApproval(ctx context.Context, req entity.ApprovalRequest) error
}

// Config はapprovalフィーチャーの設定です。
type Config struct {
	Secret     string
	SiteURL    string
	AdminEmail string
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() Config {
	return Config{
		Secret:     os.Getenv("APPROVAL_SECRET"),
		SiteURL:    strings.TrimRight(os.Getenv("SITE_URL"), "/"),
		AdminEmail: os.Getenv("ADMIN_EMAIL"),
	}
}

// ApprovalUsecase はアカウント承認と、承認状態の参照を担います。
type ApprovalUsecase struct {
	repo     ProfileRepository
	notifier Notifier
	signer   *Signer
	cfg      Config
	now      func() time.Time
}

// NewApprovalUsecase は新しい ApprovalUsecase を作成します。
func NewApprovalUsecase(repo ProfileRepository, notifier Notifier, cfg Config) *ApprovalUsecase {
	return &ApprovalUsecase{
		repo:     repo,
		notifier: notifier,
		signer:   NewSigner(cfg.Secret),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Approve はトークンを検証し、ユーザーを承認済みにします。
// トークンが一致しない場合は書き込みを行わずに ErrInvalidToken を返します。
func (uc *ApprovalUsecase) Approve(ctx context.Context, userID, token string) error {
	if userID == "" || token == "" {
		return ErrMissingParameters
	}
	if !uc.signer.Configured() {
		return ErrSecretNotConfigured
	}
	if !uc.signer.Verify(userID, token) {
		return ErrInvalidToken
	}
	if err := uc.repo.Approve(ctx, userID, uc.now().UTC()); err != nil {
		return err
	}
	slog.Info("user approved", "user_id", userID)
	return nil
}

// ApprovalLink は管理者に送る承認用URLを返します。
func (uc *ApprovalUsecase) ApprovalLink(userID string) string {
	return fmt.Sprintf("%s/api/admin/approve?userId=%s&token=%s",
		uc.cfg.SiteURL, url.QueryEscape(userID), uc.signer.Sign(userID))
}

// NotifyAdmin は承認リンクをログに残し、管理者に通知します。
// 通知の失敗はログに出力するだけで、呼び出し元には返しません（リンクはログから辿れます）。
func (uc *ApprovalUsecase) NotifyAdmin(ctx context.Context, userID, email string) (string, error) {
	if userID == "" {
		return "", ErrMissingParameters
	}
	if !uc.signer.Configured() {
		return "", ErrSecretNotConfigured
	}
	link := uc.ApprovalLink(userID)
	slog.Info("new signup needs approval", "user_id", userID, "email", email, "approval_link", link)

	req := entity.ApprovalRequest{
		To:           uc.cfg.AdminEmail,
		UserEmail:    email,
		UserID:       userID,
		ApprovalLink: link,
		SignupDate:   uc.now().UTC(),
	}
	if err := uc.notifier.NotifyApproval(ctx, req); err != nil {
		if errors.Is(err, ErrNotifierDisabled) {
			slog.Warn("approval notifier disabled; use the logged link", "user_id", userID)
		} else {
			slog.Error("failed to send approval request", "user_id", userID, "error", err)
		}
	}
	return link, nil
}

// CurrentUser はサインイン中のユーザーの承認状態を返します。
// プロフィールがまだ作成されていない場合は未承認として扱います。
func (uc *ApprovalUsecase) CurrentUser(ctx context.Context, userID, email string) (entity.CurrentUser, error) {
	cu := entity.CurrentUser{ID: userID, Email: email}
	p, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return cu, nil
		}
		return entity.CurrentUser{}, err
	}
	if cu.Email == "" {
		cu.Email = p.Email
	}
	cu.Approved = p.Approved
	return cu, nil
}

// RequireApproved は承認済みでなければ ErrNotApproved を返します。
func (uc *ApprovalUsecase) RequireApproved(ctx context.Context, userID string) error {
	cu, err := uc.CurrentUser(ctx, userID, "")
	if err != nil {
		return err
	}
	if !cu.Approved {
		return ErrNotApproved
	}
	return nil
}
