// Package adapters はapprovalフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"altdata_backend/internal/feature/approval/domain/entity"
	"altdata_backend/internal/feature/approval/usecase"
)

// UserProfileModel はuser_profilesテーブルの1行です。
// 行はホスト型認証サービスのサインアップ時に作成されます。
type UserProfileModel struct {
	ID        string `gorm:"primaryKey;size:64"`
	Email     string `gorm:"size:255"`
	Approved  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserProfileModel) TableName() string {
	return "user_profiles"
}

// profilePostgres はProfileRepositoryインターフェースのPostgres実装です。
type profilePostgres struct {
	db *gorm.DB
}

// profilePostgresがProfileRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.ProfileRepository = (*profilePostgres)(nil)

// NewProfileRepository は指定されたgorm.DB接続でprofilePostgresの新しいインスタンスを生成します。
func NewProfileRepository(db *gorm.DB) *profilePostgres {
	return &profilePostgres{db: db}
}

// FindByID はIDでプロフィールを取得します。
// 存在しない場合、usecase.ErrProfileNotFoundを返します。
func (r *profilePostgres) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var m UserProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return &entity.Profile{ID: m.ID, Email: m.Email, Approved: m.Approved, UpdatedAt: m.UpdatedAt}, nil
}

// Approve はapprovedとupdated_atを更新します。何度呼んでも結果は同じです。
// 該当行がない場合、usecase.ErrProfileNotFoundを返します。
func (r *profilePostgres) Approve(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&UserProfileModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"approved": true, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrProfileNotFound
	}
	return nil
}
