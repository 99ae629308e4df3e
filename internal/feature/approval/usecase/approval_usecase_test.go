package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altdata_backend/internal/feature/approval/domain/entity"
)

const (
	testSecret = "test-secret"
	testUserID = "6f1c2e9a-0000-4000-8000-000000000001"
	// hex(HMAC-SHA256("test-secret", testUserID))
	testToken = "12a1b5400a0b2d7b8702ec1ea787273a63ec1de43177a70ba7ea340422f97b12"
)

// mockProfileRepository はProfileRepositoryインターフェースのモック実装です。
type mockProfileRepository struct {
	FindByIDFunc func(ctx context.Context, id string) (*entity.Profile, error)
	ApproveFunc  func(ctx context.Context, id string, at time.Time) error
	ApproveCalls int
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc is not implemented")
}

func (m *mockProfileRepository) Approve(ctx context.Context, id string, at time.Time) error {
	m.ApproveCalls++
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, id, at)
	}
	return errors.New("ApproveFunc is not implemented")
}

// mockNotifier はNotifierインターフェースのモック実装です。
type mockNotifier struct {
	Requests []entity.ApprovalRequest
	Err      error
}

func (m *mockNotifier) NotifyApproval(ctx context.Context, req entity.ApprovalRequest) error {
	m.Requests = append(m.Requests, req)
	return m.Err
}

func newTestUsecase(repo ProfileRepository, n Notifier) *ApprovalUsecase {
	uc := NewApprovalUsecase(repo, n, Config{Secret: testSecret, SiteURL: "https://dash.example.com", AdminEmail: "admin@example.com"})
	uc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestSigner(t *testing.T) {
	s := NewSigner(testSecret)

	assert.Equal(t, testToken, s.Sign(testUserID))
	assert.True(t, s.Verify(testUserID, testToken))
	assert.False(t, s.Verify(testUserID, strings.ToUpper(testToken)))
	assert.False(t, s.Verify("other-user", testToken))
	assert.False(t, s.Verify(testUserID, ""))
	assert.False(t, NewSigner("another-secret").Verify(testUserID, testToken))
}

func TestApprovalUsecase_Approve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		userID      string
		token       string
		approveFunc func(ctx context.Context, id string, at time.Time) error
		wantErr     error
		wantWrites  int
	}{
		{
			name:   "success",
			userID: testUserID,
			token:  testToken,
			approveFunc: func(ctx context.Context, id string, at time.Time) error {
				assert.Equal(t, testUserID, id)
				assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), at)
				return nil
			},
			wantWrites: 1,
		},
		{name: "missing user id", token: testToken, wantErr: ErrMissingParameters},
		{name: "missing token", userID: testUserID, wantErr: ErrMissingParameters},
		{name: "token for another user", userID: "someone-else", token: testToken, wantErr: ErrInvalidToken},
		{name: "garbage token", userID: testUserID, token: "not-a-token", wantErr: ErrInvalidToken},
		{
			name:   "unknown profile",
			userID: testUserID,
			token:  testToken,
			approveFunc: func(ctx context.Context, id string, at time.Time) error {
				return ErrProfileNotFound
			},
			wantErr:    ErrProfileNotFound,
			wantWrites: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProfileRepository{ApproveFunc: tt.approveFunc}
			uc := newTestUsecase(repo, &mockNotifier{})

			err := uc.Approve(ctx, tt.userID, tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantWrites, repo.ApproveCalls)
		})
	}
}

func TestApprovalUsecase_NotifyAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("success: link is signed and sent", func(t *testing.T) {
		n := &mockNotifier{}
		uc := newTestUsecase(&mockProfileRepository{}, n)

		link, err := uc.NotifyAdmin(ctx, testUserID, "new@example.com")

		require.NoError(t, err)
		assert.Equal(t, "https://dash.example.com/api/admin/approve?userId="+testUserID+"&token="+testToken, link)
		require.Len(t, n.Requests, 1)
		assert.Equal(t, entity.ApprovalRequest{
			To:           "admin@example.com",
			UserEmail:    "new@example.com",
			UserID:       testUserID,
			ApprovalLink: link,
			SignupDate:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}, n.Requests[0])
	})

	t.Run("success: notifier failure is not returned", func(t *testing.T) {
		n := &mockNotifier{Err: errors.New("smtp down")}
		uc := newTestUsecase(&mockProfileRepository{}, n)

		link, err := uc.NotifyAdmin(ctx, testUserID, "new@example.com")

		assert.NoError(t, err)
		assert.NotEmpty(t, link)
	})

	t.Run("error: no user id", func(t *testing.T) {
		n := &mockNotifier{}
		uc := newTestUsecase(&mockProfileRepository{}, n)

		_, err := uc.NotifyAdmin(ctx, "", "x@example.com")

		assert.ErrorIs(t, err, ErrMissingParameters)
		assert.Empty(t, n.Requests)
	})
}

// TestApprovalUsecase_EmptySecret はシークレット未設定時に承認リンクの発行も受理も行わないことを検証します。
func TestApprovalUsecase_EmptySecret(t *testing.T) {
	ctx := context.Background()
	repo := &mockProfileRepository{
		ApproveFunc: func(ctx context.Context, id string, at time.Time) error { return nil },
	}
	n := &mockNotifier{}
	uc := NewApprovalUsecase(repo, n, Config{SiteURL: "https://dash.example.com"})

	// 空キーのHMACは誰でも計算できる
	forged := NewSigner("").Sign("victim")
	assert.False(t, NewSigner("").Verify("victim", forged))

	err := uc.Approve(ctx, "victim", forged)

	assert.ErrorIs(t, err, ErrSecretNotConfigured)
	assert.Zero(t, repo.ApproveCalls, "no write must happen without a secret")

	link, err := uc.NotifyAdmin(ctx, testUserID, "new@example.com")

	assert.ErrorIs(t, err, ErrSecretNotConfigured)
	assert.Empty(t, link)
	assert.Empty(t, n.Requests)
}

func TestApprovalUsecase_CurrentUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		find    func(ctx context.Context, id string) (*entity.Profile, error)
		email   string
		want    entity.CurrentUser
		wantErr bool
	}{
		{
			name: "approved profile",
			find: func(ctx context.Context, id string) (*entity.Profile, error) {
				return &entity.Profile{ID: id, Email: "stored@example.com", Approved: true}, nil
			},
			email: "token@example.com",
			want:  entity.CurrentUser{ID: testUserID, Email: "token@example.com", Approved: true},
		},
		{
			name: "email falls back to profile",
			find: func(ctx context.Context, id string) (*entity.Profile, error) {
				return &entity.Profile{ID: id, Email: "stored@example.com"}, nil
			},
			want: entity.CurrentUser{ID: testUserID, Email: "stored@example.com"},
		},
		{
			name: "missing profile is pending",
			find: func(ctx context.Context, id string) (*entity.Profile, error) {
				return nil, ErrProfileNotFound
			},
			email: "new@example.com",
			want:  entity.CurrentUser{ID: testUserID, Email: "new@example.com"},
		},
		{
			name: "store failure",
			find: func(ctx context.Context, id string) (*entity.Profile, error) {
				return nil, errors.New("db down")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUsecase(&mockProfileRepository{FindByIDFunc: tt.find}, &mockNotifier{})

			got, err := uc.CurrentUser(ctx, testUserID, tt.email)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApprovalUsecase_RequireApproved(t *testing.T) {
	ctx := context.Background()
	approved := map[string]bool{"a": true, "b": false}
	repo := &mockProfileRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*entity.Profile, error) {
			ok, found := approved[id]
			if !found {
				return nil, ErrProfileNotFound
			}
			return &entity.Profile{ID: id, Approved: ok}, nil
		},
	}
	uc := newTestUsecase(repo, &mockNotifier{})

	assert.NoError(t, uc.RequireApproved(ctx, "a"))
	assert.ErrorIs(t, uc.RequireApproved(ctx, "b"), ErrNotApproved)
	assert.ErrorIs(t, uc.RequireApproved(ctx, "c"), ErrNotApproved)
}
