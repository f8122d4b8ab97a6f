package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/storeapi/internal/model"
	"github.com/hitoshi/storeapi/internal/repository"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordResetRequested()
	RecordResetConsumed()
}

// RegisterInput はアカウント登録の入力。
// フィールドバリデーションはハンドラー層で行い、ここには検証済みの値が渡る。
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Password  string
}

// AuthResult はトークン発行を伴う操作の結果。
type AuthResult struct {
	Token string            `json:"token"`
	User  model.UserProfile `json:"user"`
}

// Service は認証に関するビジネスロジックを提供する。
// パスワード再設定はResetTokenManagerに委譲する。
type Service struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	issuer  *TokenIssuer
	resets  *ResetTokenManager
	metrics MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	users repository.UserRepository,
	hasher PasswordHasher,
	issuer *TokenIssuer,
	resets *ResetTokenManager,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		users:   users,
		hasher:  hasher,
		issuer:  issuer,
		resets:  resets,
		metrics: metrics,
	}
}

// Register は新規アカウントを作成し、トークンとプロフィールを返す。
// メールアドレスが既に使われている場合はEMAIL_TAKENエラーを返す。
// ロールは常に"Client"で固定する。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		PasswordHash: hash,
		Role:         model.RoleClient,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// ストア層のユニーク制約は並行登録に対するバックストップ
		if repository.IsUniqueViolation(err) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	return &AuthResult{Token: token, User: model.NewUserProfile(user)}, nil
}

// Login はメールアドレスとパスワードを検証し、トークンとプロフィールを返す。
// メールアドレス不存在とパスワード不一致は、どちらも同じ
// INVALID_CREDENTIALSエラーになる。アカウントの存在を推測させないため。
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		if s.metrics != nil {
			s.metrics.RecordLogin(false)
		}
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		if s.metrics != nil {
			s.metrics.RecordLogin(false)
		}
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin(true)
	}

	return &AuthResult{Token: token, User: model.NewUserProfile(user)}, nil
}

// GetProfile は認証済みユーザーIDからプロフィールビューを返す。
// 対応するユーザーが存在しない場合は未認証エラーを返す。
func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}

	profile := model.NewUserProfile(user)
	return &profile, nil
}

// ForgotPassword は再設定トークンの発行をResetTokenManagerに委譲する。
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.resets.RequestReset(ctx, email); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordResetRequested()
	}
	return nil
}

// ResetPassword はトークン消費によるパスワード更新をResetTokenManagerに委譲する。
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.resets.ConsumePassword(ctx, token, password); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordResetConsumed()
	}
	return nil
}
