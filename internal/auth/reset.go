package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/storeapi/internal/model"
	"github.com/hitoshi/storeapi/internal/repository"
)

// NotificationGateway は通知メッセージのベストエフォート送信インターフェース。
// toが空の場合は実装側の既定宛先に送る。送信失敗は呼び出し元の処理を失敗させない。
type NotificationGateway interface {
	Send(ctx context.Context, to, header, message string) error
}

// ResetTokenManager はパスワード再設定トークンの状態遷移を管理する。
// メールアドレスごとの再設定レコードは Absent → Pending（RequestReset）、
// Pending → Absent（後続のRequestResetまたはConsumePasswordの成功）と遷移する。
// トークンには時間ベースの失効がなく、消費または置換されるまで有効なまま残る。
type ResetTokenManager struct {
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	hasher  PasswordHasher
	gateway NotificationGateway
}

// NewResetTokenManager はResetTokenManagerを生成する。
func NewResetTokenManager(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	hasher PasswordHasher,
	gateway NotificationGateway,
) *ResetTokenManager {
	return &ResetTokenManager{
		users:   users,
		resets:  resets,
		hasher:  hasher,
		gateway: gateway,
	}
}

// RequestReset は指定メールアドレスの再設定トークンを発行する。
// 既存の再設定レコードは新しいレコードで置き換えられ、古いトークンは失効する。
// トランザクションのコミット後に通知を送信する。通知の失敗はログに残すのみで、
// 発行済みトークンには影響しない。
func (m *ResetTokenManager) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewEmailNotFoundError()
	}

	reset := &model.PasswordReset{
		Email:     email,
		Token:     generateResetToken(),
		CreatedAt: time.Now(),
	}

	if err := m.resets.Replace(ctx, reset); err != nil {
		return "", fmt.Errorf("failed to replace password reset: %w", err)
	}

	slog.Info("password reset token issued",
		slog.Int64("user_id", user.ID),
	)

	// コミット済みのため、通知失敗はトークン発行を取り消さない
	m.notify(ctx, user, reset.Token)

	return reset.Token, nil
}

// ConsumePassword はトークンを消費してパスワードを更新する。
// ハッシュ更新とレコード削除は1つのトランザクションでコミットされるため、
// 消費済みに見えるトークンが有効なまま残ることも、
// パスワードだけ変わってトークンが残ることもない。
func (m *ResetTokenManager) ConsumePassword(ctx context.Context, token, newPlaintext string) error {
	reset, err := m.resets.FindByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to find password reset: %w", err)
	}
	if reset == nil {
		return model.NewInvalidResetTokenError()
	}

	// 対応するユーザーがいない宙ぶらりんのレコードも無効トークンとして扱う
	user, err := m.users.FindByEmail(ctx, reset.Email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewInvalidResetTokenError()
	}

	hash, err := m.hasher.Hash(newPlaintext)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := m.resets.ConsumeWithPassword(ctx, token, reset.Email, hash); err != nil {
		if errors.Is(err, repository.ErrResetTokenGone) {
			return model.NewInvalidResetTokenError()
		}
		return fmt.Errorf("failed to consume password reset: %w", err)
	}

	slog.Info("password reset completed",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// notify は再設定トークンを通知ゲートウェイ経由で送信する。
// 失敗はログに記録するのみ。
func (m *ResetTokenManager) notify(ctx context.Context, user *model.User, token string) {
	if m.gateway == nil {
		return
	}

	message := "Dear " + user.DisplayName() + "\n" +
		"we received your password reset request.\n" +
		"please copy the following token and paste it in the password reset form\n" +
		token + "\n\n" +
		"Best Regards\n"

	if err := m.gateway.Send(ctx, user.Email, "Password Reset", message); err != nil {
		slog.Error("failed to send password reset notification",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID),
		)
	}
}

// generateResetToken は再設定トークンを生成する。
// 128ビットのランダム値2つを連結し、推測不可能な使い捨てシークレットとする。
func generateResetToken() string {
	return uuid.New().String() + "-" + uuid.New().String()
}
