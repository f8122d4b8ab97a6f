package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/storeapi/internal/model"
)

// pq のエラーコード。トランザクション再試行の判定に使用する。
const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
)

// replaceMaxAttempts はReplaceトランザクションの最大試行回数。
const replaceMaxAttempts = 3

// PostgresPasswordResetRepo はPostgreSQLを使用したパスワード再設定リポジトリ。
// 再設定レコードの入れ替えとトークン消費を、それぞれ1つのトランザクションとして実行する。
type PostgresPasswordResetRepo struct {
	db *sql.DB
}

// NewPostgresPasswordResetRepo はPostgresPasswordResetRepoを生成する。
func NewPostgresPasswordResetRepo(db *sql.DB) *PostgresPasswordResetRepo {
	return &PostgresPasswordResetRepo{db: db}
}

// FindByToken は指定トークンの再設定レコードを取得する。見つからない場合はnilを返す。
func (r *PostgresPasswordResetRepo) FindByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	reset := &model.PasswordReset{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, token, created_at FROM password_resets WHERE token = $1`,
		token,
	).Scan(&reset.ID, &reset.Email, &reset.Token, &reset.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find password reset by token: %w", err)
	}

	return reset, nil
}

// Replace は同一メールアドレスの既存レコードを削除し、新しいレコードを
// 1つの直列化可能トランザクションで挿入する。
// 並行するReplaceと衝突した場合（メールアドレスのユニーク制約違反、
// または直列化失敗）は削除からやり直す。
func (r *PostgresPasswordResetRepo) Replace(ctx context.Context, reset *model.PasswordReset) error {
	var lastErr error
	for attempt := 0; attempt < replaceMaxAttempts; attempt++ {
		err := r.replaceOnce(ctx, reset)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("failed to replace password reset after %d attempts: %w", replaceMaxAttempts, lastErr)
}

// replaceOnce は削除と挿入を1回のトランザクションで実行する。
func (r *PostgresPasswordResetRepo) replaceOnce(ctx context.Context, reset *model.PasswordReset) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 既存の再設定レコードを削除
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM password_resets WHERE email = $1`,
		reset.Email,
	); err != nil {
		return fmt.Errorf("failed to delete old password reset: %w", err)
	}

	// 新しいレコードを挿入
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO password_resets (email, token, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		reset.Email, reset.Token, reset.CreatedAt,
	).Scan(&reset.ID); err != nil {
		return fmt.Errorf("failed to insert password reset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ConsumeWithPassword はユーザーのパスワードハッシュ更新と再設定レコード削除を
// 1つのトランザクションで実行する。
// 削除対象のレコードが既に消えていた場合は何もコミットせずErrResetTokenGoneを返す。
// 読み取り時点に存在したレコードだけが削除されるため、トランザクション開始後に
// 発行されたトークンには影響しない。
func (r *PostgresPasswordResetRepo) ConsumeWithPassword(ctx context.Context, token, email, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// トークンに対応するレコードを削除。0行なら既に消費・置換済み。
	result, err := tx.ExecContext(ctx,
		`DELETE FROM password_resets WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete password reset: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrResetTokenGone
	}

	// パスワードハッシュを更新
	result, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE email = $2`,
		passwordHash, email,
	)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// 対応するユーザーが消えている場合もトークンを無効として扱う
		return ErrResetTokenGone
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isRetryableTxError は再試行すべきトランザクションエラーかを判定する。
func isRetryableTxError(err error) bool {
	if IsUniqueViolation(err) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqSerializationFailure
}

// IsUniqueViolation はユニーク制約違反かを判定する。
// サービス層が並行挿入の衝突を業務エラーへ変換する際に使用する。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqUniqueViolation
}

// compile-time interface check
var _ PasswordResetRepository = (*PostgresPasswordResetRepo)(nil)
