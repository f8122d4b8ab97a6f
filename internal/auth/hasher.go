// Package auth はアカウント登録・ログイン・トークン発行・
// パスワード再設定といった認証ドメインのロジックを提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードの一方向ハッシュ化と照合のインターフェース。
// アルゴリズムやコストパラメータを差し替えられるよう抽象化する。
type PasswordHasher interface {
	// Hash は平文パスワードからソルト付きハッシュを生成する。
	// ソルトは呼び出しごとにランダムなため、同じ平文でも出力は毎回異なる。
	Hash(plaintext string) (string, error)

	// Verify はハッシュと平文を定数時間で照合する。
	// 不正な形式のハッシュに対してもpanicせずfalseを返す。
	Verify(hash, plaintext string) bool
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
// 内部状態を持たないため並行利用できる。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はデフォルトコストのBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash は平文パスワードからbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify はハッシュと平文を照合する。
// bcrypt.CompareHashAndPasswordは定数時間比較を行い、
// ハッシュが不正な形式の場合もエラーを返すだけでpanicしない。
func (h *BcryptHasher) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
