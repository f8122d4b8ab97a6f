// Package model はドメインモデルを定義する。
package model

import "time"

// RoleClient は新規登録ユーザーに付与されるデフォルトロール。
const RoleClient = "Client"

// User はストアの利用者アカウントを表す。
// PasswordHashは不透明なダイジェストであり、平文パスワードは保持しない。
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// DisplayName は通知メールの宛名に使用する表示名を返す。
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// PasswordReset はパスワード再設定の一時レコードを表す。
// 1メールアドレスにつき同時に1件のみ存在でき、トークンは使い捨てとする。
type PasswordReset struct {
	ID        int64
	Email     string
	Token     string
	CreatedAt time.Time
}

// UserProfile はAPIレスポンス用のユーザー情報ビュー。
// パスワードハッシュを含まない。
type UserProfile struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserProfile はUserからUserProfileビューを生成する。
func NewUserProfile(u *User) UserProfile {
	return UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
