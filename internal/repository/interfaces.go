// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/storeapi/internal/model"
)

// ErrResetTokenGone はトークン消費トランザクション中に
// 対象の再設定レコードが既に消えていた場合に返るエラー。
// 並行するForgotPassword/ResetPasswordに先を越されたことを意味する。
var ErrResetTokenGone = errors.New("password reset record no longer exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに書き戻す。
	Create(ctx context.Context, user *model.User) error
}

// PasswordResetRepository はパスワード再設定レコードの永続化インターフェース。
type PasswordResetRepository interface {
	// FindByToken は指定トークンの再設定レコードを取得する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.PasswordReset, error)

	// Replace は同一メールアドレスの既存レコードを削除し、新しいレコードを
	// 1つの直列化可能トランザクションで挿入する。
	// ユニーク制約違反・直列化失敗はトランザクションをやり直す。
	Replace(ctx context.Context, reset *model.PasswordReset) error

	// ConsumeWithPassword はユーザーのパスワードハッシュ更新と再設定レコード削除を
	// 1つのトランザクションで実行する。どちらか一方だけが反映されることはない。
	// レコードが既に消えていた場合はErrResetTokenGoneを返す。
	ConsumeWithPassword(ctx context.Context, token, email, passwordHash string) error
}

// ProductQuery は商品一覧の検索条件を表す。
type ProductQuery struct {
	Search   string   // 名前・説明の部分一致
	Category string   // カテゴリ完全一致
	MinPrice *float64 // 下限価格
	MaxPrice *float64 // 上限価格
	Sort     string   // id, name, brand, category, price, date のいずれか
	Order    string   // asc または desc
	Page     int      // 1始まり
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// List は検索条件に合致する商品のページと総件数を返す。
	List(ctx context.Context, query ProductQuery, pageSize int) ([]*model.Product, int, error)

	// Create は商品を作成し、採番されたIDをproduct.IDに書き戻す。
	Create(ctx context.Context, product *model.Product) error

	// Update は商品情報を上書き更新する。
	Update(ctx context.Context, product *model.Product) error

	// Delete は指定IDの商品を削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}

// SubjectRepository は問い合わせ件名マスタの永続化インターフェース。
type SubjectRepository interface {
	// List は件名の一覧をID順で返す。
	List(ctx context.Context) ([]*model.Subject, error)

	// FindByID は指定IDの件名を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Subject, error)
}

// ContactRepository は問い合わせデータの永続化インターフェース。
type ContactRepository interface {
	// FindByID は指定IDの問い合わせを件名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Contact, error)

	// List は問い合わせのページ（ID昇順、件名付き）と総件数を返す。
	List(ctx context.Context, page, pageSize int) ([]*model.Contact, int, error)

	// Create は問い合わせを作成し、採番されたIDをcontact.IDに書き戻す。
	Create(ctx context.Context, contact *model.Contact) error

	// Update は問い合わせを上書き更新する。
	Update(ctx context.Context, contact *model.Contact) error

	// Delete は指定IDの問い合わせを削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id int64) (bool, error)
}
