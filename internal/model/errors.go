package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// Fieldsはバリデーションエラー時のフィールド別メッセージ。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: auth, validation, catalog, contact, system
	Action   string            // ユーザー向け対処方法
	Fields   map[string]string // フィールド別エラー（バリデーション時のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeEmailNotFound       = "EMAIL_NOT_FOUND"
	ErrCodeInvalidResetToken   = "INVALID_RESET_TOKEN"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidCategory     = "INVALID_CATEGORY"
	ErrCodeImageRequired       = "IMAGE_REQUIRED"
	ErrCodeContactNotFound     = "CONTACT_NOT_FOUND"
	ErrCodeInvalidSubject      = "INVALID_SUBJECT"
)

// NewValidationError は入力バリデーションエラーを生成する。
// fieldsにはフィールド名→メッセージの対応を渡す。
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "入力内容に誤りがあります。",
		Category: "validation",
		Action:   "各フィールドのエラーメッセージを確認して修正してください。",
		Fields:   fields,
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に使用されています。",
		Category: "validation",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
		Fields:   map[string]string{"email": "このメールアドレスは既に使用されています。"},
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレス不存在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewEmailNotFoundError はパスワード再設定時の未登録メールアドレスエラーを生成する。
func NewEmailNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotFound,
		Message:  "このメールアドレスは登録されていません。",
		Category: "auth",
		Action:   "登録済みのメールアドレスを入力してください。",
	}
}

// NewInvalidResetTokenError は無効な再設定トークンエラーを生成する。
// 未発行・使用済みトークンのどちらも同じエラーになる。
func NewInvalidResetTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidResetToken,
		Message:  "トークンが無効です。",
		Category: "auth",
		Action:   "パスワード再設定を最初からやり直してください。",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError(productID int64) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("指定された商品が見つかりません: %d", productID),
		Category: "catalog",
		Action:   "商品IDを確認してください。",
	}
}

// NewInvalidCategoryError は無効なカテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", category),
		Category: "validation",
		Action:   "カテゴリ一覧に含まれるカテゴリを指定してください。",
	}
}

// NewImageRequiredError は商品画像未添付エラーを生成する。
func NewImageRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeImageRequired,
		Message:  "商品画像は必須です。",
		Category: "validation",
		Action:   "画像ファイルを添付してください。",
	}
}

// NewContactNotFoundError は問い合わせ未検出エラーを生成する。
func NewContactNotFoundError(contactID int64) *APIError {
	return &APIError{
		Code:     ErrCodeContactNotFound,
		Message:  fmt.Sprintf("指定された問い合わせが見つかりません: %d", contactID),
		Category: "contact",
		Action:   "問い合わせIDを確認してください。",
	}
}

// NewInvalidSubjectError は無効な件名エラーを生成する。
func NewInvalidSubjectError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSubject,
		Message:  "有効な件名を指定してください。",
		Category: "validation",
		Action:   "件名一覧から件名を選択してください。",
	}
}
