// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, contact, session, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeInvalidContactID     = "INVALID_CONTACT_ID"
	ErrCodeContactNotFound      = "CONTACT_NOT_FOUND"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeDuplicateEmail       = "DUPLICATE_EMAIL"
	ErrCodeSessionError         = "SESSION_ERROR"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
)

// NewValidationError は入力バリデーションエラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidContactIDError は不正な連絡先IDエラーを生成する。
func NewInvalidContactIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidContactID,
		Message:  fmt.Sprintf("無効な連絡先IDです: %s", id),
		Category: "validation",
		Action:   "連絡先IDの形式を確認してください。",
	}
}

// NewContactNotFoundError は連絡先未検出エラーを生成する。
func NewContactNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeContactNotFound,
		Message:  fmt.Sprintf("指定された連絡先が見つかりません: %s", id),
		Category: "contact",
		Action:   "連絡先IDを確認してください。",
	}
}

// NewAuthenticationFailedError は認証失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致で同一のメッセージを返し、
// アカウントの存在有無を推測されないようにする。
func NewAuthenticationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewSessionError はセッションストア操作の失敗エラーを生成する。
func NewSessionError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeSessionError,
		Message:  fmt.Sprintf("セッション処理に失敗しました: %s", reason),
		Category: "session",
		Action:   "再度ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
