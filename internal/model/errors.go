// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// エラー分類（カテゴリ）とHTTPステータスへのマッピングに使うコードを含む。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: validation, auth, resource, conflict, system
	Fields   map[string]string // バリデーションエラーのフィールド別メッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeLoginFailed          = "LOGIN_FAILED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeDuplicateEmail       = "DUPLICATE_EMAIL"
)

// NewValidationError はフィールド別メッセージを持つバリデーションエラーを生成する。
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "validation failed",
		Category: "validation",
		Fields:   fields,
	}
}

// NewLoginFailedError は認証情報不一致エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない統一メッセージを返す
// （存在探索を防ぐための仕様）。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "Unable to login.",
		Category: "auth",
	}
}

// NewAuthenticationFailedError はトークン認証失敗エラーを生成する。
// ヘッダー欠落・署名不正・期限切れ・失効済みのすべてで同一メッセージを返す
// （どの段階で失敗したかを漏らさないための仕様）。
func NewAuthenticationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  "Authentication failed",
		Category: "auth",
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
// リソースが存在しない場合と他ユーザーの所有物である場合を区別しない。
func NewNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  "Not found",
		Category: "resource",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "Email is already taken",
		Category: "conflict",
		Fields:   map[string]string{"email": "Email is already taken"},
	}
}
