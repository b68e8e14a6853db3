package user

import (
	"regexp"
	"strings"
)

// emailPattern はメールアドレス形状の検査パターン。
// 厳密なRFC準拠ではなく「local@domain.tld」の形状のみを要求する。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateName は表示名を検証する。問題があればメッセージを返す。
func validateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required"
	}
	return ""
}

// validateEmail は正規化済みメールアドレスを検証する。
func validateEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Email is invalid"
	}
	return ""
}

// validatePassword は平文パスワードを検証する。
// 検査はハッシュ化前の平文に対して行う。
func validatePassword(password string) string {
	if len(password) < 7 {
		return "Password must be at least 7 characters"
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return "Your password can not contain the word password!"
	}
	return ""
}

// validateAge は年齢を検証する。
func validateAge(age int) string {
	if age < 0 {
		return "Age must be a positive number"
	}
	return ""
}

// normalizeEmail はメールアドレスを比較可能な形に正規化する。
// 前後空白を除去し小文字に揃える。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
