// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証済みプリンシパルを
// 格納するためのキー。
var principalContextKey = contextKey("principal")

// Principal は認証済みリクエストの主体を表す。
// Tokenは提示された生のトークン文字列で、ログアウト時に
// 該当エントリのみを失効させるために保持する。
type Principal struct {
	User  *model.User
	Token string
}

// TokenVerifier はトークン検証に必要なインターフェース。
// token.Codecの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// UserFinder はユーザー検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TokenChecker は有効トークンリストの照会に必要なインターフェース。
// repository.TokenRepositoryの部分集合として定義する。
type TokenChecker interface {
	Exists(ctx context.Context, userID, token string) (bool, error)
}

// NewAuthMiddleware はBearerトークンを検証する認証ゲートを返す。
// 検証手順:
//
//  1. AuthorizationヘッダーからBearerトークンを取り出す
//  2. 署名と有効期限を検証する
//  3. 埋め込まれたIDのユーザーを取得する
//  4. 提示されたトークンがユーザーの有効リストに存在することを確認する
//     （ログアウト済みトークンは期限内でもここで拒否される）
//
// いずれの段階で失敗しても、応答は同一の401
// {"error":"Authentication failed"} となる。どの段階で失敗したかを
// 呼び出し元に漏らさないのは仕様であり、変更してはならない。
// 成功時はユーザーと生トークンをリクエストコンテキストに注入する。
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder, tokens TokenChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークンを取得
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeAuthenticationFailed(w)
				return
			}

			// 2. 署名・有効期限の検証
			userID, err := verifier.Verify(raw)
			if err != nil {
				writeAuthenticationFailed(w)
				return
			}

			// 3. ユーザーの取得
			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to find user during authentication",
					slog.String("error", err.Error()),
				)
				writeInternalServerError(w)
				return
			}
			if user == nil {
				writeAuthenticationFailed(w)
				return
			}

			// 4. 有効トークンリストとの照合（失効の唯一の判定基準）
			valid, err := tokens.Exists(r.Context(), userID, raw)
			if err != nil {
				slog.Error("failed to check token validity",
					slog.String("error", err.Error()),
				)
				writeInternalServerError(w)
				return
			}
			if !valid {
				writeAuthenticationFailed(w)
				return
			}

			// 5. 認証済みプリンシパルをコンテキストに注入
			principal := &Principal{
				User:  user,
				Token: raw,
			}
			ctx := context.WithValue(r.Context(), principalContextKey, principal)

			// 前段のロギングミドルウェアにもプリンシパルを伝える
			if holder, ok := ctx.Value(principalHolderKey).(*principalHolder); ok {
				holder.principal = principal
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証済み
// プリンシパルを取得する。認証ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(*Principal)
	if !ok || principal == nil || principal.User == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストにプリンシパルを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// writeAuthenticationFailed は認証失敗の統一レスポンスを書き込む。
// すべての拒否経路で同一のボディを返す。
func writeAuthenticationFailed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Authentication failed"})
}

// writeInternalServerError は内部エラーの統一レスポンスを書き込む。
// 詳細はログのみに記録する。
func writeInternalServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
}
