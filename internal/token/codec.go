// Package token は署名付きセッショントークンの発行と検証を提供する。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はトークンに埋め込む利用者識別子と標準クレームを表す。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Codec はHMAC-SHA256で署名されたJWTの発行・検証を行う。
// 署名シークレットと有効期間はコンストラクタで明示的に渡し、
// グローバル状態には依存しない。状態を持たない純粋な変換器。
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec はCodecを生成する。
// secretはプロセス全体で共有する署名シークレット、ttlは発行する
// トークンの有効期間を指定する。
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// Issue は指定ユーザーIDと有効期限を埋め込んだ署名付きトークンを発行する。
func (c *Codec) Issue(userID string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返す。
// 改ざん（jwt.ErrTokenSignatureInvalid）、期限切れ（jwt.ErrTokenExpired）、
// 復号不能（jwt.ErrTokenMalformed）のいずれの場合もエラーを返す。
// 失敗種別はerrors.Isで判別できるが、呼び出し側（認証ゲート）は
// 種別を区別せず一律に拒否することが要求されている。
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}

	if !t.Valid || claims.UserID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}

	return claims.UserID, nil
}
