// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashとトークンリストはクライアントに返却してはならない。
// クライアントへの返却には必ずPublic()を経由すること。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken はユーザーが保持する有効なセッショントークンの1エントリを表す。
// ログインのたびに末尾へ追加される（挿入順を保持し、重複も許容する）。
// クライアントが提示したトークンはこのリストに存在する場合のみ有効とみなす。
// 失効（ログアウト）の唯一の判定基準。
type AuthToken struct {
	Token string
}

// PublicUser はクライアントに公開可能なユーザー表現。
// PasswordHashとトークンリストを含まない。
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public はクライアント返却用の公開表現を返す。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
