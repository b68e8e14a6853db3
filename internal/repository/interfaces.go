// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスが既存の場合はmodel.APIError（DUPLICATE_EMAIL）を返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update はユーザー情報を上書き更新する。
	// メールアドレスが他ユーザーと重複する場合はmodel.APIError（DUPLICATE_EMAIL）を返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有タスクとトークンリストはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// TokenRepository はユーザーごとの有効トークンリストの永続化インターフェース。
// リストは挿入順を保持し、同一トークンの重複エントリも許容する。
type TokenRepository interface {
	// Append はユーザーのトークンリスト末尾にトークンを追加する。
	Append(ctx context.Context, userID, token string) error

	// Exists はトークンがユーザーの有効リストに存在するかを返す。
	Exists(ctx context.Context, userID, token string) (bool, error)

	// ListByUserID はユーザーの有効トークンを挿入順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.AuthToken, error)

	// Delete は一致するトークンのエントリを削除する。
	Delete(ctx context.Context, userID, token string) error

	// DeleteByUserID はユーザーの全トークンを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// 取得・更新・削除はすべて所有者（author）スコープ付きで行う。
type TaskRepository interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// FindByIDAndAuthor は指定IDかつ指定所有者のタスクを取得する。
	// 存在しない場合も所有者が異なる場合も同様にnilを返す。
	FindByIDAndAuthor(ctx context.Context, id, author string) (*model.Task, error)

	// Update はタスクを上書き更新する。authorは変更しない。
	Update(ctx context.Context, task *model.Task) error

	// DeleteByIDAndAuthor は指定IDかつ指定所有者のタスクを削除する。
	// 削除された場合はtrueを返す。
	DeleteByIDAndAuthor(ctx context.Context, id, author string) (bool, error)

	// ListByAuthor は所有者のタスク一覧をクエリ条件付きで返す。
	// 所有者スコープ→フィルタ→ソート→skip/limitの順で適用する。
	ListByAuthor(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error)
}
