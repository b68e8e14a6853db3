// Package model はドメインモデルを定義する。
package model

import "time"

// Task はユーザーが所有するタスクを表す。
// Authorは作成時に設定され、以降変更されない。
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SortDirection はソート方向を表す。
type SortDirection string

const (
	// SortAsc は昇順ソートを示す。
	SortAsc SortDirection = "asc"
	// SortDesc は降順ソートを示す。
	SortDesc SortDirection = "desc"
)

// TaskQuery はタスク一覧の絞り込み・ソート・ページネーション条件を表す。
// 所有者スコープは常にクエリより先に適用されるため、この構造体には含まれない。
type TaskQuery struct {
	// Completed はnilの場合フィルタなし。
	Completed *bool
	// SortField は空の場合デフォルト（作成日時昇順）。
	SortField string
	// SortDirection はSortFieldが空でない場合のみ意味を持つ。
	SortDirection SortDirection
	// Limit は0の場合無制限。
	Limit int
	// Skip はフィルタ・ソート適用後のオフセット。
	Skip int
}
