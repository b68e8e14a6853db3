package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// taskSortColumns はソート可能なフィールド名からSQL列名へのホワイトリスト。
// ここに無いフィールドはサービス層で事前に拒否されるが、
// SQL組み立て時にも二重に検査する（ユーザー入力を直接連結しない）。
var taskSortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, author, description, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.Author, task.Description, task.Completed,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindByIDAndAuthor は指定IDかつ指定所有者のタスクを取得する。
// 存在しない場合も所有者が異なる場合も同様にnilを返す。
func (r *PostgresTaskRepo) FindByIDAndAuthor(ctx context.Context, id, author string) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author, description, completed, created_at, updated_at
		 FROM tasks WHERE id = $1 AND author = $2`,
		id, author,
	).Scan(&task.ID, &task.Author, &task.Description, &task.Completed,
		&task.CreatedAt, &task.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// Update はタスクを上書き更新する。authorは変更しない。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET description = $3, completed = $4, updated_at = $5
		 WHERE id = $1 AND author = $2`,
		task.ID, task.Author, task.Description, task.Completed, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewNotFoundError()
	}
	return nil
}

// DeleteByIDAndAuthor は指定IDかつ指定所有者のタスクを削除する。
// 削除された場合はtrueを返す。
func (r *PostgresTaskRepo) DeleteByIDAndAuthor(ctx context.Context, id, author string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND author = $2`,
		id, author,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByAuthor は所有者のタスク一覧をクエリ条件付きで返す。
// WHERE句の所有者スコープが常に先頭にあり、クエリパラメータで
// 迂回することはできない。skip/limitはフィルタ・ソート適用後にかかる。
func (r *PostgresTaskRepo) ListByAuthor(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, author, description, completed, created_at, updated_at
		 FROM tasks WHERE author = $1`)
	args := []any{author}

	if query.Completed != nil {
		args = append(args, *query.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	// ソート列はホワイトリスト経由でのみ決定する
	orderBy := "created_at ASC"
	if query.SortField != "" {
		column, ok := taskSortColumns[query.SortField]
		if !ok {
			return nil, model.NewValidationError(map[string]string{
				"sortBy": fmt.Sprintf("unknown sort field: %s", query.SortField),
			})
		}
		direction := "ASC"
		if query.SortDirection == model.SortDesc {
			direction = "DESC"
		}
		orderBy = column + " " + direction
	}
	// 同値時の順序を安定させる
	fmt.Fprintf(&sb, " ORDER BY %s, id ASC", orderBy)

	if query.Limit > 0 {
		args = append(args, query.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if query.Skip > 0 {
		args = append(args, query.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(&task.ID, &task.Author, &task.Description, &task.Completed,
			&task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
