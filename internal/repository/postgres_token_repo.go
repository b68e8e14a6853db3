package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したトークンリストリポジトリ。
// user_tokensテーブルのseq列で挿入順を保持する。
type PostgresTokenRepo struct {
	db *sql.DB
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(db *sql.DB) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db}
}

// Append はユーザーのトークンリスト末尾にトークンを追加する。
// 同一トークンの重複は意図的に許容する（ログインごとに1エントリ追加）。
func (r *PostgresTokenRepo) Append(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_tokens (user_id, token) VALUES ($1, $2)`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("failed to append token: %w", err)
	}
	return nil
}

// Exists はトークンがユーザーの有効リストに存在するかを返す。
func (r *PostgresTokenRepo) Exists(ctx context.Context, userID, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)`,
		userID, token,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check token existence: %w", err)
	}
	return exists, nil
}

// ListByUserID はユーザーの有効トークンを挿入順で返す。
func (r *PostgresTokenRepo) ListByUserID(ctx context.Context, userID string) ([]model.AuthToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT token FROM user_tokens WHERE user_id = $1 ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	tokens := []model.AuthToken{}
	for rows.Next() {
		var t model.AuthToken
		if err := rows.Scan(&t.Token); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tokens: %w", err)
	}

	return tokens, nil
}

// Delete は一致するトークンのエントリを削除する。
// 同一トークンが重複して登録されている場合はすべて削除する。
func (r *PostgresTokenRepo) Delete(ctx context.Context, userID, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全トークンを削除する。
func (r *PostgresTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
