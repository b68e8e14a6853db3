// Package task はタスク管理のドメインロジックを提供する。
// すべての操作は認証済みユーザー（所有者）のスコープ内で行われる。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo repository.TaskRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository) *Service {
	return &Service{taskRepo: taskRepo}
}

// CreateInput はタスク作成の入力。
// Completedは省略可能で、省略時はfalseとなる。
type CreateInput struct {
	Description string
	Completed   *bool
}

// Create は認証済みユーザーを所有者とするタスクを作成する。
// 説明は前後空白を除去し、空文字の場合はバリデーションエラーを返す。
func (s *Service) Create(ctx context.Context, author string, in CreateInput) (*model.Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, model.NewValidationError(map[string]string{
			"description": "Description is required",
		})
	}

	completed := false
	if in.Completed != nil {
		completed = *in.Completed
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		Description: description,
		Completed:   completed,
		Author:      author,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	slog.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("user_id", author),
	)

	return task, nil
}

// Get は所有者スコープ付きでタスクを取得する。
// タスクが存在しない場合も他ユーザーの所有物である場合も、
// 同一のNotFoundを返す（存在探索を防ぐための仕様）。
func (s *Service) Get(ctx context.Context, author, id string) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndAuthor(ctx, id, author)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewNotFoundError()
	}
	return task, nil
}

// UpdateInput はタスク更新の入力。nilのフィールドは変更しない。
// description・completed以外のフィールドはハンドラー層で拒否される。
type UpdateInput struct {
	Description *string
	Completed   *bool
}

// Update は所有者スコープ付きでタスクを部分更新する。
// 所有権はGetと同じ規則で検査する。
func (s *Service) Update(ctx context.Context, author, id string, in UpdateInput) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndAuthor(ctx, id, author)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewNotFoundError()
	}

	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, model.NewValidationError(map[string]string{
				"description": "Description is required",
			})
		}
		task.Description = description
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Delete は所有者スコープ付きでタスクを削除し、削除したタスクを返す。
func (s *Service) Delete(ctx context.Context, author, id string) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndAuthor(ctx, id, author)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewNotFoundError()
	}

	deleted, err := s.taskRepo.DeleteByIDAndAuthor(ctx, id, author)
	if err != nil {
		return nil, fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if !deleted {
		// 取得と削除の間に消えた場合も同一のNotFoundを返す
		return nil, model.NewNotFoundError()
	}

	return task, nil
}

// List は所有者のタスク一覧をクエリ条件付きで返す。
// 所有者スコープは常にフィルタ・ソート・ページネーションより先に適用される。
func (s *Service) List(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error) {
	tasks, err := s.taskRepo.ListByAuthor(ctx, author, query)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
