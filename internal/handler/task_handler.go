package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
// すべての操作は認証済みユーザーの所有範囲に閉じる。
type TaskServiceInterface interface {
	// Create は新規タスクを作成する。
	Create(ctx context.Context, author string, in task.CreateInput) (*model.Task, error)
	// Get は所有タスクを1件取得する。
	Get(ctx context.Context, author, id string) (*model.Task, error)
	// Update は所有タスクを部分更新する。
	Update(ctx context.Context, author, id string, in task.UpdateInput) (*model.Task, error)
	// Delete は所有タスクを削除し、削除されたタスクを返す。
	Delete(ctx context.Context, author, id string) (*model.Task, error)
	// List はフィルタ・ソート・ページネーションを適用した所有タスク一覧を返す。
	List(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
}

// updateTaskRequest はタスク更新リクエストのボディ。
type updateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Create はタスク作成を処理する。
// POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	var req createTaskRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	t, err := h.service.Create(r.Context(), principal.User.ID, task.CreateInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

// List はタスク一覧を取得する。
// クエリパラメータ completed / sortBy / limit / skip を解釈する。
// GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	query, err := task.ParseListQuery(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tasks, err := h.service.List(r.Context(), principal.User.ID, query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でもnullではなく空配列を返す
	if tasks == nil {
		tasks = []model.Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

// Get はタスク詳細を取得する。
// 他ユーザーのタスクは存在しないものとして404を返す。
// GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	t, err := h.service.Get(r.Context(), principal.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// Update はタスクを部分更新する。
// 許可されていないフィールドを含むリクエストは全体を拒否する。
// PATCH /tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	var req updateTaskRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeInvalidUpdates(w)
		return
	}

	t, err := h.service.Update(r.Context(), principal.User.ID, chi.URLParam(r, "id"), task.UpdateInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// Delete はタスクを削除し、削除されたタスクを返す。
// DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	t, err := h.service.Delete(r.Context(), principal.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}
