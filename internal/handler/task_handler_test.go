package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

// --- モック定義 ---

// mockTaskService はTaskServiceInterfaceのモック実装。
type mockTaskService struct {
	createFn func(ctx context.Context, author string, in task.CreateInput) (*model.Task, error)
	getFn    func(ctx context.Context, author, id string) (*model.Task, error)
	updateFn func(ctx context.Context, author, id string, in task.UpdateInput) (*model.Task, error)
	deleteFn func(ctx context.Context, author, id string) (*model.Task, error)
	listFn   func(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error)
}

func (m *mockTaskService) Create(ctx context.Context, author string, in task.CreateInput) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, author, in)
	}
	return nil, errors.New("createFn not set")
}

func (m *mockTaskService) Get(ctx context.Context, author, id string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, author, id)
	}
	return nil, errors.New("getFn not set")
}

func (m *mockTaskService) Update(ctx context.Context, author, id string, in task.UpdateInput) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, author, id, in)
	}
	return nil, errors.New("updateFn not set")
}

func (m *mockTaskService) Delete(ctx context.Context, author, id string) (*model.Task, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, author, id)
	}
	return nil, errors.New("deleteFn not set")
}

func (m *mockTaskService) List(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, author, query)
	}
	return nil, errors.New("listFn not set")
}

// newTaskRequest はURLパラメータ {id} をchiのルートコンテキストに載せた
// 認証済みリクエストを生成するテストヘルパー。
func newTaskRequest(method, target, taskID, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req = withPrincipal(req, testUser(), "current-token")

	if taskID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", taskID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req
}

// --- POST /tasks テスト ---

func TestTaskHandler_Create_Success(t *testing.T) {
	svc := &mockTaskService{
		createFn: func(ctx context.Context, author string, in task.CreateInput) (*model.Task, error) {
			if author != "user-123" {
				t.Errorf("author = %q, want %q", author, "user-123")
			}
			if in.Description != "Buy milk" {
				t.Errorf("description = %q, want %q", in.Description, "Buy milk")
			}
			return &model.Task{ID: "task-1", Description: in.Description, Author: author}, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodPost, "/tasks", "", `{"description":"Buy milk"}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var got model.Task
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != "task-1" {
		t.Errorf("id = %q, want %q", got.ID, "task-1")
	}
}

func TestTaskHandler_Create_EmptyDescription(t *testing.T) {
	svc := &mockTaskService{
		createFn: func(ctx context.Context, author string, in task.CreateInput) (*model.Task, error) {
			return nil, model.NewValidationError(map[string]string{
				"description": "Description is required",
			})
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodPost, "/tasks", "", `{"description":""}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestTaskHandler_Create_UnknownField_ReturnsBadRequest(t *testing.T) {
	svc := &mockTaskService{
		createFn: func(ctx context.Context, author string, in task.CreateInput) (*model.Task, error) {
			t.Error("service must not be called for unknown fields")
			return nil, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodPost, "/tasks", "", `{"description":"x","priority":5}`)
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

// --- GET /tasks テスト ---

func TestTaskHandler_List_ForwardsQuery(t *testing.T) {
	svc := &mockTaskService{
		listFn: func(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error) {
			if query.Completed == nil || *query.Completed != true {
				t.Error("expected completed=true filter")
			}
			if query.SortField != "created_at" || query.SortDirection != model.SortDesc {
				t.Errorf("sort = (%q, %q), want (created_at, desc)", query.SortField, query.SortDirection)
			}
			if query.Limit != 10 || query.Skip != 20 {
				t.Errorf("limit/skip = (%d, %d), want (10, 20)", query.Limit, query.Skip)
			}
			return []model.Task{{ID: "task-1", Author: author}}, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodGet, "/tasks?completed=true&sortBy=created_at:desc&limit=10&skip=20", "", "")
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got []model.Task
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestTaskHandler_List_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	svc := &mockTaskService{
		listFn: func(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error) {
			return nil, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodGet, "/tasks", "", "")
	w := httptest.NewRecorder()

	h.List(w, req)

	body := strings.TrimSpace(w.Body.String())
	if body != "[]" {
		t.Errorf("body = %q, want %q", body, "[]")
	}
}

func TestTaskHandler_List_InvalidQuery_ReturnsBadRequest(t *testing.T) {
	svc := &mockTaskService{
		listFn: func(ctx context.Context, author string, query model.TaskQuery) ([]model.Task, error) {
			t.Error("service must not be called for invalid query")
			return nil, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodGet, "/tasks?completed=maybe", "", "")
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

// --- GET /tasks/{id} テスト ---

func TestTaskHandler_Get_Success(t *testing.T) {
	svc := &mockTaskService{
		getFn: func(ctx context.Context, author, id string) (*model.Task, error) {
			if author != "user-123" || id != "task-1" {
				t.Errorf("scope = (%q, %q), want (user-123, task-1)", author, id)
			}
			return &model.Task{ID: id, Author: author}, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodGet, "/tasks/task-1", "task-1", "")
	w := httptest.NewRecorder()

	h.Get(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestTaskHandler_Get_NotOwned_ReturnsNotFound(t *testing.T) {
	svc := &mockTaskService{
		getFn: func(ctx context.Context, author, id string) (*model.Task, error) {
			return nil, model.NewNotFoundError()
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodGet, "/tasks/task-other", "task-other", "")
	w := httptest.NewRecorder()

	h.Get(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- PATCH /tasks/{id} テスト ---

func TestTaskHandler_Update_Success(t *testing.T) {
	svc := &mockTaskService{
		updateFn: func(ctx context.Context, author, id string, in task.UpdateInput) (*model.Task, error) {
			if in.Completed == nil || *in.Completed != true {
				t.Error("expected completed=true to be forwarded")
			}
			if in.Description != nil {
				t.Error("unspecified description must stay nil")
			}
			return &model.Task{ID: id, Author: author, Completed: true}, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodPatch, "/tasks/task-1", "task-1", `{"completed":true}`)
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got model.Task
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !got.Completed {
		t.Error("completed = false, want true")
	}
}

func TestTaskHandler_Update_UnknownField_ReturnsBadRequest(t *testing.T) {
	svc := &mockTaskService{
		updateFn: func(ctx context.Context, author, id string, in task.UpdateInput) (*model.Task, error) {
			t.Error("service must not be called for unknown fields")
			return nil, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodPatch, "/tasks/task-1", "task-1", `{"author":"user-999"}`)
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Message != "Invalid updates!" {
		t.Errorf(`message = %q, want "Invalid updates!"`, got.Message)
	}
}

// --- DELETE /tasks/{id} テスト ---

func TestTaskHandler_Delete_ReturnsDeletedTask(t *testing.T) {
	svc := &mockTaskService{
		deleteFn: func(ctx context.Context, author, id string) (*model.Task, error) {
			return &model.Task{ID: id, Author: author, Description: "Buy milk"}, nil
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodDelete, "/tasks/task-1", "task-1", "")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got model.Task
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Description != "Buy milk" {
		t.Errorf("description = %q, want %q", got.Description, "Buy milk")
	}
}

func TestTaskHandler_Delete_NotOwned_ReturnsNotFound(t *testing.T) {
	svc := &mockTaskService{
		deleteFn: func(ctx context.Context, author, id string) (*model.Task, error) {
			return nil, model.NewNotFoundError()
		},
	}

	h := NewTaskHandler(svc)

	req := newTaskRequest(http.MethodDelete, "/tasks/task-other", "task-other", "")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
