package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create は新規ユーザーを登録する。
	Create(ctx context.Context, in user.CreateInput) (*model.User, error)
	// FindByCredentials はメールアドレスとパスワードでユーザーを認証する。
	FindByCredentials(ctx context.Context, email, password string) (*model.User, error)
	// GenerateAuthToken は認証トークンを発行し有効トークンリストに追加する。
	GenerateAuthToken(ctx context.Context, u *model.User) (string, error)
	// Logout は現在のトークンを有効トークンリストから削除する。
	Logout(ctx context.Context, userID, token string) error
	// LogoutAll はユーザーの全トークンを失効させる。
	LogoutAll(ctx context.Context, userID string) error
	// Update はプロフィールを部分更新する。
	Update(ctx context.Context, userID string, in user.UpdateInput) (*model.User, error)
	// Delete はユーザーを削除する。所有タスクとトークンも連鎖削除される。
	Delete(ctx context.Context, userID string) (*model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// updateUserRequest はプロフィール更新リクエストのボディ。
// nilのフィールドは「変更しない」を意味する。
type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// authResponse は登録・ログイン成功時のレスポンス。
type authResponse struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Register は新規ユーザー登録を処理する。
// POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	u, err := h.service.Create(r.Context(), user.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.service.GenerateAuthToken(r.Context(), u)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResponse{User: u.Public(), Token: token})
}

// Login はログインを処理する。
// POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	u, err := h.service.FindByCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.service.GenerateAuthToken(r.Context(), u)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResponse{User: u.Public(), Token: token})
}

// Logout は現在のトークンのみを失効させる。他端末のセッションは残る。
// POST /users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	if err := h.service.Logout(r.Context(), principal.User.ID, principal.Token); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// LogoutAll は全端末のトークンを失効させる。
// POST /users/logoutAll
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	if err := h.service.LogoutAll(r.Context(), principal.User.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Me は認証済みユーザー自身のプロフィールを返す。
// GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(principal.User.Public())
}

// UpdateMe はプロフィールを部分更新する。
// 許可されていないフィールドを含むリクエストは全体を拒否する。
// PATCH /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	var req updateUserRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeInvalidUpdates(w)
		return
	}

	u, err := h.service.Update(r.Context(), principal.User.ID, user.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u.Public())
}

// DeleteMe は認証済みユーザー自身を削除し、削除されたプロフィールを返す。
// DELETE /users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	u, err := h.service.Delete(r.Context(), principal.User.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u.Public())
}
