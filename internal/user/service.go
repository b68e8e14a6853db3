// Package user はユーザー管理とセッショントークンのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/password"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/token"
)

// Service はユーザー管理のサービス層。
// 登録・認証・トークン発行/失効・退会のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	hasher    *password.Hasher
	codec     *token.Codec
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	hasher *password.Hasher,
	codec *token.Codec,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
		codec:     codec,
	}
}

// CreateInput はユーザー登録の入力。
// Ageは省略可能で、省略時は0となる。
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// Create はユーザーを登録する。
// 全フィールドを検証し、違反があればフィールド別メッセージを持つ
// バリデーションエラーを返す。パスワードは検証後にハッシュ化し、
// 平文は永続化しない。登録直後のトークンリストは空。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	age := 0
	if in.Age != nil {
		age = *in.Age
	}

	fields := map[string]string{}
	if msg := validateName(in.Name); msg != "" {
		fields["name"] = msg
	}
	if msg := validateEmail(email); msg != "" {
		fields["email"] = msg
	}
	if msg := validatePassword(in.Password); msg != "" {
		fields["password"] = msg
	}
	if msg := validateAge(age); msg != "" {
		fields["age"] = msg
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Age:          age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// FindByCredentials はメールアドレスとパスワードでユーザーを認証する。
// ユーザーが存在しない場合もパスワードが一致しない場合も、
// 同一のエラー（"Unable to login."）を返す。失敗理由を区別しないのは
// 存在探索を防ぐための仕様。
func (s *Service) FindByCredentials(ctx context.Context, email, plaintext string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewLoginFailedError()
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return nil, model.NewLoginFailedError()
	}

	return user, nil
}

// GenerateAuthToken はユーザーのセッショントークンを発行し、
// 有効トークンリストの末尾に追加する。発行したトークン文字列を返す。
func (s *Service) GenerateAuthToken(ctx context.Context, user *model.User) (string, error) {
	t, err := s.codec.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	if err := s.tokenRepo.Append(ctx, user.ID, t); err != nil {
		return "", fmt.Errorf("トークンの保存に失敗しました: %w", err)
	}

	return t, nil
}

// Logout は提示されたトークンを有効リストから取り除く。
// 取り除かれたトークンは暗号学的に有効期限内であっても以後拒否される。
func (s *Service) Logout(ctx context.Context, userID, tokenString string) error {
	if err := s.tokenRepo.Delete(ctx, userID, tokenString); err != nil {
		return fmt.Errorf("トークンの削除に失敗しました: %w", err)
	}

	slog.Info("user logged out", slog.String("user_id", userID))
	return nil
}

// LogoutAll はユーザーの全トークンを失効させる。
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("全トークンの削除に失敗しました: %w", err)
	}

	slog.Info("all sessions revoked", slog.String("user_id", userID))
	return nil
}

// UpdateInput はユーザー更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// Update はユーザー情報を部分更新する。
// 登録時と同じ検証規則を適用し、パスワードが変更された場合のみ
// ハッシュを再計算する。
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError()
	}

	fields := map[string]string{}
	if in.Name != nil {
		if msg := validateName(*in.Name); msg != "" {
			fields["name"] = msg
		}
	}
	var email string
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		if msg := validateEmail(email); msg != "" {
			fields["email"] = msg
		}
	}
	if in.Password != nil {
		if msg := validatePassword(*in.Password); msg != "" {
			fields["password"] = msg
		}
	}
	if in.Age != nil {
		if msg := validateAge(*in.Age); msg != "" {
			fields["age"] = msg
		}
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
		}
		user.PasswordHash = hash
	}
	if in.Age != nil {
		user.Age = *in.Age
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Get は指定IDのユーザーを取得する。存在しない場合はNotFoundを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError()
	}
	return user, nil
}

// Delete はユーザーの退会処理を実行する。
// 所有タスクと有効トークンリストはデータベースのCASCADE制約で
// 同時に削除される。
func (s *Service) Delete(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return user, nil
}
