// Package auth はセッショントークンの発行と、資格情報・OAuthの両モードによる認証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/skillboost/internal/model"
	"github.com/hitoshi/skillboost/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	Email    string
	Name     string
	Provider string // "google", "github"
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// トークン交換とユーザー情報取得はプロバイダー実装に完全に委譲する。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// NameSanitizer は表示名のサニタイズに必要なインターフェース。
// security.NameSanitizerServiceの部分集合として定義する。
type NameSanitizer interface {
	Sanitize(rawName string) string
}

// provisionNameMaxLen は自動作成ユーザーの表示名の最大文字数。
// 登録フローの表示名上限と揃える。
const provisionNameMaxLen = 80

// Service は認証に関するビジネスロジックを提供する。
// 資格情報モードとOAuthモードの両方で同一形式のセッショントークンを発行する。
type Service struct {
	userRepo  repository.UserRepository
	tokens    *TokenIssuer
	providers map[string]OAuthProvider
	sanitizer NameSanitizer
}

// NewService はServiceを生成する。
// providersにはプロバイダー名（"google"等）をキーとした実装を渡す。
// sanitizerはOAuth経由で取得した表示名に適用される。nilを許容する。
func NewService(
	userRepo repository.UserRepository,
	tokens *TokenIssuer,
	providers map[string]OAuthProvider,
	sanitizer NameSanitizer,
) *Service {
	if providers == nil {
		providers = map[string]OAuthProvider{}
	}
	return &Service{
		userRepo:  userRepo,
		tokens:    tokens,
		providers: providers,
		sanitizer: sanitizer,
	}
}

// GetLoginURL は指定プロバイダーのOAuth認証URLを生成する。
// 未設定のプロバイダーが指定された場合は認証失敗エラーを返す。
func (s *Service) GetLoginURL(provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", model.NewAuthFailedError()
	}
	return p.GetLoginURL(state), nil
}

// Authenticate は資格情報モードの認証を行い、セッショントークンを発行する。
// メールアドレス不明・OAuth専用アカウント・パスワード不一致はいずれも
// 同一の汎用認証失敗エラーとなる（アカウント列挙対策）。
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *model.User, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil || !user.HasPassword() {
		return "", nil, model.NewAuthFailedError()
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return "", nil, model.NewAuthFailedError()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("mode", "credentials"),
	)

	return token, user, nil
}

// HandleOAuthCallback はOAuthモードの認証を行い、セッショントークンを発行する。
// プロバイダーから取得したメールアドレスで既存ユーザーを検索し、
// 未登録の場合はパスワードなしのユーザーを自動作成する。
func (s *Service) HandleOAuthCallback(ctx context.Context, provider, code string) (string, *model.User, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", nil, model.NewAuthFailedError()
	}

	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	email := NormalizeEmail(userInfo.Email)
	if email == "" {
		return "", nil, model.NewAuthFailedError()
	}

	// 2. メールアドレスで既存ユーザーを検索
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		// 3. 新規ユーザー: パスワードなしで自動作成
		user, err = s.provisionUser(ctx, email, userInfo.Name)
		if err != nil {
			return "", nil, err
		}
		slog.Info("new user provisioned via oauth",
			slog.String("user_id", user.ID),
			slog.String("provider", userInfo.Provider),
		)
	} else {
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
			slog.String("mode", "oauth"),
			slog.String("provider", userInfo.Provider),
		)
	}

	// 4. セッショントークンを発行（資格情報モードと同一形式）
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return token, user, nil
}

// GetCurrentUser はセッショントークンから現在のユーザーを取得する。
// トークン不正・期限切れ・ユーザー不存在はいずれも未認証エラーとなる。
func (s *Service) GetCurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// provisionUser はOAuth経由の初回ログインでユーザーを自動作成する。
// プロバイダーから取得した表示名は登録フローと同様にサニタイズして保存する。
// 同一メールの並行作成に敗れた場合は作成済みレコードを取得して返す。
func (s *Service) provisionUser(ctx context.Context, email, name string) (*model.User, error) {
	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      s.sanitizeName(name),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.userRepo.Create(ctx, user)
	if err == nil {
		return user, nil
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeEmailTaken {
		existing, findErr := s.userRepo.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, fmt.Errorf("failed to find user after create conflict: %w", findErr)
		}
		if existing != nil {
			return existing, nil
		}
	}

	return nil, fmt.Errorf("failed to provision user: %w", err)
}

// sanitizeName はプロバイダー提供の表示名を保存可能な形に整える。
// HTML除去後に最大文字数で切り詰め、空になった場合は既定名を充てる。
func (s *Service) sanitizeName(name string) string {
	if s.sanitizer != nil {
		name = s.sanitizer.Sanitize(name)
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > provisionNameMaxLen {
		runes := []rune(name)
		name = string(runes[:provisionNameMaxLen])
	}
	if name == "" {
		name = "User"
	}
	return name
}

// NormalizeEmail はメールアドレスをログインキーとして比較可能な形に正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
