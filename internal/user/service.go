// Package user はユーザー登録のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/skillboost/internal/auth"
	"github.com/hitoshi/skillboost/internal/model"
	"github.com/hitoshi/skillboost/internal/repository"
)

// 入力バリデーションの境界値。既存フロントエンドのスキーマと一致させている。
const (
	nameMinLen     = 2
	nameMaxLen     = 80
	passwordMinLen = 6
	passwordMaxLen = 100
)

// NameSanitizer は表示名のサニタイズに必要なインターフェース。
// security.NameSanitizerServiceの部分集合として定義する。
type NameSanitizer interface {
	Sanitize(rawName string) string
}

// HashMetrics はパスワードハッシュ計算の計測インターフェース。
type HashMetrics interface {
	RecordHashDuration(d time.Duration)
}

// RegisterInput はユーザー登録のリクエスト入力を表す。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Service はユーザー登録のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer NameSanitizer
	metrics   HashMetrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(userRepo repository.UserRepository, sanitizer NameSanitizer, metrics HashMetrics) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Register はユーザーを登録し、新規ユーザーのIDを返す。
//
// 処理順序:
//  1. バリデーション（違反時は副作用なしでVALIDATION_ERROR）
//  2. メールアドレスの存在チェック（重複時はハッシュ計算前にEMAIL_TAKEN）
//  3. bcryptハッシュ計算（平文はここで破棄される）
//  4. レコード作成（ストアの一意制約違反もEMAIL_TAKENとして返る）
//
// 2と4の間には同一メールの並行登録が割り込む余地があるが、
// ストアの一意制約が敗者に409を保証する。ロックは行わない。
func (s *Service) Register(ctx context.Context, input RegisterInput) (string, error) {
	name := input.Name
	if s.sanitizer != nil {
		name = s.sanitizer.Sanitize(name)
	}
	email := auth.NormalizeEmail(input.Email)

	if err := validate(name, email, input.Password, input.Role); err != nil {
		return "", err
	}

	// 存在チェックを先に行い、重複時の無駄なハッシュ計算を避ける
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return "", model.NewEmailTakenError()
	}

	start := time.Now()
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordHashDuration(time.Since(start))
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.Role(input.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user.ID, nil
}

// validate は登録入力を検証し、違反があればフィールド単位の詳細を持つ
// バリデーションエラーを返す。
func validate(name, email, password, role string) error {
	fields := map[string]string{}

	if n := utf8.RuneCountInString(name); n < nameMinLen || n > nameMaxLen {
		fields["name"] = fmt.Sprintf("must be between %d and %d characters", nameMinLen, nameMaxLen)
	}

	if !validEmail(email) {
		fields["email"] = "must be a valid email address"
	}

	if n := utf8.RuneCountInString(password); n < passwordMinLen || n > passwordMaxLen {
		fields["password"] = fmt.Sprintf("must be between %d and %d characters", passwordMinLen, passwordMaxLen)
	}

	if role != "" && !model.Role(role).Valid() {
		fields["role"] = "must be one of Student, Professional, Professor, Institution Admin"
	}

	if len(fields) > 0 {
		return model.NewValidationError(fields)
	}
	return nil
}

// validEmail はメールアドレスの形式を検証する。
// 表示名付き形式（"Name <a@b.com>"）は不可とし、アドレス単体のみ許可する。
func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
