package repository

import (
	"testing"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// nullableStringが空文字列をNULL、非空を有効値として扱うことを検証
func TestNullableString(t *testing.T) {
	ns := nullableString("")
	if ns.Valid {
		t.Error("empty string should be stored as NULL")
	}

	ns = nullableString("$2a$10$hash")
	if !ns.Valid || ns.String != "$2a$10$hash" {
		t.Errorf("non-empty string should be valid: %+v", ns)
	}
}
