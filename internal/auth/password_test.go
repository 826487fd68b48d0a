package auth

import (
	"strings"
	"testing"
)

// TestHashPassword_HashDiffersFromPlaintext はハッシュが平文と一致しないことを検証する。
func TestHashPassword_HashDiffersFromPlaintext(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "secret" {
		t.Error("hash must not equal plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash format, got %q", hash)
	}
}

// TestHashPassword_SaltedHashesDiffer は同一平文でもハッシュが毎回異なることを検証する。
func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	hash1, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("expected different hashes for same plaintext (salted)")
	}

	// どちらのハッシュも元の平文と照合できること
	if err := ComparePassword(hash1, "secret"); err != nil {
		t.Errorf("ComparePassword(hash1) error = %v", err)
	}
	if err := ComparePassword(hash2, "secret"); err != nil {
		t.Errorf("ComparePassword(hash2) error = %v", err)
	}
}

// TestComparePassword_WrongPassword_ReturnsError は不一致パスワードがエラーになることを検証する。
func TestComparePassword_WrongPassword_ReturnsError(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("expected error for wrong password")
	}
}

// TestComparePassword_EmptyHash_ReturnsError は空ハッシュとの照合がエラーになることを検証する。
// OAuth専用アカウント（パスワードハッシュなし）が資格情報ログインを通過しないための前提。
func TestComparePassword_EmptyHash_ReturnsError(t *testing.T) {
	if err := ComparePassword("", "anything"); err == nil {
		t.Error("expected error for empty hash")
	}
}

// TestHashPassword_LongPassword はbcryptの72バイト上限を超える長さでも
// ハッシュ生成と照合が成功することを検証する。上限付近の登録が
// サーバーエラーにならないための境界テスト。
func TestHashPassword_LongPassword(t *testing.T) {
	for _, length := range []int{72, 73, 80, 100} {
		plain := strings.Repeat("p", length)

		hash, err := HashPassword(plain)
		if err != nil {
			t.Fatalf("HashPassword() with %d-char password error = %v", length, err)
		}

		if err := ComparePassword(hash, plain); err != nil {
			t.Errorf("ComparePassword() with %d-char password error = %v", length, err)
		}
	}
}

// TestComparePassword_TruncatesAt72Bytes は73バイト目以降が照合に影響しないことを検証する。
// 既存データベースのハッシュを生成したライブラリと同じ切り詰め挙動であること。
func TestComparePassword_TruncatesAt72Bytes(t *testing.T) {
	prefix := strings.Repeat("a", 72)

	hash, err := HashPassword(prefix + "tail-one")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if err := ComparePassword(hash, prefix+"tail-two"); err != nil {
		t.Errorf("expected match on first 72 bytes, got error = %v", err)
	}
	if err := ComparePassword(hash, strings.Repeat("b", 72)+"tail-one"); err == nil {
		t.Error("expected mismatch when first 72 bytes differ")
	}
}
