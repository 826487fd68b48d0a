package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュのコストファクター。
// 既存データベースのハッシュと互換を保つため10に固定する。
const bcryptCost = 10

// bcryptMaxBytes はbcryptが受け付ける入力長の上限。
// 超過分は切り詰める。既存データベースのハッシュを生成したライブラリも
// 同様に72バイトで切り詰めるため、長いパスワードの照合互換が保たれる。
const bcryptMaxBytes = 72

// truncateForBcrypt はbcryptの入力長上限に合わせてパスワードを切り詰める。
func truncateForBcrypt(plain string) []byte {
	b := []byte(plain)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

// HashPassword は平文パスワードのbcryptハッシュを計算する。
// ソルトはbcryptが内部で生成するため、同一平文でも毎回異なるハッシュとなる。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateForBcrypt(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword は平文パスワードをハッシュと照合する。
// 一致しない場合はエラーを返す。比較はbcryptの定数時間比較に委ねる。
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateForBcrypt(plain))
}
