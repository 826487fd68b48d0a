// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの属性ラベルを表す。
// 登録時に任意で指定される。認可判定には使用しない。
type Role string

const (
	RoleStudent          Role = "Student"
	RoleProfessional     Role = "Professional"
	RoleProfessor        Role = "Professor"
	RoleInstitutionAdmin Role = "Institution Admin"
)

// Valid はRoleが定義済みの値かどうかを判定する。
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessional, RoleProfessor, RoleInstitutionAdmin:
		return true
	default:
		return false
	}
}

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュ値。OAuthのみで登録したユーザーは空文字列となる。
// 平文パスワードはハッシュ計算後に破棄され、どこにも保持されない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword はパスワード認証が可能なユーザーかどうかを返す。
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
