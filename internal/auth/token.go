package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/skillboost/internal/model"
)

// Claims はセッショントークンに含まれるクレームを表す。
// subにユーザーID、name/emailに表示用の属性を持つ。
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer は署名付きセッショントークンの発行と検証を行う。
// 署名鍵はプロセス全体の設定として起動時に注入される。
// トークンは自己完結型のため、検証時にストアへの問い合わせは発生しない。
type TokenIssuer struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenIssuer はTokenIssuerを生成する。
// maxAgeは発行するトークンの有効期間を指定する。
func NewTokenIssuer(secret string, maxAge time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// Issue はユーザーに紐付くセッショントークンを発行する。
// 呼び出しごとに新しいトークンを発行する。失効操作は存在しない。
func (i *TokenIssuer) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify はセッショントークンの署名と有効期限を検証し、クレームを返す。
// 署名不正、期限切れ、アルゴリズム不一致はいずれもエラーとなる。
func (i *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("session token has no subject")
	}

	return claims, nil
}
