// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/hitoshi/skillboost/internal/auth"
)

const sessionCookieName = "session_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストに検証済みクレームを格納するためのキー。
var claimsContextKey = contextKey("session_claims")

// TokenVerifier はセッショントークンの検証に必要なインターフェース。
// auth.TokenIssuerの部分集合として定義する。
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// GuardMetrics はルートガードの判定結果の計測インターフェース。
type GuardMetrics interface {
	RecordGuardDecision(allowed bool)
}

// GuardConfig はルートガードの設定。
type GuardConfig struct {
	// ProtectedPrefixes は保護対象のパスプレフィックス。
	// ここに列挙されたプレフィックス配下以外のパスはガードを素通りする。
	ProtectedPrefixes []string
	// LoginPath は未認証リクエストのリダイレクト先。
	LoginPath string
}

// NewRouteGuardMiddleware は保護対象パスへのリクエストを検査するミドルウェアを返す。
//
// 保護対象プレフィックス配下のリクエストは、Cookieのセッショントークンを
// 検証し、欠落・署名不正・期限切れのいずれの場合も元のリクエストパスを
// callbackUrlパラメータに付けてログイン画面へリダイレクトする。
// 検証成功時はクレームをコンテキストに注入し、リクエストをそのまま通す。
// 検証はトークン自体の署名確認のみで、ストアへの問い合わせは行わない。
// ガードがエラーを返すことはない。metricsはnilを許容する。
func NewRouteGuardMiddleware(verifier TokenVerifier, config GuardConfig, metrics GuardMetrics) func(next http.Handler) http.Handler {
	loginPath := config.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isProtected(r.URL.Path, config.ProtectedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := verifyRequest(r, verifier)
			if metrics != nil {
				metrics.RecordGuardDecision(ok)
			}
			if !ok {
				redirectToLogin(w, r, loginPath)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isProtected はパスが保護対象プレフィックス配下かどうかを判定する。
// 判定にはpath.Cleanで正規化したパスを使用する。
func isProtected(rawPath string, prefixes []string) bool {
	p := path.Clean(rawPath)
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// verifyRequest はCookieからセッショントークンを取り出して検証する。
func verifyRequest(r *http.Request, verifier TokenVerifier) (*auth.Claims, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := verifier.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}

	return claims, true
}

// redirectToLogin は元のリクエストパスをcallbackUrlに載せてログイン画面へ誘導する。
func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	params := url.Values{"callbackUrl": {r.URL.Path}}
	http.Redirect(w, r, loginPath+"?"+params.Encode(), http.StatusTemporaryRedirect)
}

// ClaimsFromContext はリクエストコンテキストから検証済みクレームを取得する。
// ルートガードを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("session claims not found in context")
	}
	return claims, nil
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return claims.Subject, nil
}

// ContextWithClaims はコンテキストにクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
