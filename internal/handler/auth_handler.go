package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/skillboost/internal/metrics"
	"github.com/hitoshi/skillboost/internal/middleware"
	"github.com/hitoshi/skillboost/internal/model"
)

const (
	sessionCookieName   = "session_token"
	oauthStateCookie    = "oauth_state"
	oauthCallbackCookie = "oauth_callback"

	// defaultCallbackURL はログイン成功後の既定の遷移先。
	defaultCallbackURL = "/dashboard"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Authenticate(ctx context.Context, email, password string) (string, *model.User, error)
	GetLoginURL(provider, state string) (string, error)
	HandleOAuthCallback(ctx context.Context, provider, code string) (string, *model.User, error)
	GetCurrentUser(ctx context.Context, token string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilを許容する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: collector,
	}
}

// loginRequest はPOST /auth/loginのリクエストボディ。
type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

// Login は資格情報モードのログインを処理する。
// POST /auth/login
// 成功時はセッションCookieを設定し、遷移先URLを返す。
// 失敗理由の内訳はクライアントに開示しない。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordLogin("credentials", metrics.ResultAuthFailed)
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}

	token, user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin("credentials", loginResult(err))
		handleServiceError(w, err)
		return
	}

	h.recordLogin("credentials", metrics.ResultSuccess)
	h.setSessionCookie(w, token)

	slog.Info("session issued",
		slog.String("user_id", user.ID),
		slog.String("mode", "credentials"),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"redirectUrl": safeCallbackURL(req.CallbackURL),
	})
}

// OAuthLogin はOAuthフローを開始する。
// GET /auth/{provider}/login?callbackUrl=...
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	loginURL, err := h.service.GetLoginURL(provider, state)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// stateをCookieに保存（CSRF対策）
	h.setFlowCookie(w, oauthStateCookie, state, 600)

	// ログイン後の遷移先をCookieに保存（コールバックで読み出す）
	h.setFlowCookie(w, oauthCallbackCookie, safeCallbackURL(r.URL.Query().Get("callbackUrl")), 600)

	http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
}

// OAuthCallback はOAuthコールバックを処理する。
// GET /auth/{provider}/callback?code=xxx&state=yyy
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	// 1. stateの検証（CSRF対策）
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch",
			slog.String("provider", provider),
		)
		h.recordLogin("oauth", metrics.ResultAuthFailed)
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"state": "invalid state parameter",
		}))
		return
	}

	// stateクッキーを削除
	h.setFlowCookie(w, oauthStateCookie, "", -1)

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		h.recordLogin("oauth", metrics.ResultAuthFailed)
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"code": "missing authorization code",
		}))
		return
	}

	// 3. 認証処理（トークン交換・ユーザー照合はサービスに委譲）
	token, user, err := h.service.HandleOAuthCallback(r.Context(), provider, code)
	if err != nil {
		slog.Error("oauth callback failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		h.recordLogin("oauth", metrics.ResultAuthFailed)
		handleServiceError(w, normalizeAuthError(err))
		return
	}

	h.recordLogin("oauth", metrics.ResultSuccess)
	h.setSessionCookie(w, token)

	slog.Info("session issued",
		slog.String("user_id", user.ID),
		slog.String("mode", "oauth"),
		slog.String("provider", provider),
	)

	// 4. ログイン前に要求されていたパスへリダイレクト
	callback := defaultCallbackURL
	if c, err := r.Cookie(oauthCallbackCookie); err == nil && c.Value != "" {
		callback = safeCallbackURL(c.Value)
	}
	h.setFlowCookie(w, oauthCallbackCookie, "", -1)

	http.Redirect(w, r, h.config.BaseURL+callback, http.StatusTemporaryRedirect)
}

// Logout はセッションCookieをクリアする。
// POST /auth/logout
// トークンは自己完結型のため失効操作はなく、Cookieの削除のみを行う。
// 発行済みトークンは有効期限まで検証を通過する。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), cookie.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  string(user.Role),
	})
}

// setSessionCookie は署名付きセッショントークンをHTTP Only Cookieに設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlowCookie はOAuthフロー中の一時Cookieを設定する。
func (h *AuthHandler) setFlowCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// recordLogin はログイン試行のメトリクスを記録する。
func (h *AuthHandler) recordLogin(mode, result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(mode, result)
	}
}

// loginResult はログイン失敗の原因をメトリクスのresultラベルに対応付ける。
func loginResult(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeAuthFailed {
		return metrics.ResultAuthFailed
	}
	return metrics.ResultError
}

// normalizeAuthError はOAuthフローのエラーを汎用認証失敗に丸める。
// *model.APIError以外（トークン交換失敗等）も内訳を開示せず401とする。
// 詳細は呼び出し元でログに記録済みであること。
func normalizeAuthError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return model.NewAuthFailedError()
}

// safeCallbackURL はログイン後の遷移先をサイト内の相対パスに制限する。
// オープンリダイレクトを防ぐため、"/"で始まらない値や"//"で始まる値は既定値に落とす。
func safeCallbackURL(callback string) string {
	if callback == "" || !strings.HasPrefix(callback, "/") || strings.HasPrefix(callback, "//") {
		return defaultCallbackURL
	}
	return callback
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
