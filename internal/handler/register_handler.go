// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/skillboost/internal/metrics"
	"github.com/hitoshi/skillboost/internal/middleware"
	"github.com/hitoshi/skillboost/internal/model"
	"github.com/hitoshi/skillboost/internal/user"
)

// RegisterServiceInterface は登録ハンドラーが必要とするサービスインターフェース。
type RegisterServiceInterface interface {
	Register(ctx context.Context, input user.RegisterInput) (string, error)
}

// RegisterHandler はユーザー登録のHTTPハンドラー。
type RegisterHandler struct {
	service RegisterServiceInterface
	metrics metrics.MetricsCollector
}

// NewRegisterHandler はRegisterHandlerを生成する。metricsはnilを許容する。
func NewRegisterHandler(service RegisterServiceInterface, collector metrics.MetricsCollector) *RegisterHandler {
	return &RegisterHandler{
		service: service,
		metrics: collector,
	}
}

// registerRequest はPOST /api/registerのリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register はユーザー登録を処理する。
// POST /api/register
// 成功時は201で新規ユーザーのIDのみを返す。パスワードもハッシュも応答に含めない。
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.record(metrics.ResultValidation)
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"body": "must be a valid JSON object",
		}))
		return
	}

	id, err := h.service.Register(r.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.record(registrationResult(err))
		handleServiceError(w, err)
		return
	}

	h.record(metrics.ResultSuccess)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// record は登録結果のメトリクスを記録する。
func (h *RegisterHandler) record(result string) {
	if h.metrics != nil {
		h.metrics.RecordRegistration(result)
	}
}

// registrationResult はエラーをメトリクスのresultラベルに対応付ける。
func registrationResult(err error) string {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return metrics.ResultError
	}
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return metrics.ResultValidation
	case model.ErrCodeEmailTaken:
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// *model.APIError以外のエラーは詳細をログにのみ記録し、
// クライアントには汎用の内部エラーを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected service error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	switch apiErr.Code {
	case model.ErrCodeValidation:
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
	case model.ErrCodeEmailTaken:
		middleware.WriteErrorResponse(w, http.StatusConflict, apiErr)
	case model.ErrCodeAuthFailed, model.ErrCodeUnauthorized:
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
	default:
		slog.Error("internal service error", slog.String("code", apiErr.Code))
		middleware.WriteInternalServerError(w)
	}
}
