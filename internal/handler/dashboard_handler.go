package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/skillboost/internal/middleware"
	"github.com/hitoshi/skillboost/internal/model"
)

// DashboardHandler は保護領域のHTTPハンドラー。
// ルートガードを通過したリクエストのみが到達する。
type DashboardHandler struct{}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Show はダッシュボードのコンテンツを返す。
// GET /dashboard
// 表示名はガードが注入した検証済みクレームから取得し、ストアには問い合わせない。
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		// ガード配下でのみ使用される前提。コンテキスト欠落は構成ミス。
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": fmt.Sprintf("Welcome, %s", name),
		"user": map[string]string{
			"id":    claims.Subject,
			"name":  claims.Name,
			"email": claims.Email,
		},
	})
}
