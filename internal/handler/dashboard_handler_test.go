package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/skillboost/internal/auth"
	"github.com/hitoshi/skillboost/internal/middleware"
)

// TestDashboardShow_WithClaims_ReturnsWelcome は検証済みクレーム付きリクエストで
// 歓迎メッセージとユーザー情報が返ることを検証する。
func TestDashboardShow_WithClaims_ReturnsWelcome(t *testing.T) {
	h := NewDashboardHandler()

	claims := &auth.Claims{
		Name:  "Test User",
		Email: "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Message string            `json:"message"`
		User    map[string]string `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Message != "Welcome, Test User" {
		t.Errorf("message = %q, want %q", body.Message, "Welcome, Test User")
	}
	if body.User["id"] != "user-1" {
		t.Errorf("user id = %q, want %q", body.User["id"], "user-1")
	}
	if body.User["email"] != "test@example.com" {
		t.Errorf("user email = %q, want %q", body.User["email"], "test@example.com")
	}
}

// TestDashboardShow_NameMissing_FallsBackToEmail は名前なしクレームで
// メールアドレスが表示に使われることを検証する。
func TestDashboardShow_NameMissing_FallsBackToEmail(t *testing.T) {
	h := NewDashboardHandler()

	claims := &auth.Claims{
		Email: "noname@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-2",
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Message != "Welcome, noname@example.com" {
		t.Errorf("message = %q, want email fallback", body.Message)
	}
}

// TestDashboardShow_NoClaims_Returns401 はクレームなしのコンテキスト
// （ガード未通過）が401になることを検証する。
func TestDashboardShow_NoClaims_Returns401(t *testing.T) {
	h := NewDashboardHandler()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
