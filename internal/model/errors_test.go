package model

import (
	"errors"
	"testing"
)

// TestAPIError_WireMessages はクライアントに返すメッセージが既存フロント
// エンドの期待と一致することを検証する。
func TestAPIError_WireMessages(t *testing.T) {
	tests := []struct {
		err      *APIError
		wantCode string
		wantMsg  string
	}{
		{NewValidationError(nil), ErrCodeValidation, "Invalid input"},
		{NewEmailTakenError(), ErrCodeEmailTaken, "Email already registered"},
		{NewAuthFailedError(), ErrCodeAuthFailed, "Invalid email or password"},
		{NewUnauthorizedError(), ErrCodeUnauthorized, "Authentication required"},
		{NewInternalError(), ErrCodeInternal, "Server error"},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.wantCode {
			t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
		}
		if tt.err.Message != tt.wantMsg {
			t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMsg)
		}
	}
}

// TestAPIError_ErrorsAs はラップされたAPIErrorがerrors.Asで取り出せることを検証する。
func TestAPIError_ErrorsAs(t *testing.T) {
	var target *APIError

	err := error(NewEmailTakenError())
	if !errors.As(err, &target) {
		t.Fatal("errors.As should match *APIError")
	}
	if target.Code != ErrCodeEmailTaken {
		t.Errorf("Code = %q, want %q", target.Code, ErrCodeEmailTaken)
	}
}

// TestValidationError_CarriesFieldDetails はフィールド詳細が保持されることを検証する。
func TestValidationError_CarriesFieldDetails(t *testing.T) {
	err := NewValidationError(map[string]string{
		"email":    "must be a valid email address",
		"password": "must be between 6 and 100 characters",
	})

	if len(err.Fields) != 2 {
		t.Fatalf("Fields = %v, want 2 entries", err.Fields)
	}
	if err.Fields["email"] == "" {
		t.Error("expected email field detail")
	}
}
