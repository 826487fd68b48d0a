// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizerService は登録時のユーザー表示名をサニタイズし、
// 保存された名前がページに描画される際のXSSリスクからユーザーを保護する。
// 表示名はプレーンテキストであるべきため、bluemondayの
// StrictPolicyで全てのHTMLタグと属性を除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizerService は表示名のサニタイズ機能のインターフェースを定義する。
// ユーザー作成前に使用される。
type NameSanitizerService interface {
	// Sanitize は表示名から全てのHTMLタグを除去し、前後の空白を取り除いて返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawName string) string
}

// nameSanitizer はNameSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerServiceの新しいインスタンスを生成する。
func NewNameSanitizer() *nameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は表示名から全てのHTMLタグを除去し、前後の空白を取り除いて返す。
func (s *nameSanitizer) Sanitize(rawName string) string {
	return strings.TrimSpace(s.policy.Sanitize(rawName))
}
