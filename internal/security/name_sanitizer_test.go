package security

import "testing"

// TestNameSanitizer_StripsHTMLTags はHTMLタグが除去されることを検証する。
func TestNameSanitizer_StripsHTMLTags(t *testing.T) {
	s := NewNameSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain name unchanged",
			input: "Alice",
			want:  "Alice",
		},
		{
			name:  "script tag stripped",
			input: `Alice<script>alert("xss")</script>`,
			want:  `Alice`,
		},
		{
			name:  "bold tag stripped keeps text",
			input: "<b>Bob</b>",
			want:  "Bob",
		},
		{
			name:  "img tag stripped",
			input: `Carol<img src=x onerror=alert(1)>`,
			want:  "Carol",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  Dave  ",
			want:  "Dave",
		},
		{
			name:  "multibyte name preserved",
			input: "山田 太郎",
			want:  "山田 太郎",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNameSanitizer_Idempotent は同一入力へのサニタイズが冪等であることを検証する。
func TestNameSanitizer_Idempotent(t *testing.T) {
	s := NewNameSanitizer()

	input := `Eve<script>alert("xss")</script>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("Sanitize is not idempotent: %q -> %q", once, twice)
	}
}

// TestNameSanitizer_ImplementsInterface はインターフェースを満たすことを検証する。
func TestNameSanitizer_ImplementsInterface(t *testing.T) {
	var _ NameSanitizerService = NewNameSanitizer()
}
