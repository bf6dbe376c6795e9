package security

import (
	"strings"
	"testing"
)

// TestText_StripsAllTags はプレーンテキスト用のサニタイズでタグが除去されることを検証する。
func TestText_StripsAllTags(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "プレーンテキストはそのまま", input: "Family trip", want: "Family trip"},
		{name: "scriptタグが除去される", input: `Trip<script>alert("x")</script>`, want: "Trip"},
		{name: "書式タグも除去される", input: "<strong>Book</strong> club", want: "Book club"},
		{name: "記号はエスケープされたまま残らない", input: "Tom & Jerry's", want: "Tom & Jerry's"},
		{name: "空文字列", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestRich_AllowsBasicFormatting は説明文用のサニタイズで許可タグが残ることを検証する。
func TestRich_AllowsBasicFormatting(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "pとstrongが許可される",
			input:        "<p><strong>Bring</strong> snacks</p>",
			wantContains: []string{"<p>", "<strong>Bring</strong>", "snacks"},
		},
		{
			name:         "リストが許可される",
			input:        "<ul><li>Tent</li><li>Stove</li></ul>",
			wantContains: []string{"<ul>", "<li>Tent</li>"},
		},
		{
			name:         "リンクにtarget=_blankとrelが付与される",
			input:        `<a href="https://example.com/plan">plan</a>`,
			wantContains: []string{`href="https://example.com/plan"`, `target="_blank"`, "noopener"},
		},
		{
			name:         "javascriptスキームのリンクは除去される",
			input:        `<a href="javascript:alert(1)">x</a>`,
			wantExcludes: []string{"javascript"},
		},
		{
			name:         "iframeとイベント属性は除去される",
			input:        `<p onclick="evil()">hi</p><iframe src="https://evil.example"></iframe>`,
			wantContains: []string{"<p>hi</p>"},
			wantExcludes: []string{"onclick", "iframe"},
		},
		{
			name:         "imgは許可されない",
			input:        `<img src="https://example.com/a.png">`,
			wantExcludes: []string{"<img"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Rich(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Rich(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.wantExcludes {
				if strings.Contains(got, bad) {
					t.Errorf("Rich(%q) = %q, must not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}

// TestRich_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestRich_Idempotent(t *testing.T) {
	s := NewSanitizer()
	input := `<p>Meet at <a href="https://maps.example.com">the park</a></p>`

	first := s.Rich(input)
	if second := s.Rich(first); second != first {
		t.Errorf("Rich is not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}
}
