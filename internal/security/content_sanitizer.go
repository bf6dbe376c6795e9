// Package security はアプリケーションのセキュリティ機能を提供する。
//
// Sanitizer はバックエンドから受け取ったユーザー入力由来の文字列
// (グループ名、説明、イベントタイトル、ユーザー名) をビューモデルに
// 載せる前に無害化する。bluemondayの許可リストベースのポリシーを使う。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はビューモデル向けの文字列サニタイズのインターフェース。
type Sanitizer interface {
	// Text はすべてのタグを除去したプレーンテキストを返す。
	// タイトルや名前など、書式を持たない項目に使う。
	Text(raw string) string

	// Rich は説明文向けに最小限の書式タグのみを残す。
	// 許可タグ: p, br, ul, ol, li, strong, em, a(href)
	// aタグには target="_blank" と rel="noopener noreferrer" を付与する。
	Rich(raw string) string
}

// contentSanitizer はSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewSanitizer はSanitizerの新しいインスタンスを生成する。
func NewSanitizer() Sanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements("p", "br", "ul", "ol", "li", "strong", "em")

	// リンクは絶対URLのみ許可し、新しいタブで開く
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowStandardURLs()
	rich.AllowRelativeURLs(false)
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// Text はタグを除去し、エスケープされた実体参照を元の文字に戻す。
// 出力先のJSONエンコードやテンプレートで改めてエスケープされる前提。
func (s *contentSanitizer) Text(raw string) string {
	return html.UnescapeString(s.strict.Sanitize(raw))
}

// Rich は許可タグ以外を除去する。
func (s *contentSanitizer) Rich(raw string) string {
	return s.rich.Sanitize(raw)
}
