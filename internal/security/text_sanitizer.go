// Package security はフィード収集まわりのセキュリティ機能を提供する。
//
// TextSanitizerService はフィード由来のテキストフィールド（タイトル、抜粋）を
// プレーンテキストに正規化する。フィード配信元はCDATAラッパー、埋め込みHTML、
// 文字参照をタイトルに混入させてくることがあり、そのまま保存すると
// クライアント表示と翻訳入力の両方が壊れる。
package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

// TextSanitizerService はフィードテキストの正規化機能のインターフェースを定義する。
type TextSanitizerService interface {
	// CleanTitle はタイトル文字列をプレーンテキストに正規化する。
	// CDATAラッパーの除去、HTMLタグの除去、文字参照のアンエスケープ、
	// 空白の正規化を行う。冪等であり、同一入力には常に同一出力を返す。
	CleanTitle(raw string) string

	// ExtractExcerpt はHTMLを含みうる本文からプレーンテキストの抜粋を生成する。
	// maxRunesを超える場合は語境界を無視して切り詰め、省略記号を付与する。
	ExtractExcerpt(rawHTML string, maxRunes int) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicy（全タグ除去）を保持し、スレッドセーフに動作する。
type textSanitizer struct {
	strip *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		strip: bluemonday.StrictPolicy(),
	}
}

// CleanTitle はタイトル文字列をプレーンテキストに正規化する。
func (s *textSanitizer) CleanTitle(raw string) string {
	text := stripCDATA(raw)

	// StrictPolicyは全タグを除去するが、出力のテキストは再エスケープされるため
	// その後にアンエスケープして文字参照を実体に戻す
	text = s.strip.Sanitize(text)
	text = html.UnescapeString(text)

	return collapseWhitespace(text)
}

// ExtractExcerpt はHTMLを含みうる本文からプレーンテキストの抜粋を生成する。
// フィードのdescriptionは閉じタグ欠落などの壊れたHTMLであることが多いため、
// 正規表現ではなくトークナイザでテキストノードのみを抽出する。
func (s *textSanitizer) ExtractExcerpt(rawHTML string, maxRunes int) string {
	text := extractText(stripCDATA(rawHTML))
	text = html.UnescapeString(text)
	text = collapseWhitespace(text)

	runes := []rune(text)
	if maxRunes > 0 && len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "…"
	}
	return text
}

// stripCDATA は<![CDATA[ ... ]]>ラッパーを除去する。
// ラッパーがない場合は入力をそのまま返す。
func stripCDATA(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "<![CDATA[") && strings.HasSuffix(trimmed, "]]>") {
		return trimmed[len("<![CDATA[") : len(trimmed)-len("]]>")]
	}
	return s
}

// extractText はHTML断片からテキストノードのみを連結して返す。
// script/style要素の中身は捨てる。
func extractText(fragment string) string {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(fragment))

	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return sb.String()
		case xhtml.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case xhtml.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case xhtml.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

// collapseWhitespace はNBSPを含む連続空白を単一スペースに正規化し、前後を切り詰める。
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == ' ' {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}

	return sb.String()
}
