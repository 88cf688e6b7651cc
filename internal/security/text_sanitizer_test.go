package security

import "testing"

// TestCleanTitle_PlainText はプレーンテキストがそのまま返ることをテストする。
func TestCleanTitle_PlainText(t *testing.T) {
	s := NewTextSanitizer()

	got := s.CleanTitle("ראש הממשלה נפגש עם נשיא ארצות הברית")
	want := "ראש הממשלה נפגש עם נשיא ארצות הברית"
	if got != want {
		t.Errorf("CleanTitle() = %q, want %q", got, want)
	}
}

// TestCleanTitle_CDATAWrapper はCDATAラッパーが除去されることをテストする。
func TestCleanTitle_CDATAWrapper(t *testing.T) {
	s := NewTextSanitizer()

	got := s.CleanTitle("<![CDATA[Breaking: markets rally]]>")
	if got != "Breaking: markets rally" {
		t.Errorf("CleanTitle() = %q, want %q", got, "Breaking: markets rally")
	}
}

// TestCleanTitle_StripsHTMLTags は埋め込みHTMLタグが除去されることをテストする。
func TestCleanTitle_StripsHTMLTags(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bタグ", "<b>Bold</b> headline", "Bold headline"},
		{"ネストしたタグ", "<p>Status <em>update</em></p>", "Status update"},
		{"imgタグ", `headline <img src="https://example.com/x.png">`, "headline"},
		{"scriptタグ", "<script>alert(1)</script>title", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.CleanTitle(tt.in); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestCleanTitle_UnescapesEntities はHTML文字参照がアンエスケープされることをテストする。
func TestCleanTitle_UnescapesEntities(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"amp", "Tom &amp; Jerry", "Tom & Jerry"},
		{"quot", "&quot;quoted&quot;", `"quoted"`},
		{"apos", "it&apos;s", "it's"},
		{"ltgt", "&lt;tag&gt;", "<tag>"},
		{"nbsp", "a&nbsp;&nbsp;b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.CleanTitle(tt.in); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestCleanTitle_CollapsesWhitespace は連続空白が正規化されることをテストする。
func TestCleanTitle_CollapsesWhitespace(t *testing.T) {
	s := NewTextSanitizer()

	got := s.CleanTitle("  multiple \n\t spaces   here  ")
	if got != "multiple spaces here" {
		t.Errorf("CleanTitle() = %q, want %q", got, "multiple spaces here")
	}
}

// TestCleanTitle_Idempotent は同一入力に対し常に同一出力を返すことをテストする。
func TestCleanTitle_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	in := "<![CDATA[<b>Tom &amp; Jerry</b>]]>"
	first := s.CleanTitle(in)
	second := s.CleanTitle(first)
	if first != second {
		t.Errorf("CleanTitle not idempotent: first=%q second=%q", first, second)
	}
}

// TestExtractExcerpt_StripsMarkup はHTML本文からプレーンテキストが抽出されることをテストする。
func TestExtractExcerpt_StripsMarkup(t *testing.T) {
	s := NewTextSanitizer()

	in := `<p>First paragraph.</p><p>Second <a href="https://example.com">link</a>.</p>`
	got := s.ExtractExcerpt(in, 0)
	want := "First paragraph. Second link ."
	if got != want {
		t.Errorf("ExtractExcerpt() = %q, want %q", got, want)
	}
}

// TestExtractExcerpt_SkipsScript はscript要素の中身が捨てられることをテストする。
func TestExtractExcerpt_SkipsScript(t *testing.T) {
	s := NewTextSanitizer()

	got := s.ExtractExcerpt("before<script>var x = 1;</script>after", 0)
	if got != "before after" {
		t.Errorf("ExtractExcerpt() = %q, want %q", got, "before after")
	}
}

// TestExtractExcerpt_TruncatesAtMaxRunes は上限超過時に切り詰めと省略記号付与が
// rune単位で行われることをテストする。
func TestExtractExcerpt_TruncatesAtMaxRunes(t *testing.T) {
	s := NewTextSanitizer()

	got := s.ExtractExcerpt("אבגדהוזחטי", 4)
	if got != "אבגד…" {
		t.Errorf("ExtractExcerpt() = %q, want %q", got, "אבגד…")
	}
}

// TestExtractExcerpt_MalformedHTML は閉じタグ欠落のHTMLでもパニックせず
// テキストが抽出されることをテストする。
func TestExtractExcerpt_MalformedHTML(t *testing.T) {
	s := NewTextSanitizer()

	got := s.ExtractExcerpt("<p>unclosed <b>bold text", 0)
	if got != "unclosed bold text" {
		t.Errorf("ExtractExcerpt() = %q, want %q", got, "unclosed bold text")
	}
}
