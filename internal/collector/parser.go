package collector

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/newsdesk/internal/model"
)

// excerptMaxRunes は抜粋の最大文字数（ルーン単位）。
const excerptMaxRunes = 200

// TitleSanitizer はタイトルと抜粋のサニタイズインターフェース。
type TitleSanitizer interface {
	CleanTitle(raw string) string
	ExtractExcerpt(rawHTML string, maxRunes int) string
}

// Parser はフィード本文をgofeedでパースし、候補エントリに変換する。
// タイトルまたはリンクを欠くアイテムは変換せずに除外する。
type Parser struct {
	sanitizer TitleSanitizer
	logger    *slog.Logger
}

// NewParser はParserの新しいインスタンスを生成する。
func NewParser(sanitizer TitleSanitizer, logger *slog.Logger) *Parser {
	return &Parser{
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// Parse はフィード本文をパースしてエントリ一覧を返す。
// 戻り値のdroppedは必須フィールド欠落により除外されたアイテム数。
// 公開日時のないアイテムにはnowを補完する。
func (p *Parser) Parse(body []byte, now time.Time) (entries []model.Entry, dropped int, err error) {
	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, 0, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	entries = make([]model.Entry, 0, len(parsedFeed.Items))

	for _, item := range parsedFeed.Items {
		if item == nil {
			continue
		}

		title := p.sanitizer.CleanTitle(item.Title)
		if title == "" || item.Link == "" {
			p.logger.Warn("必須フィールドを欠くアイテムを除外します",
				slog.String("title", title),
				slog.String("link", item.Link),
			)
			dropped++
			continue
		}

		// 公開日時: Published → Updated → now の順でフォールバック
		publishedAt := now
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		entries = append(entries, model.Entry{
			Title:       title,
			Link:        item.Link,
			PublishedAt: publishedAt,
			Excerpt:     p.sanitizer.ExtractExcerpt(item.Description, excerptMaxRunes),
		})
	}

	return entries, dropped, nil
}
