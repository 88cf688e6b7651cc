package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsdesk/internal/metrics"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// highPriorityCount はソースごとに高優先度となる先頭エントリ数。
const highPriorityCount = 3

// SourceFetcher はソースフィードの取得インターフェース。
type SourceFetcher interface {
	Fetch(ctx context.Context, source *model.Source) ([]byte, error)
}

// FeedParser はフィード本文のパースインターフェース。
type FeedParser interface {
	Parse(body []byte, now time.Time) ([]model.Entry, int, error)
}

// EntryDeduper はエントリの重複判定インターフェース。
type EntryDeduper interface {
	Check(ctx context.Context, sourceID string, entry model.Entry, now time.Time) (RejectReason, error)
	Remember(sourceID, link string)
}

// TranslateGate はタイトル翻訳のインターフェース。
// 戻り値のcachedはキャッシュヒット時にtrueとなる。
type TranslateGate interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (translated string, cached bool, err error)
}

// Collector は1回の収集サイクルを駆動する。
// アクティブなソースを順に処理し、フェッチ → パース → 重複判定 →
// 翻訳 → UPSERT のパイプラインを実行後、保持期間超過の記事をパージする。
// アドバイザリロックによりサイクルの多重実行を防ぐ。
type Collector struct {
	sourceRepo  repository.SourceRepository
	articleRepo repository.ArticleRepository
	locker      repository.CycleLocker
	fetcher     SourceFetcher
	parser      FeedParser
	deduper     EntryDeduper
	gate        TranslateGate
	metrics     metrics.MetricsCollector
	logger      *slog.Logger
	targetLang  string
	retention   time.Duration
}

// NewCollector はCollectorの新しいインスタンスを生成する。
// retentionが0以下の場合はデフォルトの24時間を使用する。
func NewCollector(
	sourceRepo repository.SourceRepository,
	articleRepo repository.ArticleRepository,
	locker repository.CycleLocker,
	fetcher SourceFetcher,
	parser FeedParser,
	deduper EntryDeduper,
	gate TranslateGate,
	metricsCollector metrics.MetricsCollector,
	logger *slog.Logger,
	targetLang string,
	retention time.Duration,
) *Collector {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Collector{
		sourceRepo:  sourceRepo,
		articleRepo: articleRepo,
		locker:      locker,
		fetcher:     fetcher,
		parser:      parser,
		deduper:     deduper,
		gate:        gate,
		metrics:     metricsCollector,
		logger:      logger,
		targetLang:  targetLang,
		retention:   retention,
	}
}

// RunCycle は1回の収集サイクルを実行する。
// 前回のサイクルがロックを保持している場合は何もせずに戻る。
// 個別ソースの失敗はサイクルを中断せず、ログとメトリクスに記録して継続する。
func (c *Collector) RunCycle(ctx context.Context) error {
	start := time.Now()

	locked, err := c.locker.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("サイクルロックの取得に失敗しました: %w", err)
	}
	if !locked {
		c.logger.Warn("前回の収集サイクルが実行中のためスキップします")
		return nil
	}
	defer func() {
		if unlockErr := c.locker.Unlock(ctx); unlockErr != nil {
			c.logger.Error("サイクルロックの解放に失敗しました",
				slog.String("error", unlockErr.Error()),
			)
		}
	}()

	sources, err := c.sourceRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("アクティブソースの取得に失敗しました: %w", err)
	}

	c.logger.Info("収集サイクルを開始します",
		slog.Int("source_count", len(sources)),
	)

	now := time.Now()
	totalUpserted := 0
	for _, source := range sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		totalUpserted += c.collectSource(ctx, source, now)
	}

	// 保持期間超過の記事をパージ
	deleted, err := c.articleRepo.DeleteOlderThan(ctx, now.Add(-c.retention))
	if err != nil {
		c.logger.Error("記事パージの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	} else {
		c.metrics.RecordArticlesPurged(deleted)
		if deleted > 0 {
			c.logger.Info("保持期間超過の記事を削除しました",
				slog.Int64("deleted_count", deleted),
			)
		}
	}

	duration := time.Since(start)
	c.metrics.RecordCycleDuration(duration)
	c.logger.Info("収集サイクルが完了しました",
		slog.Int("source_count", len(sources)),
		slog.Int("articles_upserted", totalUpserted),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// collectSource は1ソース分のフェッチ〜UPSERTを実行し、保存した記事数を返す。
func (c *Collector) collectSource(ctx context.Context, source *model.Source, now time.Time) int {
	body, err := c.fetcher.Fetch(ctx, source)
	if err != nil {
		c.metrics.RecordFetchFailure(source.ID, "http")
		return 0
	}
	c.metrics.RecordFetchSuccess(source.ID)

	entries, dropped, err := c.parser.Parse(body, now)
	if err != nil {
		c.logger.Error("フィードのパースに失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordParseFailure(source.ID)
		return 0
	}
	for i := 0; i < dropped; i++ {
		c.metrics.RecordEntryRejected("missing_fields")
	}

	accepted := 0
	for _, entry := range entries {
		reason, err := c.deduper.Check(ctx, source.ID, entry, now)
		if err != nil {
			c.logger.Error("重複判定に失敗しました",
				slog.String("source_id", source.ID),
				slog.String("link", entry.Link),
				slog.String("error", err.Error()),
			)
			continue
		}
		if reason != RejectNone {
			c.metrics.RecordEntryRejected(string(reason))
			continue
		}

		article, ok := c.buildArticle(ctx, source, entry, accepted)
		if !ok {
			continue
		}

		if err := c.articleRepo.Upsert(ctx, article); err != nil {
			c.logger.Error("記事のUPSERTに失敗しました",
				slog.String("source_id", source.ID),
				slog.String("link", entry.Link),
				slog.String("error", err.Error()),
			)
			continue
		}
		c.deduper.Remember(source.ID, entry.Link)
		accepted++
	}

	c.metrics.RecordArticlesUpserted(accepted)
	c.logger.Info("ソースの収集が完了しました",
		slog.String("source_id", source.ID),
		slog.String("source_name", source.Name),
		slog.Int("entries_total", len(entries)),
		slog.Int("articles_upserted", accepted),
	)

	return accepted
}

// buildArticle はエントリから記事を組み立てる。
// 翻訳が必要なソースで翻訳に失敗した場合はエントリを破棄する（okがfalse）。
// フィード順の先頭highPriorityCount件（受理ベース）にはソースの表示色を付与する。
func (c *Collector) buildArticle(ctx context.Context, source *model.Source, entry model.Entry, acceptedSoFar int) (*model.Article, bool) {
	translated := entry.Title
	if !source.SkipTranslation && source.Language != c.targetLang {
		result, cached, err := c.gate.Translate(ctx, entry.Title, source.Language, c.targetLang)
		if err != nil {
			c.metrics.RecordTranslateFailure()
			c.metrics.RecordEntryRejected("translate_failed")
			c.logger.Warn("翻訳に失敗したためエントリを破棄します",
				slog.String("source_id", source.ID),
				slog.String("link", entry.Link),
				slog.String("error", err.Error()),
			)
			return nil, false
		}
		if cached {
			c.metrics.RecordTranslateCacheHit()
		} else {
			c.metrics.RecordTranslateCall()
		}
		translated = result
	}

	priority := model.PriorityNormal
	color := model.NeutralColor
	if acceptedSoFar < highPriorityCount {
		priority = model.PriorityHigh
		color = source.Color
	}

	return &model.Article{
		ID:              uuid.NewString(),
		SourceID:        source.ID,
		Title:           translated,
		OriginalTitle:   entry.Title,
		TranslatedTitle: translated,
		Excerpt:         entry.Excerpt,
		Link:            entry.Link,
		PublishedAt:     entry.PublishedAt,
		Priority:        priority,
		Color:           color,
		Category:        source.Category,
	}, true
}
