// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// コレクターやサービス層から利用する。
type MetricsCollector interface {
	RecordFetchSuccess(sourceID string)
	RecordFetchFailure(sourceID string, reason string)
	RecordParseFailure(sourceID string)
	RecordEntryRejected(reason string)
	RecordTranslateCall()
	RecordTranslateCacheHit()
	RecordTranslateFailure()
	RecordArticlesUpserted(count int)
	RecordArticlesPurged(count int64)
	RecordCycleDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess       prometheus.Counter
	fetchFail          prometheus.Counter
	parseFail          prometheus.Counter
	entriesRejected    *prometheus.CounterVec
	translateCalls     prometheus.Counter
	translateCacheHits prometheus.Counter
	translateFailures  prometheus.Counter
	articlesUpserted   prometheus.Counter
	articlesPurged     prometheus.Counter
	cycleDuration      prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_fetch_success_total",
			Help: "フィードフェッチ成功の合計数",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_fetch_fail_total",
			Help: "フィードフェッチ失敗の合計数",
		}),
		parseFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_parse_fail_total",
			Help: "フィードパース失敗の合計数",
		}),
		entriesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_entries_rejected_total",
			Help: "除外されたエントリの理由別合計数",
		}, []string{"reason"}),
		translateCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_translate_calls_total",
			Help: "外部翻訳API呼び出しの合計数",
		}),
		translateCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_translate_cache_hits_total",
			Help: "翻訳キャッシュヒットの合計数",
		}),
		translateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_translate_failures_total",
			Help: "翻訳失敗の合計数",
		}),
		articlesUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_articles_upserted_total",
			Help: "UPSERTされた記事の合計数",
		}),
		articlesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_articles_purged_total",
			Help: "保持期間超過により削除された記事の合計数",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsdesk_cycle_duration_seconds",
			Help:    "収集サイクルの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.parseFail,
		c.entriesRejected,
		c.translateCalls,
		c.translateCacheHits,
		c.translateFailures,
		c.articlesUpserted,
		c.articlesPurged,
		c.cycleDuration,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(sourceID string) {
	c.fetchSuccess.Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(sourceID string, reason string) {
	c.fetchFail.Inc()
}

// RecordParseFailure はパース失敗を記録する。
func (c *Collector) RecordParseFailure(sourceID string) {
	c.parseFail.Inc()
}

// RecordEntryRejected はエントリの除外を理由別に記録する。
// 理由は too_old / duplicate_cache / duplicate_store / missing_fields など。
func (c *Collector) RecordEntryRejected(reason string) {
	c.entriesRejected.WithLabelValues(reason).Inc()
}

// RecordTranslateCall は外部翻訳API呼び出しを記録する。
func (c *Collector) RecordTranslateCall() {
	c.translateCalls.Inc()
}

// RecordTranslateCacheHit は翻訳キャッシュヒットを記録する。
func (c *Collector) RecordTranslateCacheHit() {
	c.translateCacheHits.Inc()
}

// RecordTranslateFailure は翻訳失敗を記録する。
func (c *Collector) RecordTranslateFailure() {
	c.translateFailures.Inc()
}

// RecordArticlesUpserted はUPSERTされた記事数を記録する。
func (c *Collector) RecordArticlesUpserted(count int) {
	c.articlesUpserted.Add(float64(count))
}

// RecordArticlesPurged はパージされた記事数を記録する。
func (c *Collector) RecordArticlesPurged(count int64) {
	c.articlesPurged.Add(float64(count))
}

// RecordCycleDuration は収集サイクルの所要時間を記録する。
func (c *Collector) RecordCycleDuration(duration time.Duration) {
	c.cycleDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
