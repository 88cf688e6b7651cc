package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/newsdesk/internal/linkcache"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// RejectReason は重複判定で除外されたエントリの理由を表す。
// メトリクスの理由ラベルとしてそのまま使用される。
type RejectReason string

const (
	// RejectNone は受理を表す（除外なし）。
	RejectNone RejectReason = ""
	// RejectTooOld は保持期間より古い公開日時による除外。
	RejectTooOld RejectReason = "too_old"
	// RejectDuplicateCache はリンクキャッシュヒットによる除外。
	RejectDuplicateCache RejectReason = "duplicate_cache"
	// RejectDuplicateStore は永続ストアの既存記事ヒットによる除外。
	RejectDuplicateStore RejectReason = "duplicate_store"
)

// Deduper はエントリの3段階重複判定を行う。
// 鮮度チェック → リンクキャッシュ照会 → 永続ストア照会の順に評価し、
// 安価な判定を先に実行することでDBアクセスを最小化する。
type Deduper struct {
	cache       *linkcache.Cache
	articleRepo repository.ArticleRepository
	retention   time.Duration
}

// NewDeduper はDeduperの新しいインスタンスを生成する。
// retentionが0以下の場合はデフォルトの24時間を使用する。
func NewDeduper(cache *linkcache.Cache, articleRepo repository.ArticleRepository, retention time.Duration) *Deduper {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Deduper{
		cache:       cache,
		articleRepo: articleRepo,
		retention:   retention,
	}
}

// Check はエントリを3段階で判定し、除外理由を返す。
// 受理された場合はRejectNoneを返す。エラーはストア照会の失敗時のみ。
func (d *Deduper) Check(ctx context.Context, sourceID string, entry model.Entry, now time.Time) (RejectReason, error) {
	if entry.PublishedAt.Before(now.Add(-d.retention)) {
		return RejectTooOld, nil
	}

	if d.cache.Contains(sourceID, entry.Link) {
		return RejectDuplicateCache, nil
	}

	exists, err := d.articleRepo.Exists(ctx, sourceID, entry.Link)
	if err != nil {
		return RejectNone, fmt.Errorf("既存記事の照会に失敗しました: %w", err)
	}
	if exists {
		// ストアヒットをキャッシュに反映し、次回以降のDB照会を省く
		d.cache.Add(sourceID, entry.Link)
		return RejectDuplicateStore, nil
	}

	return RejectNone, nil
}

// Remember は受理されたエントリのリンクをキャッシュに登録する。
// UPSERT成功後に呼び出すことで、同一サイクル内の再照会を防ぐ。
func (d *Deduper) Remember(sourceID, link string) {
	d.cache.Add(sourceID, link)
}
