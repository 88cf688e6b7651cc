package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/linkcache"
	"github.com/hitoshi/newsdesk/internal/model"
)

// mockArticleRepo はArticleRepositoryのテスト用モック。
type mockArticleRepo struct {
	existing    map[string]bool // "sourceID|link" → 存在
	existsErr   error
	existsCalls int
	upserted    []*model.Article
	upsertErr   error
	deleted     int64
	deleteErr   error
	lastCutoff  time.Time
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{existing: make(map[string]bool)}
}

func (m *mockArticleRepo) Upsert(_ context.Context, article *model.Article) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, article)
	return nil
}

func (m *mockArticleRepo) Exists(_ context.Context, sourceID, link string) (bool, error) {
	m.existsCalls++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[sourceID+"|"+link], nil
}

func (m *mockArticleRepo) FindByID(_ context.Context, _ string) (*model.Article, error) {
	return nil, nil
}

func (m *mockArticleRepo) ListRecent(_ context.Context, _ model.Category, _ time.Time, _ int) ([]*model.Article, error) {
	return nil, nil
}

func (m *mockArticleRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff = cutoff
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	return m.deleted, nil
}

// --- 重複判定のテスト ---

func TestDeduper_Check_AcceptsFreshEntry(t *testing.T) {
	d := NewDeduper(linkcache.New(10), newMockArticleRepo(), 24*time.Hour)

	now := time.Now()
	entry := model.Entry{Link: "https://example.com/1", PublishedAt: now.Add(-time.Hour)}

	reason, err := d.Check(context.Background(), "source-1", entry, now)
	if err != nil {
		t.Fatalf("Check() がエラーを返した: %v", err)
	}
	if reason != RejectNone {
		t.Errorf("reason = %q, want 受理", reason)
	}
}

func TestDeduper_Check_RejectsTooOld(t *testing.T) {
	repo := newMockArticleRepo()
	d := NewDeduper(linkcache.New(10), repo, 24*time.Hour)

	now := time.Now()
	entry := model.Entry{Link: "https://example.com/old", PublishedAt: now.Add(-25 * time.Hour)}

	reason, err := d.Check(context.Background(), "source-1", entry, now)
	if err != nil {
		t.Fatalf("Check() がエラーを返した: %v", err)
	}
	if reason != RejectTooOld {
		t.Errorf("reason = %q, want %q", reason, RejectTooOld)
	}
	// 鮮度チェックで除外された場合はストア照会まで到達しない
	if repo.existsCalls != 0 {
		t.Errorf("existsCalls = %d, want 0", repo.existsCalls)
	}
}

func TestDeduper_Check_RejectsCacheHit(t *testing.T) {
	cache := linkcache.New(10)
	cache.Add("source-1", "https://example.com/seen")
	repo := newMockArticleRepo()
	d := NewDeduper(cache, repo, 24*time.Hour)

	now := time.Now()
	entry := model.Entry{Link: "https://example.com/seen", PublishedAt: now}

	reason, err := d.Check(context.Background(), "source-1", entry, now)
	if err != nil {
		t.Fatalf("Check() がエラーを返した: %v", err)
	}
	if reason != RejectDuplicateCache {
		t.Errorf("reason = %q, want %q", reason, RejectDuplicateCache)
	}
	// キャッシュヒットで除外された場合はストア照会まで到達しない
	if repo.existsCalls != 0 {
		t.Errorf("existsCalls = %d, want 0", repo.existsCalls)
	}
}

func TestDeduper_Check_RejectsStoreHitAndWarmsCache(t *testing.T) {
	cache := linkcache.New(10)
	repo := newMockArticleRepo()
	repo.existing["source-1|https://example.com/stored"] = true
	d := NewDeduper(cache, repo, 24*time.Hour)

	now := time.Now()
	entry := model.Entry{Link: "https://example.com/stored", PublishedAt: now}

	reason, err := d.Check(context.Background(), "source-1", entry, now)
	if err != nil {
		t.Fatalf("Check() がエラーを返した: %v", err)
	}
	if reason != RejectDuplicateStore {
		t.Errorf("reason = %q, want %q", reason, RejectDuplicateStore)
	}

	// ストアヒットがキャッシュに反映され、2回目はDB照会なしで除外される
	reason, err = d.Check(context.Background(), "source-1", entry, now)
	if err != nil {
		t.Fatalf("2回目のCheck() がエラーを返した: %v", err)
	}
	if reason != RejectDuplicateCache {
		t.Errorf("2回目のreason = %q, want %q", reason, RejectDuplicateCache)
	}
	if repo.existsCalls != 1 {
		t.Errorf("existsCalls = %d, want 1", repo.existsCalls)
	}
}

func TestDeduper_Check_SameLinkDifferentSourcesAccepted(t *testing.T) {
	cache := linkcache.New(10)
	d := NewDeduper(cache, newMockArticleRepo(), 24*time.Hour)

	now := time.Now()
	entry := model.Entry{Link: "https://example.com/shared", PublishedAt: now}

	d.Remember("source-1", entry.Link)

	// 同一リンクでもソースが異なれば別記事として受理される
	reason, err := d.Check(context.Background(), "source-2", entry, now)
	if err != nil {
		t.Fatalf("Check() がエラーを返した: %v", err)
	}
	if reason != RejectNone {
		t.Errorf("reason = %q, want 受理", reason)
	}
}

func TestDeduper_Check_StoreErrorPropagates(t *testing.T) {
	repo := newMockArticleRepo()
	repo.existsErr = erroredDB
	d := NewDeduper(linkcache.New(10), repo, 24*time.Hour)

	now := time.Now()
	entry := model.Entry{Link: "https://example.com/1", PublishedAt: now}

	_, err := d.Check(context.Background(), "source-1", entry, now)
	if err == nil {
		t.Fatal("ストア照会失敗時にエラーを返すべき")
	}
}

var erroredDB = errors.New("connection refused")

func TestDeduper_Remember_AddsToCache(t *testing.T) {
	cache := linkcache.New(10)
	d := NewDeduper(cache, newMockArticleRepo(), 24*time.Hour)

	d.Remember("source-1", "https://example.com/new")

	if !cache.Contains("source-1", "https://example.com/new") {
		t.Error("Remember はリンクをキャッシュに登録すべき")
	}
}
