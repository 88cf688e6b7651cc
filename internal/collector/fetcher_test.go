package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// mockSSRFGuard はSSRFValidatorのテスト用モック。
type mockSSRFGuard struct {
	validateErr error
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, _ int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (m *mockSSRFGuard) ValidateURL(_ string) error {
	return m.validateErr
}

// --- フェッチャーのテスト ---

func TestNewFetcher_ReturnsNonNil(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	f := NewFetcher(&mockSSRFGuard{}, logger, 10*time.Second, 5*1024*1024)
	if f == nil {
		t.Fatal("NewFetcher は nil を返してはならない")
	}
}

func TestFetcher_Fetch_Success200(t *testing.T) {
	const feedBody = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
    </item>
  </channel>
</rss>`

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedBody)
	}))
	defer server.Close()

	var buf bytes.Buffer
	f := NewFetcher(&mockSSRFGuard{}, newTestLogger(&buf), 10*time.Second, 5*1024*1024)

	source := &model.Source{ID: "source-1", FeedURL: server.URL}
	body, err := f.Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("Fetch() がエラーを返した: %v", err)
	}
	if string(body) != feedBody {
		t.Errorf("本文が一致しない: got %d bytes, want %d bytes", len(body), len(feedBody))
	}
	if gotUA != "Newsdesk/1.0 News Collector" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if !strings.Contains(gotAccept, "application/rss+xml") {
		t.Errorf("Accept ヘッダーにRSSが含まれない: %q", gotAccept)
	}
}

func TestFetcher_Fetch_SSRFValidationFailure(t *testing.T) {
	var buf bytes.Buffer
	guard := &mockSSRFGuard{validateErr: errors.New("プライベートIPへのアクセスは禁止されています")}
	f := NewFetcher(guard, newTestLogger(&buf), 10*time.Second, 5*1024*1024)

	source := &model.Source{ID: "source-1", FeedURL: "http://192.168.1.1/feed"}
	_, err := f.Fetch(context.Background(), source)
	if err == nil {
		t.Fatal("SSRF検証失敗時にエラーを返すべき")
	}
}

func TestFetcher_Fetch_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var buf bytes.Buffer
	f := NewFetcher(&mockSSRFGuard{}, newTestLogger(&buf), 10*time.Second, 5*1024*1024)

	source := &model.Source{ID: "source-1", FeedURL: server.URL}
	_, err := f.Fetch(context.Background(), source)
	if err == nil {
		t.Fatal("500レスポンス時にエラーを返すべき")
	}
}

func TestFetcher_Fetch_BodySizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("a", 1000))
	}))
	defer server.Close()

	var buf bytes.Buffer
	f := NewFetcher(&mockSSRFGuard{}, newTestLogger(&buf), 10*time.Second, 100)

	source := &model.Source{ID: "source-1", FeedURL: server.URL}
	body, err := f.Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("Fetch() がエラーを返した: %v", err)
	}
	if len(body) != 100 {
		t.Errorf("本文サイズ = %d, want 100（上限で切り詰め）", len(body))
	}
}

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	var buf bytes.Buffer
	f := NewFetcher(&mockSSRFGuard{}, newTestLogger(&buf), 10*time.Second, 5*1024*1024)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	source := &model.Source{ID: "source-1", FeedURL: server.URL}
	_, err := f.Fetch(ctx, source)
	if err == nil {
		t.Fatal("コンテキストキャンセル時にエラーを返すべき")
	}
}
