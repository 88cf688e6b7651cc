package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/model"
)

// defaultArticlesPerPage は記事一覧の1回の取得件数（デフォルト）。
const defaultArticlesPerPage = 50

// maxArticlesPerPage は記事一覧の1回の取得件数の上限。
const maxArticlesPerPage = 100

// ArticleServiceInterface は記事ハンドラーが必要とするインターフェース。
type ArticleServiceInterface interface {
	// FindByID は記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)
	// ListRecent は記事一覧をpublished_at降順で返す。
	ListRecent(ctx context.Context, category model.Category, cursor time.Time, limit int) ([]*model.Article, error)
}

// ArticleHandler は記事APIのHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// --- レスポンス型 ---

// articleResponse は記事のレスポンス。
type articleResponse struct {
	ID            string    `json:"id"`
	SourceID      string    `json:"source_id"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title"`
	Excerpt       string    `json:"excerpt,omitempty"`
	Link          string    `json:"link"`
	PublishedAt   time.Time `json:"published_at"`
	Priority      string    `json:"priority"`
	Color         string    `json:"color"`
	Category      string    `json:"category"`
}

// articleListResponse は記事一覧のレスポンス。
type articleListResponse struct {
	Articles   []articleResponse `json:"articles"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

func toArticleResponse(a *model.Article) articleResponse {
	return articleResponse{
		ID:            a.ID,
		SourceID:      a.SourceID,
		Title:         a.Title,
		OriginalTitle: a.OriginalTitle,
		Excerpt:       a.Excerpt,
		Link:          a.Link,
		PublishedAt:   a.PublishedAt,
		Priority:      string(a.Priority),
		Color:         a.Color,
		Category:      string(a.Category),
	}
}

// ListArticles は記事一覧を取得する。
// GET /api/articles?category=xxx&cursor=xxx&limit=nn
//
// cursorはレスポンスのnext_cursorをそのまま渡すRFC3339Nano形式のタイムスタンプ。
// published_atがcursorより古い記事から続きを返す。
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	categoryStr := r.URL.Query().Get("category")
	cursorStr := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")

	var category model.Category
	if categoryStr != "" {
		category = model.Category(categoryStr)
		if !model.ValidCategory(category) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidCategoryError(categoryStr))
			return
		}
	}

	var cursor time.Time
	if cursorStr != "" {
		parsed, err := time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidCursorError(cursorStr))
			return
		}
		cursor = parsed
	}

	limit := defaultArticlesPerPage
	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxArticlesPerPage {
		limit = maxArticlesPerPage
	}

	// hasMore判定のため1件多く取得する
	articles, err := h.service.ListRecent(r.Context(), category, cursor, limit+1)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	hasMore := len(articles) > limit
	if hasMore {
		articles = articles[:limit]
	}

	resp := articleListResponse{
		Articles: make([]articleResponse, len(articles)),
		HasMore:  hasMore,
	}
	for i, a := range articles {
		resp.Articles[i] = toArticleResponse(a)
	}
	if hasMore && len(articles) > 0 {
		resp.NextCursor = articles[len(articles)-1].PublishedAt.Format(time.RFC3339Nano)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetArticle は記事詳細を取得する。
// GET /api/articles/:id
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	article, err := h.service.FindByID(r.Context(), articleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if article == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewArticleNotFoundError(articleID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toArticleResponse(article))
}
