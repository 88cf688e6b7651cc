package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/model"
)

// SourceServiceInterface はソースハンドラーが必要とするインターフェース。
type SourceServiceInterface interface {
	// ListActive はアクティブなソースをカテゴリ順で返す。
	ListActive(ctx context.Context) ([]*model.Source, error)
	// FindByID はソースを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Source, error)
}

// SourceHandler はソースAPIのHTTPハンドラー。
type SourceHandler struct {
	service SourceServiceInterface
}

// NewSourceHandler はSourceHandlerを生成する。
func NewSourceHandler(service SourceServiceInterface) *SourceHandler {
	return &SourceHandler{service: service}
}

// sourceResponse はソースのレスポンス。
type sourceResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	FeedURL         string    `json:"feed_url"`
	Category        string    `json:"category"`
	Color           string    `json:"color"`
	Active          bool      `json:"active"`
	SkipTranslation bool      `json:"skip_translation"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
}

// sourceListResponse はソース一覧のレスポンス。
type sourceListResponse struct {
	Sources []sourceResponse `json:"sources"`
}

func toSourceResponse(s *model.Source) sourceResponse {
	return sourceResponse{
		ID:              s.ID,
		Name:            s.Name,
		FeedURL:         s.FeedURL,
		Category:        string(s.Category),
		Color:           s.Color,
		Active:          s.Active,
		SkipTranslation: s.SkipTranslation,
		Language:        s.Language,
		CreatedAt:       s.CreatedAt,
	}
}

// ListSources はアクティブなソース一覧を取得する。
// GET /api/sources
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := sourceListResponse{Sources: make([]sourceResponse, len(sources))}
	for i, s := range sources {
		resp.Sources[i] = toSourceResponse(s)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetSource はソース詳細を取得する。
// GET /api/sources/:id
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")

	source, err := h.service.FindByID(r.Context(), sourceID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if source == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSourceNotFoundError(sourceID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toSourceResponse(source))
}
