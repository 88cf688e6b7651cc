// Package translate はタイトル翻訳機能を提供する。
// 外部LLM APIのクライアントと、永続キャッシュを前置した翻訳ゲートを含む。
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrRateLimited は翻訳プロバイダのレート制限応答を表す。
// 既知の良性状態として扱い、エラートラッキングには送らない。
var ErrRateLimited = errors.New("翻訳プロバイダがレート制限中です")

// directive は翻訳スタイル指示。ニュース見出し1件の翻訳のみを返させる。
const directive = "Translate the following news headline from %s to %s. Respond with the translated headline only, no quotes or commentary."

// Client はOpenAI互換のchat completions APIを使用する翻訳クライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
	model      string
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint, model, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Translate はテキストをsourceLangからtargetLangへ翻訳する。
// タイムアウトは呼び出し元がコンテキストのデッドラインで制御する。
// レート制限（429）はErrRateLimitedとして返し、呼び出し元が良性エラーとして扱う。
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(directive, sourceLang, targetLang)},
			{Role: "user", Content: text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("リクエストボディの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("翻訳APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("翻訳APIがレート制限を返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return "", ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("翻訳APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("body", string(b)),
		)
		return "", fmt.Errorf("翻訳APIがステータス %d を返しました", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("翻訳APIのレスポンスに翻訳結果が含まれていません")
	}

	return parsed.Choices[0].Message.Content, nil
}
