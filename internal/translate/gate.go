package translate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// TitleTranslator は外部翻訳呼び出しのインターフェース。
// テスト時にモックに差し替え可能。
type TitleTranslator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Gate は翻訳ゲート。永続キャッシュを前置し、キャッシュミス時のみ
// 外部翻訳APIをデッドライン付きで呼び出す。
// 連続エラー時はインプロセスのバックオフを適用し、外部呼び出しをスキップする。
// バックオフ中やエラー時のエントリは呼び出し元が破棄する（フォールバック保存はしない）。
type Gate struct {
	cacheRepo repository.TranslationRepository
	client    TitleTranslator
	logger    *slog.Logger
	timeout   time.Duration

	consecutiveErrors int
	backoffUntil      time.Time
}

// NewGate はGateの新しいインスタンスを生成する。
// timeoutが0以下の場合はデフォルトの15秒を使用する。
func NewGate(
	cacheRepo repository.TranslationRepository,
	client TitleTranslator,
	logger *slog.Logger,
	timeout time.Duration,
) *Gate {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gate{
		cacheRepo: cacheRepo,
		client:    client,
		logger:    logger,
		timeout:   timeout,
	}
}

// Translate はテキストの翻訳結果を返す。
// 戻り値のcachedは永続キャッシュから取得した場合にtrueとなる。
//
// キャッシュミス時は外部翻訳APIをtimeout付きのコンテキストで呼び出す。
// デッドラインはHTTPクライアントのI/Oまで伝播するため、タイムアウト時に
// 裏で呼び出しが走り続けることはない。成功した翻訳は返却前にキャッシュへ
// UPSERTされる。
func (g *Gate) Translate(ctx context.Context, text, sourceLang, targetLang string) (translated string, cached bool, err error) {
	cachedTr, err := g.cacheRepo.Find(ctx, text, sourceLang, targetLang)
	if err != nil {
		// キャッシュ検索の失敗は外部呼び出しで回復を試みる
		g.logger.Error("翻訳キャッシュの検索に失敗しました",
			slog.String("source_lang", sourceLang),
			slog.String("error", err.Error()),
		)
	}
	if cachedTr != nil {
		return cachedTr.Translated, true, nil
	}

	// 連続エラーによるバックオフ中は外部呼び出しをスキップする
	if !g.backoffUntil.IsZero() && time.Now().Before(g.backoffUntil) {
		return "", false, errors.New("翻訳APIはバックオフ中のためスキップします")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	translated, err = g.client.Translate(callCtx, text, sourceLang, targetLang)
	if err != nil {
		g.recordFailure(err)
		return "", false, err
	}

	g.consecutiveErrors = 0
	g.backoffUntil = time.Time{}

	// 成功した翻訳は返却前にキャッシュへ保存する。
	// 保存失敗は記事本体の処理を止めない（次回は再度外部呼び出しになるだけ）。
	if upsertErr := g.cacheRepo.Upsert(ctx, &model.Translation{
		SourceText: text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Translated: translated,
	}); upsertErr != nil {
		g.logger.Error("翻訳キャッシュの保存に失敗しました",
			slog.String("source_lang", sourceLang),
			slog.String("error", upsertErr.Error()),
		)
	}

	return translated, false, nil
}

// recordFailure は外部呼び出しの失敗を記録し、連続エラー数に応じた
// バックオフを適用する。レート制限は既知の良性状態としてWarnで記録する。
func (g *Gate) recordFailure(err error) {
	g.consecutiveErrors++

	if errors.Is(err, ErrRateLimited) {
		g.logger.Warn("翻訳がレート制限によりスキップされました",
			slog.Int("consecutive_errors", g.consecutiveErrors),
		)
	} else {
		g.logger.Error("翻訳に失敗しました",
			slog.Int("consecutive_errors", g.consecutiveErrors),
			slog.String("error", err.Error()),
		)
	}

	backoff := calculateErrorBackoff(g.consecutiveErrors)
	if backoff > 0 {
		g.backoffUntil = time.Now().Add(backoff)
		g.logger.Warn("連続エラーにより翻訳APIへのバックオフを適用します",
			slog.Int("consecutive_errors", g.consecutiveErrors),
			slog.Duration("backoff_duration", backoff),
		)
	}
}

// calculateErrorBackoff は連続エラー回数に基づくバックオフ時間を計算する。
// 3回連続: 30分、5回連続: 1時間、10回連続: 6時間。
func calculateErrorBackoff(consecutiveErrors int) time.Duration {
	switch {
	case consecutiveErrors >= 10:
		return 6 * time.Hour
	case consecutiveErrors >= 5:
		return 1 * time.Hour
	case consecutiveErrors >= 3:
		return 30 * time.Minute
	default:
		return 0
	}
}
