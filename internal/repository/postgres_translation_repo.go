package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresTranslationRepo はPostgreSQLを使用した翻訳キャッシュリポジトリ。
type PostgresTranslationRepo struct {
	db *sql.DB
}

// NewPostgresTranslationRepo はPostgresTranslationRepoを生成する。
func NewPostgresTranslationRepo(db *sql.DB) *PostgresTranslationRepo {
	return &PostgresTranslationRepo{db: db}
}

// Find は (原文, ソース言語, ターゲット言語) で翻訳結果を検索する。
// 見つからない場合はnilを返す。
func (r *PostgresTranslationRepo) Find(ctx context.Context, sourceText, sourceLang, targetLang string) (*model.Translation, error) {
	tr := &model.Translation{}
	err := r.db.QueryRowContext(ctx,
		`SELECT source_text, source_lang, target_lang, translated, created_at
		 FROM translation_cache
		 WHERE source_text = $1 AND source_lang = $2 AND target_lang = $3`,
		sourceText, sourceLang, targetLang,
	).Scan(&tr.SourceText, &tr.SourceLang, &tr.TargetLang, &tr.Translated, &tr.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("翻訳キャッシュの検索に失敗しました: %w", err)
	}

	return tr, nil
}

// Upsert は翻訳結果を保存する。同一キーの既存行は上書きされ、重複行は作られない。
func (r *PostgresTranslationRepo) Upsert(ctx context.Context, tr *model.Translation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO translation_cache (source_text, source_lang, target_lang, translated, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (source_text, source_lang, target_lang) DO UPDATE SET
		   translated = EXCLUDED.translated`,
		tr.SourceText, tr.SourceLang, tr.TargetLang, tr.Translated,
	)
	if err != nil {
		return fmt.Errorf("翻訳キャッシュのUPSERTに失敗しました: %w", err)
	}
	return nil
}
