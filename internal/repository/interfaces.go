// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// SourceRepository はソースデータの永続化インターフェース。
type SourceRepository interface {
	// ListActive はアクティブなソースをカテゴリ順で取得する。
	// 収集サイクルの開始時に呼ばれる。
	ListActive(ctx context.Context) ([]*model.Source, error)

	// FindByID は指定IDのソースを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Source, error)

	// Upsert はソースを登録または更新する。管理操作用。
	Upsert(ctx context.Context, source *model.Source) error
}

// ArticleRepository は記事データの永続化インターフェース。
// (source_id, link) の複合一意制約を前提としたUPSERTと、
// 保持期間を超えた記事のパージを提供する。
type ArticleRepository interface {
	// Upsert は記事をUPSERTする。
	// (source_id, link) の衝突時は既存行のフィールドを上書き更新する。
	Upsert(ctx context.Context, article *model.Article) error

	// Exists は指定 (source_id, link) の記事が存在するかを返す。
	// 重複判定の第3段（永続ストア照会）として使用される。
	Exists(ctx context.Context, sourceID, link string) (bool, error)

	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// ListRecent は記事一覧をpublished_at降順で取得する。
	// categoryが空の場合は全カテゴリを対象とする。
	// cursorがゼロ値の場合は先頭から取得する。
	ListRecent(ctx context.Context, category model.Category, cursor time.Time, limit int) ([]*model.Article, error)

	// DeleteOlderThan はpublished_atがcutoffより古い記事を削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TranslationRepository は翻訳キャッシュの永続化インターフェース。
type TranslationRepository interface {
	// Find は (原文, ソース言語, ターゲット言語) で翻訳結果を検索する。
	// 見つからない場合はnilを返す。
	Find(ctx context.Context, sourceText, sourceLang, targetLang string) (*model.Translation, error)

	// Upsert は翻訳結果を保存する。同一キーの既存行は上書きされる。
	Upsert(ctx context.Context, tr *model.Translation) error
}

// CycleLocker は収集サイクルの多重実行を防ぐ排他制御のインターフェース。
type CycleLocker interface {
	// TryLock はアドバイザリロックの取得を試みる。
	// 取得できた場合はtrueを返す。他プロセス（または前サイクル）が
	// 保持している場合はfalseを返し、呼び出し元はサイクルをスキップする。
	TryLock(ctx context.Context) (bool, error)

	// Unlock は保持中のアドバイザリロックを解放する。
	Unlock(ctx context.Context) error
}
