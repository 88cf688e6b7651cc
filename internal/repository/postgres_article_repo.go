package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// Upsert は記事をUPSERTする。
// (source_id, link) の一意制約の衝突時は既存行のフィールドを上書き更新し、
// 重複行を作らない。created_atは初回挿入時の値を維持する。
func (r *PostgresArticleRepo) Upsert(ctx context.Context, article *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, source_id, title, original_title, translated_title,
		                       excerpt, link, published_at, priority, color, category,
		                       created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		 ON CONFLICT (source_id, link) DO UPDATE SET
		   title = EXCLUDED.title,
		   original_title = EXCLUDED.original_title,
		   translated_title = EXCLUDED.translated_title,
		   excerpt = EXCLUDED.excerpt,
		   published_at = EXCLUDED.published_at,
		   priority = EXCLUDED.priority,
		   color = EXCLUDED.color,
		   category = EXCLUDED.category,
		   updated_at = now()`,
		article.ID, article.SourceID, article.Title, article.OriginalTitle,
		article.TranslatedTitle, article.Excerpt, article.Link, article.PublishedAt,
		article.Priority, article.Color, article.Category,
	)
	if err != nil {
		return fmt.Errorf("記事のUPSERTに失敗しました: %w", err)
	}
	return nil
}

// Exists は指定 (source_id, link) の記事が存在するかを返す。
func (r *PostgresArticleRepo) Exists(ctx context.Context, sourceID, link string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE source_id = $1 AND link = $2)`,
		sourceID, link,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("記事の存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	a := &model.Article{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, source_id, title, original_title, translated_title, excerpt, link,
		        published_at, priority, color, category, created_at, updated_at
		 FROM articles WHERE id = $1`,
		id,
	).Scan(
		&a.ID, &a.SourceID, &a.Title, &a.OriginalTitle, &a.TranslatedTitle,
		&a.Excerpt, &a.Link, &a.PublishedAt, &a.Priority, &a.Color, &a.Category,
		&a.CreatedAt, &a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}

	return a, nil
}

// ListRecent は記事一覧をpublished_at降順で取得する。
// カーソルベースページネーション: cursorがゼロ値の場合は先頭から取得する。
func (r *PostgresArticleRepo) ListRecent(ctx context.Context, category model.Category, cursor time.Time, limit int) ([]*model.Article, error) {
	query := `SELECT id, source_id, title, original_title, translated_title, excerpt, link,
	                 published_at, priority, color, category, created_at, updated_at
	          FROM articles`
	args := []interface{}{}

	where := ""
	if category != "" {
		args = append(args, category)
		where = fmt.Sprintf(" WHERE category = $%d", len(args))
	}
	if !cursor.IsZero() {
		args = append(args, cursor)
		if where == "" {
			where = fmt.Sprintf(" WHERE published_at < $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND published_at < $%d", len(args))
		}
	}

	args = append(args, limit)
	query += where + fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a := &model.Article{}
		if err := rows.Scan(
			&a.ID, &a.SourceID, &a.Title, &a.OriginalTitle, &a.TranslatedTitle,
			&a.Excerpt, &a.Link, &a.PublishedAt, &a.Priority, &a.Color, &a.Category,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("記事行のスキャンに失敗しました: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事行の走査に失敗しました: %w", err)
	}

	return articles, nil
}

// DeleteOlderThan はpublished_atがcutoffより古い記事を削除し、削除件数を返す。
// 削除対象がない場合は0を返す（冪等）。
func (r *PostgresArticleRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE published_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("記事のパージに失敗しました: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}

	return deleted, nil
}
