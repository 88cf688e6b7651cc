package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresSourceRepo はPostgreSQLを使用したソースリポジトリ。
type PostgresSourceRepo struct {
	db *sql.DB
}

// NewPostgresSourceRepo はPostgresSourceRepoを生成する。
func NewPostgresSourceRepo(db *sql.DB) *PostgresSourceRepo {
	return &PostgresSourceRepo{db: db}
}

// ListActive はアクティブなソースをカテゴリ順で取得する。
func (r *PostgresSourceRepo) ListActive(ctx context.Context) ([]*model.Source, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, feed_url, category, color, active, skip_translation, language,
		        created_at, updated_at
		 FROM sources
		 WHERE active = TRUE
		 ORDER BY category, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("アクティブなソースの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		s := &model.Source{}
		if err := rows.Scan(
			&s.ID, &s.Name, &s.FeedURL, &s.Category, &s.Color,
			&s.Active, &s.SkipTranslation, &s.Language,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ソース行のスキャンに失敗しました: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ソース行の走査に失敗しました: %w", err)
	}

	return sources, nil
}

// FindByID は指定IDのソースを取得する。見つからない場合はnilを返す。
func (r *PostgresSourceRepo) FindByID(ctx context.Context, id string) (*model.Source, error) {
	s := &model.Source{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, feed_url, category, color, active, skip_translation, language,
		        created_at, updated_at
		 FROM sources WHERE id = $1`,
		id,
	).Scan(
		&s.ID, &s.Name, &s.FeedURL, &s.Category, &s.Color,
		&s.Active, &s.SkipTranslation, &s.Language,
		&s.CreatedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ソースの取得に失敗しました: %w", err)
	}

	return s, nil
}

// Upsert はソースを登録または更新する。
func (r *PostgresSourceRepo) Upsert(ctx context.Context, source *model.Source) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sources (id, name, feed_url, category, color, active, skip_translation, language, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   feed_url = EXCLUDED.feed_url,
		   category = EXCLUDED.category,
		   color = EXCLUDED.color,
		   active = EXCLUDED.active,
		   skip_translation = EXCLUDED.skip_translation,
		   language = EXCLUDED.language,
		   updated_at = now()`,
		source.ID, source.Name, source.FeedURL, source.Category, source.Color,
		source.Active, source.SkipTranslation, source.Language,
	)
	if err != nil {
		return fmt.Errorf("ソースのUPSERTに失敗しました: %w", err)
	}
	return nil
}
