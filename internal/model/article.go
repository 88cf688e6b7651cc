// Package model はドメインモデルを定義する。
package model

import "time"

// Priority は記事の表示優先度を表す。
// フィード順の先頭数件が"high"、それ以降が"normal"となる。
type Priority string

const (
	// PriorityHigh は高優先度。ソースの表示色が付与される。
	PriorityHigh Priority = "high"
	// PriorityNormal は通常優先度。中立色が付与される。
	PriorityNormal Priority = "normal"
)

// NeutralColor は通常優先度の記事に付与される中立色。
const NeutralColor = "#FFFFFF"

// Article は永続化される記事を表す。
// (source_id, link) の複合一意制約により同一記事の重複登録を防ぐ。
// 公開日時が保持期間（24時間）を超えるとパージ対象となる。
type Article struct {
	ID              string
	SourceID        string
	Title           string // 翻訳済みタイトル
	OriginalTitle   string // 原文タイトル
	TranslatedTitle string // 翻訳済みタイトルの複製（互換性のため保持）
	Excerpt         string // 本文の短い抜粋
	Link            string
	PublishedAt     time.Time
	Priority        Priority
	Color           string
	Category        Category
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Entry はフィードパーサーが生成する未保存の候補記事を表す。
// サイクル内の一時的な表現であり、Articleに昇格するか破棄される。
type Entry struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Excerpt     string
}

// Translation は翻訳キャッシュの1レコードを表す。
// (原文, ソース言語, ターゲット言語) をキーとして翻訳結果をメモ化する。
type Translation struct {
	SourceText string
	SourceLang string
	TargetLang string
	Translated string
	CreatedAt  time.Time
}
