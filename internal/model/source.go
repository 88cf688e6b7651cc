// Package model はドメインモデルを定義する。
package model

import "time"

// Category はソースのカテゴリを表す。固定の小さな集合から選択される。
type Category string

const (
	// CategoryIsrael は国内ニュースカテゴリ。
	CategoryIsrael Category = "israel"
	// CategoryWorld は国際ニュースカテゴリ。
	CategoryWorld Category = "world"
	// CategoryEconomy は経済ニュースカテゴリ。
	CategoryEconomy Category = "economy"
	// CategorySport はスポーツカテゴリ。
	CategorySport Category = "sport"
	// CategoryTech はテクノロジーカテゴリ。
	CategoryTech Category = "tech"
)

// Source は収集対象のRSS/Atomフィード配信元を表す。
// 管理操作で作成・編集され、各収集サイクルの開始時に読み込まれる。
// Active=falseのソースは収集から除外される。
type Source struct {
	ID              string
	Name            string
	FeedURL         string
	Category        Category
	Color           string // 表示色（例: "#D22B2F"）
	Active          bool
	SkipTranslation bool   // trueの場合は翻訳せず原文タイトルをそのまま使用する
	Language        string // ソース言語タグ（例: "he", "en"）
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
