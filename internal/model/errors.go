// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, article, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeArticleNotFound = "ARTICLE_NOT_FOUND"
	ErrCodeSourceNotFound  = "SOURCE_NOT_FOUND"
	ErrCodeInvalidCategory = "INVALID_CATEGORY"
	ErrCodeInvalidCursor   = "INVALID_CURSOR"
)

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", articleID),
		Category: "article",
		Action:   "記事IDを確認してください。保持期間を超えた記事は削除されています。",
	}
}

// NewSourceNotFoundError はソース未検出エラーを生成する。
func NewSourceNotFoundError(sourceID string) *APIError {
	return &APIError{
		Code:     ErrCodeSourceNotFound,
		Message:  fmt.Sprintf("指定されたソースが見つかりません: %s", sourceID),
		Category: "article",
		Action:   "ソースIDを確認してください。",
	}
}

// NewInvalidCategoryError は無効なカテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("無効なカテゴリです: %s", category),
		Category: "validation",
		Action:   "カテゴリには israel、world、economy、sport、tech のいずれかを指定してください。",
	}
}

// NewInvalidCursorError は無効なカーソルエラーを生成する。
func NewInvalidCursorError(cursor string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCursor,
		Message:  fmt.Sprintf("無効なカーソルです: %s", cursor),
		Category: "validation",
		Action:   "カーソルにはレスポンスのnext_cursorの値をそのまま指定してください。",
	}
}

// ValidCategory はカテゴリが定義済みの集合に含まれるかを検証する。
func ValidCategory(c Category) bool {
	switch c {
	case CategoryIsrael, CategoryWorld, CategoryEconomy, CategorySport, CategoryTech:
		return true
	}
	return false
}
