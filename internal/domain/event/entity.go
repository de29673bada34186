package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event はイベントエンティティを表す
// セッション（公演回）は session パッケージが保持し、ここでは属性のみを持つ
type Event struct {
	ID          string
	Name        string
	Description string
	Venue       string
	Categories  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent は新しいイベントを作成する
func NewEvent(name, description, venue string, categories []string) *Event {
	now := time.Now()
	return &Event{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Venue:       venue,
		Categories:  normalizeCategories(categories),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEventNameRequired
	}
	if strings.TrimSpace(e.Venue) == "" {
		return ErrVenueRequired
	}
	return nil
}

// Edit はイベントの属性を更新する
func (e *Event) Edit(name, description, venue string, categories []string) {
	e.Name = name
	e.Description = description
	e.Venue = venue
	e.Categories = normalizeCategories(categories)
	e.UpdatedAt = time.Now()
}

// HasCategory はカテゴリが付与されているかを返す（大文字小文字は区別しない）
func (e *Event) HasCategory(category string) bool {
	for _, c := range e.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// normalizeCategories は空白を除去し、重複と空のラベルを取り除く
func normalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
