package render

import (
	"html/template"
	"sort"
	"time"

	"vcc-feedback/internal/feedback"
)

const (
	DefaultListLimit = 10
	previewLength    = 160
	ellipsis         = "…"
)

// ListItem - карточка в списке отзывов.
// Author и Body уже экранированы и вставляются в разметку как есть.
type ListItem struct {
	ID     string        `json:"id"`
	Author template.HTML `json:"author"`
	Stars  string        `json:"stars"`
	Rating int           `json:"rating"`
	Date   string        `json:"date"`
	Body   template.HTML `json:"body"`
}

// SelectPublic - только публичные, новые сверху, не больше limit.
// Записи с одинаковым createdAt сохраняют исходный порядок.
func SelectPublic(records []feedback.Record, limit int) []feedback.Record {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	public := make([]feedback.Record, 0, len(records))
	for _, r := range records {
		if r.Visibility == feedback.VisibilityPublic {
			public = append(public, r)
		}
	}

	sort.SliceStable(public, func(i, j int) bool {
		return public[i].CreatedAt.After(public[j].CreatedAt)
	})

	if len(public) > limit {
		public = public[:limit]
	}

	return public
}

// ProjectList - проекция сохраненной последовательности в карточки списка
func ProjectList(records []feedback.Record, limit int, loc *time.Location) []ListItem {
	selected := SelectPublic(records, limit)

	items := make([]ListItem, 0, len(selected))
	for _, r := range selected {
		items = append(items, ListItem{
			ID:     r.ID,
			Author: Author(r),
			Stars:  Stars(r.Rating),
			Rating: r.Rating,
			Date:   FormatDate(r.CreatedAt, loc),
			Body:   template.HTML(Preview(r.Body)), // nolint:gosec
		})
	}

	return items
}

// Preview - первые 160 символов тела, экранированные, с "…" если тело длиннее.
// Обрезаем до экранирования, чтобы не разрезать сущность вроде &amp; пополам.
func Preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return Escape(body)
	}

	return Escape(string(runes[:previewLength])) + ellipsis
}
