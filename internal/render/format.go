package render

import (
	"html/template"
	"strings"
	"time"

	"vcc-feedback/internal/feedback"
)

const (
	maxStars      = 5
	filledStar    = "★"
	emptyStar     = "☆"
	anonymousName = "匿名"
	dateLayout    = "2006/1/2 15:04:05"
)

// Escape - минимальное экранирование пользовательского текста.
// Амперсанд строго первым, иначе получится двойное экранирование.
func Escape(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// Stars - индикатор из пяти символов, рейтинг вне диапазона зажимается в [0,5]
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > maxStars {
		rating = maxStars
	}
	return strings.Repeat(filledStar, rating) + strings.Repeat(emptyStar, maxStars-rating)
}

// FormatDate - время в зоне отображения, формат как у ja-JP toLocaleString
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// Author - ник (или "匿名") и, если есть, " / когорта"; все уже экранировано
func Author(r feedback.Record) template.HTML {
	name := anonymousName
	if r.Nickname != nil && *r.Nickname != "" {
		name = *r.Nickname
	}

	author := Escape(name)
	if r.Cohort != nil && *r.Cohort != "" {
		author += " / " + Escape(*r.Cohort)
	}

	return template.HTML(author) // nolint:gosec
}
