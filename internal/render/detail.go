package render

import (
	"context"
	"html/template"
	"strings"
	"time"

	"vcc-feedback/internal/feedback"
)

const (
	labelPublic  = "公開"
	labelPrivate = "非公開"
)

// Finder - то, что нужно детальному виду от хранилища
type Finder interface {
	FindByID(ctx context.Context, id string) (*feedback.Record, bool)
}

// Detail - одна запись целиком
type Detail struct {
	ID         string        `json:"id"`
	Author     template.HTML `json:"author"`
	Stars      string        `json:"stars"`
	Rating     int           `json:"rating"`
	Date       string        `json:"date"`
	Visibility string        `json:"visibility"`
	Body       template.HTML `json:"body"`
}

// ResolveDetail - сначала последняя отправка из сессии, потом поиск по id из запроса.
// nil означает, что показывать нечего.
func ResolveDetail(ctx context.Context, last *feedback.Record, id string, finder Finder) *feedback.Record {
	if last != nil {
		return last
	}
	if id == "" || finder == nil {
		return nil
	}

	r, ok := finder.FindByID(ctx, id)
	if !ok {
		return nil
	}
	return r
}

// ProjectDetail - тело не обрезается, переводы строк превращаются в <br/>
func ProjectDetail(r feedback.Record, loc *time.Location) Detail {
	return Detail{
		ID:         r.ID,
		Author:     Author(r),
		Stars:      Stars(r.Rating),
		Rating:     r.Rating,
		Date:       FormatDate(r.CreatedAt, loc),
		Visibility: VisibilityLabel(r.Visibility),
		Body:       template.HTML(strings.ReplaceAll(Escape(r.Body), "\n", "<br/>")), // nolint:gosec
	}
}

func VisibilityLabel(v feedback.Visibility) string {
	if v == feedback.VisibilityPublic {
		return labelPublic
	}
	return labelPrivate
}
