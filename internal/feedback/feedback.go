package feedback

import (
	"context"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility - принимает только два значения перечисления
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), true
	default:
		return "", false
	}
}

// Record - одна отправка формы отзыва. После создания не меняется.
// JSON-теги совпадают с форматом слота vcc_feedbacks.
type Record struct {
	ID         string     `json:"id"`       // uuid
	Nickname   *string    `json:"nickname"` // nil - аноним
	Cohort     *string    `json:"cohort"`
	Rating     int        `json:"rating"`
	Body       string     `json:"body"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// RecordStore - упорядоченная последовательность записей в одном слоте
//
//go:generate mockgen -source=internal/feedback/feedback.go -destination=internal/mocks/mock_record_store.go -package=mocks
type RecordStore interface {
	// Load - читает все записи в порядке добавления.
	// Пустой, битый или не-массив слот дает пустую последовательность, ошибки не бывает.
	Load(ctx context.Context) []Record

	// Append - дописывает запись в конец и сохраняет всю последовательность
	Append(ctx context.Context, record Record) error

	// FindByID - линейный поиск записи по ID
	FindByID(ctx context.Context, id string) (*Record, bool)
}
