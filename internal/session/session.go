package session

import (
	"context"
	"net/http"
	"time"

	"vcc-feedback/internal/feedback"
)

const (
	// CookieName - cookie без Expires, живет до закрытия браузера
	CookieName = "vcc_session"
	// keyPrefix - префикс ключа сессии в Redis
	keyPrefix = "vcc_session:"
)

// Session - структура сессии браузера.
// LastSubmission - временный слот с последней отправкой, нужен только для показа сразу после отправки.
type Session struct {
	ID             string           `json:"id"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	LastSubmission *feedback.Record `json:"vcc_last_submission,omitempty"`
}

// SessionRepo - репозиторий для работы с сессиями
//
//go:generate mockgen -source=internal/session/session.go -destination=internal/mocks/mock_session_repo.go -package=mocks
type SessionRepo interface {
	// CreateSession - создает новую сессию, кладет ее в Redis и ставит cookie
	// Возвращает Session
	CreateSession(ctx context.Context, w http.ResponseWriter) (*Session, error)

	// CheckSession - проверяет cookie, существование сессии в Redis и не истекла ли она
	// Возвращает *Session в случае успеха, иначе nil
	CheckSession(r *http.Request) (*Session, error)

	// SaveLastSubmission - кладет запись во временный слот сессии
	// Возвращает error
	SaveLastSubmission(ctx context.Context, sess *Session, record feedback.Record) error
}
