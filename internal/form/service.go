package form

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"vcc-feedback/internal/feedback"
	"vcc-feedback/internal/kafka"
	types "vcc-feedback/internal/types/feedback"
	"vcc-feedback/internal/validator"
)

// defaultEventTimeout - событие best-effort, редирект не ждет недоступный брокер дольше этого
const defaultEventTimeout = time.Second

const (
	resultInvalid      = "invalid"
	resultStored       = "stored"
	resultStorageError = "storage_error"
)

var submissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Feedback form submissions by outcome",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(submissionsTotal)
}

// Stasher - кладет запись во временный слот сессии. nil - слота нет.
type Stasher func(ctx context.Context, record feedback.Record) error

// Service - сценарий отправки формы.
// Now и Rand подменяются в тестах, по умолчанию time.Now и crypto/rand.
type Service struct {
	Logger *zap.SugaredLogger
	Store  feedback.RecordStore
	Events kafka.EventProducer // nil - события выключены
	Now    func() time.Time
	Rand   io.Reader

	EventTimeout time.Duration
}

func NewService(
	logger *zap.SugaredLogger,
	store feedback.RecordStore,
	events kafka.EventProducer,
) *Service {
	return &Service{
		Logger: logger,
		Store:  store,
		Events: events,
		Now:    time.Now,
		Rand:   rand.Reader,

		EventTimeout: defaultEventTimeout,
	}
}

// Submit - валидирует сырые поля и сохраняет запись.
// При ошибках валидации возвращает FieldErrors и ничего не пишет.
// Ошибка хранилища возвращается как error, сбои stash и событий только логируются.
func (s *Service) Submit(
	ctx context.Context,
	raw types.RawSubmission,
	stash Stasher,
) (*feedback.Record, types.FieldErrors, error) {
	draft, fieldErrs := validator.Validate(raw)
	if fieldErrs != nil {
		submissionsTotal.WithLabelValues(resultInvalid).Inc()
		return nil, fieldErrs, nil
	}

	record, err := s.newRecord(draft)
	if err != nil {
		return nil, nil, err
	}

	if err := s.Store.Append(ctx, record); err != nil {
		submissionsTotal.WithLabelValues(resultStorageError).Inc()
		s.Logger.Errorw("Failed to store feedback", "feedbackID", record.ID, "error", err)
		return nil, nil, err
	}
	submissionsTotal.WithLabelValues(resultStored).Inc()

	if stash != nil {
		if err := stash(ctx, record); err != nil {
			s.Logger.Warnw("Failed to stash last submission", "feedbackID", record.ID, "error", err)
		}
	}

	s.publish(ctx, record)

	s.Logger.Infof("feedback %s stored (%s)", record.ID, record.Visibility)
	return &record, nil, nil
}

func (s *Service) newRecord(draft *types.Draft) (feedback.Record, error) {
	random := s.Rand
	if random == nil {
		random = rand.Reader
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}

	id, err := uuid.NewRandomFromReader(random)
	if err != nil {
		return feedback.Record{}, fmt.Errorf("generate feedback id: %w", err)
	}

	return feedback.Record{
		ID:         id.String(),
		Nickname:   draft.Nickname,
		Cohort:     draft.Cohort,
		Rating:     draft.Rating,
		Body:       draft.Body,
		Visibility: feedback.Visibility(draft.Visibility),
		CreatedAt:  now().UTC().Truncate(time.Millisecond),
	}, nil
}

func (s *Service) publish(ctx context.Context, record feedback.Record) {
	if s.Events == nil {
		return
	}

	timeout := s.EventTimeout
	if timeout <= 0 {
		timeout = defaultEventTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.Events.SendEvent(ctx, kafka.Event{
		Type:       kafka.FeedbackSubmitted,
		FeedbackID: record.ID,
		Rating:     record.Rating,
		Visibility: string(record.Visibility),
		Timestamp:  record.CreatedAt,
	})
	if err != nil {
		s.Logger.Warnw("Failed to publish feedback event", "feedbackID", record.ID, "error", err)
	}
}
