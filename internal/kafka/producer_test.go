package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// fakeWriter реализует WriterInterface и просто запоминает, какие сообщения ему передали.
type fakeWriter struct {
	lastMessages []kafka.Message
	returnError  error
	closed       bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.lastMessages = append(f.lastMessages, msgs...)
	return f.returnError
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func zapTestLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	logger, err := zap.NewDevelopmentConfig().Build(zap.AddCallerSkip(1))
	if err != nil {
		t.Fatalf("не удалось создать zap-логгер: %v", err)
	}
	return logger.Sugar()
}

func TestProducer_SendEvent_Success(t *testing.T) {
	logger := zapTestLogger(t)
	defer func() { _ = logger.Sync() }()

	fw := &fakeWriter{}
	p := &Producer{
		Writer: fw,
		Logger: logger,
	}

	evt := Event{
		Type:       FeedbackSubmitted,
		FeedbackID: "00010203-0405-4607-8809-0a0b0c0d0e0f",
		Rating:     5,
		Visibility: "public",
		Timestamp:  time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}

	if err := p.SendEvent(context.Background(), evt); err != nil {
		t.Fatalf("ожидали, что SendEvent не вернёт ошибку, но получили: %v", err)
	}

	if len(fw.lastMessages) != 1 {
		t.Fatalf("ожидали 1 записанное сообщение, но получили %d", len(fw.lastMessages))
	}

	msg := fw.lastMessages[0]
	if string(msg.Key) != evt.FeedbackID {
		t.Errorf("ключ сообщения не совпал: ожидали %q, получили %q", evt.FeedbackID, string(msg.Key))
	}

	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("не удалось разобрать записанное сообщение как JSON: %v", err)
	}
	if decoded.Type != FeedbackSubmitted {
		t.Errorf("тип события не совпал: ожидали %q, получили %q", FeedbackSubmitted, decoded.Type)
	}
	if decoded.Rating != evt.Rating || decoded.Visibility != evt.Visibility {
		t.Errorf("поля события не совпали: %+v", decoded)
	}
	if !decoded.Timestamp.Equal(evt.Timestamp) {
		t.Errorf("timestamp не совпал: ожидали %v, получили %v", evt.Timestamp, decoded.Timestamp)
	}
}

func TestProducer_SendEvent_NoBodyInPayload(t *testing.T) {
	fw := &fakeWriter{}
	p := &Producer{Writer: fw, Logger: zapTestLogger(t)}

	if err := p.SendEvent(context.Background(), Event{Type: FeedbackSubmitted, FeedbackID: "x"}); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(fw.lastMessages[0].Value, &raw); err != nil {
		t.Fatalf("не удалось разобрать сообщение: %v", err)
	}
	for _, key := range []string{"body", "nickname", "cohort"} {
		if _, ok := raw[key]; ok {
			t.Errorf("поле %q не должно попадать в событие", key)
		}
	}
}

func TestProducer_SendEvent_WriteError(t *testing.T) {
	logger := zapTestLogger(t)
	defer func() { _ = logger.Sync() }()

	fw := &fakeWriter{returnError: errors.New("write failed")}
	p := &Producer{
		Writer: fw,
		Logger: logger,
	}

	evt := Event{Type: FeedbackSubmitted, FeedbackID: "id-2", Rating: 1, Visibility: "private"}

	if err := p.SendEvent(context.Background(), evt); err == nil {
		t.Fatalf("ожидали ошибку от SendEvent, но получили nil")
	}
}

func TestProducer_Close(t *testing.T) {
	fw := &fakeWriter{}
	p := &Producer{Writer: fw, Logger: zapTestLogger(t)}

	if err := p.Close(); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !fw.closed {
		t.Error("ожидали, что Close закроет writer")
	}
}
