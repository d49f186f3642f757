package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"vcc-feedback/internal/slot"
	myErr "vcc-feedback/internal/types/errors"
)

// StorageKey - слот, в котором лежит JSON-массив всех записей
const StorageKey = "vcc_feedbacks"

type SlotRecordStore struct {
	Slots  slot.Storage
	Logger *zap.SugaredLogger

	// mu сериализует read-modify-write внутри процесса.
	// Между процессами по-прежнему выигрывает последняя запись.
	mu sync.Mutex
}

func NewSlotRecordStore(slots slot.Storage, logger *zap.SugaredLogger) *SlotRecordStore {
	return &SlotRecordStore{
		Slots:  slots,
		Logger: logger,
	}
}

// Load - читает все записи в порядке добавления
func (rs *SlotRecordStore) Load(ctx context.Context) []Record {
	raw, ok, err := rs.Slots.Get(ctx, StorageKey)
	if err != nil {
		rs.Logger.Warnf("Failed to read feedbacks, falling back to empty list: %v", err)
		return []Record{}
	}
	if !ok || raw == "" {
		return []Record{}
	}

	return rs.decode(raw)
}

// Append - дописывает запись в конец и сохраняет всю последовательность
func (rs *SlotRecordStore) Append(ctx context.Context, record Record) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	// Ошибка чтения не превращается в пустой список, иначе Set затрет все записи
	raw, ok, err := rs.Slots.Get(ctx, StorageKey)
	if err != nil {
		return err
	}

	records := []Record{}
	if ok && raw != "" {
		records = rs.decode(raw)
	}
	for _, r := range records {
		if r.ID == record.ID {
			rs.Logger.Warn(
				"Feedback with the same id already stored",
				zap.String("feedbackID", record.ID),
			)

			return myErr.ErrAlreadyExists
		}
	}
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		rs.Logger.Error(
			"Failed encode feedbacks to JSON",
			zap.Error(err),
			zap.String("feedbackID", record.ID),
		)

		return fmt.Errorf("error marshaling feedbacks: %w", err)
	}

	if err := rs.Slots.Set(ctx, StorageKey, string(data)); err != nil {
		// Логируется внутри слота
		return err
	}

	rs.Logger.Info(
		fmt.Sprintf("Feedback %s appended, %d stored", record.ID, len(records)),
	)

	return nil
}

// FindByID - линейный поиск записи по ID
func (rs *SlotRecordStore) FindByID(ctx context.Context, id string) (*Record, bool) {
	if id == "" {
		return nil, false
	}

	for _, r := range rs.Load(ctx) {
		if r.ID == id {
			return &r, true
		}
	}

	return nil, false
}

// decode разбирает массив поэлементно: битый элемент пропускается, остальные остаются
func (rs *SlotRecordStore) decode(raw string) []Record {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		rs.Logger.Warnf("Failed to parse feedbacks: %v", err)
		return []Record{}
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		var r Record
		if err := json.Unmarshal(item, &r); err != nil {
			rs.Logger.Warnf("Skipping malformed feedback at index %d: %v", i, err)
			continue
		}
		// null и объекты без обязательных полей разбираются без ошибки
		if err := checkRecord(r); err != nil {
			rs.Logger.Warnf("Skipping invalid feedback at index %d: %v", i, err)
			continue
		}
		records = append(records, r)
	}

	return records
}

func checkRecord(r Record) error {
	if r.ID == "" {
		return errors.New("empty id")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating %d out of range", r.Rating)
	}
	if r.Body == "" {
		return errors.New("empty body")
	}
	if _, ok := ParseVisibility(string(r.Visibility)); !ok {
		return fmt.Errorf("unknown visibility %q", r.Visibility)
	}
	return nil
}
