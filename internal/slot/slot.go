package slot

import "context"

// Storage - именованные строковые слоты, аналог localStorage.
// Один ключ - одно значение, без транзакций: последняя запись выигрывает.
//
//go:generate mockgen -source=internal/slot/slot.go -destination=internal/mocks/mock_slot_storage.go -package=mocks
type Storage interface {
	// Get - возвращает значение слота, ok=false если слот пуст
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set - перезаписывает значение слота целиком
	Set(ctx context.Context, key string, value string) error
	// Ping - проверяет доступность хранилища
	Ping(ctx context.Context) error
}
