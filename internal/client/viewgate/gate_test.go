package viewgate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtomarket/avtomarket/internal/client/storage"
)

// mockKV implements storage.KVStorage over a map with injectable errors
type mockKV struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	waitCtx bool // имитация зависшего хранилища: ждать отмены контекста
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string]string)}
}

func (m *mockKV) GetItem(ctx context.Context, key string) (string, error) {
	if m.waitCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return value, nil
}

func (m *mockKV) SetItem(ctx context.Context, key, value string) error {
	if m.waitCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockKV) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockKV) stored(t *testing.T) int {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[viewedCountKey]
	if !ok {
		return 0
	}
	value, err := strconv.Atoi(raw)
	require.NoError(t, err)
	return value
}

func newTestGate(kv storage.KVStorage, threshold int) *Gate {
	return New(kv, threshold, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGate_FreshStateBelowThreshold(t *testing.T) {
	gate := newTestGate(newMockKV(), 3)
	gate.Load(context.Background())

	assert.Equal(t, 0, gate.ViewedCount())
	assert.False(t, gate.ShouldShowLogin())
}

// Порог достигается ровно на N-ом просмотре и флаг не сбрасывается дальше
func TestGate_ThresholdOneShot(t *testing.T) {
	kv := newMockKV()
	gate := newTestGate(kv, 3)
	gate.Load(context.Background())
	ctx := context.Background()

	gate.IncrementViewedCount(ctx)
	assert.False(t, gate.ShouldShowLogin())
	gate.IncrementViewedCount(ctx)
	assert.False(t, gate.ShouldShowLogin())

	gate.IncrementViewedCount(ctx)
	assert.True(t, gate.ShouldShowLogin())
	assert.Equal(t, 3, gate.ViewedCount())

	// Дальнейшие просмотры не роняют флаг и не растят счетчик
	gate.IncrementViewedCount(ctx)
	gate.IncrementViewedCount(ctx)
	assert.True(t, gate.ShouldShowLogin())
	assert.Equal(t, 3, gate.ViewedCount())
	assert.Equal(t, 3, kv.stored(t))
}

// Сценарий sanity clamp: загруженное значение 1200 при пороге 500
func TestGate_LoadSanityClamp(t *testing.T) {
	kv := newMockKV()
	kv.data[viewedCountKey] = "1200"

	gate := newTestGate(kv, 500)
	gate.Load(context.Background())

	assert.Equal(t, 0, gate.ViewedCount())
	assert.False(t, gate.ShouldShowLogin())
	assert.Equal(t, 0, kv.stored(t))
}

// Перезапуск после достижения порога сразу поднимает флаг
func TestGate_LoadAtThresholdShowsLogin(t *testing.T) {
	kv := newMockKV()
	kv.data[viewedCountKey] = "5"

	gate := newTestGate(kv, 5)
	gate.Load(context.Background())

	assert.Equal(t, 5, gate.ViewedCount())
	assert.True(t, gate.ShouldShowLogin())
}

func TestGate_LoadMalformedValue(t *testing.T) {
	kv := newMockKV()
	kv.data[viewedCountKey] = "not-a-number"

	gate := newTestGate(kv, 5)
	gate.Load(context.Background())

	assert.Equal(t, 0, gate.ViewedCount())
	assert.False(t, gate.ShouldShowLogin())
}

// Инкремент перечитывает хранилище, а не память:
// конкурентная запись другого потока не теряется
func TestGate_IncrementRereadsPersistedValue(t *testing.T) {
	kv := newMockKV()
	gate := newTestGate(kv, 10)
	gate.Load(context.Background())
	ctx := context.Background()

	gate.IncrementViewedCount(ctx)
	assert.Equal(t, 1, gate.ViewedCount())

	// Кто-то еще записал большее значение
	kv.mu.Lock()
	kv.data[viewedCountKey] = "7"
	kv.mu.Unlock()

	gate.IncrementViewedCount(ctx)
	assert.Equal(t, 8, gate.ViewedCount())
	assert.Equal(t, 8, kv.stored(t))
}

// Ошибка персистентности не откатывает обновление в памяти
func TestGate_PersistFailureKeepsMemoryState(t *testing.T) {
	kv := newMockKV()
	kv.setErr = errors.New("disk full")

	gate := newTestGate(kv, 3)
	gate.Load(context.Background())

	gate.IncrementViewedCount(context.Background())
	assert.Equal(t, 1, gate.ViewedCount())
}

// Зависшее хранилище не вешает вызов: ограниченное ожидание
func TestGate_HungStorageDegradesToMemory(t *testing.T) {
	kv := newMockKV()
	kv.waitCtx = true

	gate := newTestGate(kv, 3)

	done := make(chan struct{})
	go func() {
		gate.IncrementViewedCount(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * storageTimeout):
		t.Fatal("IncrementViewedCount did not return within the storage timeout bound")
	}

	assert.Equal(t, 1, gate.ViewedCount())
}

func TestGate_Reset(t *testing.T) {
	kv := newMockKV()
	gate := newTestGate(kv, 2)
	gate.Load(context.Background())
	ctx := context.Background()

	gate.IncrementViewedCount(ctx)
	gate.IncrementViewedCount(ctx)
	require.True(t, gate.ShouldShowLogin())

	gate.ResetViewedCount(ctx)

	assert.Equal(t, 0, gate.ViewedCount())
	assert.False(t, gate.ShouldShowLogin())
	assert.Equal(t, 0, kv.stored(t))

	// После сброса порог может сработать снова
	gate.IncrementViewedCount(ctx)
	gate.IncrementViewedCount(ctx)
	assert.True(t, gate.ShouldShowLogin())
}

// Ошибка чтения (не "ключ отсутствует") не роняет инкремент
func TestGate_ReadErrorFallsBackToMemory(t *testing.T) {
	kv := newMockKV()
	gate := newTestGate(kv, 5)
	gate.Load(context.Background())
	ctx := context.Background()

	gate.IncrementViewedCount(ctx)
	require.Equal(t, 1, gate.ViewedCount())

	kv.mu.Lock()
	kv.getErr = errors.New("io error")
	kv.mu.Unlock()

	gate.IncrementViewedCount(ctx)
	assert.Equal(t, 2, gate.ViewedCount())
}
