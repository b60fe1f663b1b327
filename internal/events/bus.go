package events

import (
	"log/slog"
	"sync"
)

// Bus реализует внутрипроцессный pub/sub по именованным топикам.
// Создается один раз при старте приложения и передается зависимостью
// (не глобальный синглтон), чтобы тесты могли строить изолированные
// экземпляры. Fan-out синхронный, в порядке регистрации подписчиков.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscriber
	logger *slog.Logger
}

type subscriber struct {
	id uint64
	fn func(payload any)
}

// NewBus создает новую шину событий
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]subscriber),
		logger: logger,
	}
}

// Subscribe регистрирует callback на топик и возвращает функцию отписки.
// Повторный вызов отписки — no-op.
func (b *Bus) Subscribe(topic string, fn func(payload any)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(topic, id)
		})
	}
}

// Publish синхронно вызывает всех подписчиков топика в порядке регистрации.
// Паника внутри одного подписчика логируется и не прерывает fan-out
// остальным.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	// Копируем срез, чтобы подписчик мог отписаться из своего же callback
	subs := make([]subscriber, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.invoke(topic, sub, payload)
	}
}

func (b *Bus) invoke(topic string, sub subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				"topic", topic,
				"panic", r)
		}
	}()

	sub.fn(payload)
}

func (b *Bus) unsubscribe(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, sub := range subs {
		if sub.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
