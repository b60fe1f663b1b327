package viewgate

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/avtomarket/avtomarket/internal/client/storage"
)

// Ключ персистентного счетчика просмотров
const viewedCountKey = "viewed_cars_count"

// Лимит ожидания хранилища: медленный storage не должен вешать UI,
// при таймауте работаем только с памятью
const storageTimeout = 2 * time.Second

// Gate отслеживает, сколько машин посмотрел неавторизованный пользователь,
// и один раз за сессию поднимает флаг "пора показать логин" при достижении
// порога. Счетчик переживает перезапуски через KVStorage, но любая ошибка
// персистентности деградирует до in-memory поведения.
type Gate struct {
	kv        storage.KVStorage
	threshold int
	logger    *slog.Logger

	mu              sync.Mutex
	viewedCount     int
	shouldShowLogin bool
	hasShownLogin   bool
}

// New создает gate с заданным порогом просмотров
func New(kv storage.KVStorage, threshold int, logger *slog.Logger) *Gate {
	return &Gate{
		kv:        kv,
		threshold: threshold,
		logger:    logger,
	}
}

// ViewedCount возвращает текущее значение счетчика в памяти
func (g *Gate) ViewedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewedCount
}

// ShouldShowLogin сообщает, что порог достигнут и UI должен предложить вход
func (g *Gate) ShouldShowLogin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shouldShowLogin
}

// Load восстанавливает счетчик при старте приложения.
// Значение больше двойного порога считается мусором (сбой или гонка
// прошлой сессии) и сбрасывается в ноль; значение на пороге и выше
// сразу поднимает флаг — случай "перезапуск после порога".
func (g *Gate) Load(ctx context.Context) {
	persisted := g.readPersisted(ctx)

	if persisted > 2*g.threshold {
		g.logger.Warn("viewed count looks corrupted, resetting",
			"persisted", persisted, "threshold", g.threshold)
		persisted = 0
		g.persist(ctx, 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.viewedCount = persisted
	if persisted >= g.threshold {
		g.shouldShowLogin = true
		g.hasShownLogin = true
	}
}

// IncrementViewedCount фиксирует просмотр еще одной машины.
// Перед инкрементом значение перечитывается из хранилища, а не берется
// из памяти: так два быстрых просмотра подряд не теряют друг друга.
// Достигнув порога, счетчик больше не растет — только (пере)выставляет флаг.
func (g *Gate) IncrementViewedCount(ctx context.Context) {
	persisted := g.readPersisted(ctx)

	g.mu.Lock()
	if persisted >= g.threshold {
		g.shouldShowLogin = true
		g.mu.Unlock()
		return
	}

	newCount := persisted + 1
	g.viewedCount = newCount
	if newCount >= g.threshold && !g.hasShownLogin {
		g.shouldShowLogin = true
		g.hasShownLogin = true
	}
	g.mu.Unlock()

	// Персистентность best-effort: ошибка не откатывает память
	g.persist(ctx, newCount)
}

// ResetViewedCount обнуляет gate после успешной авторизации
func (g *Gate) ResetViewedCount(ctx context.Context) {
	g.mu.Lock()
	g.viewedCount = 0
	g.shouldShowLogin = false
	g.hasShownLogin = false
	g.mu.Unlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if err := g.kv.RemoveItem(timeoutCtx, viewedCountKey); err != nil {
		g.logger.Warn("failed to clear viewed count", "error", err)
	}
}

// readPersisted читает счетчик из хранилища с ограниченным ожиданием.
// Отсутствие ключа, мусорное значение, ошибка или таймаут дают
// текущее значение из памяти.
func (g *Gate) readPersisted(ctx context.Context) int {
	timeoutCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	raw, err := g.kv.GetItem(timeoutCtx, viewedCountKey)
	if err != nil {
		if err != storage.ErrKeyNotFound {
			g.logger.Warn("failed to read viewed count", "error", err)
			g.mu.Lock()
			defer g.mu.Unlock()
			return g.viewedCount
		}
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		g.logger.Warn("stored viewed count is malformed", "raw", raw)
		return 0
	}
	return value
}

func (g *Gate) persist(ctx context.Context, count int) {
	timeoutCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	if err := g.kv.SetItem(timeoutCtx, viewedCountKey, strconv.Itoa(count)); err != nil {
		g.logger.Warn("failed to persist viewed count", "error", err)
	}
}
