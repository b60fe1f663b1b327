package cars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/avtomarket/avtomarket/internal/client/auth"
	"github.com/avtomarket/avtomarket/internal/events"
	"github.com/avtomarket/avtomarket/internal/models"
	"github.com/avtomarket/avtomarket/pkg/api"

	clientapi "github.com/avtomarket/avtomarket/internal/client/api"
)

// ErrLoadFailed выставляется в состоянии store при неудачном fetch;
// UI показывает по нему retry
var ErrLoadFailed = errors.New("Failed to load cars")

// Имена таблиц change feed
const (
	tableLikes = "likes"
	tableCars  = "cars"
)

// Store владеет списком объявлений текущего viewer'а и сводит три
// независимых источника изменений — bulk fetch, шину событий и change
// feed — в одно консистентное состояние. Все мутации списка проходят
// через applyLikeState, поэтому повторная доставка одного и того же
// события (bus + feed) не удваивает счетчики.
type Store struct {
	apiClient clientapi.ClientAPI
	bus       *events.Bus
	feed      FeedSource
	prompter  Prompter
	reporter  Reporter
	logger    *slog.Logger

	mu             sync.Mutex
	cars           []models.Car
	loading        bool
	loadErr        error
	viewer         *auth.Session
	profileEnsured bool
	feedSubs       []FeedSub
	busUnsubs      []func()
	closed         bool
}

// NewStore создает store и сразу подписывает его на шину событий.
// Подписки change feed устанавливаются в SetViewer (и переустанавливаются
// при каждой смене viewer'а). До первого fetch состояние — loading.
func NewStore(
	apiClient clientapi.ClientAPI,
	bus *events.Bus,
	feedSource FeedSource,
	prompter Prompter,
	reporter Reporter,
	logger *slog.Logger,
) *Store {
	s := &Store{
		apiClient: apiClient,
		bus:       bus,
		feed:      feedSource,
		prompter:  prompter,
		reporter:  reporter,
		logger:    logger,
		loading:   true,
	}

	s.busUnsubs = append(s.busUnsubs,
		bus.Subscribe(events.TopicLikeStateChanged, s.onLikeStateChanged),
		bus.Subscribe(events.TopicCarPosted, s.onCarPosted),
	)

	return s
}

// Cars возвращает глубокую копию текущего списка: снаружи список
// менять нельзя, все изменения идут через операции store
func (s *Store) Cars() []models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.Car, len(s.cars))
	for i := range s.cars {
		snapshot[i] = s.cars[i].Clone()
	}
	return snapshot
}

// Loading сообщает, идет ли начальная загрузка
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err возвращает ошибку последнего fetch (nil если успех)
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// SetViewer переключает store на нового viewer'а (login/logout),
// переустанавливает подписки change feed под его id и делает свежий
// fetch: is_liked считается относительно viewer'а, поэтому
// переиспользовать старые данные нельзя.
func (s *Store) SetViewer(ctx context.Context, viewer *auth.Session) error {
	s.mu.Lock()
	s.viewer = viewer
	s.profileEnsured = false
	oldSubs := s.feedSubs
	s.feedSubs = nil
	s.mu.Unlock()

	for _, sub := range oldSubs {
		if err := sub.Close(); err != nil {
			s.logger.Warn("failed to close feed subscription", "error", err)
		}
	}

	s.installFeedSubs(viewer)

	return s.Fetch(ctx)
}

// installFeedSubs подписывает store на likes (в рамках viewer'а) и cars
func (s *Store) installFeedSubs(viewer *auth.Session) {
	if s.feed == nil {
		return
	}

	// Для анонима фильтр likes не матчит ни одной строки
	likesFilter := "user_id=eq." + uuid.Nil.String()
	if viewer != nil {
		likesFilter = "user_id=eq." + viewer.UserID
	}

	likesSub, err := s.feed.Subscribe(tableLikes, likesFilter, s.onLikesFeedEvent)
	if err != nil {
		s.logger.Warn("failed to subscribe to likes feed", "error", err)
	}

	carsSub, err := s.feed.Subscribe(tableCars, "", s.onCarsFeedEvent)
	if err != nil {
		s.logger.Warn("failed to subscribe to cars feed", "error", err)
	}

	s.mu.Lock()
	if likesSub != nil {
		s.feedSubs = append(s.feedSubs, likesSub)
	}
	if carsSub != nil {
		s.feedSubs = append(s.feedSubs, carsSub)
	}
	s.mu.Unlock()
}

// Fetch загружает полный список с сервера и заменяет состояние целиком.
// Единственная операция с wholesale-заменой; при перекрывающихся вызовах
// действует last-resolved-wins: результат применяется без сверки с тем,
// какой запрос ушел раньше.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	viewerID := ""
	if s.viewer != nil {
		viewerID = s.viewer.UserID
	}
	s.mu.Unlock()

	wireCars, err := s.apiClient.GetCars(ctx, viewerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if err != nil {
		s.logger.Error("failed to fetch cars", "error", err)
		s.cars = []models.Car{}
		s.loadErr = ErrLoadFailed
		return fmt.Errorf("fetch cars: %w", err)
	}

	cars := make([]models.Car, 0, len(wireCars))
	for _, wc := range wireCars {
		cars = append(cars, models.CarFromAPI(wc))
	}
	s.cars = cars
	s.loadErr = nil

	s.logger.Debug("cars fetched", "count", len(cars), "viewer_id", viewerID)
	return nil
}

// Refresh повторяет fetch для текущего viewer'а (pull-to-refresh,
// реакция на carPosted и INSERT в cars)
func (s *Store) Refresh(ctx context.Context) error {
	return s.Fetch(ctx)
}

// Like переключает лайк на машине. Порядок строго write-then-apply:
// сначала подтверждение сервера, потом локальное состояние — никакого
// оптимистичного обновления до записи.
func (s *Store) Like(ctx context.Context, carID string) error {
	s.mu.Lock()
	viewer := s.viewer
	var target *models.Car
	for i := range s.cars {
		if s.cars[i].ID == carID {
			target = &s.cars[i]
			break
		}
	}
	liked := target != nil && target.IsLiked
	s.mu.Unlock()

	// Без авторизации или по неизвестной машине — молча no-op,
	// без сетевых вызовов
	if !viewer.Valid() || target == nil {
		return nil
	}

	// Ленивый upsert профиля перед первой записью сессии:
	// защита от foreign-key ошибок, неуспех не блокирует лайк
	s.ensureProfile(ctx, viewer)

	if liked {
		return s.unlike(ctx, carID, viewer)
	}
	return s.like(ctx, carID, viewer)
}

func (s *Store) like(ctx context.Context, carID string, viewer *auth.Session) error {
	if err := s.apiClient.CreateLike(ctx, carID, viewer.UserID); err != nil {
		// Состояние не трогаем: запись не подтверждена
		s.reporter.Report(err, map[string]any{"op": "like", "car_id": carID})
		return fmt.Errorf("create like: %w", err)
	}

	s.applyLikeState(carID, true)
	s.bus.Publish(events.TopicLikeStateChanged, events.LikeStateChanged{CarID: carID, IsLiked: true})
	return nil
}

func (s *Store) unlike(ctx context.Context, carID string, viewer *auth.Session) error {
	// Снятие лайка деструктивно — требует явного подтверждения
	confirmed, err := s.prompter.Confirm(ctx, "Remove like",
		"Are you sure you want to remove your like from this car?")
	if err != nil {
		return fmt.Errorf("confirm prompt: %w", err)
	}
	if !confirmed {
		return nil
	}

	if err := s.apiClient.DeleteLike(ctx, carID, viewer.UserID); err != nil {
		s.reporter.Report(err, map[string]any{"op": "unlike", "car_id": carID})
		return fmt.Errorf("delete like: %w", err)
	}

	s.applyLikeState(carID, false)
	s.bus.Publish(events.TopicLikeStateChanged, events.LikeStateChanged{CarID: carID, IsLiked: false})
	return nil
}

// View фиксирует просмотр машины. Пока заглушка под будущую аналитику:
// не мутирует список и не возвращает ошибок.
func (s *Store) View(ctx context.Context, carID string) error {
	return nil
}

// Close снимает подписки шины и change feed. После Close обработчики
// не должны срабатывать по disposed store.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unsubs := s.busUnsubs
	subs := s.feedSubs
	s.busUnsubs = nil
	s.feedSubs = nil
	s.mu.Unlock()

	for _, unsubscribe := range unsubs {
		unsubscribe()
	}

	var firstErr error
	for _, sub := range subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ensureProfile один раз за сессию идемпотентно создает профиль viewer'а
func (s *Store) ensureProfile(ctx context.Context, viewer *auth.Session) {
	s.mu.Lock()
	if s.profileEnsured {
		s.mu.Unlock()
		return
	}
	s.profileEnsured = true
	s.mu.Unlock()

	err := s.apiClient.UpsertProfile(ctx, api.ProfileUpsertRequest{
		UserID: viewer.UserID,
		Email:  viewer.Email,
	})
	if err != nil {
		s.logger.Warn("profile upsert failed", "user_id", viewer.UserID, "error", err)
	}
}

// applyLikeState — единственная точка мутации лайк-состояния.
// Целевое значение явное (не toggle), дельта счетчика считается от
// текущего IsLiked, поэтому любой повтор события — no-op.
// Событие по неизвестному car id молча игнорируется: машина могла
// выпасть из списка на сервере.
func (s *Store) applyLikeState(carID string, liked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cars {
		if s.cars[i].ID == carID {
			return s.cars[i].ApplyLikeState(liked)
		}
	}

	s.logger.Debug("like event for unknown car ignored", "car_id", carID)
	return false
}

// onLikeStateChanged применяет событие шины от соседних компонентов.
// Собственные публикации store тоже проходят здесь — идемпотентность
// applyLikeState делает повтор безвредным.
func (s *Store) onLikeStateChanged(payload any) {
	event, ok := payload.(events.LikeStateChanged)
	if !ok {
		s.logger.Warn("unexpected payload on likeStateChanged", "type", fmt.Sprintf("%T", payload))
		return
	}

	s.applyLikeState(event.CarID, event.IsLiked)
}

// onCarPosted перечитывает список: событие несет только id,
// полных данных новой машины в нем нет
func (s *Store) onCarPosted(payload any) {
	if _, ok := payload.(events.CarPosted); !ok {
		s.logger.Warn("unexpected payload on carPosted", "type", fmt.Sprintf("%T", payload))
		return
	}

	if err := s.Refresh(context.Background()); err != nil {
		s.logger.Error("refresh after carPosted failed", "error", err)
	}
}

// onLikesFeedEvent применяет серверное событие по таблице likes
func (s *Store) onLikesFeedEvent(event api.EventMessage) {
	switch event.EventType {
	case api.EventInsert:
		var row api.LikeRow
		if err := json.Unmarshal(event.New, &row); err != nil {
			s.logger.Warn("malformed likes INSERT event", "error", err)
			return
		}
		s.applyLikeState(row.CarID, true)
	case api.EventDelete:
		var row api.LikeRow
		if err := json.Unmarshal(event.Old, &row); err != nil {
			s.logger.Warn("malformed likes DELETE event", "error", err)
			return
		}
		s.applyLikeState(row.CarID, false)
	}
}

// onCarsFeedEvent реагирует на появление нового объявления
func (s *Store) onCarsFeedEvent(event api.EventMessage) {
	if event.EventType != api.EventInsert {
		return
	}

	if err := s.Refresh(context.Background()); err != nil {
		s.logger.Error("refresh after cars INSERT failed", "error", err)
	}
}
