package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/avtomarket/avtomarket/pkg/api"
)

// Handler обрабатывает одно событие мутации строки.
// Доставка at-least-once: сетевые обрывы могут привести к повторной
// доставке, поэтому обработчики обязаны быть идемпотентными.
type Handler func(event api.EventMessage)

// StatusFunc вызывается при смене статуса подписки:
// минимум один раз SUBSCRIBED после успешной подписки и CLOSED при закрытии.
type StatusFunc func(status string)

// Client представляет websocket подписку на change feed сервера.
// Автоматического reconnect нет: переподключение — забота вызывающего.
type Client struct {
	url         string
	accessToken string
	logger      *slog.Logger

	mu       sync.Mutex
	writeMu  sync.Mutex
	conn     *websocket.Conn
	subs     map[string]*Subscription
	statusFn StatusFunc
	closed   bool
	done     chan struct{}
}

// Subscription представляет одну серверную подписку на таблицу
type Subscription struct {
	ref     string
	table   string
	handler Handler
	client  *Client

	closeOnce sync.Once
}

// New создает клиент change feed. Подключение выполняется в Connect.
func New(url, accessToken string, logger *slog.Logger) *Client {
	return &Client{
		url:         url,
		accessToken: accessToken,
		logger:      logger,
		subs:        make(map[string]*Subscription),
		done:        make(chan struct{}),
	}
}

// OnStatus устанавливает callback статуса. Должен вызываться до Connect.
func (c *Client) OnStatus(fn StatusFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusFn = fn
}

// Connect открывает websocket соединение и запускает цикл чтения
func (c *Client) Connect(ctx context.Context) error {
	header := http.Header{}
	if c.accessToken != "" {
		header.Set("Authorization", "Bearer "+c.accessToken)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("failed to dial change feed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("feed client is closed")
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// Subscribe отправляет кадр подписки на таблицу и регистрирует обработчик.
// Filter задается в формате "column=eq.value"; пустой фильтр — вся таблица.
func (c *Client) Subscribe(table, filter string, handler Handler) (*Subscription, error) {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("feed client is not connected")
	}

	sub := &Subscription{
		ref:     uuid.NewString(),
		table:   table,
		handler: handler,
		client:  c,
	}
	c.subs[sub.ref] = sub
	c.mu.Unlock()

	req := api.SubscribeRequest{
		Action: "subscribe",
		Ref:    sub.ref,
		Table:  table,
		Filter: filter,
	}
	if err := c.writeJSON(req); err != nil {
		c.mu.Lock()
		delete(c.subs, sub.ref)
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to send subscribe frame: %w", err)
	}

	c.logger.Debug("subscribed to change feed", "table", table, "filter", filter)
	return sub, nil
}

// Close снимает серверную подписку и прекращает доставку событий.
// Повторные вызовы — no-op.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.client.mu.Lock()
		delete(s.client.subs, s.ref)
		connected := s.client.conn != nil && !s.client.closed
		s.client.mu.Unlock()

		if connected {
			err = s.client.writeJSON(api.SubscribeRequest{
				Action: "unsubscribe",
				Ref:    s.ref,
				Table:  s.table,
			})
		}
	})
	return err
}

// Close закрывает соединение; после возврата события не доставляются
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.subs = make(map[string]*Subscription)
	statusFn := c.statusFn
	c.mu.Unlock()

	var err error
	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = conn.Close()
		// Дожидаемся выхода цикла чтения, чтобы после Close
		// гарантированно не было доставки
		<-c.done
	}

	if statusFn != nil {
		statusFn(api.StatusClosed)
	}
	return err
}

// readLoop читает кадры с сервера и раздает их подписчикам
func (c *Client) readLoop() {
	defer close(c.done)

	for {
		var msg api.EventMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()

			if !closed && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("change feed connection lost", "error", err)
			}
			return
		}

		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg api.EventMessage) {
	// Служебный кадр со статусом подписки
	if msg.Status != "" {
		c.mu.Lock()
		statusFn := c.statusFn
		c.mu.Unlock()

		if statusFn != nil {
			statusFn(msg.Status)
		}
		return
	}

	c.mu.Lock()
	sub, ok := c.subs[msg.Ref]
	closed := c.closed
	c.mu.Unlock()

	// События закрытых подписок молча отбрасываются
	if closed || !ok {
		return
	}

	sub.handler(msg)
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}
