package api

import "encoding/json"

// Типы событий row-level мутаций в change feed
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Статусы подписки change feed
const (
	StatusSubscribed   = "SUBSCRIBED"
	StatusUnsubscribed = "UNSUBSCRIBED"
	StatusClosed       = "CLOSED"
)

// SubscribeRequest представляет кадр подписки на таблицу.
// Filter задается в формате "column=eq.value" и применяется на сервере;
// пустой фильтр означает все строки таблицы.
type SubscribeRequest struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Ref    string `json:"ref"`    // клиентский идентификатор подписки
	Table  string `json:"table"`  // имя таблицы
	Filter string `json:"filter"` // серверный фильтр строк
}

// EventMessage представляет одно событие от сервера.
// Для INSERT заполнен New, для DELETE — Old, для UPDATE — оба.
type EventMessage struct {
	Ref       string          `json:"ref"`              // идентификатор подписки
	Table     string          `json:"table"`            // имя таблицы
	EventType string          `json:"event_type"`       // INSERT | UPDATE | DELETE
	Status    string          `json:"status,omitempty"` // заполнен для служебных кадров (SUBSCRIBED и т.п.)
	Old       json.RawMessage `json:"old,omitempty"`    // снимок строки до мутации
	New       json.RawMessage `json:"new,omitempty"`    // снимок строки после мутации
}
