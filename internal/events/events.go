package events

// Топики, используемые ядром клиента
const (
	TopicLikeStateChanged = "likeStateChanged"
	TopicCarPosted        = "carPosted"
)

// LikeStateChanged публикуется после успешного like/unlike,
// чтобы все смонтированные списки машин применили одно и то же
// целевое состояние.
type LikeStateChanged struct {
	CarID   string // UUID объявления
	IsLiked bool   // целевое состояние, не toggle
}

// CarPosted публикуется после создания нового объявления.
// Несет только идентификатор — подписчики должны сделать refresh,
// чтобы получить полные данные.
type CarPosted struct {
	CarID string // UUID объявления
}
