package api

// Car представляет одно объявление в ответе сервера.
// Список приходит отсортированным по created_at (новые первыми),
// is_liked вычисляется сервером относительно переданного viewer id.
type Car struct {
	ID            string   `json:"id"`             // UUID объявления
	Make          string   `json:"make"`           // марка
	Model         string   `json:"model"`          // модель
	Year          int      `json:"year"`           // год выпуска
	Price         float64  `json:"price"`          // цена без валюты
	Mileage       int      `json:"mileage"`        // пробег
	Color         string   `json:"color"`          // цвет
	FuelType      string   `json:"fuel_type"`      // Petrol | Diesel | Electric | Hybrid
	Transmission  string   `json:"transmission"`   // Manual | Automatic
	BodyType      string   `json:"body_type"`      // тип кузова
	Description   string   `json:"description"`    // описание
	Location      string   `json:"location"`       // местоположение
	VideoURLs     []string `json:"video_urls"`     // видео в порядке показа
	ImageURLs     []string `json:"image_urls"`     // фото в порядке показа, первое — главное
	LikesCount    int      `json:"likes_count"`    // количество лайков
	CommentsCount int      `json:"comments_count"` // количество комментариев
	IsLiked       bool     `json:"is_liked"`       // лайкнул ли текущий viewer
	SellerID      string   `json:"seller_id"`      // UUID продавца (прозрачно для клиента)
	CreatedAt     string   `json:"created_at"`     // ISO-8601, неизменяемое
}

// LikeRow представляет строку таблицы likes в change feed
type LikeRow struct {
	ID        string `json:"id"`         // UUID лайка
	CarID     string `json:"car_id"`     // UUID объявления
	UserID    string `json:"user_id"`    // UUID пользователя
	CreatedAt string `json:"created_at"` // ISO-8601
}

// CarRow представляет строку таблицы cars в change feed.
// Feed событие несет только идентификатор — полные данные
// получаются повторным fetch.
type CarRow struct {
	ID     string `json:"id"`     // UUID объявления
	Status string `json:"status"` // active | sold | inactive
}

// CreateLikeRequest представляет запрос на создание лайка
type CreateLikeRequest struct {
	CarID  string `json:"car_id"`  // UUID объявления
	UserID string `json:"user_id"` // UUID пользователя
}
