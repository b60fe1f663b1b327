package models

import "github.com/avtomarket/avtomarket/pkg/api"

// Типы топлива (закрытое множество)
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelElectric = "Electric"
	FuelHybrid   = "Hybrid"
)

// Типы коробки передач
const (
	TransmissionManual    = "Manual"
	TransmissionAutomatic = "Automatic"
)

// Типы кузова
const (
	BodySedan       = "Sedan"
	BodyHatchback   = "Hatchback"
	BodySUV         = "SUV"
	BodyCoupe       = "Coupe"
	BodyWagon       = "Wagon"
	BodyPickup      = "Pickup"
	BodyConvertible = "Convertible"
	BodyVan         = "Van"
)

// Car представляет одно объявление в памяти клиента.
// Идентификатор назначается сервером и никогда не переназначается;
// все инкрементальные изменения применяются merge-by-id.
type Car struct {
	ID            string   // UUID объявления
	Make          string   // марка
	Model         string   // модель
	Year          int      // год выпуска
	Price         float64  // цена без валюты
	Mileage       int      // пробег
	Color         string   // цвет
	FuelType      string   // Fuel* константа
	Transmission  string   // Transmission* константа
	BodyType      string   // Body* константа
	Description   string   // описание
	Location      string   // местоположение
	VideoURLs     []string // видео в порядке показа
	ImageURLs     []string // фото в порядке показа, первое — главное
	LikesCount    int      // количество лайков, всегда >= 0
	CommentsCount int      // количество комментариев
	IsLiked       bool     // лайкнул ли текущий viewer
	SellerID      string   // UUID продавца (прозрачно для клиента)
	CreatedAt     string   // ISO-8601, неизменяемое
}

// ApplyLikeState приводит лайк-состояние машины к явному целевому значению.
// Это единственная точка мутации is_liked/likes_count: дельта счетчика
// вычисляется относительно текущего IsLiked, поэтому повторное применение
// того же события ничего не меняет (идемпотентность при replay), а
// декремент ниже нуля ограничивается нулем.
// Возвращает true, если состояние действительно изменилось.
func (c *Car) ApplyLikeState(liked bool) bool {
	if c.IsLiked == liked {
		return false
	}

	c.IsLiked = liked
	if liked {
		c.LikesCount++
	} else {
		c.LikesCount--
		if c.LikesCount < 0 {
			c.LikesCount = 0
		}
	}
	return true
}

// Clone создает глубокую копию объявления
func (c *Car) Clone() Car {
	clone := *c

	clone.VideoURLs = make([]string, len(c.VideoURLs))
	copy(clone.VideoURLs, c.VideoURLs)

	clone.ImageURLs = make([]string, len(c.ImageURLs))
	copy(clone.ImageURLs, c.ImageURLs)

	return clone
}

// CarFromAPI конвертирует wire-представление в доменную модель
func CarFromAPI(c api.Car) Car {
	car := Car{
		ID:            c.ID,
		Make:          c.Make,
		Model:         c.Model,
		Year:          c.Year,
		Price:         c.Price,
		Mileage:       c.Mileage,
		Color:         c.Color,
		FuelType:      c.FuelType,
		Transmission:  c.Transmission,
		BodyType:      c.BodyType,
		Description:   c.Description,
		Location:      c.Location,
		LikesCount:    c.LikesCount,
		CommentsCount: c.CommentsCount,
		IsLiked:       c.IsLiked,
		SellerID:      c.SellerID,
		CreatedAt:     c.CreatedAt,
	}

	car.VideoURLs = make([]string, len(c.VideoURLs))
	copy(car.VideoURLs, c.VideoURLs)

	car.ImageURLs = make([]string, len(c.ImageURLs))
	copy(car.ImageURLs, c.ImageURLs)

	// Счетчик лайков не бывает отрицательным даже если сервер прислал мусор
	if car.LikesCount < 0 {
		car.LikesCount = 0
	}

	return car
}
