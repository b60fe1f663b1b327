package cli

import (
	"context"

	"github.com/avtomarket/avtomarket/internal/models"
)

// runList загружает ленту объявлений и печатает ее
func (c *Cli) runList(ctx context.Context) error {
	if _, err := c.syncViewer(ctx); err != nil {
		return err
	}

	c.printCars(c.store.Cars())
	return nil
}

// runRefresh перечитывает ленту для уже установленного viewer
func (c *Cli) runRefresh(ctx context.Context) error {
	if _, err := c.syncViewer(ctx); err != nil {
		return err
	}

	if err := c.store.Refresh(ctx); err != nil {
		return err
	}

	c.printCars(c.store.Cars())
	return nil
}

func (c *Cli) printCars(list []models.Car) {
	if len(list) == 0 {
		c.io.Println("No cars found")
		return
	}

	for _, car := range list {
		liked := " "
		if car.IsLiked {
			liked = "*"
		}
		c.io.Printf("%s [%s] %s %s %d, %.0f, %s (likes: %d)\n",
			liked, car.ID, car.Make, car.Model, car.Year, car.Price, car.Location, car.LikesCount)
	}
}
