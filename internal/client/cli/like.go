package cli

import (
	"context"
	"fmt"
)

// runLike переключает лайк на объявлении (unlike требует подтверждения)
func (c *Cli) runLike(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: like <car-id>")
	}
	carID := args[0]

	session, err := c.syncViewer(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("login required to like cars")
	}

	if err := c.store.Like(ctx, carID); err != nil {
		return err
	}

	for _, car := range c.store.Cars() {
		if car.ID == carID {
			if car.IsLiked {
				c.io.Printf("Liked %s %s (likes: %d)\n", car.Make, car.Model, car.LikesCount)
			} else {
				c.io.Printf("Like removed from %s %s (likes: %d)\n", car.Make, car.Model, car.LikesCount)
			}
			return nil
		}
	}

	c.io.Printf("Car %s is not in the current list\n", carID)
	return nil
}
