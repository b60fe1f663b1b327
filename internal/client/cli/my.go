package cli

import (
	"context"
	"fmt"

	"github.com/avtomarket/avtomarket/internal/models"
)

// runMy печатает объявления текущего пользователя
func (c *Cli) runMy(ctx context.Context) error {
	session, err := c.syncViewer(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("login required")
	}

	rows, err := c.apiClient.GetUserCars(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to load own cars: %w", err)
	}

	list := make([]models.Car, 0, len(rows))
	for _, row := range rows {
		list = append(list, models.CarFromAPI(row))
	}

	c.printCars(list)
	return nil
}
