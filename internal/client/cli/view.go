package cli

import (
	"context"
	"fmt"
)

// runView фиксирует просмотр объявления.
// Для анонимного посетителя продвигает счетчик до порога показа логина.
func (c *Cli) runView(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: view <car-id>")
	}
	carID := args[0]

	session, err := c.syncViewer(ctx)
	if err != nil {
		return err
	}

	if err := c.store.View(ctx, carID); err != nil {
		return err
	}

	if session != nil {
		return nil
	}

	c.gate.Load(ctx)
	c.gate.IncrementViewedCount(ctx)
	c.io.Printf("Anonymous views: %d\n", c.gate.ViewedCount())
	if c.gate.ShouldShowLogin() {
		c.io.Println("Sign in to keep browsing")
	}
	return nil
}
