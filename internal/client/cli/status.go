package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/avtomarket/avtomarket/internal/client/storage"
)

// runStatus печатает состояние сессии и счетчика анонимных просмотров
func (c *Cli) runStatus(ctx context.Context) error {
	session, err := c.authService.Current(ctx)
	if err != nil {
		if err != storage.ErrAuthNotFound {
			return fmt.Errorf("failed to read session: %w", err)
		}

		c.gate.Load(ctx)
		c.io.Println("Not logged in")
		c.io.Printf("Anonymous views: %d\n", c.gate.ViewedCount())
		if c.gate.ShouldShowLogin() {
			c.io.Println("Sign in to keep browsing")
		}
		return nil
	}

	c.io.Printf("Logged in as %s (%s)\n", session.Email, session.UserID)
	if !session.Valid() {
		c.io.Println("Session expired, run login again")
	} else {
		c.io.Printf("Session expires at %s\n", time.Unix(session.ExpiresAt, 0).Format(time.RFC3339))
	}
	return nil
}
