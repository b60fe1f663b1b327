package cli

import (
	"context"
	"fmt"
	"strings"
)

// runLogin запрашивает учетные данные и открывает сессию
func (c *Cli) runLogin(ctx context.Context) error {
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	session, err := c.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	// После входа анонимный счетчик просмотров больше не нужен
	c.gate.ResetViewedCount(ctx)

	c.io.Printf("Logged in as %s\n", session.Email)
	return nil
}
