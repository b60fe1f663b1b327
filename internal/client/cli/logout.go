package cli

import "context"

// runLogout закрывает сессию и очищает локальное состояние
func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		return err
	}

	c.io.Println("Logged out")
	return nil
}
