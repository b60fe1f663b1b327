package cli

import (
	"context"
	"reflect"
	"time"
)

// watchPollInterval — шаг сверки снимка при watch.
// Мутации приходят асинхронно из change feed и шины, поэтому CLI
// просто перепечатывает список, когда видит другой снимок.
const watchPollInterval = 2 * time.Second

// runWatch печатает ленту и следует за live-обновлениями до прерывания
func (c *Cli) runWatch(ctx context.Context) error {
	if _, err := c.syncViewer(ctx); err != nil {
		return err
	}

	last := c.store.Cars()
	c.printCars(last)
	c.io.Println("Watching for updates, Ctrl+C to stop")

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current := c.store.Cars()
			if reflect.DeepEqual(current, last) {
				continue
			}
			last = current
			c.io.Println("")
			c.printCars(current)
		}
	}
}
