package cars

import (
	"context"
	"log/slog"

	"github.com/avtomarket/avtomarket/internal/client/feed"
)

//go:generate moq -out interfaces_mock.go . Prompter Reporter FeedSource

// Prompter запрашивает у пользователя подтверждение деструктивного
// действия (снятие лайка). Реализация — внешний UI collaborator.
type Prompter interface {
	// Confirm возвращает true только при явном согласии пользователя
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// Reporter принимает ошибки для внешней системы отчетности.
// Fire-and-forget: реализация не должна паниковать и возвращать
// ошибки обратно в ядро.
type Reporter interface {
	Report(err error, context map[string]any)
}

// FeedSub представляет одну открытую подписку change feed
type FeedSub interface {
	Close() error
}

// FeedSource абстрагирует транспорт change feed, чтобы store можно
// было тестировать без живого websocket соединения
type FeedSource interface {
	Subscribe(table, filter string, handler feed.Handler) (FeedSub, error)
}

// logReporter пишет ошибки в структурированный лог
type logReporter struct {
	logger *slog.Logger
}

// NewLogReporter создает Reporter поверх slog
func NewLogReporter(logger *slog.Logger) Reporter {
	return &logReporter{logger: logger}
}

func (r *logReporter) Report(err error, context map[string]any) {
	attrs := make([]any, 0, 2+2*len(context))
	attrs = append(attrs, "error", err)
	for k, v := range context {
		attrs = append(attrs, k, v)
	}
	r.logger.Error("reported error", attrs...)
}
