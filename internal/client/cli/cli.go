package cli

import (
	"context"
	"fmt"

	clientapi "github.com/avtomarket/avtomarket/internal/client/api"
	"github.com/avtomarket/avtomarket/internal/client/auth"
	"github.com/avtomarket/avtomarket/internal/client/cars"
	"github.com/avtomarket/avtomarket/internal/client/iocli"
	"github.com/avtomarket/avtomarket/internal/client/storage"
	"github.com/avtomarket/avtomarket/internal/client/viewgate"
)

// Cli связывает команды с ядром клиента
type Cli struct {
	io          iocli.IO
	apiClient   clientapi.ClientAPI
	authService auth.Service
	store       *cars.Store
	gate        *viewgate.Gate
}

// New создает Cli с готовыми зависимостями
func New(
	io iocli.IO,
	apiClient clientapi.ClientAPI,
	authService auth.Service,
	store *cars.Store,
	gate *viewgate.Gate,
) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
		store:       store,
		gate:        gate,
	}
}

// Run выполняет одну команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "list":
		return c.runList(ctx)
	case "my":
		return c.runMy(ctx)
	case "like":
		return c.runLike(ctx, args)
	case "view":
		return c.runView(ctx, args)
	case "refresh":
		return c.runRefresh(ctx)
	case "watch":
		return c.runWatch(ctx)
	default:
		PrintUsage(c.io)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// PrintUsage печатает справку по командам
func PrintUsage(io iocli.IO) {
	io.Println("Usage: avtomarket <command> [args]")
	io.Println("")
	io.Println("Commands:")
	io.Println("  login            Sign in with email and password")
	io.Println("  logout           Sign out and clear the local session")
	io.Println("  status           Show session and view counter state")
	io.Println("  list             Fetch and print the car listings")
	io.Println("  my               Print the current user's own listings")
	io.Println("  like <car-id>    Like (or unlike, with confirmation) a car")
	io.Println("  view <car-id>    Record a car view")
	io.Println("  refresh          Re-fetch the car listings")
	io.Println("  watch            Follow live updates until interrupted")
}

// syncViewer подтягивает текущую сессию в store (анонимно, если ее нет)
func (c *Cli) syncViewer(ctx context.Context) (*auth.Session, error) {
	session, err := c.authService.Current(ctx)
	if err != nil {
		if err == storage.ErrAuthNotFound {
			return nil, c.store.SetViewer(ctx, nil)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	return session, c.store.SetViewer(ctx, session)
}

// ioPrompter адаптирует iocli.IO под cars.Prompter
type ioPrompter struct {
	io iocli.IO
}

// NewPrompter создает cars.Prompter поверх терминального IO
func NewPrompter(io iocli.IO) cars.Prompter {
	return &ioPrompter{io: io}
}

func (p *ioPrompter) Confirm(ctx context.Context, title, message string) (bool, error) {
	p.io.Println(title)
	return p.io.Confirm(message)
}
