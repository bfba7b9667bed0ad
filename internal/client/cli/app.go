package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/client/client"
	"github.com/dmitrijs2005/visitorhub/internal/client/config"
	"github.com/dmitrijs2005/visitorhub/internal/client/session"
)

// SessionStore keeps the last login between runs.
type SessionStore interface {
	Load(ctx context.Context) (session.Session, error)
	Save(ctx context.Context, username, token string) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	config   *config.Config
	api      client.Client
	sessions SessionStore
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp dials the server and opens the session store. A store that cannot
// be opened only disables remembering logins.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	apiClient, err := client.NewVisitorClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	var sessions SessionStore
	if s, err := session.Open(ctx, c.SessionDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logins will not be remembered: %v\n", err)
	} else {
		sessions = s
	}

	return newApp(c, apiClient, sessions, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api client.Client, sessions SessionStore, in io.Reader, out io.Writer) *App {
	if c.Token != "" {
		api.SetToken(c.Token)
	}
	return &App{config: c, api: api, sessions: sessions, reader: bufio.NewReader(in), out: out}
}

// Run executes the command in args, or starts the REPL when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.close()

	a.restoreSession(ctx)

	if len(args) > 0 {
		return a.Exec(ctx, args[0], args[1:])
	}
	a.Root(ctx)
	return nil
}

func (a *App) close() {
	_ = a.api.Close()
	if a.sessions != nil {
		_ = a.sessions.Close()
	}
}

// restoreSession picks up the saved login unless a token was configured.
func (a *App) restoreSession(ctx context.Context) {
	if a.sessions == nil || a.isLoggedIn() {
		return
	}
	s, err := a.sessions.Load(ctx)
	if err != nil || s.Token == "" {
		return
	}
	a.api.SetToken(s.Token)
	a.userName = s.Username
}

func (a *App) saveSession(ctx context.Context, username, token string) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Save(ctx, username, token); err != nil {
		fmt.Fprintf(a.out, "warning: session not saved: %v\n", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
