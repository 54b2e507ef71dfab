package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Server is anything pkg/app can start and stop as part of the process
// lifecycle: the HTTP server, the background job runner, etc.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type App struct {
	name    string
	servers []Server
}

type Option func(*App)

func WithServer(servers ...Server) Option {
	return func(a *App) { a.servers = append(a.servers, servers...) }
}

func WithName(name string) Option {
	return func(a *App) { a.name = name }
}

func NewApp(opts ...Option) *App {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts every registered server and blocks until an OS signal arrives,
// then stops them in reverse registration order.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, len(a.servers))
	for _, srv := range a.servers {
		srv := srv
		go func() {
			if err := srv.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.stopAll(ctx)
		return err
	case <-sigCh:
	}

	a.stopAll(ctx)
	return nil
}

func (a *App) stopAll(ctx context.Context) {
	for i := len(a.servers) - 1; i >= 0; i-- {
		_ = a.servers[i].Stop(ctx)
	}
}
