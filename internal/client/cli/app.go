package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/anonid/internal/client/client"
	"github.com/dmitrijs2005/anonid/internal/client/config"
	"github.com/dmitrijs2005/anonid/internal/client/services"
	"github.com/dmitrijs2005/anonid/internal/logging"
	"github.com/sasha-s/go-deadlock"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	onlineCheckInterval = 10 * time.Second
	progressInterval    = 500 * time.Millisecond
)

type App struct {
	config *config.Config
	client client.Client
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mu       deadlock.Mutex
	mode     Mode
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogLevel, "text", os.Stderr)
	if err != nil {
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		client: apiClient,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log().Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) log() logging.Logger {
	if a.logger == nil {
		return logging.Nop{}
	}
	return a.logger
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var parts []string
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if a.mode != "" {
		parts = append(parts, string(a.mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Run starts the connectivity watcher and the REPL. It returns when the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	fmt.Fprintln(a.out, "anonid client (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// requestContext bounds a single round trip by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// miningService returns a miner that reports progress on a terminal. The
// returned stop func must be called once mining ends.
func (a *App) miningService() (*services.MiningService, func()) {
	opts := services.MineOptions{
		Workers:        a.config.Workers,
		Timeout:        a.config.MineTimeout,
		RequestTimeout: a.config.RequestTimeout,
	}

	stop := func() {}
	if f, ok := a.out.(*os.File); ok && isTerminal(int(f.Fd())) {
		p := newProgressReporter(a.out, progressInterval)
		opts.Progress = p.Add
		p.Start()
		stop = p.Stop
	}

	return services.NewMiningService(a.client, a.log(), opts), stop
}
