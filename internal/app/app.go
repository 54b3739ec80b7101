// Package app wires configuration, the node session and the contract
// plumbing shared by quorumctl and the loan backend.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"quorumkit/internal/config"
	"quorumkit/internal/contract"
	"quorumkit/internal/deploy"
	"quorumkit/internal/ledger"
	"quorumkit/internal/ledger/retry"
	"quorumkit/internal/node"
	"quorumkit/internal/services"
	"quorumkit/internal/storage"
)

// App holds everything a command needs to talk to the node
type App struct {
	Config     *config.Config
	Session    *node.Session
	Repository storage.Repository
	Journal    *storage.Journal
	Dispatcher *contract.Dispatcher
	Poller     *ledger.Poller
	Deployer   *deploy.Deployer
}

// SetupLogger installs the default slog text logger at the given level
func SetupLogger(level string, w io.Writer) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// New dials the configured node and builds the application
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	endpoint, err := node.ParseEndpoint(cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	backend, err := node.Dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	a, err := NewWithBackend(ctx, cfg, backend, endpoint)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return a, nil
}

// NewWithBackend builds the application on an existing backend
func NewWithBackend(ctx context.Context, cfg *config.Config, backend node.Backend, endpoint node.Endpoint) (*App, error) {
	session, err := node.NewSession(ctx, backend, endpoint, node.Options{Identity: cfg.DefaultAccount})
	if err != nil {
		return nil, err
	}

	if cfg.AccountPassword != "" {
		duration := time.Duration(cfg.UnlockSeconds) * time.Second
		if err := session.Unlock(ctx, session.Sender(), cfg.AccountPassword, duration); err != nil {
			slog.Warn("Failed to unlock account, continuing", "account", session.Sender().Hex(), "error", err)
		}
	}

	repository, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	journal := storage.NewJournal(repository)

	dispatcher := contract.NewDispatcher(backend,
		contract.WithGasLimit(uint64(cfg.GasLimit)),
		contract.WithGasBuffer(uint64(cfg.GasBufferPercent)),
		contract.WithRecorder(journal),
	)
	poller := ledger.NewPoller(backend, retry.NewStrategy(cfg.Poll),
		ledger.WithDeploymentStrategy(retry.NewStrategy(cfg.DeployPoll)),
		ledger.WithRecorder(journal),
	)

	return &App{
		Config:     cfg,
		Session:    session,
		Repository: repository,
		Journal:    journal,
		Dispatcher: dispatcher,
		Poller:     poller,
		Deployer:   deploy.NewDeployer(dispatcher, poller, journal),
	}, nil
}

// Client returns the service client for the session's default sender
func (a *App) Client() services.Client {
	return services.Client{
		Dispatcher: a.Dispatcher,
		Poller:     a.Poller,
		Sender:     a.Session.Sender(),
	}
}

// Close releases the journal and the node connection
func (a *App) Close() {
	if err := a.Repository.Close(); err != nil {
		slog.Warn("Failed to close journal", "error", err)
	}
	a.Session.Close()
}
