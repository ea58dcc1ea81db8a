package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
)

// NewService builds a pipeline service from the loaded configuration.
// Callers must Close the returned service.
func NewService() (*pipeline.Service, error) {
	cfg, err := config.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration; %w", err)
	}

	svc, err := pipeline.New(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline; %w", err)
	}
	return svc, nil
}

// SignalContext returns a context canceled on SIGINT or SIGTERM so that a long
// stage stops after its current request.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
