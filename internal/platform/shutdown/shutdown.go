package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/pvp-rankings-backend/pkg/lifecycle"
	"github.com/rs/zerolog/log"
)

// Default phase timeouts.
const (
	HTTPTimeout     = 15 * time.Second
	GracefulTimeout = 30 * time.Second
	ForcefulTimeout = 1 * time.Second
)

// Closer releases one resource after all services have stopped.
type Closer struct {
	Name  string
	Close func() error
}

// Coordinator runs the shutdown sequence: HTTP server first, then background
// services in two phases, then the closers in registration order.
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager

	HTTPTimeout     time.Duration
	GracefulTimeout time.Duration
	ForcefulTimeout time.Duration

	closers []Closer
}

func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		HTTPTimeout:     HTTPTimeout,
		GracefulTimeout: GracefulTimeout,
		ForcefulTimeout: ForcefulTimeout,
	}
}

// OnClose registers a resource to release at the end of shutdown.
func (c *Coordinator) OnClose(name string, fn func() error) {
	c.closers = append(c.closers, Closer{Name: name, Close: fn})
}

// ListenForSignalsAndShutdown blocks until SIGINT or SIGTERM, then shuts down.
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	c.Shutdown(server)
}

// Shutdown runs the sequence once. server may be nil.
// It returns the services that were still running after both phases.
func (c *Coordinator) Shutdown(server *http.Server) []string {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.HTTPTimeout)
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http server shutdown")
		} else {
			log.Info().Msg("http server stopped")
		}
		cancel()
	}

	// --- Phase 1: graceful ---
	log.Info().Dur("timeout", c.GracefulTimeout).Msg("waiting for background services")
	c.GracefulManager.Shutdown()
	remaining := c.GracefulManager.WaitWithTimeout(c.GracefulTimeout)

	// --- Phase 2: forceful ---
	if len(remaining) > 0 {
		log.Warn().Strs("services", remaining).Msg("graceful phase timed out, forcing stop")
		c.ForcefulManager.Shutdown()
		remaining = c.ForcefulManager.WaitWithTimeout(c.ForcefulTimeout)
		if len(remaining) > 0 {
			log.Error().Strs("services", remaining).Msg("services did not stop")
		}
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Str("resource", closer.Name).Msg("close failed")
		}
	}

	log.Info().Msg("shutdown complete")
	return remaining
}
