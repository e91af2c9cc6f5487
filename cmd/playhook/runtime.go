package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mattjoyce/playhook/internal/api"
	"github.com/mattjoyce/playhook/internal/config"
	"github.com/mattjoyce/playhook/internal/events"
	"github.com/mattjoyce/playhook/internal/history"
	"github.com/mattjoyce/playhook/internal/player"
	"github.com/mattjoyce/playhook/internal/shellevents"
	"github.com/mattjoyce/playhook/internal/storage"
)

const (
	hubCapacity   = 256
	pruneInterval = time.Hour
)

var errRuntimeClosed = errors.New("playhook is shutting down")

// runtime is the set of components shared by start and fire.
type runtime struct {
	source     *player.Source
	dispatcher *shellevents.Dispatcher
	hub        *events.Hub
	history    *history.Store
	db         *sql.DB

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// newRuntime wires the dispatcher to a fresh source. Extra observers see every
// outcome after the hub and history store.
func newRuntime(ctx context.Context, cfg *config.Config, extra ...shellevents.Observer) (*runtime, error) {
	rt := &runtime{
		source: player.NewSource(),
		hub:    events.NewHub(hubCapacity),
	}

	opts := []shellevents.Option{shellevents.WithObserver(rt.hub)}
	if cfg.History.Enabled {
		db, err := storage.OpenSQLite(ctx, cfg.State.Path)
		if err != nil {
			return nil, fmt.Errorf("open history database: %w", err)
		}
		rt.db = db
		rt.history = history.NewStore(db)
		opts = append(opts, shellevents.WithObserver(rt.history))
	}
	for _, o := range extra {
		opts = append(opts, shellevents.WithObserver(o))
	}

	rt.dispatcher = shellevents.New(cfg.ShellEvents.Build(), opts...)
	rt.dispatcher.Register(rt.source)
	return rt, nil
}

// executionLister returns nil when history is disabled so the API answers 404.
func (rt *runtime) executionLister() api.ExecutionLister {
	if rt.history == nil {
		return nil
	}
	return rt.history
}

func (rt *runtime) runPruner(ctx context.Context, retention, interval time.Duration, logger *slog.Logger) {
	prune := func() {
		n, err := rt.history.Prune(ctx, retention)
		if err != nil {
			logger.Error("failed to prune execution history", "error", err)
			return
		}
		if n > 0 {
			logger.Info("pruned execution history", "deleted", n, "retention", retention)
		}
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

// Deliver hands ev to the source. Close waits for deliveries in progress, so
// their outcomes still reach the history store.
func (rt *runtime) Deliver(ev player.Event) error {
	rt.mu.RLock()
	if rt.closed {
		rt.mu.RUnlock()
		return errRuntimeClosed
	}
	rt.inflight.Add(1)
	rt.mu.RUnlock()
	defer rt.inflight.Done()

	return rt.source.Deliver(ev)
}

// Close rejects new deliveries, waits for running ones, then closes storage.
func (rt *runtime) Close() error {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return nil
	}
	rt.closed = true
	rt.mu.Unlock()

	rt.inflight.Wait()
	if rt.db == nil {
		return nil
	}
	return rt.db.Close()
}
