// Package syncer keeps the mapping store aligned with the host catalog. It
// consumes catalog change events and runs full catalog scans to backfill
// mappings for items added while the server was down.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/errors"
	"github.com/permalinkapp/permalink-server/internal/service"
)

const (
	eventBuffer      = 256
	progressInterval = 100
)

// ScanResult summarizes one full catalog scan.
type ScanResult struct {
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Generated int           `json:"generated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Worker processes catalog events and runs full scans. A single worker
// goroutine drains the event queue; scans run on the caller's goroutine and
// are serialized among themselves.
type Worker struct {
	service  *service.MappingService
	source   catalog.Source
	settings service.SettingsFunc
	logger   *slog.Logger

	events chan catalog.Event
	cancel context.CancelFunc
	wg     sync.WaitGroup

	scanMu sync.Mutex
}

// NewWorker creates a sync worker. Call Start before sending events.
func NewWorker(svc *service.MappingService, source catalog.Source, settings service.SettingsFunc, log *slog.Logger) *Worker {
	return &Worker{
		service:  svc,
		source:   source,
		settings: settings,
		logger:   log.With("component", "syncer"),
		events:   make(chan catalog.Event, eventBuffer),
	}
}

// Start launches the event loop.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	w.logger.Info("sync worker started")
}

// Stop shuts the event loop down and waits for in-flight work.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("sync worker stopped")
}

// Notify enqueues a catalog event. When the queue is full the event is
// dropped; a later full scan picks the item up.
func (w *Worker) Notify(event catalog.Event) {
	select {
	case w.events <- event:
	default:
		w.logger.Warn("event queue full, dropping event",
			"eventType", event.Type.String(),
			"itemId", event.Item.ID)
	}
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.events:
			w.handleEvent(ctx, event)
		}
	}
}

// handleEvent backfills a mapping for the event's item. Added and updated
// events are treated the same: generation is idempotent, so an updated item
// that already has a mapping keeps it.
func (w *Worker) handleEvent(ctx context.Context, event catalog.Event) {
	if !w.settings().AutoGenerate {
		w.logger.Debug("auto-generate disabled, ignoring event",
			"eventType", event.Type.String(),
			"itemId", event.Item.ID)
		return
	}

	_, created, err := w.service.GenerateForItem(ctx, event.Item)
	if err != nil {
		w.logEventError(event, err)
		return
	}
	if created {
		w.logger.Debug("mapping generated from event",
			"eventType", event.Type.String(),
			"itemId", event.Item.ID)
	}
}

func (w *Worker) logEventError(event catalog.Event, err error) {
	if errors.Is(err, errors.ErrUnsupported) {
		w.logger.Debug("event item has no applicable URL template",
			"eventType", event.Type.String(),
			"itemId", event.Item.ID)
		return
	}
	w.logger.Warn("failed to process catalog event",
		"eventType", event.Type.String(),
		"itemId", event.Item.ID,
		"error", err)
}

// Scan walks the entire catalog and generates missing mappings. Existing
// mappings are left untouched, so repeated scans converge to the same state.
// A failure on one item never aborts the scan; only a failed walk does.
func (w *Worker) Scan(ctx context.Context) (ScanResult, error) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	result := ScanResult{RunID: uuid.NewString()}
	start := time.Now()

	w.logger.Info("catalog scan started", "runId", result.RunID)

	err := w.source.Walk(ctx, func(item domain.CatalogItem) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		result.Processed++

		_, created, genErr := w.service.GenerateForItem(ctx, item)
		switch {
		case genErr == nil:
			if created {
				result.Generated++
			}
		case errors.Is(genErr, errors.ErrUnsupported):
			result.Skipped++
		default:
			result.Failed++
			w.logger.Warn("failed to map item during scan",
				"runId", result.RunID,
				"itemId", item.ID,
				"error", genErr)
		}

		if result.Processed%progressInterval == 0 {
			w.logger.Info("catalog scan progress",
				"runId", result.RunID,
				"processed", result.Processed,
				"generated", result.Generated)
		}
		return nil
	})

	result.Duration = time.Since(start)
	if err != nil {
		w.logger.Error("catalog scan aborted",
			"runId", result.RunID,
			"processed", result.Processed,
			"error", err)
		return result, errors.Internal("catalog scan failed").WithCause(err)
	}

	w.logger.Info("catalog scan finished",
		"runId", result.RunID,
		"processed", result.Processed,
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration.Round(time.Millisecond))

	return result, nil
}
