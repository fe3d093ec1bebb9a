package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/repository"
	"github.com/neurevia/portal-gateway/internal/service"
)

const (
	defaultQueueSize = 256
	flushBatchSize   = 64
	flushInterval    = 2 * time.Second
)

// AuditWorker writes access log entries to Postgres in batches off the request path.
// With no repository it only logs.
type AuditWorker struct {
	repo   repository.AccessLogRepository
	logger *zap.Logger
	queue  chan domain.AccessLogEntry

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewAuditWorker sizes the queue; a non-positive size uses the default.
func NewAuditWorker(repo repository.AccessLogRepository, logger *zap.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &AuditWorker{
		repo:   repo,
		logger: logger.Named("audit_worker"),
		queue:  make(chan domain.AccessLogEntry, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// StartAuditWorker starts the worker loop and subscribes the audit service.
func StartAuditWorker(ctx context.Context, auditService *service.AuditService, w *AuditWorker) {
	if w == nil {
		return
	}
	go w.run(ctx)
	if auditService != nil {
		auditService.RegisterHandlers()
	}
}

// Enqueue hands an entry to the worker, reporting false when the queue is full.
func (w *AuditWorker) Enqueue(entry domain.AccessLogEntry) bool {
	select {
	case <-w.stop:
		return false
	default:
	}
	select {
	case w.queue <- entry:
		return true
	default:
		return false
	}
}

// Stop flushes what is queued and waits for the loop to exit or ctx to expire.
func (w *AuditWorker) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AuditWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]domain.AccessLogEntry, 0, flushBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.write(context.WithoutCancel(ctx), batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-w.queue:
			batch = append(batch, entry)
			if len(batch) >= flushBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.stop:
			w.drain(&batch)
			flush()
			return
		case <-ctx.Done():
			w.drain(&batch)
			flush()
			return
		}
	}
}

func (w *AuditWorker) drain(batch *[]domain.AccessLogEntry) {
	for {
		select {
		case entry := <-w.queue:
			*batch = append(*batch, entry)
		default:
			return
		}
	}
}

func (w *AuditWorker) write(ctx context.Context, batch []domain.AccessLogEntry) {
	if w.repo == nil {
		for _, e := range batch {
			w.logger.Info("access",
				zap.String("kind", string(e.Kind)),
				zap.String("path", e.Path),
				zap.String("action", e.Action),
				zap.String("username", e.Username))
		}
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := w.repo.CreateBatch(writeCtx, batch); err != nil {
		w.logger.Error("persist access log failed", zap.Int("entries", len(batch)), zap.Error(err))
	}
}
