package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/core/ports"
	"github.com/loanlens/analysis-api/internal/infrastructure/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// AuditDispatcher persists analysis audit records off the request path using
// a fixed pool of workers sharing one buffered channel.
type AuditDispatcher struct {
	records chan domain.AnalysisAudit
	repo    ports.AuditRepository
	workers int
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &AuditDispatcher{
		records: make(chan domain.AnalysisAudit, channelBuffer),
		repo:    repo,
		workers: numWorkers,
		log:     log,
	}
}

// Start launches the worker goroutines. Workers exit once ctx is cancelled
// and the buffered records have been drained, or after Close.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Record enqueues an audit record without blocking. When the buffer is full
// the record is dropped and counted.
func (d *AuditDispatcher) Record(audit domain.AnalysisAudit) {
	select {
	case d.records <- audit:
		metrics.AuditQueueDepth.Set(float64(len(d.records)))
	default:
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("request_id", audit.RequestID).Msg("audit queue full, record dropped")
	}
}

// Close stops accepting records and waits for the workers to drain the queue.
// Record must not be called after Close.
func (d *AuditDispatcher) Close() {
	close(d.records)
	d.wg.Wait()
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id)
			return
		case audit, ok := <-d.records:
			if !ok {
				return
			}
			d.store(id, audit)
		}
	}
}

func (d *AuditDispatcher) drain(id int) {
	for {
		select {
		case audit, ok := <-d.records:
			if !ok {
				return
			}
			d.store(id, audit)
		default:
			return
		}
	}
}

// store uses its own deadline so records still persist while the server
// context is shutting down.
func (d *AuditDispatcher) store(id int, audit domain.AnalysisAudit) {
	metrics.AuditQueueDepth.Set(float64(len(d.records)))

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := d.repo.InsertAnalysis(ctx, &audit); err != nil {
		metrics.AuditRecordsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("request_id", audit.RequestID).
			Int("worker_id", id).
			Msg("audit record persistence failed")
		return
	}
	metrics.AuditRecordsTotal.WithLabelValues("stored").Inc()
}
