package recon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vdakb/docker-sub018/internal/logging"
)

var (
	// ErrClosed is returned when records are offered to a finished handler.
	ErrClosed = errors.New("recon: handler closed")
	// ErrFinished is returned when Finish is called more than once.
	ErrFinished = errors.New("recon: handler already finished")
	// ErrDrainTimeout is returned when outstanding submissions do not
	// complete within the drain timeout.
	ErrDrainTimeout = errors.New("recon: drain timeout exceeded")
)

// Submission carries the audit correlation context of one batch.
type Submission struct {
	JobID   string
	JobName string
}

// Failure records the rejection of a single event within a batch.
type Failure struct {
	Index int
	Err   error
}

// Result is the per-batch outcome of a bulk submission.
type Result struct {
	Succeeded int
	Failed    []Failure
}

// Sink is the bulk event submission facade of the system of record.
// Individual event rejections are reported in the Result; an error return
// means the batch as a whole could not be submitted.
type Sink interface {
	Submit(ctx context.Context, meta Submission, events []*Event) (Result, error)
}

// tally aggregates submission outcomes across batches.
type tally struct {
	mu        sync.Mutex
	succeeded int
	failed    []Failure
}

func (t *tally) record(meta Submission, result Result, err error, size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		// infrastructure failure, the whole batch counts as not submitted
		t.failed = append(t.failed, Failure{Index: -1, Err: err})
		logging.Error("batch submission failed", "job", meta.JobID, "events", size, "err", err)
		return
	}
	t.succeeded += result.Succeeded
	t.failed = append(t.failed, result.Failed...)
	for _, f := range result.Failed {
		logging.Warn("event rejected", "job", meta.JobID, "index", f.Index, "err", f.Err)
	}
}

func (t *tally) result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	failed := make([]Failure, len(t.failed))
	copy(failed, t.failed)
	return Result{Succeeded: t.succeeded, Failed: failed}
}

// Batch accumulates assembled events in a bounded pool and hands each full
// pool to an asynchronous submission. Event construction happens on the
// calling goroutine, so malformed records surface at enqueue time.
//
// A Batch is OPEN until Finish is called; Handle is rejected afterwards.
// Handle and Finish must be called from a single producer goroutine.
type Batch struct {
	sink    Sink
	meta    Submission
	size    int
	timeout time.Duration

	pool []*Event
	slot int

	wg      sync.WaitGroup
	stopped atomic.Bool
	closed  bool

	tally tally
}

// NewBatch returns an open handler flushing every size events. The timeout
// bounds the drain in Finish.
func NewBatch(sink Sink, meta Submission, size int, timeout time.Duration) *Batch {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &Batch{
		sink:    sink,
		meta:    meta,
		size:    size,
		timeout: timeout,
		pool:    make([]*Event, 0, size),
	}
}

// Handle accepts one assembled event into the pool, flushing when the pool
// is full. It reports whether the producer should keep feeding records.
func (b *Batch) Handle(ctx context.Context, event *Event) (bool, error) {
	if b.closed {
		return false, ErrClosed
	}
	b.pool = append(b.pool, event)
	b.slot++
	logging.Debug("pooled event", "job", b.meta.JobID, "slot", b.slot)
	if b.slot == b.size {
		b.flush(ctx)
	}
	return !b.Stopped(), nil
}

// flush hands the current pool to an asynchronous submission. Ownership of
// the snapshot transfers to the worker; the producer continues on a fresh
// pool.
func (b *Batch) flush(ctx context.Context) {
	if b.slot == 0 {
		return
	}
	snapshot := b.pool
	b.pool = make([]*Event, 0, b.size)
	b.slot = 0
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		logging.Info("submitting batch", "job", b.meta.JobID, "name", b.meta.JobName, "events", len(snapshot))
		result, err := b.sink.Submit(ctx, b.meta, snapshot)
		b.tally.record(b.meta, result, err, len(snapshot))
	}()
}

// Finish flushes the partial pool and blocks until every outstanding
// submission completed or the drain timeout elapsed. A second call is an
// illegal state.
func (b *Batch) Finish(ctx context.Context) (Result, error) {
	if b.closed {
		return Result{}, ErrFinished
	}
	b.closed = true
	b.flush(ctx)
	if err := wait(&b.wg, b.timeout); err != nil {
		return b.tally.result(), err
	}
	result := b.tally.result()
	logging.Info("reconciliation finished", "job", b.meta.JobID, "succeeded", result.Succeeded, "failed", len(result.Failed))
	return result, nil
}

// Stop requests cooperative cancellation. In-flight submissions are not
// rolled back; only future enqueuing halts.
func (b *Batch) Stop() { b.stopped.Store(true) }

// Stopped reports whether cancellation was requested.
func (b *Batch) Stopped() bool { return b.stopped.Load() }

func wait(wg *sync.WaitGroup, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w after %s", ErrDrainTimeout, timeout)
	}
}
