package recon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vdakb/docker-sub018/internal/descriptor"
	"github.com/vdakb/docker-sub018/internal/logging"
	"github.com/vdakb/docker-sub018/internal/object"
)

// Concurrent pools raw external objects and defers event construction to
// the worker alongside submission. Compared to Batch this keeps the
// producer free of transformation cost at the price of later validation;
// a record that fails to assemble surfaces on the worker, stops the task
// and counts against the batch.
type Concurrent struct {
	sink    Sink
	meta    Submission
	builder *EventBuilder

	descriptor    *descriptor.Descriptor
	endpoint      int64
	authoritative bool
	strict        bool

	size    int
	timeout time.Duration

	pool []*object.Object
	slot int

	wg      sync.WaitGroup
	stopped atomic.Bool
	closed  bool

	tally tally
}

func NewConcurrent(sink Sink, meta Submission, builder *EventBuilder, d *descriptor.Descriptor, endpoint int64, authoritative, strict bool, size int, timeout time.Duration) *Concurrent {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &Concurrent{
		sink:          sink,
		meta:          meta,
		builder:       builder,
		descriptor:    d,
		endpoint:      endpoint,
		authoritative: authoritative,
		strict:        strict,
		size:          size,
		timeout:       timeout,
		pool:          make([]*object.Object, 0, size),
	}
}

// Handle accepts one raw external object. It reports whether the producer
// should keep feeding records.
func (c *Concurrent) Handle(ctx context.Context, subject *object.Object) (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	c.pool = append(c.pool, subject)
	c.slot++
	if c.slot == c.size {
		c.flush(ctx)
	}
	return !c.Stopped(), nil
}

func (c *Concurrent) flush(ctx context.Context) {
	if c.slot == 0 {
		return
	}
	snapshot := c.pool
	c.pool = make([]*object.Object, 0, c.size)
	c.slot = 0
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		events := make([]*Event, 0, len(snapshot))
		for _, subject := range snapshot {
			event, err := c.builder.Build(c.endpoint, subject, c.descriptor, c.authoritative, c.strict)
			if err != nil {
				logging.Error("event assembly failed", "job", c.meta.JobID, "uid", subject.UIDValue(), "err", err)
				c.Stop()
				c.tally.record(c.meta, Result{}, err, 1)
				continue
			}
			events = append(events, event)
		}
		if len(events) == 0 {
			return
		}
		logging.Info("submitting batch", "job", c.meta.JobID, "name", c.meta.JobName, "events", len(events))
		result, err := c.sink.Submit(ctx, c.meta, events)
		c.tally.record(c.meta, result, err, len(events))
	}()
}

// Finish flushes the partial pool and drains outstanding workers. A second
// call is an illegal state.
func (c *Concurrent) Finish(ctx context.Context) (Result, error) {
	if c.closed {
		return Result{}, ErrFinished
	}
	c.closed = true
	c.flush(ctx)
	if err := wait(&c.wg, c.timeout); err != nil {
		return c.tally.result(), err
	}
	result := c.tally.result()
	logging.Info("reconciliation finished", "job", c.meta.JobID, "succeeded", result.Succeeded, "failed", len(result.Failed))
	return result, nil
}

func (c *Concurrent) Stop() { c.stopped.Store(true) }

func (c *Concurrent) Stopped() bool { return c.stopped.Load() }
