package recon

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vdakb/docker-sub018/internal/descriptor"
	"github.com/vdakb/docker-sub018/internal/logging"
	"github.com/vdakb/docker-sub018/internal/object"
)

// Inventory lists the account identifiers the system of record currently
// associates with an endpoint. The delete handler needs it to compute the
// complement of the scanned population.
type Inventory interface {
	Existing(ctx context.Context, endpoint int64) ([]string, error)
}

// Delete accumulates the identifiers of every object seen during a scan
// and, on Finish, issues delete events for every account known to the
// system of record that the scan never produced. It is not pooled; the
// complement can only be computed once the scan is complete.
type Delete struct {
	sink      Sink
	meta      Submission
	builder   *EventBuilder
	inventory Inventory

	descriptor *descriptor.Descriptor
	endpoint   int64

	matched map[string]struct{}
	stopped atomic.Bool
	closed  bool
}

func NewDelete(sink Sink, meta Submission, builder *EventBuilder, inventory Inventory, d *descriptor.Descriptor, endpoint int64) *Delete {
	return &Delete{
		sink:       sink,
		meta:       meta,
		builder:    builder,
		inventory:  inventory,
		descriptor: d,
		endpoint:   endpoint,
		matched:    make(map[string]struct{}),
	}
}

// Handle marks one scanned object as still existing on the endpoint. It
// reports whether the producer should keep feeding records.
func (h *Delete) Handle(ctx context.Context, subject *object.Object) (bool, error) {
	if h.closed {
		return false, ErrClosed
	}
	event, err := h.builder.Build(h.endpoint, subject, h.descriptor, false, false)
	if err != nil {
		h.Stop()
		return false, err
	}
	if uid, ok := event.Master.Get(h.descriptor.Identifier); ok {
		h.matched[fmt.Sprint(uid)] = struct{}{}
	} else if uid := subject.UIDValue(); uid != "" {
		h.matched[uid] = struct{}{}
	}
	return !h.Stopped(), nil
}

// Finish asks the system of record for the accounts of the endpoint and
// submits one delete event per account the scan never matched. A second
// call is an illegal state.
func (h *Delete) Finish(ctx context.Context) (Result, error) {
	if h.closed {
		return Result{}, ErrFinished
	}
	h.closed = true
	existing, err := h.inventory.Existing(ctx, h.endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("recon: deletion detection: %w", err)
	}
	events := make([]*Event, 0)
	for _, uid := range existing {
		if _, ok := h.matched[uid]; ok {
			continue
		}
		master := object.NewRecord()
		master.Set(h.descriptor.Identifier, uid)
		master.Set(object.Endpoint, h.endpoint)
		events = append(events, &Event{
			Endpoint: h.endpoint,
			Change:   ChangeDelete,
			Master:   master,
			Multiple: make(map[string][]*object.Record),
		})
	}
	if len(events) == 0 {
		logging.Info("deletion detection found nothing to revoke", "job", h.meta.JobID)
		return Result{}, nil
	}
	logging.Info("submitting delete events", "job", h.meta.JobID, "events", len(events))
	result, err := h.sink.Submit(ctx, h.meta, events)
	if err != nil {
		return Result{}, fmt.Errorf("recon: delete submission: %w", err)
	}
	return result, nil
}

func (h *Delete) Stop() { h.stopped.Store(true) }

func (h *Delete) Stopped() bool { return h.stopped.Load() }
