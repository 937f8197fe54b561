// Package recon assembles and submits reconciliation events. An event is
// the normalized image of one external object, shaped by an attribute
// mapping descriptor, ready for bulk submission to the system of record.
package recon

import (
	"fmt"
	"time"

	"github.com/vdakb/docker-sub018/internal/coerce"
	"github.com/vdakb/docker-sub018/internal/descriptor"
	"github.com/vdakb/docker-sub018/internal/eval"
	"github.com/vdakb/docker-sub018/internal/object"
	"github.com/vdakb/docker-sub018/internal/transform"
)

// Account status values understood by the system of record.
const (
	StatusActive   = "Active"
	StatusEnabled  = "Enabled"
	StatusDisabled = "Disabled"
)

// Change classifies how an event is to be applied.
type Change int

const (
	ChangeRegular Change = iota
	ChangeDelete
)

func (c Change) String() string {
	if c == ChangeDelete {
		return "delete"
	}
	return "regular"
}

// Event is one reconciliation event. Master holds the single-valued
// attribute image; Multiple holds one row list per declared multi-valued
// reference, keyed by the reference target name.
type Event struct {
	Endpoint int64
	Change   Change
	Master   *object.Record
	Multiple map[string][]*object.Record
}

// EventBuilder shapes external objects into events following one
// descriptor. Safe for concurrent use.
type EventBuilder struct {
	evaluator eval.Evaluator
	rules     *transform.Ruleset
}

func NewEventBuilder(evaluator eval.Evaluator, rules *transform.Ruleset) *EventBuilder {
	if rules == nil {
		rules = transform.NewRuleset()
	}
	return &EventBuilder{evaluator: evaluator, rules: rules}
}

// Build assembles the event for one external object.
//
// Each declared attribute is resolved against the object by its source
// name. An attribute absent from the object is skipped unless strict is
// set; with strict set every declared attribute produces an entry, absent
// sources resolving to the empty string. Templates are evaluated strictly
// after attribute mapping, the transformation rules last. Events of a
// non-authoritative source carry the endpoint identifier in the master
// image and the rows of every declared multi-valued reference.
func (b *EventBuilder) Build(endpoint int64, subject *object.Object, d *descriptor.Descriptor, authoritative, strict bool) (*Event, error) {
	event := &Event{
		Endpoint: endpoint,
		Master:   object.NewRecord(),
		Multiple: make(map[string][]*object.Record),
	}
	for _, rule := range d.Attributes() {
		attr := subject.AttributeByName(rule.Source)
		if attr == nil && !strict {
			continue
		}
		value, err := interprete(d, rule, single(attr), authoritative)
		if err != nil {
			return nil, err
		}
		event.Master.Set(rule.ID, value)
	}
	if err := transform.ApplyTemplates(d, b.evaluator, event.Master); err != nil {
		return nil, err
	}
	if d.Transformation {
		transform.ApplyRules(d, b.rules, event.Master)
	}
	// only events of a non-authoritative source carry embedded rows that
	// target the account's child data
	if !authoritative {
		event.Master.Set(object.Endpoint, endpoint)
		if err := b.references(endpoint, subject, d, event); err != nil {
			return nil, err
		}
	}
	return event, nil
}

func (b *EventBuilder) references(endpoint int64, subject *object.Object, d *descriptor.Descriptor, event *Event) error {
	for _, ref := range d.References() {
		collector := make([]*object.Record, 0)
		child := ref.Mapping
		for _, row := range subject.Rows(ref.Name.Source) {
			record := object.NewRecord()
			for _, rule := range child.Attributes() {
				attr := row.AttributeByName(rule.Source)
				value, err := interprete(child, rule, single(attr), false)
				if err != nil {
					return err
				}
				if rule.Entitlement() {
					value = object.EncodeEntitlement(endpoint, coerce.Display(value))
				}
				record.Set(rule.ID, value)
			}
			if err := transform.ApplyTemplates(child, b.evaluator, record); err != nil {
				return err
			}
			if child.Transformation {
				transform.ApplyRules(child, b.rules, record)
			}
			collector = append(collector, record)
		}
		event.Multiple[ref.Name.Target] = collector
	}
	return nil
}

// interprete normalizes one resolved attribute value for the event image.
// Absent values resolve to the empty string, the enable state maps to the
// account status vocabulary, dates are reconstructed from epoch or legacy
// string forms, booleans collapse to "1" and "0".
func interprete(d *descriptor.Descriptor, rule descriptor.Attribute, value any, authoritative bool) (any, error) {
	if value == nil {
		return "", nil
	}
	if rule.Source == object.Enable {
		return enableStatus(value, authoritative), nil
	}
	if rule.ID == d.Password || rule.Sensitive() {
		return coerce.Value(value, coerce.Sensitive)
	}
	switch rule.Type {
	case descriptor.TypeDate, descriptor.TypeCalendar:
		return dateValue(value, rule)
	}
	if v, ok := value.(bool); ok {
		if v {
			return "1", nil
		}
		return "0", nil
	}
	return coerce.Display(value), nil
}

func enableStatus(value any, authoritative bool) string {
	enabled, ok := value.(bool)
	if !ok {
		enabled = value == StatusActive
	}
	if !enabled {
		return StatusDisabled
	}
	if authoritative {
		return StatusActive
	}
	return StatusEnabled
}

// dateValue rebuilds an instant from the transport form. Connector
// frameworks ship dates as epoch milliseconds, so numeric values are cast
// first; everything else goes through the legacy format ladder.
func dateValue(value any, rule descriptor.Attribute) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.UnixMilli(v), nil
	case int:
		return time.UnixMilli(int64(v)), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	}
	out, err := coerce.Value(value, rule.Type.Kind())
	if err != nil {
		return nil, fmt.Errorf("recon: %s: %w", rule.ID, err)
	}
	return out, nil
}

func single(attr *object.Attribute) any {
	if attr == nil {
		return nil
	}
	return attr.Single()
}
