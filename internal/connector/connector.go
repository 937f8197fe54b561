// Package connector defines the facade through which provisioning and
// reconciliation talk to a target system. Implementations wrap a concrete
// connector transport; the mapping engine only depends on this surface.
package connector

import (
	"context"

	"github.com/vdakb/docker-sub018/internal/object"
)

// Script is an executable lifecycle action. Options carry the static
// arguments declared in the mapping configuration, Args the dynamic data
// of the operation the action surrounds.
type Script struct {
	Language string
	Command  string
	Options  map[string]string
	Args     map[string]any
}

// Handler consumes objects produced by a search. Returning false stops
// the iteration without error.
type Handler func(subject *object.Object) (bool, error)

// Facade is the object lifecycle surface of a target system, keyed by
// object class name.
type Facade interface {
	// Search streams every object of the class matching the filter into
	// the handler.
	Search(ctx context.Context, class string, filter map[string]any, handle Handler) error
	// Create provisions a new object and returns its unique identifier.
	Create(ctx context.Context, class string, attributes []object.Attribute) (string, error)
	// Update replaces single-valued attributes of an existing object. The
	// returned identifier reflects a rename if the target applied one.
	Update(ctx context.Context, class, uid string, attributes []object.Attribute) (string, error)
	// AddValues appends rows to multi-valued attributes of an object.
	AddValues(ctx context.Context, class, uid string, attributes []object.Attribute) (string, error)
	// RemoveValues removes rows from multi-valued attributes of an object.
	RemoveValues(ctx context.Context, class, uid string, attributes []object.Attribute) (string, error)
	// Delete removes the object.
	Delete(ctx context.Context, class, uid string) error
	// RunScript executes a lifecycle action on the connector or on the
	// target resource itself.
	RunScript(ctx context.Context, script Script, onResource bool) error
}
