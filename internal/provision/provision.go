// Package provision drives account lifecycle operations against a target
// system through the connector facade, shaped by a provisioning mapping
// descriptor. Lifecycle actions declared in the descriptor run around the
// operation they are bound to.
package provision

import (
	"context"
	"fmt"

	"github.com/vdakb/docker-sub018/internal/connector"
	"github.com/vdakb/docker-sub018/internal/descriptor"
	"github.com/vdakb/docker-sub018/internal/logging"
	"github.com/vdakb/docker-sub018/internal/object"
	"github.com/vdakb/docker-sub018/internal/transform"
)

// Provisioner executes create, modify, delete and enable state operations
// for one object class following one descriptor.
type Provisioner struct {
	facade     connector.Facade
	builder    *transform.Builder
	descriptor *descriptor.Descriptor
	class      string
	endpoint   int64
}

func New(facade connector.Facade, builder *transform.Builder, d *descriptor.Descriptor, class string, endpoint int64) *Provisioner {
	return &Provisioner{
		facade:     facade,
		builder:    builder,
		descriptor: d,
		class:      class,
		endpoint:   endpoint,
	}
}

// CreateEntry provisions a new account from the given source data and
// returns the unique identifier assigned by the target system.
func (p *Provisioner) CreateEntry(ctx context.Context, source map[string]any) (string, error) {
	attributes, err := p.builder.Build(p.descriptor, source, false)
	if err != nil {
		return "", err
	}
	p.runAction(ctx, descriptor.CreateBefore, source)
	uid, err := p.facade.Create(ctx, p.class, attributes)
	if err != nil {
		return "", fmt.Errorf("provision: create %s: %w", p.class, err)
	}
	p.runAction(ctx, descriptor.CreateAfter, source)
	logging.Info("created entry", "class", p.class, "uid", uid)
	return uid, nil
}

// ModifyEntry pushes changed single-valued attributes of an existing
// account. The returned identifier reflects a rename applied by the
// target.
func (p *Provisioner) ModifyEntry(ctx context.Context, uid string, source map[string]any) (string, error) {
	attributes, err := p.builder.Build(p.descriptor, source, false)
	if err != nil {
		return "", err
	}
	p.runAction(ctx, descriptor.ModifyBefore, source)
	updated, err := p.facade.Update(ctx, p.class, uid, attributes)
	if err != nil {
		return "", fmt.Errorf("provision: modify %s %s: %w", p.class, uid, err)
	}
	p.runAction(ctx, descriptor.ModifyAfter, source)
	return updated, nil
}

// AssignReference grants rows of a multi-valued reference, one embedded
// object per row.
func (p *Provisioner) AssignReference(ctx context.Context, uid string, name descriptor.Pair, rows []map[string]any) error {
	attribute, err := p.referenceRows(name, rows)
	if err != nil {
		return err
	}
	if _, err := p.facade.AddValues(ctx, p.class, uid, []object.Attribute{attribute}); err != nil {
		return fmt.Errorf("provision: assign %s on %s: %w", name.Target, uid, err)
	}
	return nil
}

// RevokeReference removes rows of a multi-valued reference.
func (p *Provisioner) RevokeReference(ctx context.Context, uid string, name descriptor.Pair, rows []map[string]any) error {
	attribute, err := p.referenceRows(name, rows)
	if err != nil {
		return err
	}
	if _, err := p.facade.RemoveValues(ctx, p.class, uid, []object.Attribute{attribute}); err != nil {
		return fmt.Errorf("provision: revoke %s on %s: %w", name.Target, uid, err)
	}
	return nil
}

func (p *Provisioner) referenceRows(name descriptor.Pair, rows []map[string]any) (object.Attribute, error) {
	child := p.descriptor.Reference(name)
	if child == nil {
		return object.Attribute{}, fmt.Errorf("provision: no reference %s declared", name.Target)
	}
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		attributes, err := p.builder.BuildEmbedded(child, row, false)
		if err != nil {
			return object.Attribute{}, err
		}
		values = append(values, object.Embedded{Class: name.Target, Attributes: attributes})
	}
	return object.Attribute{Name: name.Target, Values: values}, nil
}

// DeleteEntry removes the account.
func (p *Provisioner) DeleteEntry(ctx context.Context, uid string) error {
	p.runAction(ctx, descriptor.DeleteBefore, map[string]any{p.descriptor.Identifier: uid})
	if err := p.facade.Delete(ctx, p.class, uid); err != nil {
		return fmt.Errorf("provision: delete %s %s: %w", p.class, uid, err)
	}
	p.runAction(ctx, descriptor.DeleteAfter, map[string]any{p.descriptor.Identifier: uid})
	logging.Info("deleted entry", "class", p.class, "uid", uid)
	return nil
}

// Activate enables the account on the target system.
func (p *Provisioner) Activate(ctx context.Context, uid string) error {
	return p.enable(ctx, uid, true)
}

// Deactivate disables the account on the target system.
func (p *Provisioner) Deactivate(ctx context.Context, uid string) error {
	return p.enable(ctx, uid, false)
}

func (p *Provisioner) enable(ctx context.Context, uid string, state bool) error {
	attribute := object.Attribute{Name: object.Enable, Values: []any{state}}
	if _, err := p.facade.Update(ctx, p.class, uid, []object.Attribute{attribute}); err != nil {
		return fmt.Errorf("provision: enable %s %s: %w", p.class, uid, err)
	}
	return nil
}

// runAction executes the lifecycle action bound to the phase, if any.
// Action failure is logged and deliberately does not abort the operation
// the action surrounds.
func (p *Provisioner) runAction(ctx context.Context, phase descriptor.Phase, args map[string]any) {
	action := p.descriptor.Action(phase)
	if action == nil {
		return
	}
	options := make(map[string]string, len(action.Options))
	for _, o := range action.Options {
		options[o.Name] = o.Value
	}
	script := connector.Script{
		Language: action.Language.String(),
		Command:  action.Command,
		Options:  options,
		Args: map[string]any{
			"attributes": args,
			"timing":     phase.String(),
		},
	}
	if err := p.facade.RunScript(ctx, script, action.Target == descriptor.TargetResource); err != nil {
		logging.Warn("lifecycle action failed", "phase", phase.String(), "command", action.Command, "err", err)
	}
}
