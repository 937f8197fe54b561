// Package descriptor holds the declarative attribute-mapping model and the
// parser that populates it from XML configuration documents.
//
// A Descriptor declares how the attributes of one entity map between the
// identity store and a target system: directly mapped attributes with typed
// conversion and flags, computed templates, nested one-to-many references,
// and scripted lifecycle actions. A descriptor tree is built once during
// initialization, sealed, and then shared read-only across worker
// goroutines.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/vdakb/docker-sub018/internal/coerce"
	"github.com/vdakb/docker-sub018/internal/object"
)

// Pair keys a nested reference descriptor by its target name and the source
// attribute it is populated from.
type Pair struct {
	Target string
	Source string
}

// Type tags the value representation of a mapped or computed attribute.
type Type int

const (
	TypeString Type = iota
	TypeDate
	TypeLong
	TypeBoolean
	TypeCalendar
	TypeSensitive
)

var typeName = map[Type]string{
	TypeString:    "string",
	TypeDate:      "date",
	TypeLong:      "long",
	TypeBoolean:   "boolean",
	TypeCalendar:  "calendar",
	TypeSensitive: "sensitive",
}

var typeLookup = func() map[string]Type {
	m := make(map[string]Type, len(typeName))
	for t, n := range typeName {
		m[n] = t
	}
	return m
}()

func (t Type) String() string {
	if n, ok := typeName[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Kind returns the coercion target bound to the type tag.
func (t Type) Kind() coerce.Kind {
	switch t {
	case TypeDate:
		return coerce.Date
	case TypeLong:
		return coerce.Long
	case TypeBoolean:
		return coerce.Boolean
	case TypeCalendar:
		return coerce.Calendar
	case TypeSensitive:
		return coerce.Sensitive
	default:
		return coerce.String
	}
}

// TypeFrom resolves a type tag by its configuration name.
func TypeFrom(name string) (Type, bool) {
	t, ok := typeLookup[name]
	return t, ok
}

// Template declares a computed attribute: Source is an expression evaluated
// against the mapped attribute values, the result is stored under ID.
// Template identity is the target ID alone.
type Template struct {
	Type   Type
	ID     string
	Source string
}

// Flag marks special handling of a mapped attribute.
type Flag uint8

const (
	FlagSensitive Flag = 1 << iota
	FlagRequired
	FlagIgnore
	FlagEntitlement
)

var flagName = map[Flag]string{
	FlagSensitive:   "sensitive",
	FlagRequired:    "required",
	FlagIgnore:      "ignore",
	FlagEntitlement: "entitlement",
}

var flagLookup = func() map[string]Flag {
	m := make(map[string]Flag, len(flagName))
	for f, n := range flagName {
		m[n] = f
	}
	return m
}()

// FlagFrom resolves a flag by its configuration name.
func FlagFrom(name string) (Flag, bool) {
	f, ok := flagLookup[name]
	return f, ok
}

// FlagSet is the set of flags declared on one attribute. Flags are not
// mutually exclusive.
type FlagSet uint8

func (s FlagSet) Has(f Flag) bool { return s&FlagSet(f) != 0 }

func (s *FlagSet) Add(f Flag) { *s |= FlagSet(f) }

func (s FlagSet) String() string {
	out := ""
	for _, f := range []Flag{FlagSensitive, FlagRequired, FlagIgnore, FlagEntitlement} {
		if s.Has(f) {
			if out != "" {
				out += ","
			}
			out += flagName[f]
		}
	}
	return out
}

// Attribute declares a directly mapped attribute. It shares the template
// shape and adds flags.
type Attribute struct {
	Template
	Flags FlagSet
}

// UID reports whether the attribute maps the reserved unique identifier.
func (a Attribute) UID() bool { return a.ID == object.UID }

// Name reports whether the attribute maps the reserved unique name.
func (a Attribute) Name() bool { return a.ID == object.Name }

func (a Attribute) Sensitive() bool   { return a.Flags.Has(FlagSensitive) }
func (a Attribute) Required() bool    { return a.Flags.Has(FlagRequired) }
func (a Attribute) Ignore() bool      { return a.Flags.Has(FlagIgnore) }
func (a Attribute) Entitlement() bool { return a.Flags.Has(FlagEntitlement) }

// Phase identifies the lifecycle moment an action runs at.
type Phase int

const (
	CreateBefore Phase = iota
	CreateAfter
	ModifyBefore
	ModifyAfter
	DeleteBefore
	DeleteAfter
)

var phaseName = map[Phase]string{
	CreateBefore: "create-before",
	CreateAfter:  "create-after",
	ModifyBefore: "modify-before",
	ModifyAfter:  "modify-after",
	DeleteBefore: "delete-before",
	DeleteAfter:  "delete-after",
}

var phaseLookup = func() map[string]Phase {
	m := make(map[string]Phase, len(phaseName))
	for p, n := range phaseName {
		m[n] = p
	}
	return m
}()

func (p Phase) String() string {
	if n, ok := phaseName[p]; ok {
		return n
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// PhaseFrom resolves a phase by its configuration name.
func PhaseFrom(name string) (Phase, bool) {
	p, ok := phaseLookup[name]
	return p, ok
}

// Target identifies where an action script executes.
type Target int

const (
	TargetConnector Target = iota
	TargetResource
)

var targetName = map[Target]string{
	TargetConnector: "connector",
	TargetResource:  "resource",
}

var targetLookup = map[string]Target{
	"connector": TargetConnector,
	"resource":  TargetResource,
}

func (t Target) String() string { return targetName[t] }

// TargetFrom resolves an action target by its configuration name.
func TargetFrom(name string) (Target, bool) {
	t, ok := targetLookup[name]
	return t, ok
}

// Language identifies the scripting language of an action command.
type Language int

const (
	LanguageGroovy Language = iota
	LanguageBash
	LanguagePowershell
)

var languageName = map[Language]string{
	LanguageGroovy:     "groovy",
	LanguageBash:       "bash",
	LanguagePowershell: "powershell",
}

var languageLookup = map[string]Language{
	"groovy":     LanguageGroovy,
	"bash":       LanguageBash,
	"powershell": LanguagePowershell,
}

func (l Language) String() string { return languageName[l] }

// LanguageFrom resolves a script language by its configuration name.
func LanguageFrom(name string) (Language, bool) {
	l, ok := languageLookup[name]
	return l, ok
}

// Option is one named argument of an action, in declaration order.
type Option struct {
	Name  string
	Value string
}

// Action is a scripted hook bound to one lifecycle phase.
type Action struct {
	Target   Target
	Language Language
	Command  string
	Options  []Option
}

// Reference binds a nested descriptor to the (target, source) pair it maps.
type Reference struct {
	Name    Pair
	Mapping *Descriptor
}

// Descriptor is the aggregate mapping root. Attributes and templates are
// insertion ordered with identity by target ID; references preserve
// declaration order; at most one action exists per phase.
type Descriptor struct {
	Identifier     string
	UniqueName     string
	Status         string
	Password       string
	Transformation bool

	templates   []Template
	attributes  []Attribute
	references  []Reference
	actions     map[Phase]*Action
	transformer map[string]string

	sealed bool
}

// New returns an empty descriptor. The same shape drives provisioning,
// reconciliation and the nested mapping of a multi-valued reference.
func New() *Descriptor {
	return &Descriptor{
		actions:     make(map[Phase]*Action),
		transformer: make(map[string]string),
	}
}

// AddTemplate appends a template. Re-adding an ID already present is a
// no-op; a sealed descriptor rejects the add.
func (d *Descriptor) AddTemplate(t Template) bool {
	if d.sealed {
		return false
	}
	for _, have := range d.templates {
		if have.ID == t.ID {
			return false
		}
	}
	d.templates = append(d.templates, t)
	return true
}

// AddAttribute appends an attribute with the same set semantics as
// AddTemplate.
func (d *Descriptor) AddAttribute(a Attribute) bool {
	if d.sealed {
		return false
	}
	for _, have := range d.attributes {
		if have.ID == a.ID {
			return false
		}
	}
	d.attributes = append(d.attributes, a)
	return true
}

// AddReference attaches a nested descriptor under the given pair. The
// receiver takes exclusive ownership of the subtree.
func (d *Descriptor) AddReference(name Pair, mapping *Descriptor) bool {
	if d.sealed {
		return false
	}
	for i := range d.references {
		if d.references[i].Name == name {
			d.references[i].Mapping = mapping
			return true
		}
	}
	d.references = append(d.references, Reference{Name: name, Mapping: mapping})
	return true
}

// SetAction binds an action to a phase, replacing a previous binding.
func (d *Descriptor) SetAction(phase Phase, action *Action) bool {
	if d.sealed {
		return false
	}
	d.actions[phase] = action
	return true
}

// RegisterTransformer binds a named transformation rule to an attribute.
func (d *Descriptor) RegisterTransformer(attribute, rule string) bool {
	if d.sealed {
		return false
	}
	d.transformer[attribute] = rule
	return true
}

// Templates returns the declared templates in insertion order. The slice is
// shared and must not be mutated.
func (d *Descriptor) Templates() []Template { return d.templates }

// Attributes returns the declared attributes in insertion order. The slice
// is shared and must not be mutated.
func (d *Descriptor) Attributes() []Attribute { return d.attributes }

// References returns the nested reference descriptors in declaration order.
func (d *Descriptor) References() []Reference { return d.references }

// Reference returns the nested descriptor keyed by the pair, or nil.
func (d *Descriptor) Reference(name Pair) *Descriptor {
	for i := range d.references {
		if d.references[i].Name == name {
			return d.references[i].Mapping
		}
	}
	return nil
}

// Action returns the action bound to the phase, or nil.
func (d *Descriptor) Action(phase Phase) *Action { return d.actions[phase] }

// Transformer returns the attribute-to-rule bindings of the descriptor.
func (d *Descriptor) Transformer() map[string]string { return d.transformer }

// Source projects the source names of all declared attributes, preserving
// order.
func (d *Descriptor) Source() []string {
	out := make([]string, 0, len(d.attributes))
	for _, a := range d.attributes {
		out = append(out, a.Source)
	}
	return out
}

// Target projects the target IDs of all declared attributes, preserving
// order.
func (d *Descriptor) Target() []string {
	out := make([]string, 0, len(d.attributes))
	for _, a := range d.attributes {
		out = append(out, a.ID)
	}
	return out
}

// ReferenceSource projects the source names of all nested references.
func (d *Descriptor) ReferenceSource() []string {
	out := make([]string, 0, len(d.references))
	for _, r := range d.references {
		out = append(out, r.Name.Source)
	}
	return out
}

// ReferenceTarget projects the target names of all nested references.
func (d *Descriptor) ReferenceTarget() []string {
	out := make([]string, 0, len(d.references))
	for _, r := range d.references {
		out = append(out, r.Name.Target)
	}
	return out
}

// Validate checks the invariants a configured descriptor must satisfy.
// All violations are reported at once.
func (d *Descriptor) Validate() error {
	var errs []error
	if d.Identifier == "" {
		errs = append(errs, fmt.Errorf("descriptor: identifier must not be empty"))
	}
	if d.UniqueName == "" {
		errs = append(errs, fmt.Errorf("descriptor: uniqueName must not be empty"))
	}
	return errors.Join(errs...)
}

// Seal freezes the descriptor and its reference subtree. Mutators reject
// all further changes, making the tree safe for concurrent readers.
func (d *Descriptor) Seal() {
	d.sealed = true
	for _, r := range d.references {
		r.Mapping.Seal()
	}
}

// Sealed reports whether the descriptor has been frozen.
func (d *Descriptor) Sealed() bool { return d.sealed }
