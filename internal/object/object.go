// Package object models the external connector object shape exchanged with
// a target system: a named bag of multi-valued attributes, optionally with
// embedded rows for one-to-many relationships.
package object

// Reserved attribute names understood by every connector, mirroring the
// operational attribute convention of the connector framework.
const (
	UID      = "__UID__"
	Name     = "__NAME__"
	Enable   = "__ENABLE__"
	Password = "__PASSWORD__"

	// Endpoint is the reserved event key carrying the identifier of the
	// endpoint a non-authoritative record originates from.
	Endpoint = "__ENDPOINT__"
)

// Attribute is a single named, multi-valued attribute.
type Attribute struct {
	Name   string
	Values []any
}

// Single returns the sole value of the attribute or nil when the attribute
// is absent or has no values.
func (a *Attribute) Single() any {
	if a == nil || len(a.Values) == 0 {
		return nil
	}
	return a.Values[0]
}

// Embedded is one row of a nested one-to-many relationship, classified by
// the object class of the related entity.
type Embedded struct {
	Class      string
	Attributes []Attribute
}

// AttributeByName returns the row attribute with the given name, or nil.
func (e *Embedded) AttributeByName(name string) *Attribute {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// Object is one external entity returned by a connector search.
type Object struct {
	Class      string
	Attributes []Attribute
	Embedded   map[string][]Embedded
}

// AttributeByName returns the attribute with the given name, or nil when the
// external object does not carry it.
func (o *Object) AttributeByName(name string) *Attribute {
	for i := range o.Attributes {
		if o.Attributes[i].Name == name {
			return &o.Attributes[i]
		}
	}
	return nil
}

// UIDValue returns the reserved unique identifier of the object, or the
// empty string.
func (o *Object) UIDValue() string {
	if v := o.AttributeByName(UID).Single(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Rows returns the embedded rows stored under the given source name.
func (o *Object) Rows(source string) []Embedded {
	if o.Embedded == nil {
		return nil
	}
	return o.Embedded[source]
}
