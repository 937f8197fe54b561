package descriptor

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element and attribute names of the mapping configuration grammar.
const (
	elemDescriptor  = "descriptor"
	elemTemplate    = "template"
	elemAttribute   = "attribute"
	elemTransformer = "transformer"
	elemReference   = "multivalue"
	elemFlag        = "flag"
	elemAction      = "action"
	elemCommand     = "command"
	elemOption      = "option"

	attrIdentifier     = "identifier"
	attrUniqueName     = "uniqueName"
	attrStatus         = "status"
	attrPassword       = "password"
	attrTransformation = "transformation"
	attrType           = "type"
	attrName           = "name"
	attrSource         = "source"
	attrClass          = "class"
	attrTransformer    = "transformer"
	attrTarget         = "target"
	attrPhase          = "phase"
	attrLanguage       = "language"
)

// grammar enumerates the parser states. The states and their permitted
// parents form the transition table of the push-down automaton driving the
// parse.
type grammar int

const (
	gInit grammar = iota
	gDescriptor
	gAction
	gReference
	gTemplate
	gAttribute
	gTransformer
	gFlag
	gCommand
	gOption
)

type grammarRule struct {
	tag     string
	parents []grammar
}

var grammarTable = map[grammar]grammarRule{
	gDescriptor:  {tag: elemDescriptor, parents: []grammar{gInit}},
	gAction:      {tag: elemAction, parents: []grammar{gDescriptor}},
	gReference:   {tag: elemReference, parents: []grammar{gDescriptor}},
	gTemplate:    {tag: elemTemplate, parents: []grammar{gDescriptor, gReference}},
	gAttribute:   {tag: elemAttribute, parents: []grammar{gDescriptor, gReference}},
	gTransformer: {tag: elemTransformer, parents: []grammar{gDescriptor, gReference}},
	gFlag:        {tag: elemFlag, parents: []grammar{gAttribute}},
	gCommand:     {tag: elemCommand, parents: []grammar{gAction}},
	gOption:      {tag: elemOption, parents: []grammar{gAction}},
}

var grammarLookup = func() map[string]grammar {
	m := make(map[string]grammar, len(grammarTable))
	for g, rule := range grammarTable {
		m[rule.tag] = g
	}
	return m
}()

// transition reports whether moving between the receiver and the given
// state is legal: either is listed among the other's parents, or both are
// the same state.
func (g grammar) transition(to grammar) bool {
	if g == to {
		return true
	}
	for _, p := range grammarTable[to].parents {
		if p == g {
			return true
		}
	}
	for _, p := range grammarTable[g].parents {
		if p == to {
			return true
		}
	}
	return false
}

func (g grammar) String() string {
	if g == gInit {
		return "document"
	}
	return grammarTable[g].tag
}

// Parser populates one Descriptor from one XML document. An instance is
// single use and not safe for concurrent use; the cursor, state stack and
// value stack belong to exactly one parse.
type Parser struct {
	descriptor *Descriptor
	dec        *xml.Decoder

	cursor grammar
	state  []grammar
	values valueStack
}

// NewParser returns a parser that assembles into the given descriptor.
func NewParser(d *Descriptor) *Parser {
	return &Parser{descriptor: d, cursor: gInit}
}

// Parse consumes the document and assembles the descriptor tree. Any
// configuration error aborts the parse; the descriptor must then be
// discarded.
func (p *Parser) Parse(r io.Reader) error {
	p.dec = xml.NewDecoder(r)
	p.dec.CharsetReader = charsetReader
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			line, col := p.position()
			return positioned(line, col, ErrInvalidValue, "malformed document: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.startElement(t); err != nil {
				return err
			}
		case xml.EndElement:
			if err := p.endElement(); err != nil {
				return err
			}
		case xml.CharData:
			p.characters(t)
		}
	}
}

func (p *Parser) position() (int, int) {
	if p.dec == nil {
		return 0, 0
	}
	return p.dec.InputPos()
}

func (p *Parser) startElement(el xml.StartElement) error {
	state, ok := grammarLookup[el.Name.Local]
	if !ok {
		line, col := p.position()
		return positioned(line, col, ErrUnknownElement, "%s", el.Name.Local)
	}
	if !p.cursor.transition(state) {
		line, col := p.position()
		return positioned(line, col, ErrTransition, "%s inside %s", state, p.cursor)
	}
	p.state = append(p.state, p.cursor)
	p.cursor = state

	switch state {
	case gDescriptor:
		return p.startDescriptor(el)
	case gTemplate:
		return p.startTemplate(el)
	case gAttribute:
		return p.startAttribute(el)
	case gReference:
		return p.startReference(el)
	case gTransformer:
		return p.startTransformer(el)
	case gAction:
		return p.startAction(el)
	case gFlag, gCommand:
		p.values.push(&strings.Builder{})
	case gOption:
		name := attrValue(el, attrName)
		if name == "" {
			line, col := p.position()
			return positioned(line, col, ErrMissingAttribute, "%s on %s", attrName, elemOption)
		}
		p.values.push(name)
		p.values.push(&strings.Builder{})
	}
	return nil
}

func (p *Parser) endElement() error {
	var err error
	switch p.cursor {
	case gDescriptor:
		_, err = p.values.popDescriptor()
	case gTemplate:
		err = p.endTemplate()
	case gAttribute:
		err = p.endAttribute()
	case gReference:
		err = p.endReference()
	case gFlag:
		err = p.endFlag()
	case gAction:
		err = p.endAction()
	case gCommand:
		err = p.endCommand()
	case gOption:
		err = p.endOption()
	}
	if err != nil {
		return err
	}
	p.cursor = p.state[len(p.state)-1]
	p.state = p.state[:len(p.state)-1]
	return nil
}

// characters collects text only inside flag, command and option elements;
// character data anywhere else is ignored.
func (p *Parser) characters(data xml.CharData) {
	switch p.cursor {
	case gFlag, gCommand, gOption:
		if b, err := p.values.peekBuilder(); err == nil {
			b.Write(data)
		}
	}
}

func (p *Parser) startDescriptor(el xml.StartElement) error {
	identifier := attrValue(el, attrIdentifier)
	if identifier == "" {
		line, col := p.position()
		return positioned(line, col, ErrMissingAttribute, "%s on %s", attrIdentifier, elemDescriptor)
	}
	uniqueName := attrValue(el, attrUniqueName)
	if uniqueName == "" {
		line, col := p.position()
		return positioned(line, col, ErrMissingAttribute, "%s on %s", attrUniqueName, elemDescriptor)
	}
	p.descriptor.Identifier = identifier
	p.descriptor.UniqueName = uniqueName
	p.descriptor.Status = attrValue(el, attrStatus)
	p.descriptor.Password = attrValue(el, attrPassword)
	p.descriptor.Transformation = boolValue(attrValue(el, attrTransformation), false)
	p.values.push(p.descriptor)
	return nil
}

// mappedElement validates the attributes shared by template and attribute
// elements and registers an optional transformer binding on the descriptor
// owning the element.
func (p *Parser) mappedElement(el xml.StartElement) (Template, error) {
	typ := TypeString
	if raw := attrValue(el, attrType); raw != "" {
		t, ok := TypeFrom(raw)
		if !ok {
			line, col := p.position()
			return Template{}, positioned(line, col, ErrInvalidValue, "%q for %s", raw, attrType)
		}
		typ = t
	}
	name := attrValue(el, attrName)
	if name == "" {
		line, col := p.position()
		return Template{}, positioned(line, col, ErrMissingAttribute, "%s on %s", attrName, el.Name.Local)
	}
	source := attrValue(el, attrSource)
	if source == "" {
		line, col := p.position()
		return Template{}, positioned(line, col, ErrMissingAttribute, "%s on %s", attrSource, el.Name.Local)
	}
	if rule := attrValue(el, attrTransformer); rule != "" {
		owner, err := p.values.peekDescriptor()
		if err != nil {
			return Template{}, p.internal(err)
		}
		owner.RegisterTransformer(name, rule)
	}
	return Template{Type: typ, ID: name, Source: source}, nil
}

func (p *Parser) startTemplate(el xml.StartElement) error {
	t, err := p.mappedElement(el)
	if err != nil {
		return err
	}
	p.values.push(&t)
	return nil
}

func (p *Parser) startAttribute(el xml.StartElement) error {
	t, err := p.mappedElement(el)
	if err != nil {
		return err
	}
	p.values.push(&Attribute{Template: t})
	return nil
}

func (p *Parser) startReference(el xml.StartElement) error {
	name := attrValue(el, attrName)
	if name == "" {
		line, col := p.position()
		return positioned(line, col, ErrMissingAttribute, "%s on %s", attrName, elemReference)
	}
	source := attrValue(el, attrSource)
	if source == "" {
		source = name
	}
	p.values.push(Pair{Target: name, Source: source})
	child := New()
	child.Transformation = boolValue(attrValue(el, attrTransformation), false)
	p.values.push(child)
	return nil
}

func (p *Parser) startTransformer(el xml.StartElement) error {
	name := attrValue(el, attrName)
	if name == "" {
		line, col := p.position()
		return positioned(line, col, ErrMissingAttribute, "%s on %s", attrName, elemTransformer)
	}
	class := attrValue(el, attrClass)
	if class == "" {
		line, col := p.position()
		return positioned(line, col, ErrMissingAttribute, "%s on %s", attrClass, elemTransformer)
	}
	owner, err := p.values.peekDescriptor()
	if err != nil {
		return p.internal(err)
	}
	owner.RegisterTransformer(name, class)
	return nil
}

func (p *Parser) startAction(el xml.StartElement) error {
	raw := attrValue(el, attrPhase)
	if raw == "" {
		line, col := p.position()
		return positioned(line, col, ErrMissingAttribute, "%s on %s", attrPhase, elemAction)
	}
	phase, ok := PhaseFrom(raw)
	if !ok {
		line, col := p.position()
		return positioned(line, col, ErrInvalidValue, "%q for %s", raw, attrPhase)
	}
	target := TargetConnector
	if raw := attrValue(el, attrTarget); raw != "" {
		t, ok := TargetFrom(raw)
		if !ok {
			line, col := p.position()
			return positioned(line, col, ErrInvalidValue, "%q for %s", raw, attrTarget)
		}
		target = t
	}
	language := LanguageGroovy
	if raw := attrValue(el, attrLanguage); raw != "" {
		l, ok := LanguageFrom(raw)
		if !ok {
			line, col := p.position()
			return positioned(line, col, ErrInvalidValue, "%q for %s", raw, attrLanguage)
		}
		language = l
	}
	p.values.push(phase)
	p.values.push(&Action{Target: target, Language: language})
	return nil
}

func (p *Parser) endTemplate() error {
	t, err := p.values.popTemplate()
	if err != nil {
		return p.internal(err)
	}
	owner, err := p.values.peekDescriptor()
	if err != nil {
		return p.internal(err)
	}
	owner.AddTemplate(*t)
	return nil
}

func (p *Parser) endAttribute() error {
	a, err := p.values.popAttribute()
	if err != nil {
		return p.internal(err)
	}
	owner, err := p.values.peekDescriptor()
	if err != nil {
		return p.internal(err)
	}
	owner.AddAttribute(*a)
	return nil
}

func (p *Parser) endReference() error {
	child, err := p.values.popDescriptor()
	if err != nil {
		return p.internal(err)
	}
	name, err := p.values.popPair()
	if err != nil {
		return p.internal(err)
	}
	parent, err := p.values.peekDescriptor()
	if err != nil {
		return p.internal(err)
	}
	parent.AddReference(name, child)
	return nil
}

func (p *Parser) endFlag() error {
	b, err := p.values.popBuilder()
	if err != nil {
		return p.internal(err)
	}
	value := strings.TrimSpace(b.String())
	if value == "" {
		return nil
	}
	flag, ok := FlagFrom(value)
	if !ok {
		line, col := p.position()
		return positioned(line, col, ErrInvalidValue, "%q for %s", value, elemFlag)
	}
	owner, err := p.values.peekAttribute()
	if err != nil {
		return p.internal(err)
	}
	owner.Flags.Add(flag)
	return nil
}

func (p *Parser) endAction() error {
	action, err := p.values.popAction()
	if err != nil {
		return p.internal(err)
	}
	phase, err := p.values.popPhase()
	if err != nil {
		return p.internal(err)
	}
	owner, err := p.values.peekDescriptor()
	if err != nil {
		return p.internal(err)
	}
	owner.SetAction(phase, action)
	return nil
}

func (p *Parser) endCommand() error {
	b, err := p.values.popBuilder()
	if err != nil {
		return p.internal(err)
	}
	value := strings.TrimSpace(b.String())
	if value == "" {
		return nil
	}
	owner, err := p.values.peekAction()
	if err != nil {
		return p.internal(err)
	}
	owner.Command = value
	return nil
}

func (p *Parser) endOption() error {
	b, err := p.values.popBuilder()
	if err != nil {
		return p.internal(err)
	}
	name, err := p.values.popString()
	if err != nil {
		return p.internal(err)
	}
	value := strings.TrimSpace(b.String())
	if value == "" {
		return nil
	}
	owner, err := p.values.peekAction()
	if err != nil {
		return p.internal(err)
	}
	owner.Options = append(owner.Options, Option{Name: name, Value: value})
	return nil
}

func (p *Parser) internal(err error) error {
	line, col := p.position()
	return fmt.Errorf("descriptor: line %d, column %d: internal: %w", line, col, err)
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func boolValue(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	return value == "true" || value == "1"
}
