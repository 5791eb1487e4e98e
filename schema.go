// Package uper_go loads YAML type descriptions and turns them into
// codec value trees, so messages can be encoded and decoded without
// generated bindings.
package uper_go

import (
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/calebcase/oops"
	"github.com/zeebo/errs"
	"gopkg.in/yaml.v3"

	"github.com/thebagchi/uper-go/lib/uper"
)

var (
	Error = errs.Class("schema")

	ErrUnknownKind  = Error.New("unknown kind")
	ErrInvalidValue = Error.New("invalid value")
)

// Schema is a named top-level type description.
type Schema struct {
	Name string    `yaml:"name"`
	Type *TypeSpec `yaml:"type"`
}

// TypeSpec describes one type. Kind selects which of the remaining
// fields apply: Lb/Ub bound integers and sizes, Fields describes
// SEQUENCE components, Variants the CHOICE alternatives, Values the
// ENUMERATED names and Element the SEQUENCE OF component type.
type TypeSpec struct {
	Kind       string      `yaml:"kind"`
	Lb         *int64      `yaml:"lb,omitempty"`
	Ub         *int64      `yaml:"ub,omitempty"`
	Extensible bool        `yaml:"extensible,omitempty"`
	Fields     []FieldSpec `yaml:"fields,omitempty"`
	Variants   []FieldSpec `yaml:"variants,omitempty"`
	Values     []string    `yaml:"values,omitempty"`
	Extras     []string    `yaml:"extras,omitempty"`
	Element    *TypeSpec   `yaml:"element,omitempty"`
}

// FieldSpec is one SEQUENCE component or CHOICE alternative. Extension
// fields follow the extension marker of their container.
type FieldSpec struct {
	Name      string    `yaml:"name"`
	Optional  bool      `yaml:"optional,omitempty"`
	Extension bool      `yaml:"extension,omitempty"`
	Type      *TypeSpec `yaml:"type"`
}

var kindsByName = map[string]uper.Kind{
	"BOOLEAN":         uper.KindBoolean,
	"INTEGER":         uper.KindInteger,
	"ENUMERATED":      uper.KindEnumerated,
	"BIT STRING":      uper.KindBitString,
	"OCTET STRING":    uper.KindOctetString,
	"NumericString":   uper.KindNumericString,
	"PrintableString": uper.KindPrintableString,
	"IA5String":       uper.KindIA5String,
	"VisibleString":   uper.KindVisibleString,
	"UTF8String":      uper.KindUTF8String,
	"NULL":            uper.KindNull,
	"SEQUENCE":        uper.KindSequence,
	"SEQUENCE OF":     uper.KindSequenceOf,
	"CHOICE":          uper.KindChoice,
}

// LoadSchema reads and validates a schema file.
func LoadSchema(filename string) (*Schema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return ParseSchema(data)
}

// ParseSchema parses and validates a schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, Error.Wrap(err)
	}
	if schema.Type == nil {
		return nil, Error.New("schema %q has no type", schema.Name)
	}
	if err := schema.Type.validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (t *TypeSpec) validate() error {
	kind, ok := kindsByName[t.Kind]
	if !ok {
		return oops.Trace(ErrUnknownKind)
	}
	switch kind {
	case uper.KindSequence:
		seen := false
		for i := range t.Fields {
			f := &t.Fields[i]
			if f.Type == nil {
				return Error.New("field %q has no type", f.Name)
			}
			if f.Extension {
				seen = true
			} else if seen {
				return Error.New("root field %q follows an extension field", f.Name)
			}
			if f.Extension && !t.Extensible {
				return Error.New("extension field %q in a non-extensible type", f.Name)
			}
			if err := f.Type.validate(); err != nil {
				return err
			}
		}
	case uper.KindChoice:
		if len(t.Variants) == 0 {
			return Error.New("CHOICE with no variants")
		}
		for i := range t.Variants {
			v := &t.Variants[i]
			if v.Type == nil {
				return Error.New("variant %q has no type", v.Name)
			}
			if v.Extension && !t.Extensible {
				return Error.New("extension variant %q in a non-extensible type", v.Name)
			}
			if err := v.Type.validate(); err != nil {
				return err
			}
		}
	case uper.KindEnumerated:
		if len(t.Values) == 0 {
			return Error.New("ENUMERATED with no values")
		}
	case uper.KindSequenceOf:
		if t.Element == nil {
			return Error.New("SEQUENCE OF with no element type")
		}
		return t.Element.validate()
	}
	return nil
}

func (t *TypeSpec) constraint() *uper.Constraint {
	kind := kindsByName[t.Kind]
	c := &uper.Constraint{
		Kind:       kind,
		Lb:         t.Lb,
		Ub:         t.Ub,
		Extensible: t.Extensible,
	}
	switch kind {
	case uper.KindEnumerated:
		c.RootFields = len(t.Values)
		c.Fields = len(t.Values) + len(t.Extras)
	case uper.KindSequence:
		c.Fields = len(t.Fields)
		for i := range t.Fields {
			if !t.Fields[i].Extension {
				c.RootFields++
				if t.Fields[i].Optional {
					c.Optional++
				}
			}
		}
	case uper.KindChoice:
		c.Fields = len(t.Variants)
		for i := range t.Variants {
			if !t.Variants[i].Extension {
				c.RootFields++
			}
		}
	}
	return c
}

// New builds a blank value tree for the schema's type.
func (s *Schema) New() uper.Value {
	return s.Type.newValue(true)
}

// Decode decodes an encoding of the schema's type into a value tree.
// A peer that populated no extension fields uses the shorter
// no-extension layout, so when the full layout does not match the
// stream, decoding is retried with every extensible SEQUENCE shrunk to
// its root fields.
func (s *Schema) Decode(data []byte, bits uint64) (uper.Value, error) {
	value := s.New()
	err := uper.Decode(data, bits, value)
	if err == nil {
		return value, nil
	}
	if !uper.ErrInvalidExtensionConstellation.Has(err) {
		return nil, err
	}
	root := s.Type.newValue(false)
	if uper.Decode(data, bits, root) != nil {
		return nil, err
	}
	return root, nil
}

func (t *TypeSpec) newValue(withExt bool) uper.Value {
	c := t.constraint()
	switch c.Kind {
	case uper.KindBoolean:
		return &uper.Boolean{}
	case uper.KindInteger:
		return &uper.Integer{Desc: c}
	case uper.KindEnumerated:
		return &uper.Enumerated{Desc: c}
	case uper.KindBitString:
		return &uper.BitString{Desc: c}
	case uper.KindOctetString:
		return &uper.OctetString{Desc: c}
	case uper.KindNumericString, uper.KindPrintableString,
		uper.KindIA5String, uper.KindVisibleString, uper.KindUTF8String:
		return &uper.CharacterString{Desc: c}
	case uper.KindNull:
		return &uper.Null{}
	case uper.KindSequence:
		specs := t.Fields
		if !withExt {
			// validation keeps extension fields at the tail
			specs = specs[:c.RootFields]
			c.Fields = c.RootFields
		}
		fields := make([]uper.Field, len(specs))
		for i := range specs {
			fields[i] = uper.Field{
				Optional: specs[i].Optional || specs[i].Extension,
				Value:    specs[i].Type.newValue(withExt),
			}
		}
		return &uper.Sequence{Desc: c, Fields: fields}
	case uper.KindSequenceOf:
		return &uper.SequenceOf{
			Desc: c,
			Element: func() uper.Value {
				return t.Element.newValue(withExt)
			},
		}
	case uper.KindChoice:
		return &uper.Choice{
			Desc: c,
			Variant: func(index uint64) uper.Value {
				if index >= uint64(len(t.Variants)) {
					return nil
				}
				return t.Variants[index].Type.newValue(withExt)
			},
		}
	}
	return nil
}

// Bind fills a value tree built by New from a plain document of the
// shape yaml.Unmarshal produces: scalars for the scalar kinds, a map
// keyed by field name for SEQUENCE, a single-entry map for CHOICE, a
// list for SEQUENCE OF, hex strings for OCTET STRING and "bits:count"
// strings for BIT STRING.
func (t *TypeSpec) Bind(value uper.Value, doc any) error {
	switch v := value.(type) {
	case *uper.Boolean:
		b, ok := doc.(bool)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		v.Value = b
	case *uper.Integer:
		n, ok := asInt64(doc)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		v.Value = n
	case *uper.Enumerated:
		name, ok := doc.(string)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		index, err := t.enumIndex(name)
		if err != nil {
			return err
		}
		v.Value = index
	case *uper.BitString:
		text, ok := doc.(string)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		bs, err := parseBitString(text)
		if err != nil {
			return err
		}
		v.Value = *bs
	case *uper.OctetString:
		text, ok := doc.(string)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		octets, err := parseHex(text)
		if err != nil {
			return err
		}
		v.Value = octets
	case *uper.CharacterString:
		text, ok := doc.(string)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		v.Value = text
	case *uper.Null:
		// nothing to bind
	case *uper.Sequence:
		fields, ok := asStringMap(doc)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		// a document with no extension content gets the canonical
		// no-extension encoding
		hasExt := false
		for i := range t.Fields {
			if t.Fields[i].Extension {
				if _, ok := fields[t.Fields[i].Name]; ok {
					hasExt = true
					break
				}
			}
		}
		if !hasExt && v.Desc.Fields > v.Desc.RootFields {
			shrunk := *v.Desc
			shrunk.Fields = shrunk.RootFields
			v.Desc = &shrunk
			v.Fields = v.Fields[:shrunk.RootFields]
		}
		for i := range v.Fields {
			spec := &t.Fields[i]
			child, present := fields[spec.Name]
			if !present {
				if !spec.Optional && !spec.Extension {
					return Error.New("missing mandatory field %q", spec.Name)
				}
				v.Fields[i].Present = false
				continue
			}
			v.Fields[i].Present = true
			if err := spec.Type.Bind(v.Fields[i].Value, child); err != nil {
				return err
			}
		}
	case *uper.SequenceOf:
		items, ok := doc.([]any)
		if !ok {
			return oops.Trace(ErrInvalidValue)
		}
		v.Values = v.Values[:0]
		for _, item := range items {
			element := t.Element.newValue(true)
			if err := t.Element.Bind(element, item); err != nil {
				return err
			}
			v.Values = append(v.Values, element)
		}
	case *uper.Choice:
		alternatives, ok := asStringMap(doc)
		if !ok || len(alternatives) != 1 {
			return oops.Trace(ErrInvalidValue)
		}
		for name, child := range alternatives {
			index := -1
			for i := range t.Variants {
				if t.Variants[i].Name == name {
					index = i
					break
				}
			}
			if index < 0 {
				return Error.New("unknown alternative %q", name)
			}
			v.Index = uint64(index)
			v.Value = t.Variants[index].Type.newValue(true)
			if err := t.Variants[index].Type.Bind(v.Value, child); err != nil {
				return err
			}
		}
	default:
		return oops.Trace(ErrInvalidValue)
	}
	return nil
}

// Plain converts a decoded value tree back to the document shape Bind
// accepts, suitable for yaml.Marshal.
func (t *TypeSpec) Plain(value uper.Value) (any, error) {
	switch v := value.(type) {
	case *uper.Boolean:
		return v.Value, nil
	case *uper.Integer:
		return v.Value, nil
	case *uper.Enumerated:
		names := append(append([]string{}, t.Values...), t.Extras...)
		if v.Value >= uint64(len(names)) {
			return nil, Error.New("enumeration %d has no name", v.Value)
		}
		return names[v.Value], nil
	case *uper.BitString:
		return formatBitString(&v.Value), nil
	case *uper.OctetString:
		return fmt.Sprintf("%x", v.Value), nil
	case *uper.CharacterString:
		return v.Value, nil
	case *uper.Null:
		return nil, nil
	case *uper.Sequence:
		doc := map[string]any{}
		// v may hold the root-only layout, a prefix of t.Fields
		for i := range v.Fields {
			spec := &t.Fields[i]
			if (spec.Optional || spec.Extension) && !v.Fields[i].Present {
				continue
			}
			child, err := spec.Type.Plain(v.Fields[i].Value)
			if err != nil {
				return nil, err
			}
			doc[spec.Name] = child
		}
		return doc, nil
	case *uper.SequenceOf:
		items := make([]any, 0, len(v.Values))
		for _, element := range v.Values {
			child, err := t.Element.Plain(element)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return items, nil
	case *uper.Choice:
		if v.Index >= uint64(len(t.Variants)) {
			return nil, Error.New("alternative %d has no name", v.Index)
		}
		child, err := t.Variants[v.Index].Type.Plain(v.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{t.Variants[v.Index].Name: child}, nil
	}
	return nil, oops.Trace(ErrInvalidValue)
}

func (t *TypeSpec) enumIndex(name string) (uint64, error) {
	for i, candidate := range t.Values {
		if candidate == name {
			return uint64(i), nil
		}
	}
	for i, candidate := range t.Extras {
		if candidate == name {
			return uint64(len(t.Values) + i), nil
		}
	}
	return 0, Error.New("unknown enumeration %q", name)
}

func asInt64(doc any) (int64, bool) {
	switch n := doc.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func asStringMap(doc any) (map[string]any, bool) {
	if m, ok := doc.(map[string]any); ok {
		return m, true
	}
	// yaml.v3 produces map[string]any for string keys, but a document
	// assembled by hand may use map[any]any
	if m, ok := doc.(map[any]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	}
	return nil, false
}

func parseHex(text string) ([]byte, error) {
	out, err := hex.DecodeString(text)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

// parseBitString accepts "hex:count", count being the bit length.
func parseBitString(text string) (*asn1.BitString, error) {
	digits, counted, found := strings.Cut(text, ":")
	if !found {
		return nil, Error.New("bit string %q is not hex:count", text)
	}
	count, err := strconv.Atoi(counted)
	if err != nil {
		return nil, Error.New("bit string %q is not hex:count", text)
	}
	octets, err := parseHex(digits)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > len(octets)*8 {
		return nil, Error.New("bit count %d does not fit %d octets", count, len(octets))
	}
	return &asn1.BitString{Bytes: octets, BitLength: count}, nil
}

func formatBitString(value *asn1.BitString) string {
	return fmt.Sprintf("%x:%d", value.Bytes, value.BitLength)
}
