package uper

import "encoding/asn1"

// Value is a self-describing decoded value: each implementation carries
// its own constraint and knows how to move itself through a Writer or
// Reader. The set is closed over the ASN.1 kinds this runtime encodes.
type Value interface {
	Write(*Writer) error
	Read(*Reader) error
}

// Encode serializes a value, returning the content octets and the exact
// bit count before padding.
func Encode(v Value) ([]byte, uint64, error) {
	w := NewWriter()
	if err := v.Write(w); err != nil {
		return nil, 0, err
	}
	return w.Bytes(), w.BitLen(), nil
}

// Decode populates a value from the first bits of data.
func Decode(data []byte, bits uint64, v Value) error {
	r, err := NewReader(data, bits)
	if err != nil {
		return err
	}
	return v.Read(r)
}

type Boolean struct {
	Value bool
}

func (v *Boolean) Write(w *Writer) error {
	return w.WriteBoolean(v.Value)
}

func (v *Boolean) Read(r *Reader) error {
	value, err := r.ReadBoolean()
	v.Value = value
	return err
}

type Integer struct {
	Desc  *Constraint
	Value int64
}

func (v *Integer) Write(w *Writer) error {
	return w.WriteInteger(v.Value, v.Desc)
}

func (v *Integer) Read(r *Reader) error {
	value, err := r.ReadInteger(v.Desc)
	v.Value = value
	return err
}

type Enumerated struct {
	Desc  *Constraint
	Value uint64
}

func (v *Enumerated) Write(w *Writer) error {
	return w.WriteEnumerated(v.Value, v.Desc)
}

func (v *Enumerated) Read(r *Reader) error {
	value, err := r.ReadEnumerated(v.Desc)
	v.Value = value
	return err
}

type BitString struct {
	Desc  *Constraint
	Value asn1.BitString
}

func (v *BitString) Write(w *Writer) error {
	return w.WriteBitString(&v.Value, v.Desc)
}

func (v *BitString) Read(r *Reader) error {
	value, err := r.ReadBitString(v.Desc)
	if err != nil {
		return err
	}
	v.Value = *value
	return nil
}

type OctetString struct {
	Desc  *Constraint
	Value []byte
}

func (v *OctetString) Write(w *Writer) error {
	return w.WriteOctetString(v.Value, v.Desc)
}

func (v *OctetString) Read(r *Reader) error {
	value, err := r.ReadOctetString(v.Desc)
	v.Value = value
	return err
}

type CharacterString struct {
	Desc  *Constraint
	Value string
}

func (v *CharacterString) Write(w *Writer) error {
	return w.WriteCharacterString(v.Value, v.Desc)
}

func (v *CharacterString) Read(r *Reader) error {
	value, err := r.ReadCharacterString(v.Desc)
	v.Value = value
	return err
}

type Null struct{}

func (v *Null) Write(w *Writer) error {
	return w.WriteNull()
}

func (v *Null) Read(r *Reader) error {
	return r.ReadNull()
}

// Field is one component of a Sequence. Optional fields carry their
// presence in Present; for mandatory fields Present is ignored and the
// value always travels.
type Field struct {
	Optional bool
	Present  bool
	Value    Value
}

type Sequence struct {
	Desc   *Constraint
	Fields []Field
}

func (v *Sequence) Write(w *Writer) error {
	return w.WriteSequence(v.Desc, func(w *Writer) error {
		for i := range v.Fields {
			f := &v.Fields[i]
			if f.Optional {
				if err := w.WriteOptional(f.Present, f.Value.Write); err != nil {
					return err
				}
				continue
			}
			if err := f.Value.Write(w); err != nil {
				return err
			}
		}
		return nil
	})
}

func (v *Sequence) Read(r *Reader) error {
	return r.ReadSequence(v.Desc, func(r *Reader) error {
		for i := range v.Fields {
			f := &v.Fields[i]
			if f.Optional {
				present, err := r.ReadOptional(f.Value.Read)
				if err != nil {
					return err
				}
				f.Present = present
				continue
			}
			if err := f.Value.Read(r); err != nil {
				return err
			}
		}
		return nil
	})
}

// SequenceOf holds a homogeneous list. Element constructs a fresh
// component value for decoding.
type SequenceOf struct {
	Desc    *Constraint
	Element func() Value
	Values  []Value
}

func (v *SequenceOf) Write(w *Writer) error {
	return w.WriteSequenceOf(len(v.Values), v.Desc, func(w *Writer, index int) error {
		return v.Values[index].Write(w)
	})
}

func (v *SequenceOf) Read(r *Reader) error {
	v.Values = v.Values[:0]
	_, err := r.ReadSequenceOf(v.Desc, func(r *Reader, index int) error {
		element := v.Element()
		if err := element.Read(r); err != nil {
			return err
		}
		v.Values = append(v.Values, element)
		return nil
	})
	return err
}

// Choice holds one alternative. Variant constructs the value for a
// decoded alternative index.
type Choice struct {
	Desc    *Constraint
	Variant func(index uint64) Value
	Index   uint64
	Value   Value
}

func (v *Choice) Write(w *Writer) error {
	return w.WriteChoice(v.Index, v.Desc, func(w *Writer) error {
		return v.Value.Write(w)
	})
}

func (v *Choice) Read(r *Reader) error {
	index, err := r.ReadChoice(v.Desc, func(r *Reader, index uint64) error {
		var value Value
		if v.Variant != nil {
			value = v.Variant(index)
		}
		if value == nil {
			return ErrInvalidChoiceIndex.New("no value for variant %d", index)
		}
		v.Value = value
		return value.Read(r)
	})
	v.Index = index
	return err
}
