package uper

import (
	"bytes"
	"encoding/asn1"

	"github.com/thebagchi/uper-go/lib/bitbuffer"
)

// Reader decodes values from a fixed window of bits.
type Reader struct {
	view  *bitbuffer.View
	scope scope
}

// NewReader creates a reader over the first bits of data. Pass
// uint64(len(data))*8 when the exact bit count is not known.
func NewReader(data []byte, bits uint64) (*Reader, error) {
	view, err := bitbuffer.NewView(data, bits)
	if err != nil {
		return nil, err
	}
	return &Reader{view: view}, nil
}

// Remaining returns the number of unread bits, padding included.
func (r *Reader) Remaining() uint64 {
	return r.view.Remaining()
}

// 11.5 Decoding of a constrained whole number

func (r *Reader) ReadConstrainedWholeNumber(lb, ub int64) (int64, error) {
	vr := uint64(ub) - uint64(lb)
	if vr == 0 {
		return lb, nil
	}
	bits := BitsNonNegativeBinaryInteger(vr)
	value, err := r.view.Read(uint8(bits))
	if err != nil {
		return 0, err
	}
	if value > vr {
		return 0, ErrValueNotInRange.New("offset %d exceeds range of [%d, %d]", value, lb, ub)
	}
	return int64(uint64(lb) + value), nil
}

// 11.6 Decoding of a normally small non-negative whole number

func (r *Reader) ReadNormallySmallNonNegativeWholeNumber() (uint64, error) {
	large, err := r.view.Read(1)
	if err != nil {
		return 0, err
	}
	if large == 0 {
		return r.view.Read(6)
	}
	value, err := r.ReadSemiConstrainedWholeNumber(0)
	if err != nil {
		return 0, err
	}
	return uint64(value), nil
}

// 11.7 Decoding of a semi-constrained whole number

func (r *Reader) ReadSemiConstrainedWholeNumber(lb int64) (int64, error) {
	octets, _, err := r.ReadLengthDeterminant(nil, nil)
	if err != nil {
		return 0, err
	}
	if octets > 8 {
		return 0, ErrUnsupportedOperation.New("%d octet magnitude exceeds 64 bits", octets)
	}
	value, err := r.view.Read(uint8(octets * 8))
	if err != nil {
		return 0, err
	}
	return int64(uint64(lb) + value), nil
}

// 11.8 Decoding of an unconstrained whole number

func (r *Reader) ReadUnconstrainedWholeNumber() (int64, error) {
	octets, _, err := r.ReadLengthDeterminant(nil, nil)
	if err != nil {
		return 0, err
	}
	if octets > 8 {
		return 0, ErrUnsupportedOperation.New("%d octet magnitude exceeds 64 bits", octets)
	}
	value, err := r.view.Read(uint8(octets * 8))
	if err != nil {
		return 0, err
	}
	// sign extend from the encoded width
	shift := 64 - octets*8
	return int64(value<<shift) >> shift, nil
}

// 11.9 General rules for decoding a length determinant
//
// Returns the count of units covered by this determinant and whether
// another determinant follows (the fragmented form). Callers loop until
// more is false; the terminating zero-length chunk of 11.9.3.8.3 arrives
// as (0, false).

func (r *Reader) ReadLengthDeterminant(lb *uint64, ub *uint64) (uint64, bool, error) {
	if ub != nil && *ub < MAX_CONSTRAINED_LENGTH {
		lower := uint64(0)
		if lb != nil {
			lower = *lb
		}
		length, err := r.ReadConstrainedWholeNumber(int64(lower), int64(*ub))
		if err != nil {
			return 0, false, err
		}
		return uint64(length), false, nil
	}
	return r.ReadUnconstrainedLength()
}

func (r *Reader) ReadUnconstrainedLength() (uint64, bool, error) {
	first, err := r.view.Read(8)
	if err != nil {
		return 0, false, err
	}
	if first&0x80 == 0 {
		return first, false, nil
	}
	if first&0x40 == 0 {
		second, err := r.view.Read(8)
		if err != nil {
			return 0, false, err
		}
		return (first&0x3F)<<8 | second, false, nil
	}
	m := first & 0x3F
	if m < 1 || m > 4 {
		return 0, false, Error.New("fragment multiplier %d not in 1..4", m)
	}
	return m * FRAGMENT_SIZE, true, nil
}

// 12 Decoding the boolean type

func (r *Reader) ReadBoolean() (bool, error) {
	var value bool
	_, err := r.field(false, func() error {
		var err error
		value, err = r.decodeBoolean()
		return err
	})
	return value, err
}

func (r *Reader) decodeBoolean() (bool, error) {
	bit, err := r.view.Read(1)
	if err != nil {
		return false, err
	}
	return bit == 1, nil
}

// 13 Decoding the integer type

func (r *Reader) ReadInteger(c *Constraint) (int64, error) {
	var value int64
	_, err := r.field(false, func() error {
		var err error
		value, err = r.decodeInteger(c)
		return err
	})
	return value, err
}

func (r *Reader) decodeInteger(c *Constraint) (int64, error) {
	var lb, ub *int64
	if c != nil {
		lb, ub = c.Lb, c.Ub
	}
	if c.extensible() {
		extended, err := r.decodeBoolean()
		if err != nil {
			return 0, err
		}
		if extended {
			return r.ReadUnconstrainedWholeNumber()
		}
	}
	if lb != nil && ub != nil {
		return r.ReadConstrainedWholeNumber(*lb, *ub)
	}
	if lb != nil {
		return r.ReadSemiConstrainedWholeNumber(*lb)
	}
	return r.ReadUnconstrainedWholeNumber()
}

// 14 Decoding the enumerated type

func (r *Reader) ReadEnumerated(c *Constraint) (uint64, error) {
	var value uint64
	_, err := r.field(false, func() error {
		var err error
		value, err = r.decodeEnumerated(c)
		return err
	})
	return value, err
}

func (r *Reader) decodeEnumerated(c *Constraint) (uint64, error) {
	root := uint64(c.RootFields)
	if c.Extensible {
		extended, err := r.decodeBoolean()
		if err != nil {
			return 0, err
		}
		if extended {
			offset, err := r.ReadNormallySmallNonNegativeWholeNumber()
			if err != nil {
				return 0, err
			}
			value := root + offset
			if value >= uint64(c.Fields) {
				return 0, ErrInvalidChoiceIndex.New("enumeration %d with %d values", value, c.Fields)
			}
			return value, nil
		}
	}
	value, err := r.ReadConstrainedWholeNumber(0, int64(root-1))
	if err != nil {
		if ErrValueNotInRange.Has(err) {
			return 0, ErrInvalidChoiceIndex.New("enumeration exceeds %d root values", root)
		}
		return 0, err
	}
	return uint64(value), nil
}

// 16 Decoding the bitstring type

func (r *Reader) ReadBitString(c *Constraint) (*asn1.BitString, error) {
	var value *asn1.BitString
	_, err := r.field(false, func() error {
		var err error
		value, err = r.decodeBitString(c)
		return err
	})
	return value, err
}

func (r *Reader) decodeBitString(c *Constraint) (*asn1.BitString, error) {
	lb, ub := c.size()
	if c.extensible() {
		extended, err := r.decodeBoolean()
		if err != nil {
			return nil, err
		}
		if extended {
			return r.readBitStringFragments(nil, nil)
		}
	}

	if ub != nil && *ub == 0 {
		return &asn1.BitString{}, nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		value, err := r.readBits(*ub)
		if err != nil {
			return nil, err
		}
		return &asn1.BitString{Bytes: value, BitLength: int(*ub)}, nil
	}

	value, err := r.readBitStringFragments(lb, ub)
	if err != nil {
		return nil, err
	}
	n := uint64(value.BitLength)
	if !c.extensible() && ((lb != nil && n < *lb) || (ub != nil && n > *ub)) {
		return nil, ErrSizeNotInRange.New("bit length %d not in [%s, %s]", n, boundString(lb), boundString(ub))
	}
	return value, nil
}

func (r *Reader) readBitStringFragments(lb *uint64, ub *uint64) (*asn1.BitString, error) {
	var (
		content bytes.Buffer
		total   = uint64(0)
	)
	for {
		chunk, more, err := r.ReadLengthDeterminant(lb, ub)
		if err != nil {
			return nil, err
		}
		data, err := r.readBits(chunk)
		if err != nil {
			return nil, err
		}
		if total&7 == 0 {
			content.Write(data)
		} else {
			// realign the fragment onto the tail of the accumulated bits
			merged := bitbuffer.New()
			if err := merged.WriteBits(content.Bytes(), 0, total); err != nil {
				return nil, err
			}
			if err := merged.WriteBits(data, 0, chunk); err != nil {
				return nil, err
			}
			content.Reset()
			content.Write(merged.Bytes())
		}
		total += chunk
		if !more {
			return &asn1.BitString{Bytes: content.Bytes(), BitLength: int(total)}, nil
		}
	}
}

// readBits extracts count bits into a fresh byte slice, left aligned.
func (r *Reader) readBits(count uint64) ([]byte, error) {
	if count&7 == 0 {
		return r.view.ReadBytes(int(count >> 3))
	}
	out := make([]byte, (count+7)>>3)
	pos := uint64(0)
	for pos < count {
		num := count - pos
		if num > 64 {
			num = 64
		}
		value, err := r.view.Read(uint8(num))
		if err != nil {
			return nil, err
		}
		for i := uint64(0); i < num; i++ {
			bit := (value >> (num - 1 - i)) & 1
			out[(pos+i)>>3] |= byte(bit) << (7 - (pos+i)&7)
		}
		pos += num
	}
	return out, nil
}

// 17 Decoding the octetstring type

func (r *Reader) ReadOctetString(c *Constraint) ([]byte, error) {
	var value []byte
	_, err := r.field(false, func() error {
		var err error
		value, err = r.decodeOctetString(c)
		return err
	})
	return value, err
}

func (r *Reader) decodeOctetString(c *Constraint) ([]byte, error) {
	lb, ub := c.size()
	if c.extensible() {
		extended, err := r.decodeBoolean()
		if err != nil {
			return nil, err
		}
		if extended {
			return r.readOctetStringFragments(nil, nil)
		}
	}

	if ub != nil && *ub == 0 {
		return []byte{}, nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		return r.view.ReadBytes(int(*ub))
	}

	value, err := r.readOctetStringFragments(lb, ub)
	if err != nil {
		return nil, err
	}
	n := uint64(len(value))
	if !c.extensible() && ((lb != nil && n < *lb) || (ub != nil && n > *ub)) {
		return nil, ErrSizeNotInRange.New("length %d not in [%s, %s]", n, boundString(lb), boundString(ub))
	}
	return value, nil
}

func (r *Reader) readOctetStringFragments(lb *uint64, ub *uint64) ([]byte, error) {
	var content bytes.Buffer
	for {
		chunk, more, err := r.ReadLengthDeterminant(lb, ub)
		if err != nil {
			return nil, err
		}
		data, err := r.view.ReadBytes(int(chunk))
		if err != nil {
			return nil, err
		}
		content.Write(data)
		if !more {
			return content.Bytes(), nil
		}
	}
}

// 18 Decoding the null type

func (r *Reader) ReadNull() error {
	_, err := r.field(false, func() error {
		return nil
	})
	return err
}

// 19 Decoding the sequence type
//
// The fields callback must make exactly one Read call per declared
// field, in schema order. Extension fields the schema knows about but
// the callback never visits are skipped over on exit so the reader stays
// aligned for whatever follows the sequence.

func (r *Reader) ReadSequence(c *Constraint, fields func(*Reader) error) error {
	_, err := r.field(false, func() error {
		return r.decodeSequence(c, fields)
	})
	return err
}

func (r *Reader) decodeSequence(c *Constraint, fields func(*Reader) error) error {
	hasExt := false
	if c.Extensible {
		marker, err := r.decodeBoolean()
		if err != nil {
			return err
		}
		hasExt = marker
		if expected := c.Fields > c.RootFields; marker != expected {
			return ErrInvalidExtensionConstellation.New("extension marker %t, schema declares %d of %d fields in root",
				marker, c.RootFields, c.Fields)
		}
	}

	run, err := r.readRun(c.Optional)
	if err != nil {
		return err
	}

	saved := r.scope
	if hasExt {
		r.scope = scope{
			kind:          scopeExtensibleSequence,
			run:           run,
			callsUntilExt: c.RootFields,
			extFields:     c.Fields - c.RootFields,
		}
	} else {
		r.scope = scope{kind: scopeOptBitField, run: run}
	}
	err = fields(r)
	if err == nil {
		err = r.drainExtensions()
	}
	r.scope = saved
	return err
}

// ReadOptional reads the presence bit of an OPTIONAL field and, when it
// is set, runs the inner callback with the field's slot already
// consumed. It reports whether the field was present.
func (r *Reader) ReadOptional(inner func(*Reader) error) (bool, error) {
	return r.field(true, func() error {
		return inner(r)
	})
}

// 20 Decoding the sequence-of type

func (r *Reader) ReadSequenceOf(c *Constraint, element func(r *Reader, index int) error) (int, error) {
	var count int
	_, err := r.field(false, func() error {
		var err error
		count, err = r.decodeSequenceOf(c, element)
		return err
	})
	return count, err
}

func (r *Reader) decodeSequenceOf(c *Constraint, element func(r *Reader, index int) error) (int, error) {
	lb, ub := c.size()
	if c.extensible() {
		extended, err := r.decodeBoolean()
		if err != nil {
			return 0, err
		}
		if extended {
			return r.readSequenceOfFragments(nil, nil, element)
		}
	}

	if ub != nil && *ub == 0 {
		return 0, nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		count := int(*ub)
		for i := 0; i < count; i++ {
			if err := element(r, i); err != nil {
				return 0, err
			}
		}
		return count, nil
	}

	count, err := r.readSequenceOfFragments(lb, ub, element)
	if err != nil {
		return 0, err
	}
	n := uint64(count)
	if !c.extensible() && ((lb != nil && n < *lb) || (ub != nil && n > *ub)) {
		return 0, ErrSizeNotInRange.New("%d components not in [%s, %s]", n, boundString(lb), boundString(ub))
	}
	return count, nil
}

func (r *Reader) readSequenceOfFragments(lb *uint64, ub *uint64, element func(r *Reader, index int) error) (int, error) {
	index := 0
	for {
		chunk, more, err := r.ReadLengthDeterminant(lb, ub)
		if err != nil {
			return 0, err
		}
		for i := uint64(0); i < chunk; i++ {
			if err := element(r, index); err != nil {
				return 0, err
			}
			index++
		}
		if !more {
			return index, nil
		}
	}
}

// 23 Decoding the choice type
//
// The payload callback receives the decoded alternative index and
// decodes that alternative's value.

func (r *Reader) ReadChoice(c *Constraint, payload func(r *Reader, index uint64) error) (uint64, error) {
	var index uint64
	_, err := r.field(false, func() error {
		var err error
		index, err = r.decodeChoice(c, payload)
		return err
	})
	return index, err
}

func (r *Reader) decodeChoice(c *Constraint, payload func(r *Reader, index uint64) error) (uint64, error) {
	root := uint64(c.RootFields)
	extended := false
	if c.Extensible {
		var err error
		extended, err = r.decodeBoolean()
		if err != nil {
			return 0, err
		}
	}

	if !extended {
		index, err := r.ReadConstrainedWholeNumber(0, int64(root-1))
		if err != nil {
			if ErrValueNotInRange.Has(err) {
				return 0, ErrInvalidChoiceIndex.New("index exceeds %d root variants", root)
			}
			return 0, err
		}
		return uint64(index), payload(r, uint64(index))
	}

	offset, err := r.ReadNormallySmallNonNegativeWholeNumber()
	if err != nil {
		return 0, err
	}
	// the schema must be able to name the alternative; with no declared
	// extension variants every extension index is out of range
	index := root + offset
	if index >= uint64(c.Fields) {
		return 0, ErrInvalidChoiceIndex.New("index %d with %d variants", index, c.Fields)
	}
	return index, r.openType(func() error {
		return payload(r, index)
	})
}

// field consumes one scope slot and runs the body with the scope
// stashed. For OPTIONAL fields the presence bit decides whether the body
// runs at all; fields in the extension region are open-type unwrapped.
func (r *Reader) field(optional bool, body func() error) (bool, error) {
	present, wrap, err := r.enterField(optional)
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}

	saved := r.scope
	r.scope = scope{}
	if wrap {
		err = r.openType(body)
	} else {
		err = body()
	}
	r.scope = saved
	return true, err
}

func (r *Reader) enterField(optional bool) (present, wrap bool, err error) {
	present = true
	switch r.scope.slot(optional) {
	case slotPresence:
		present, err = r.takePresence()
		if err != nil {
			return false, false, err
		}
	case slotExtension:
		if err := r.extendScope(); err != nil {
			return false, false, err
		}
		present, err = r.takePresence()
		if err != nil {
			return false, false, err
		}
	}
	return present, r.scope.wrapped(), nil
}

// takePresence consumes the next pre-read presence bit of the active run.
func (r *Reader) takePresence() (bool, error) {
	slot, err := r.scope.run.take()
	if err != nil {
		return false, err
	}
	return r.scope.run.bits[slot], nil
}

// extendScope fires the extension-boundary transition: the addition
// count as a normally small number sizes the presence run that follows.
func (r *Reader) extendScope() error {
	count, err := r.ReadNormallySmallNonNegativeWholeNumber()
	if err != nil {
		return err
	}
	run, err := r.readRun(int(count) + 1)
	if err != nil {
		return err
	}
	r.scope = scope{kind: scopeAllBitField, run: run}
	return nil
}

// drainExtensions skips the open-type payloads of extension fields the
// callback never consumed, so the encoding of a sequence extended beyond
// this schema still decodes cleanly.
func (r *Reader) drainExtensions() error {
	if r.scope.kind == scopeExtensibleSequence {
		// callback stopped before the extension region; the count, the
		// presence run and the payloads are still on the stream
		if err := r.extendScope(); err != nil {
			return err
		}
	}
	if r.scope.kind != scopeAllBitField {
		return nil
	}
	for r.scope.run.used < r.scope.run.size {
		present, err := r.takePresence()
		if err != nil {
			return err
		}
		if !present {
			continue
		}
		if err := r.skipOpenType(); err != nil {
			return err
		}
	}
	return nil
}

// readRun pre-reads a presence bit-map of the given size.
func (r *Reader) readRun(size int) (bitRun, error) {
	run := bitRun{size: size, bits: make([]bool, size)}
	for i := 0; i < size; i++ {
		bit, err := r.view.Read(1)
		if err != nil {
			return bitRun{}, err
		}
		run.bits[i] = bit == 1
	}
	return run, nil
}

// openType runs the body against a view confined to the length-prefixed
// content octets (11.2), so a body that reads short or long cannot
// desynchronize the outer stream. Unfragmented content, the common case,
// is carved out of the stream in place; fragmented content is
// reassembled first.
func (r *Reader) openType(body func() error) error {
	chunk, more, err := r.ReadUnconstrainedLength()
	if err != nil {
		return err
	}

	var view *bitbuffer.View
	if more {
		var content bytes.Buffer
		for {
			data, err := r.view.ReadBytes(int(chunk))
			if err != nil {
				return err
			}
			content.Write(data)
			if !more {
				break
			}
			if chunk, more, err = r.ReadUnconstrainedLength(); err != nil {
				return err
			}
		}
		if view, err = bitbuffer.NewView(content.Bytes(), uint64(content.Len())*8); err != nil {
			return err
		}
	} else {
		if view, err = r.view.Sub(chunk * 8); err != nil {
			return err
		}
	}

	parent := r.view
	r.view = view
	err = body()
	r.view = parent
	return err
}

func (r *Reader) skipOpenType() error {
	for {
		chunk, more, err := r.ReadUnconstrainedLength()
		if err != nil {
			return err
		}
		if err := r.view.Skip(chunk * 8); err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
