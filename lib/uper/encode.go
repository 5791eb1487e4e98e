// Package uper implements the ITU-T X.691 Unaligned Packed Encoding Rules
// runtime: the packed numeric and length primitives of clause 11, the
// string encodings of clauses 16, 17 and 30, choice and enumerated index
// encoding, and the presence-bit bookkeeping for OPTIONAL fields and
// extensible containers.
//
// The Writer and Reader types are the facade consumed by generated
// bindings. Their Write<Kind>/Read<Kind> methods each consume one scope
// slot per declared field (see scope.go) and delegate to the clause
// primitives, which are also exported for direct use. The primitives
// write raw bits and never touch the scope.
//
// All whole numbers are modeled as 64-bit signed values; decoded
// magnitudes beyond 64 bits fail with ErrUnsupportedOperation.
package uper

import (
	"encoding/asn1"
	"math/bits"
	"strconv"

	"github.com/thebagchi/uper-go/lib/bitbuffer"
)

// Writer encodes values into a bit buffer it owns.
type Writer struct {
	buf   *bitbuffer.Buffer
	scope scope
}

// NewWriter creates an empty UPER writer.
func NewWriter() *Writer {
	return &Writer{
		buf: bitbuffer.New(),
	}
}

// Bytes returns the encoded bytes; trailing bits of the final byte are
// zero padding.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// BitLen returns the exact number of encoded bits. Decoders need it to
// tell padding from content.
func (w *Writer) BitLen() uint64 {
	return w.buf.BitLen()
}

// 11.3 Encoding as a non-negative-binary-integer
// |- 11.3.6 A minimum octet non-negative-binary-integer encoding of the whole number
// |  |  has a field which is a multiple of eight bits and also satisfies the condition
// |  |  that the leading eight bits of the field shall not all be zero unless the field
// |  |  is precisely eight bits long.

func BitsNonNegativeBinaryInteger(value uint64) int {
	if value == 0 {
		return 1
	}
	return bits.Len64(value)
}

func OctetsNonNegativeBinaryIntegerLength(value uint64) int {
	bits := BitsNonNegativeBinaryInteger(value)
	return (bits + 7) >> 3
}

// 11.4 Encoding as a 2's-complement-binary-integer
// |- 11.4.6 A minimum octet 2's-complement-binary-integer encoding of the whole number
// |  |  has a field-width that is a multiple of eight bits and also satisfies the
// |  |  condition that the leading nine bits of the field shall not all be zero and
// |  |  shall not all be ones.

func BitsTwosComplementBinaryInteger(value int64) int {
	if value == 0 {
		return 1
	}
	if value > 0 {
		return bits.Len64(uint64(value)) + 1
	}
	// For negative values, ensure "leading nine bits shall not all be ones" per 11.4.6
	return bits.Len64(uint64(^value)) + 1
}

func OctetsTwosComplementBinaryInteger(value int64) int {
	bits := BitsTwosComplementBinaryInteger(value)
	return (bits + 7) >> 3
}

// 11.5 Encoding of a constrained whole number
// |- 11.5.4 If "range" has the value 1, then the result of the encoding shall be an
// |  |  empty bit-field (no bits).
// |- 11.5.6 In the case of the UNALIGNED variant the value ("n" - "lb") shall be
// |  |  encoded as a non-negative-binary-integer in a bit-field as specified in 11.3
// |  |  with the minimum number of bits necessary to represent the range.

func (w *Writer) WriteConstrainedWholeNumber(lb, ub, n int64) error {
	if n < lb || n > ub {
		return ErrValueNotInRange.New("value %d not in [%d, %d]", n, lb, ub)
	}
	// range-1 as a uint64 so the full int64 span does not overflow
	vr := uint64(ub) - uint64(lb)
	if vr == 0 {
		return nil
	}
	var (
		bits  = BitsNonNegativeBinaryInteger(vr)
		value = uint64(n) - uint64(lb)
	)
	return w.buf.Write(uint8(bits), value)
}

// 11.6 Encoding of a normally small non-negative whole number
// |- 11.6.1 If the non-negative whole number, "n", is less than or equal to 63, then a
// |  |  single-bit bit-field shall be appended to the field-list with the bit set to 0,
// |  |  and "n" shall be encoded as a non-negative-binary-integer into a 6-bit bit-field.
// |- 11.6.2 If "n" is greater than or equal to 64, a single-bit bit-field with the bit
// |  |  set to 1 shall be appended to the field-list. The value "n" shall then be
// |  |  encoded as a semi-constrained whole number with "lb" equal to 0.

func (w *Writer) WriteNormallySmallNonNegativeWholeNumber(n uint64) error {
	if n <= 63 {
		if err := w.buf.Write(1, 0); err != nil {
			return err
		}
		return w.buf.Write(6, n)
	}
	if err := w.buf.Write(1, 1); err != nil {
		return err
	}
	return w.WriteSemiConstrainedWholeNumber(0, int64(n))
}

// 11.7 Encoding of a semi-constrained whole number
// |- 11.7.4 The value ("n" - "lb") shall be encoded as a non-negative-binary-integer
// |  |  in a bit-field with the minimum number of octets as specified in 11.3,
// |  |  preceded by a length determinant per 11.9.

func (w *Writer) WriteSemiConstrainedWholeNumber(lb, n int64) error {
	if n < lb {
		return ErrValueNotInRange.New("value %d below lower bound %d", n, lb)
	}
	var (
		value  = uint64(n) - uint64(lb)
		octets = OctetsNonNegativeBinaryIntegerLength(value)
	)
	if _, _, err := w.WriteLengthDeterminant(uint64(octets), nil, nil); err != nil {
		return err
	}
	return w.buf.Write(uint8(octets*8), value)
}

// 11.8 Encoding of an unconstrained whole number
// |- 11.8.3 The value "n" shall be encoded as a 2's-complement-binary-integer in a
// |  |  bit-field with the minimum number of octets as specified in 11.4, preceded by
// |  |  a length determinant per 11.9.

func (w *Writer) WriteUnconstrainedWholeNumber(n int64) error {
	octets := OctetsTwosComplementBinaryInteger(n)
	if _, _, err := w.WriteLengthDeterminant(uint64(octets), nil, nil); err != nil {
		return err
	}
	return w.buf.Write(uint8(octets*8), uint64(n))
}

// 11.9 General rules for encoding a length determinant
// |- 11.9.4.1 If the length determinant "n" to be encoded is a constrained whole number
// |  |  with "ub" less than 64K, then ("n"-"lb") shall be encoded as a
// |  |  non-negative-binary-integer using the minimum number of bits necessary to
// |  |  encode the "range" ("ub" - "lb" + 1), unless "range" is 1, in which case there
// |  |  shall be no length encoding.
// |- 11.9.4.2 Otherwise "n" shall be encoded as specified in 11.9.3.4 to 11.9.3.8.4:
// |  |  a) ("n" less than 128) a single octet containing "n" with bit 8 set to zero;
// |  |  b) ("n" less than 16K) two octets containing "n" with bit 8 of the first octet
// |  |     set to 1 and bit 7 set to zero;
// |  |  c) (large "n") a single octet containing a count "m" with bits 8 and 7 set to 1.
// |  |     The count "m" is one to four, and a fragment of "m" times 16K items
// |  |     follows, itself followed by another length encoding for the remainder.
//
// Returns the count of units this determinant covers and whether another
// determinant must follow it (the fragmented form c). Callers loop until
// more is false; re-invoking with a remainder of zero emits the
// terminating zero-length chunk of 11.9.3.8.3.

func (w *Writer) WriteLengthDeterminant(n uint64, lb *uint64, ub *uint64) (uint64, bool, error) {
	if ub != nil && *ub < MAX_CONSTRAINED_LENGTH {
		lower := uint64(0)
		if lb != nil {
			lower = *lb
		}
		if err := w.WriteConstrainedWholeNumber(int64(lower), int64(*ub), int64(n)); err != nil {
			return 0, false, err
		}
		return n, false, nil
	}
	return w.WriteUnconstrainedLength(n)
}

func (w *Writer) WriteUnconstrainedLength(n uint64) (uint64, bool, error) {
	if n <= 127 {
		if err := w.buf.Write(8, n); err != nil {
			return 0, false, err
		}
		return n, false, nil
	}

	if n < FRAGMENT_SIZE {
		value := (1 << 15) | n
		if err := w.buf.Write(16, value); err != nil {
			return 0, false, err
		}
		return n, false, nil
	}

	m := CalculateFragmentSize(n)
	k := m / FRAGMENT_SIZE

	value := (3 << 6) | k
	if err := w.buf.Write(8, value); err != nil {
		return 0, false, err
	}
	return m, true, nil
}

// CalculateFragmentSize returns the largest fragment (a multiple of 16K up
// to 64K) not exceeding n. Per 11.9.3.8.1 the multiplier is the maximum
// value such that the content holds at least that many whole units.
func CalculateFragmentSize(n uint64) uint64 {
	if n >= 4*FRAGMENT_SIZE {
		return 4 * FRAGMENT_SIZE // 64K
	} else if n >= 3*FRAGMENT_SIZE {
		return 3 * FRAGMENT_SIZE // 48K
	} else if n >= 2*FRAGMENT_SIZE {
		return 2 * FRAGMENT_SIZE // 32K
	} else {
		return FRAGMENT_SIZE // 16K
	}
}

// 12 Encoding the boolean type
// |- 12.1 The bit shall be set to 1 for TRUE and 0 for FALSE.
// |- 12.2 The bit-field shall be appended to the field-list with no length determinant.

func (w *Writer) WriteBoolean(value bool) error {
	return w.field(false, true, func() error {
		return w.encodeBoolean(value)
	})
}

func (w *Writer) encodeBoolean(value bool) error {
	if value {
		return w.buf.Write(1, 1)
	}
	return w.buf.Write(1, 0)
}

// 13 Encoding the integer type
// |- 13.1 If an extension marker is present in the constraint specification, a single
// |  |  bit is added, set to 1 if the value is not within the range of the extension
// |  |  root (the value is then encoded as unconstrained), and zero otherwise.
// |- 13.2.1 If constrained to a single value, there shall be no addition to the
// |  |  field-list.
// |- 13.2.2-13.2.4 Otherwise the value encodes per 11.5, 11.7 or 11.8 depending on
// |  |  which bounds are determinable.

func (w *Writer) WriteInteger(value int64, c *Constraint) error {
	return w.field(false, true, func() error {
		return w.encodeInteger(value, c)
	})
}

func (w *Writer) encodeInteger(value int64, c *Constraint) error {
	var lb, ub *int64
	if c != nil {
		lb, ub = c.Lb, c.Ub
	}
	if c.extensible() {
		extended := (lb != nil && value < *lb) || (ub != nil && value > *ub)
		if err := w.encodeBoolean(extended); err != nil {
			return err
		}
		if extended {
			return w.WriteUnconstrainedWholeNumber(value)
		}
	}
	if lb != nil && ub != nil {
		return w.WriteConstrainedWholeNumber(*lb, *ub, value)
	}
	if lb != nil {
		return w.WriteSemiConstrainedWholeNumber(*lb, value)
	}
	return w.WriteUnconstrainedWholeNumber(value)
}

// 14 Encoding the enumerated type
// |- 14.2 If the enumeration is within the extension root, it is encoded as a
// |  |  constrained whole number with "lb" zero and "ub" the count of root
// |  |  enumerations minus one, preceded by a zero bit if the type is extensible.
// |- 14.3 Otherwise a one bit is followed by the index offset from the root count,
// |  |  encoded as a normally small non-negative whole number.

func (w *Writer) WriteEnumerated(value uint64, c *Constraint) error {
	return w.field(false, true, func() error {
		return w.encodeEnumerated(value, c)
	})
}

func (w *Writer) encodeEnumerated(value uint64, c *Constraint) error {
	root := uint64(c.RootFields)
	if !c.Extensible {
		if value >= root {
			return ErrInvalidChoiceIndex.New("enumeration %d with %d values", value, root)
		}
		return w.WriteConstrainedWholeNumber(0, int64(root-1), int64(value))
	}
	if value < root {
		if err := w.buf.Write(1, 0); err != nil {
			return err
		}
		return w.WriteConstrainedWholeNumber(0, int64(root-1), int64(value))
	}
	if value >= uint64(c.Fields) {
		return ErrInvalidChoiceIndex.New("enumeration %d with %d values", value, c.Fields)
	}
	if err := w.buf.Write(1, 1); err != nil {
		return err
	}
	return w.WriteNormallySmallNonNegativeWholeNumber(value - root)
}

// 16 Encoding the bitstring type
// |- 16.6 If the type is extensible, a single bit is added, set to 1 if the length is
// |  |  not within the range of the extension root.
// |- 16.8 If constrained to zero length there shall be no addition to the field-list.
// |- 16.9/16.10 If all values are constrained to the same length less than 64K, the
// |  |  bitstring is placed in a bit-field of that length with no length determinant.
// |- 16.11 Otherwise the procedures of 11.9 apply, with fragmentation in units of bits.

func (w *Writer) WriteBitString(value *asn1.BitString, c *Constraint) error {
	return w.field(false, true, func() error {
		return w.encodeBitString(value, c)
	})
}

func (w *Writer) encodeBitString(value *asn1.BitString, c *Constraint) error {
	var (
		lb, ub = c.size()
		n      = uint64(value.BitLength)
	)
	if c.extensible() {
		extended := (lb != nil && n < *lb) || (ub != nil && n > *ub)
		if err := w.encodeBoolean(extended); err != nil {
			return err
		}
		if extended {
			zero := uint64(0)
			return w.writeBitStringFragments(value.Bytes, n, &zero, nil)
		}
	} else if (lb != nil && n < *lb) || (ub != nil && n > *ub) {
		return ErrSizeNotInRange.New("bit length %d not in [%s, %s]", n, boundString(lb), boundString(ub))
	}

	if ub != nil && *ub == 0 {
		return nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		return w.buf.WriteBits(value.Bytes, 0, n)
	}

	return w.writeBitStringFragments(value.Bytes, n, lb, ub)
}

func (w *Writer) writeBitStringFragments(value []byte, count uint64, lb *uint64, ub *uint64) error {
	offset := uint64(0)
	for {
		chunk, more, err := w.WriteLengthDeterminant(count-offset, lb, ub)
		if err != nil {
			return err
		}
		if err := w.buf.WriteBits(value, offset, chunk); err != nil {
			return err
		}
		offset += chunk
		if !more {
			return nil
		}
	}
}

// 17 Encoding the octetstring type
// |- 17.3 If the type is extensible, a single bit is added, set to 1 if the length is
// |  |  not within the range of the extension root.
// |- 17.5 If constrained to zero length there shall be no addition to the field-list.
// |- 17.6/17.7 If all values are constrained to the same length less than 64K, the
// |  |  octetstring is placed in a bit-field of that length with no length determinant.
// |- 17.8 Otherwise the procedures of 11.9 apply, with fragmentation in units of
// |  |  octets.

func (w *Writer) WriteOctetString(value []byte, c *Constraint) error {
	return w.field(false, true, func() error {
		return w.encodeOctetString(value, c)
	})
}

func (w *Writer) encodeOctetString(value []byte, c *Constraint) error {
	var (
		lb, ub = c.size()
		n      = uint64(len(value))
	)
	if c.extensible() {
		extended := (lb != nil && n < *lb) || (ub != nil && n > *ub)
		if err := w.encodeBoolean(extended); err != nil {
			return err
		}
		if extended {
			zero := uint64(0)
			return w.writeOctetStringFragments(value, &zero, nil)
		}
	} else if (lb != nil && n < *lb) || (ub != nil && n > *ub) {
		return ErrSizeNotInRange.New("length %d not in [%s, %s]", n, boundString(lb), boundString(ub))
	}

	if ub != nil && *ub == 0 {
		return nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		return w.buf.WriteBytes(value)
	}

	return w.writeOctetStringFragments(value, lb, ub)
}

func (w *Writer) writeOctetStringFragments(value []byte, lb *uint64, ub *uint64) error {
	var (
		n      = uint64(len(value))
		offset = uint64(0)
	)
	for {
		chunk, more, err := w.WriteLengthDeterminant(n-offset, lb, ub)
		if err != nil {
			return err
		}
		if err := w.buf.WriteBytes(value[offset : offset+chunk]); err != nil {
			return err
		}
		offset += chunk
		if !more {
			return nil
		}
	}
}

// 18 Encoding the null type
// |- Null values never contribute to the octets of an encoding. The field call still
// |  consumes a scope slot, so a NULL in the extension region gets its presence bit
// |  and a minimum-size open-type wrapper.

func (w *Writer) WriteNull() error {
	return w.field(false, true, func() error {
		return nil
	})
}

// 19 Encoding the sequence type
// |- 19.1 If the type is extensible, a single bit says whether values of extension
// |  |  additions are present in the encoding.
// |- 19.2/19.3 A preamble bit-map records the presence of each OPTIONAL or DEFAULT
// |  |  component of the extension root.
// |- 19.7/19.8 Immediately before the first extension addition, a count of the
// |  |  additions is encoded as a normally small number, followed by a presence
// |  |  bit-map for the additions; each present addition is encoded as an open type.
//
// The fields callback runs with the container scope active and must make
// exactly one Write call per declared field, in schema order.

func (w *Writer) WriteSequence(c *Constraint, fields func(*Writer) error) error {
	return w.field(false, true, func() error {
		return w.encodeSequence(c, fields)
	})
}

func (w *Writer) encodeSequence(c *Constraint, fields func(*Writer) error) error {
	hasExt := false
	if c.Extensible {
		hasExt = c.Fields > c.RootFields
		if err := w.encodeBoolean(hasExt); err != nil {
			return err
		}
	}

	run, err := w.reserveRun(c.Optional)
	if err != nil {
		return err
	}

	saved := w.scope
	if hasExt {
		w.scope = scope{
			kind:          scopeExtensibleSequence,
			run:           run,
			callsUntilExt: c.RootFields,
			extFields:     c.Fields - c.RootFields,
		}
	} else {
		w.scope = scope{kind: scopeOptBitField, run: run}
	}
	err = fields(w)
	w.scope = saved
	return err
}

// WriteOptional supplies the presence bit for an OPTIONAL field and, when
// present, delegates to the inner callback with the field's slot already
// consumed.
func (w *Writer) WriteOptional(present bool, inner func(*Writer) error) error {
	return w.field(true, present, func() error {
		return inner(w)
	})
}

// 20 Encoding the sequence-of type
// |- The component count is encoded like a string length, with the same extensible,
// |  degenerate, fixed-size and fragmented branches; fragmentation counts in
// |  components. Each component encoding is self-delimiting and does not share the
// |  enclosing container's presence-bit layout.

func (w *Writer) WriteSequenceOf(count int, c *Constraint, element func(w *Writer, index int) error) error {
	return w.field(false, true, func() error {
		return w.encodeSequenceOf(count, c, element)
	})
}

func (w *Writer) encodeSequenceOf(count int, c *Constraint, element func(w *Writer, index int) error) error {
	var (
		lb, ub = c.size()
		n      = uint64(count)
	)
	if c.extensible() {
		extended := (lb != nil && n < *lb) || (ub != nil && n > *ub)
		if err := w.encodeBoolean(extended); err != nil {
			return err
		}
		if extended {
			zero := uint64(0)
			return w.writeSequenceOfFragments(n, &zero, nil, element)
		}
	} else if (lb != nil && n < *lb) || (ub != nil && n > *ub) {
		return ErrSizeNotInRange.New("%d components not in [%s, %s]", n, boundString(lb), boundString(ub))
	}

	if ub != nil && *ub == 0 {
		return nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		for i := 0; i < count; i++ {
			if err := element(w, i); err != nil {
				return err
			}
		}
		return nil
	}

	return w.writeSequenceOfFragments(n, lb, ub, element)
}

func (w *Writer) writeSequenceOfFragments(n uint64, lb *uint64, ub *uint64, element func(w *Writer, index int) error) error {
	index := uint64(0)
	for {
		chunk, more, err := w.WriteLengthDeterminant(n-index, lb, ub)
		if err != nil {
			return err
		}
		for i := uint64(0); i < chunk; i++ {
			if err := element(w, int(index)); err != nil {
				return err
			}
			index++
		}
		if !more {
			return nil
		}
	}
}

// 23 Encoding the choice type
// |- 23.5 The chosen alternative within the extension root is encoded as a
// |  |  constrained whole number with "lb" zero and "ub" the count of root
// |  |  alternatives minus one, preceded by a zero bit if the type is extensible.
// |- 23.8 An alternative outside the root is signalled by a one bit and its index
// |  |  offset as a normally small number; its value is encoded as an open type so
// |  |  decoders unaware of the alternative can skip it.

func (w *Writer) WriteChoice(index uint64, c *Constraint, payload func(*Writer) error) error {
	return w.field(false, true, func() error {
		return w.encodeChoice(index, c, payload)
	})
}

func (w *Writer) encodeChoice(index uint64, c *Constraint, payload func(*Writer) error) error {
	root := uint64(c.RootFields)
	if !c.Extensible {
		if index >= root {
			return ErrInvalidChoiceIndex.New("index %d with %d variants", index, root)
		}
		if err := w.WriteConstrainedWholeNumber(0, int64(root-1), int64(index)); err != nil {
			return err
		}
		return payload(w)
	}

	if index < root {
		if err := w.buf.Write(1, 0); err != nil {
			return err
		}
		if err := w.WriteConstrainedWholeNumber(0, int64(root-1), int64(index)); err != nil {
			return err
		}
		return payload(w)
	}

	if index >= uint64(c.Fields) {
		return ErrInvalidChoiceIndex.New("index %d with %d variants", index, c.Fields)
	}
	if err := w.buf.Write(1, 1); err != nil {
		return err
	}
	if err := w.WriteNormallySmallNonNegativeWholeNumber(index - root); err != nil {
		return err
	}
	return w.openType(func() error {
		return payload(w)
	})
}

// field consumes one scope slot, then runs the body with the scope
// stashed: nested encodings are self-delimiting and never share the
// enclosing container's presence-bit layout. Fields in the extension
// region are additionally open-type wrapped.
func (w *Writer) field(optional, present bool, body func() error) error {
	wrap, err := w.enterField(optional, present)
	if err != nil {
		return err
	}
	if !present {
		return nil
	}

	saved := w.scope
	w.scope = scope{}
	if wrap {
		err = w.openType(body)
	} else {
		err = body()
	}
	w.scope = saved
	return err
}

func (w *Writer) enterField(optional, present bool) (wrap bool, err error) {
	switch w.scope.slot(optional) {
	case slotPresence:
		if err := w.setPresence(present); err != nil {
			return false, err
		}
	case slotExtension:
		if err := w.extendScope(); err != nil {
			return false, err
		}
		if err := w.setPresence(present); err != nil {
			return false, err
		}
	}
	return w.scope.wrapped(), nil
}

// setPresence patches the next reserved presence bit in place.
func (w *Writer) setPresence(present bool) error {
	slot, err := w.scope.run.take()
	if err != nil {
		return err
	}
	return w.buf.SetBit(w.scope.run.pos+uint64(slot), present)
}

// extendScope fires the extension-boundary transition: the addition count
// as a normally small number, then a fresh presence run covering every
// extension field.
func (w *Writer) extendScope() error {
	count := w.scope.extFields
	if err := w.WriteNormallySmallNonNegativeWholeNumber(uint64(count - 1)); err != nil {
		return err
	}
	run, err := w.reserveRun(count)
	if err != nil {
		return err
	}
	w.scope = scope{kind: scopeAllBitField, run: run}
	return nil
}

// reserveRun writes size zero bits and records their position so the
// per-field calls can patch them as the fields are visited.
func (w *Writer) reserveRun(size int) (bitRun, error) {
	run := bitRun{pos: w.buf.BitLen(), size: size}
	for i := 0; i < size; i++ {
		if err := w.buf.Write(1, 0); err != nil {
			return bitRun{}, err
		}
	}
	return run, nil
}

// openType encodes the body through an isolated scratch buffer and
// splices the result in as a length-prefixed octet string (11.2). The
// parent buffer never sees partial state from a failed body.
func (w *Writer) openType(body func() error) error {
	parent := w.buf
	w.buf = bitbuffer.New()
	err := body()
	content := w.buf.Bytes()
	w.buf = parent
	if err != nil {
		return err
	}
	// 11.2.6: an empty encoding still occupies one zero octet
	if len(content) == 0 {
		content = []byte{0x00}
	}
	return w.writeOctetStringFragments(content, nil, nil)
}

func boundString(bound *uint64) string {
	if bound == nil {
		return "unset"
	}
	return strconv.FormatUint(*bound, 10)
}
