package uper

import (
	"bytes"
	"testing"
)

func reader(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewReader(data, uint64(len(data))*8)
	if err != nil {
		t.Fatalf("NewReader: %+v", err)
	}
	return r
}

func TestReadConstrainedWholeNumber(t *testing.T) {
	t.Run("FULL_OCTET_RANGE", func(t *testing.T) {
		r := reader(t, []byte{0x80})
		value, err := r.ReadConstrainedWholeNumber(0, 255)
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value != 128 {
			t.Errorf("got %d, want 128", value)
		}
	})
	t.Run("NEGATIVE_LOWER_BOUND", func(t *testing.T) {
		r := reader(t, []byte{0x70})
		value, err := r.ReadConstrainedWholeNumber(-5, 5)
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value != 2 {
			t.Errorf("got %d, want 2", value)
		}
	})
	t.Run("SINGLE_VALUE_READS_NOTHING", func(t *testing.T) {
		r := reader(t, nil)
		value, err := r.ReadConstrainedWholeNumber(5, 5)
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value != 5 {
			t.Errorf("got %d, want 5", value)
		}
	})
	t.Run("OFFSET_BEYOND_RANGE", func(t *testing.T) {
		// range 5 occupies 3 bits; offset 7 is unreachable for valid encoders
		r := reader(t, []byte{0xE0})
		_, err := r.ReadConstrainedWholeNumber(0, 4)
		if !ErrValueNotInRange.Has(err) {
			t.Errorf("got %v, want value not in range", err)
		}
	})
}

func TestReadNormallySmallNonNegativeWholeNumber(t *testing.T) {
	test := func(data []byte, expected uint64, description string) {
		t.Run(description, func(t *testing.T) {
			r := reader(t, data)
			value, err := r.ReadNormallySmallNonNegativeWholeNumber()
			if err != nil {
				t.Fatalf("decode error: %+v", err)
			}
			if value != expected {
				t.Errorf("got %d, want %d", value, expected)
			}
		})
	}
	test([]byte{0x00}, 0, "ZERO")
	test([]byte{0x7E}, 63, "MAX_SMALL_FORM")
	test([]byte{0x80, 0xA0, 0x00}, 64, "FIRST_LARGE_FORM")
	test([]byte{0x80, 0xFF, 0x00}, 254, "LARGE_FORM_254")
}

func TestReadUnconstrainedWholeNumber(t *testing.T) {
	test := func(data []byte, expected int64, description string) {
		t.Run(description, func(t *testing.T) {
			r := reader(t, data)
			value, err := r.ReadUnconstrainedWholeNumber()
			if err != nil {
				t.Fatalf("decode error: %+v", err)
			}
			if value != expected {
				t.Errorf("got %d, want %d", value, expected)
			}
		})
	}
	test([]byte{0x01, 0x00}, 0, "ZERO")
	test([]byte{0x01, 0xF4}, -12, "NEGATIVE_12_SIGN_EXTENDS")
	test([]byte{0x01, 0x7F}, 127, "MAX_ONE_OCTET")
	test([]byte{0x02, 0x00, 0x80}, 128, "TWO_OCTET_POSITIVE")
	test([]byte{0x02, 0xFF, 0x7F}, -129, "TWO_OCTET_NEGATIVE")
	test([]byte{0x08, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, -9223372036854775808, "MIN_INT64")

	t.Run("MAGNITUDE_BEYOND_64_BITS", func(t *testing.T) {
		r := reader(t, []byte{0x09, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
		_, err := r.ReadUnconstrainedWholeNumber()
		if !ErrUnsupportedOperation.Has(err) {
			t.Errorf("got %v, want unsupported operation", err)
		}
	})
}

func TestReadUnconstrainedLength(t *testing.T) {
	test := func(data []byte, chunk uint64, more bool, description string) {
		t.Run(description, func(t *testing.T) {
			r := reader(t, data)
			gotChunk, gotMore, err := r.ReadUnconstrainedLength()
			if err != nil {
				t.Fatalf("decode error: %+v", err)
			}
			if gotChunk != chunk || gotMore != more {
				t.Errorf("got (%d, %t), want (%d, %t)", gotChunk, gotMore, chunk, more)
			}
		})
	}
	test([]byte{0x00}, 0, false, "ZERO")
	test([]byte{0x7F}, 127, false, "MAX_ONE_OCTET_FORM")
	test([]byte{0x80, 0x80}, 128, false, "MIN_TWO_OCTET_FORM")
	test([]byte{0xBF, 0xFF}, 16383, false, "MAX_TWO_OCTET_FORM")
	test([]byte{0xC1}, 16384, true, "FRAGMENT_16K")
	test([]byte{0xC2}, 32768, true, "FRAGMENT_32K")
	test([]byte{0xC4}, 65536, true, "FRAGMENT_64K")

	t.Run("FRAGMENT_MULTIPLIER_ZERO", func(t *testing.T) {
		r := reader(t, []byte{0xC0})
		_, _, err := r.ReadUnconstrainedLength()
		if err == nil || !Error.Has(err) {
			t.Errorf("got %v, want multiplier error", err)
		}
	})
	t.Run("FRAGMENT_MULTIPLIER_FIVE", func(t *testing.T) {
		r := reader(t, []byte{0xC5})
		_, _, err := r.ReadUnconstrainedLength()
		if err == nil || !Error.Has(err) {
			t.Errorf("got %v, want multiplier error", err)
		}
	})
}

func TestReadBoolean(t *testing.T) {
	r := reader(t, []byte{0x80})
	value, err := r.ReadBoolean()
	if err != nil {
		t.Fatalf("decode error: %+v", err)
	}
	if !value {
		t.Error("got false, want true")
	}
}

func TestReadInteger(t *testing.T) {
	decode := func(t *testing.T, data []byte, c *Constraint) int64 {
		t.Helper()
		r := reader(t, data)
		value, err := r.ReadInteger(c)
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		return value
	}
	t.Run("SINGLE_VALUE", func(t *testing.T) {
		if v := decode(t, nil, &Constraint{Kind: KindInteger, Lb: Bound(5), Ub: Bound(5)}); v != 5 {
			t.Errorf("got %d, want 5", v)
		}
	})
	t.Run("CONSTRAINED", func(t *testing.T) {
		if v := decode(t, []byte{0x70}, &Constraint{Kind: KindInteger, Lb: Bound(-5), Ub: Bound(5)}); v != 2 {
			t.Errorf("got %d, want 2", v)
		}
	})
	t.Run("SEMI_CONSTRAINED", func(t *testing.T) {
		if v := decode(t, []byte{0x02, 0x01, 0x00}, &Constraint{Kind: KindInteger, Lb: Bound(1000)}); v != 1256 {
			t.Errorf("got %d, want 1256", v)
		}
	})
	t.Run("EXTENSIBLE_OUTSIDE_ROOT", func(t *testing.T) {
		c := &Constraint{Kind: KindInteger, Lb: Bound(0), Ub: Bound(7), Extensible: true}
		if v := decode(t, []byte{0x80, 0x85, 0x00}, c); v != 10 {
			t.Errorf("got %d, want 10", v)
		}
	})
	t.Run("TRUNCATED_INPUT", func(t *testing.T) {
		r := reader(t, []byte{0xAB})
		_, err := r.ReadInteger(&Constraint{Kind: KindInteger, Lb: Bound(0), Ub: Bound(65535)})
		if !ErrEndOfStream.Has(err) {
			t.Errorf("got %v, want end of stream", err)
		}
	})
}

func TestReadEnumerated(t *testing.T) {
	t.Run("ROOT_VALUE", func(t *testing.T) {
		r := reader(t, []byte{0x80})
		value, err := r.ReadEnumerated(&Constraint{Kind: KindEnumerated, Fields: 4, RootFields: 4})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value != 2 {
			t.Errorf("got %d, want 2", value)
		}
	})
	t.Run("EXTENSION_VALUE", func(t *testing.T) {
		r := reader(t, []byte{0x81})
		value, err := r.ReadEnumerated(&Constraint{Kind: KindEnumerated, Fields: 8, RootFields: 4, Extensible: true})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value != 5 {
			t.Errorf("got %d, want 5", value)
		}
	})
	t.Run("EXTENSION_WITHOUT_DECLARED_VALUES", func(t *testing.T) {
		// extension marker set against a schema with only root values
		r := reader(t, []byte{0x80})
		_, err := r.ReadEnumerated(&Constraint{Kind: KindEnumerated, Fields: 4, RootFields: 4, Extensible: true})
		if !ErrInvalidChoiceIndex.Has(err) {
			t.Errorf("got %v, want invalid choice index", err)
		}
	})
	t.Run("EXTENSION_BEYOND_SCHEMA", func(t *testing.T) {
		// extension offset 6 names variant 10 of an 8 variant schema
		r := reader(t, []byte{0x86})
		_, err := r.ReadEnumerated(&Constraint{Kind: KindEnumerated, Fields: 8, RootFields: 4, Extensible: true})
		if !ErrInvalidChoiceIndex.Has(err) {
			t.Errorf("got %v, want invalid choice index", err)
		}
	})
}

func TestReadBitString(t *testing.T) {
	t.Run("FIXED_SIZE", func(t *testing.T) {
		r := reader(t, []byte{0xAB, 0xC0})
		value, err := r.ReadBitString(&Constraint{Kind: KindBitString, Lb: Bound(12), Ub: Bound(12)})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value.BitLength != 12 || !bytes.Equal(value.Bytes, []byte{0xAB, 0xC0}) {
			t.Errorf("got %d bits %x, want 12 bits abc0", value.BitLength, value.Bytes)
		}
	})
	t.Run("UNCONSTRAINED", func(t *testing.T) {
		r := reader(t, []byte{0x04, 0xA0})
		value, err := r.ReadBitString(&Constraint{Kind: KindBitString})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value.BitLength != 4 || !bytes.Equal(value.Bytes, []byte{0xA0}) {
			t.Errorf("got %d bits %x, want 4 bits a0", value.BitLength, value.Bytes)
		}
	})
	t.Run("DEGENERATE_EMPTY", func(t *testing.T) {
		r := reader(t, nil)
		value, err := r.ReadBitString(&Constraint{Kind: KindBitString, Lb: Bound(0), Ub: Bound(0)})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if value.BitLength != 0 {
			t.Errorf("got %d bits, want 0", value.BitLength)
		}
	})
}

func TestReadOctetString(t *testing.T) {
	t.Run("FIXED_SIZE", func(t *testing.T) {
		r := reader(t, []byte{0xDE, 0xAD})
		value, err := r.ReadOctetString(&Constraint{Kind: KindOctetString, Lb: Bound(2), Ub: Bound(2)})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if !bytes.Equal(value, []byte{0xDE, 0xAD}) {
			t.Errorf("got %x, want dead", value)
		}
	})
	t.Run("FRAGMENTED_EXACT_MULTIPLE", func(t *testing.T) {
		var data bytes.Buffer
		data.WriteByte(0xC1)
		data.Write(bytes.Repeat([]byte{0xA5}, 16384))
		data.WriteByte(0x00)
		r := reader(t, data.Bytes())
		value, err := r.ReadOctetString(&Constraint{Kind: KindOctetString})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if len(value) != 16384 {
			t.Fatalf("got %d octets, want 16384", len(value))
		}
		if r.Remaining() != 0 {
			t.Errorf("%d bits left unread", r.Remaining())
		}
	})
	t.Run("FRAGMENTED_PARTIAL_FINAL_CHUNK", func(t *testing.T) {
		var data bytes.Buffer
		data.WriteByte(0xC2)
		data.Write(bytes.Repeat([]byte{0x11}, 32768))
		data.WriteByte(0x03)
		data.Write([]byte{0xAA, 0xBB, 0xCC})
		r := reader(t, data.Bytes())
		value, err := r.ReadOctetString(&Constraint{Kind: KindOctetString})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if len(value) != 32771 {
			t.Fatalf("got %d octets, want 32771", len(value))
		}
		if !bytes.Equal(value[32768:], []byte{0xAA, 0xBB, 0xCC}) {
			t.Errorf("tail = %x, want aabbcc", value[32768:])
		}
	})
}

func TestReadSequence(t *testing.T) {
	t.Run("TWO_OPTIONAL_FIELDS", func(t *testing.T) {
		// one octet but only two meaningful bits
		r, err := NewReader([]byte{0x80}, 2)
		if err != nil {
			t.Fatalf("NewReader: %+v", err)
		}
		c := &Constraint{Kind: KindSequence, Fields: 2, RootFields: 2, Optional: 2}
		var first, second bool
		err = r.ReadSequence(c, func(r *Reader) error {
			var err error
			if first, err = r.ReadOptional(func(r *Reader) error { return r.ReadNull() }); err != nil {
				return err
			}
			second, err = r.ReadOptional(func(r *Reader) error { return r.ReadNull() })
			return err
		})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if !first || second {
			t.Errorf("presence = (%t, %t), want (true, false)", first, second)
		}
	})
	t.Run("EXTENSION_FIELD_WRAPPED", func(t *testing.T) {
		r := reader(t, []byte{0xE0, 0x10, 0x18, 0x00})
		c := &Constraint{Kind: KindSequence, Fields: 3, RootFields: 2, Optional: 1, Extensible: true}
		var a, b, c3 bool
		var bPresent bool
		err := r.ReadSequence(c, func(r *Reader) error {
			var err error
			if a, err = r.ReadBoolean(); err != nil {
				return err
			}
			if bPresent, err = r.ReadOptional(func(r *Reader) error {
				b, err = r.ReadBoolean()
				return err
			}); err != nil {
				return err
			}
			c3, err = r.ReadBoolean()
			return err
		})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if !a || !bPresent || b || !c3 {
			t.Errorf("got a=%t present=%t b=%t c=%t, want true true false true", a, bPresent, b, c3)
		}
	})
	t.Run("MARKER_CONTRADICTS_SCHEMA", func(t *testing.T) {
		// marker claims extension values for a schema whose fields all sit in the root
		r := reader(t, []byte{0x80})
		c := &Constraint{Kind: KindSequence, Fields: 1, RootFields: 1, Extensible: true}
		err := r.ReadSequence(c, func(r *Reader) error {
			_, err := r.ReadBoolean()
			return err
		})
		if !ErrInvalidExtensionConstellation.Has(err) {
			t.Errorf("got %v, want invalid extension constellation", err)
		}
	})
	t.Run("UNVISITED_EXTENSIONS_ARE_SKIPPED", func(t *testing.T) {
		// a peer serialized one extension field this callback never reads;
		// the sequence must still leave the stream aligned for what follows
		w := NewWriter()
		full := &Constraint{Kind: KindSequence, Fields: 3, RootFields: 2, Extensible: true}
		err := w.WriteSequence(full, func(w *Writer) error {
			if err := w.WriteBoolean(true); err != nil {
				return err
			}
			if err := w.WriteBoolean(false); err != nil {
				return err
			}
			return w.WriteInteger(-12, &Constraint{Kind: KindInteger})
		})
		if err != nil {
			t.Fatalf("encode error: %+v", err)
		}
		if err := w.WriteBoolean(true); err != nil {
			t.Fatalf("encode error: %+v", err)
		}

		r := reader(t, w.Bytes())
		err = r.ReadSequence(full, func(r *Reader) error {
			if _, err := r.ReadBoolean(); err != nil {
				return err
			}
			_, err := r.ReadBoolean()
			return err
		})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		trailing, err := r.ReadBoolean()
		if err != nil {
			t.Fatalf("decode error after sequence: %+v", err)
		}
		if !trailing {
			t.Error("trailing boolean lost, stream desynchronized")
		}
	})
}

func TestReadChoice(t *testing.T) {
	t.Run("ROOT_VARIANT", func(t *testing.T) {
		r := reader(t, []byte{0x60})
		c := &Constraint{Kind: KindChoice, Fields: 4, RootFields: 4}
		var payload bool
		index, err := r.ReadChoice(c, func(r *Reader, index uint64) error {
			var err error
			payload, err = r.ReadBoolean()
			return err
		})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if index != 1 || !payload {
			t.Errorf("got index %d payload %t, want 1 true", index, payload)
		}
	})
	t.Run("EXTENSION_VARIANT_OPEN_TYPE", func(t *testing.T) {
		r := reader(t, []byte{0x80, 0x01, 0x80})
		c := &Constraint{Kind: KindChoice, Fields: 3, RootFields: 2, Extensible: true}
		var payload bool
		index, err := r.ReadChoice(c, func(r *Reader, index uint64) error {
			var err error
			payload, err = r.ReadBoolean()
			return err
		})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if index != 2 || !payload {
			t.Errorf("got index %d payload %t, want 2 true", index, payload)
		}
	})
	t.Run("OPEN_TYPE_CONFINES_SHORT_READ", func(t *testing.T) {
		// the payload reads 1 bit of a 2 octet open type; the cursor must
		// land past the content so the trailing boolean survives
		r, err := NewReader([]byte{0x80, 0x02, 0x80, 0x00, 0x80}, 33)
		if err != nil {
			t.Fatalf("NewReader: %+v", err)
		}
		c := &Constraint{Kind: KindChoice, Fields: 3, RootFields: 2, Extensible: true}
		var payload bool
		index, err := r.ReadChoice(c, func(r *Reader, index uint64) error {
			var err error
			payload, err = r.ReadBoolean()
			return err
		})
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		trailing, err := r.ReadBoolean()
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		if index != 2 || !payload || !trailing {
			t.Errorf("got index %d payload %t trailing %t, want 2 true true", index, payload, trailing)
		}
	})
	t.Run("EXTENSION_WITHOUT_DECLARED_VARIANTS", func(t *testing.T) {
		// extension marker set and index 0 against a schema whose variants
		// all sit in the root; nothing can name the alternative
		r := reader(t, []byte{0x80, 0x01, 0x00})
		c := &Constraint{Kind: KindChoice, Fields: 1, RootFields: 1, Extensible: true}
		invoked := false
		_, err := r.ReadChoice(c, func(r *Reader, index uint64) error {
			invoked = true
			return nil
		})
		if !ErrInvalidChoiceIndex.Has(err) {
			t.Errorf("got %v, want invalid choice index", err)
		}
		if invoked {
			t.Error("payload callback ran for an unnameable variant")
		}
	})
	t.Run("INDEX_BEYOND_ROOT", func(t *testing.T) {
		// 2 bits of index encode 3 for a root of 3 variants
		r := reader(t, []byte{0xC0})
		c := &Constraint{Kind: KindChoice, Fields: 3, RootFields: 3}
		_, err := r.ReadChoice(c, func(r *Reader, index uint64) error {
			return nil
		})
		if !ErrInvalidChoiceIndex.Has(err) {
			t.Errorf("got %v, want invalid choice index", err)
		}
	})
}

func TestReadCharacterString(t *testing.T) {
	decode := func(t *testing.T, data []byte, c *Constraint) string {
		t.Helper()
		r := reader(t, data)
		value, err := r.ReadCharacterString(c)
		if err != nil {
			t.Fatalf("decode error: %+v", err)
		}
		return value
	}
	t.Run("NUMERIC", func(t *testing.T) {
		if v := decode(t, []byte{0x02, 0x53}, &Constraint{Kind: KindNumericString}); v != "42" {
			t.Errorf("got %q, want \"42\"", v)
		}
	})
	t.Run("IA5_UNCONSTRAINED", func(t *testing.T) {
		if v := decode(t, []byte{0x02, 0x91, 0xA4}, &Constraint{Kind: KindIA5String}); v != "Hi" {
			t.Errorf("got %q, want \"Hi\"", v)
		}
	})
	t.Run("IA5_FIXED_SIZE", func(t *testing.T) {
		c := &Constraint{Kind: KindIA5String, Lb: Bound(2), Ub: Bound(2)}
		if v := decode(t, []byte{0x91, 0xA4}, c); v != "Hi" {
			t.Errorf("got %q, want \"Hi\"", v)
		}
	})
	t.Run("VISIBLE_REJECTS_CONTROL", func(t *testing.T) {
		// length 1, then 7 bits of 0x0A
		r := reader(t, []byte{0x01, 0x14})
		_, err := r.ReadCharacterString(&Constraint{Kind: KindVisibleString})
		if !ErrInvalidCharacter.Has(err) {
			t.Errorf("got %v, want invalid character", err)
		}
	})
}

func TestErrorClasses(t *testing.T) {
	// reader failures carry both the shared class and their specific class
	r := reader(t, nil)
	_, err := r.ReadBoolean()
	if err == nil {
		t.Fatal("read from empty stream succeeded")
	}
	if !ErrEndOfStream.Has(err) {
		t.Errorf("error %v is not end of stream", err)
	}
}
