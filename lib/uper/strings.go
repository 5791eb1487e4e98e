package uper

import (
	"strings"
	"unicode/utf8"
)

// 30 Encoding the restricted character string types
// |- 30.5.2 For the UNALIGNED variant the number of bits per character is the least
// |  |  number of bits that can represent every character of the effective alphabet.
// |- 30.5.4 Where the alphabet is the full type alphabet, each character is encoded
// |  |  as its character value in that many bits.
//
// NumericString uses a 4-bit alphabet of space and the digits; the 7-bit
// types encode each character directly as its code point. UTF8String is
// not a known-multiplier type and travels as its UTF-8 octets with an
// octet-count determinant.

const charBitsNumeric = 4
const charBits7 = 7

// numericValue maps a NumericString character to its 4-bit value, space
// first per the canonical alphabet ordering.
func numericValue(ch byte) (uint64, bool) {
	if ch == ' ' {
		return 0, true
	}
	if ch >= '0' && ch <= '9' {
		return uint64(ch-'0') + 1, true
	}
	return 0, false
}

func numericChar(value uint64) (byte, bool) {
	if value == 0 {
		return ' ', true
	}
	if value >= 1 && value <= 10 {
		return byte('0' + value - 1), true
	}
	return 0, false
}

const printableExtra = " '()+,-./:=?"

func validChar(kind Kind, ch byte) bool {
	switch kind {
	case KindIA5String:
		return ch <= 0x7F
	case KindVisibleString:
		return ch >= 0x20 && ch <= 0x7E
	case KindPrintableString:
		switch {
		case ch >= 'A' && ch <= 'Z':
			return true
		case ch >= 'a' && ch <= 'z':
			return true
		case ch >= '0' && ch <= '9':
			return true
		default:
			return strings.IndexByte(printableExtra, ch) >= 0
		}
	}
	return false
}

// WriteCharacterString encodes value as the string kind named by the
// constraint. Size bounds count characters for the known-multiplier
// kinds and octets for UTF8String.
func (w *Writer) WriteCharacterString(value string, c *Constraint) error {
	return w.field(false, true, func() error {
		return w.encodeCharacterString(value, c)
	})
}

func (w *Writer) encodeCharacterString(value string, c *Constraint) error {
	switch c.Kind {
	case KindNumericString:
		return w.encodeKnownMultiplierString(value, c, charBitsNumeric)
	case KindPrintableString, KindIA5String, KindVisibleString:
		return w.encodeKnownMultiplierString(value, c, charBits7)
	case KindUTF8String:
		if !utf8.ValidString(value) {
			return ErrInvalidCharacter.New("malformed UTF-8 in %s", c.Kind)
		}
		return w.encodeOctetString([]byte(value), &Constraint{
			Kind:       KindOctetString,
			Lb:         c.Lb,
			Ub:         c.Ub,
			Extensible: c.Extensible,
		})
	}
	return ErrUnsupportedOperation.New("%s is not a character string kind", c.Kind)
}

func (w *Writer) encodeKnownMultiplierString(value string, c *Constraint, charBits int) error {
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
			return w.writeStringFragments(value, c.Kind, charBits, nil, nil)
		}
	} else if (lb != nil && n < *lb) || (ub != nil && n > *ub) {
		return ErrSizeNotInRange.New("%d characters not in [%s, %s]", n, boundString(lb), boundString(ub))
	}

	if ub != nil && *ub == 0 {
		return nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		return w.writeChars(value, c.Kind, charBits)
	}

	return w.writeStringFragments(value, c.Kind, charBits, lb, ub)
}

func (w *Writer) writeStringFragments(value string, kind Kind, charBits int, lb *uint64, ub *uint64) error {
	var (
		n      = uint64(len(value))
		offset = uint64(0)
	)
	for {
		chunk, more, err := w.WriteLengthDeterminant(n-offset, lb, ub)
		if err != nil {
			return err
		}
		if err := w.writeChars(value[offset:offset+chunk], kind, charBits); err != nil {
			return err
		}
		offset += chunk
		if !more {
			return nil
		}
	}
}

func (w *Writer) writeChars(value string, kind Kind, charBits int) error {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		var encoded uint64
		if kind == KindNumericString {
			v, ok := numericValue(ch)
			if !ok {
				return ErrInvalidCharacter.New("%q at index %d is not a %s character", ch, i, kind)
			}
			encoded = v
		} else {
			if !validChar(kind, ch) {
				return ErrInvalidCharacter.New("%q at index %d is not a %s character", ch, i, kind)
			}
			encoded = uint64(ch)
		}
		if err := w.buf.Write(uint8(charBits), encoded); err != nil {
			return err
		}
	}
	return nil
}

// ReadCharacterString decodes a string of the kind named by the
// constraint.
func (r *Reader) ReadCharacterString(c *Constraint) (string, error) {
	var value string
	_, err := r.field(false, func() error {
		var err error
		value, err = r.decodeCharacterString(c)
		return err
	})
	return value, err
}

func (r *Reader) decodeCharacterString(c *Constraint) (string, error) {
	switch c.Kind {
	case KindNumericString:
		return r.decodeKnownMultiplierString(c, charBitsNumeric)
	case KindPrintableString, KindIA5String, KindVisibleString:
		return r.decodeKnownMultiplierString(c, charBits7)
	case KindUTF8String:
		value, err := r.decodeOctetString(&Constraint{
			Kind:       KindOctetString,
			Lb:         c.Lb,
			Ub:         c.Ub,
			Extensible: c.Extensible,
		})
		if err != nil {
			return "", err
		}
		if !utf8.Valid(value) {
			return "", ErrInvalidCharacter.New("malformed UTF-8 in %s", c.Kind)
		}
		return string(value), nil
	}
	return "", ErrUnsupportedOperation.New("%s is not a character string kind", c.Kind)
}

func (r *Reader) decodeKnownMultiplierString(c *Constraint, charBits int) (string, error) {
	lb, ub := c.size()
	if c.extensible() {
		extended, err := r.decodeBoolean()
		if err != nil {
			return "", err
		}
		if extended {
			return r.readStringFragments(c.Kind, charBits, nil, nil)
		}
	}

	if ub != nil && *ub == 0 {
		return "", nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		var out strings.Builder
		if err := r.readChars(&out, *ub, c.Kind, charBits); err != nil {
			return "", err
		}
		return out.String(), nil
	}

	value, err := r.readStringFragments(c.Kind, charBits, lb, ub)
	if err != nil {
		return "", err
	}
	n := uint64(len(value))
	if !c.extensible() && ((lb != nil && n < *lb) || (ub != nil && n > *ub)) {
		return "", ErrSizeNotInRange.New("%d characters not in [%s, %s]", n, boundString(lb), boundString(ub))
	}
	return value, nil
}

func (r *Reader) readStringFragments(kind Kind, charBits int, lb *uint64, ub *uint64) (string, error) {
	var out strings.Builder
	for {
		chunk, more, err := r.ReadLengthDeterminant(lb, ub)
		if err != nil {
			return "", err
		}
		if err := r.readChars(&out, chunk, kind, charBits); err != nil {
			return "", err
		}
		if !more {
			return out.String(), nil
		}
	}
}

func (r *Reader) readChars(out *strings.Builder, count uint64, kind Kind, charBits int) error {
	for i := uint64(0); i < count; i++ {
		value, err := r.view.Read(uint8(charBits))
		if err != nil {
			return err
		}
		var ch byte
		if kind == KindNumericString {
			decoded, ok := numericChar(value)
			if !ok {
				return ErrInvalidCharacter.New("value %d is not a %s character", value, kind)
			}
			ch = decoded
		} else {
			ch = byte(value)
			if !validChar(kind, ch) {
				return ErrInvalidCharacter.New("value %d is not a %s character", value, kind)
			}
		}
		out.WriteByte(ch)
	}
	return nil
}
