package bitbuffer

import (
	"fmt"
)

// View is a read-only cursor over borrowed bytes with a declared length in
// bits. It never copies or mutates the underlying slice; decoders built on
// top of it can hand out sub-slices of the input directly when the cursor
// happens to be byte aligned.
type View struct {
	buf  []byte
	pos  uint64 // bits consumed
	bits uint64 // declared length in bits
}

// NewView creates a View over the first bits bits of data.
func NewView(data []byte, bits uint64) (*View, error) {
	if bits > uint64(len(data))*8 {
		return nil, Error.New("declared %d bits, data holds %d", bits, len(data)*8)
	}
	return &View{buf: data, bits: bits}, nil
}

// BitLen returns the bit position just past the last readable bit. For a
// View made with NewView this is the declared length; for one carved out
// with Sub it is the end of the window.
func (v *View) BitLen() uint64 {
	return v.bits
}

// NumRead returns the total number of bits consumed.
func (v *View) NumRead() uint64 {
	return v.pos
}

// Remaining returns the number of unconsumed bits.
func (v *View) Remaining() uint64 {
	return v.bits - v.pos
}

// String implements fmt.Stringer for debugging.
func (v *View) String() string {
	return fmt.Sprintf("View{bits: %d, read: %d}", v.bits, v.pos)
}

// Read consumes the next num bits and returns them right-aligned. num must
// be at most 64; num = 0 reads nothing. Reading past the declared length
// fails with ErrEndOfStream.
func (v *View) Read(num uint8) (uint64, error) {
	if num == 0 {
		return 0, nil
	}
	if num > 64 {
		return 0, Error.New("bit count must be between 1 and 64, got %d", num)
	}
	if v.pos+uint64(num) > v.bits {
		return 0, ErrEndOfStream.New("need %d bits, %d left", num, v.bits-v.pos)
	}
	value := getBits(v.buf, v.pos, num)
	v.pos += uint64(num)
	return value, nil
}

// ReadBytes consumes exactly n full octets. When the cursor is byte
// aligned the result aliases the underlying slice without copying.
func (v *View) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, Error.New("negative byte count %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	if v.pos+uint64(n)*8 > v.bits {
		return nil, ErrEndOfStream.New("need %d bytes, %d bits left", n, v.bits-v.pos)
	}
	if v.pos&7 == 0 {
		result := v.buf[v.pos>>3 : int(v.pos>>3)+n]
		v.pos += uint64(n) * 8
		return result, nil
	}
	result := make([]byte, n)
	for i := range result {
		value, err := v.Read(8)
		if err != nil {
			return nil, err
		}
		result[i] = uint8(value)
	}
	return result, nil
}

// Skip consumes count bits without returning them.
func (v *View) Skip(count uint64) error {
	if v.pos+count > v.bits {
		return ErrEndOfStream.New("need %d bits, %d left", count, v.bits-v.pos)
	}
	v.pos += count
	return nil
}

// Sub carves out the next count bits as an independent View and advances
// the cursor past them. The returned View borrows the same storage.
func (v *View) Sub(count uint64) (*View, error) {
	if v.pos+count > v.bits {
		return nil, ErrEndOfStream.New("need %d bits, %d left", count, v.bits-v.pos)
	}
	sub := &View{buf: v.buf, pos: v.pos, bits: v.pos + count}
	v.pos += count
	return sub, nil
}
