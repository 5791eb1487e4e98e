// Package bitbuffer provides bit-level storage for ASN.1 UPER (Unaligned
// Packed Encoding Rules).
//
// # Overview
//
// The Buffer type owns a growable byte sequence addressable at bit
// granularity, with independent write and read positions measured in bits.
// The View type is its borrowed, read-only counterpart: a byte slice plus a
// cursor and a declared bit length, used for zero-copy decoding.
//
// # Key Features
//
//   - MSB-first bit ordering (most significant bit first per PER spec)
//   - Fast paths for byte-aligned operations using encoding/binary.BigEndian
//   - Slow paths for general bit-packing/unpacking
//   - Dynamic buffer growth with exponential allocation strategy
//   - In-place patching of already-written bits (SetBit), for presence
//     bits reserved ahead of the fields they describe
//
// # Scope
//
// This package focuses on bit-level manipulation. Callers are responsible
// for higher-level ASN.1 semantics, type encoding, and constraint
// validation.
//
// # Thread Safety
//
// Buffer and View are NOT thread-safe. Each (de)serialization call stack
// must own its Buffer or View exclusively.
package bitbuffer

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/zeebo/errs"
)

// Error classes for bit-level I/O failures.
var (
	// Error covers usage violations: bad bit counts, out-of-range
	// positions, short source slices.
	Error = errs.Class("bitbuffer")

	// ErrEndOfStream is returned when a read runs past the write position
	// of a Buffer or the declared length of a View.
	ErrEndOfStream = errs.Class("end of stream")
)

// InitialBufferSize is the byte capacity pre-allocated by New.
var InitialBufferSize = 64

// Buffer is a growable bit stream with separate write and read cursors.
// Invariant: read <= write <= 8*len(buf). Writes grow storage and never
// disturb bits already written; reads never pass the write position.
type Buffer struct {
	buf   []byte
	write uint64 // bits written
	read  uint64 // bits read
}

// New creates an empty Buffer with pre-allocated capacity.
func New() *Buffer {
	return &Buffer{
		buf: make([]byte, 0, InitialBufferSize),
	}
}

// BitLen returns the total number of bits written.
func (b *Buffer) BitLen() uint64 {
	return b.write
}

// NumRead returns the total number of bits read.
func (b *Buffer) NumRead() uint64 {
	return b.read
}

// Len returns the number of bytes holding written bits, counting a trailing
// partial byte as one.
func (b *Buffer) Len() int {
	return int((b.write + 7) / 8)
}

// Bytes returns the written content. Trailing bits of the final byte beyond
// the write position are zero. The slice aliases the internal storage and
// is valid until the next write.
func (b *Buffer) Bytes() []byte {
	if b.write == 0 {
		return nil
	}
	return b.buf[:b.Len()]
}

// View returns a read-only view over the written content.
func (b *Buffer) View() *View {
	return &View{buf: b.buf, bits: b.write}
}

// String implements fmt.Stringer for debugging.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer{len: %d, write: %d, read: %d}", len(b.buf), b.write, b.read)
}

// grow extends the byte storage to cover n more bits past the write
// position. Capacity doubles, or jumps straight to the needed size if
// doubling is not enough, keeping repeated writes O(1) amortized. Newly
// exposed bytes are zero.
func (b *Buffer) grow(n uint64) {
	need := int((b.write + n + 7) / 8)
	if need <= len(b.buf) {
		return
	}
	if cap(b.buf) < need {
		capacity := max(cap(b.buf)*2, need)
		b.buf = slices.Grow(b.buf, capacity-len(b.buf))
	}
	b.buf = b.buf[:need]
}

// Write appends the least significant num bits of value, most significant
// bit first. num must be between 1 and 64.
//
// Fast path: byte-aligned write position, whole bytes via BigEndian.
// Slow path: bit packing across byte boundaries.
func (b *Buffer) Write(num uint8, value uint64) error {
	if num == 0 || num > 64 {
		return Error.New("bit count must be between 1 and 64, got %d", num)
	}
	if num < 64 {
		value &= (1 << num) - 1
	}
	b.grow(uint64(num))

	if b.write&7 == 0 {
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], value<<(64-uint(num)))
		copy(b.buf[b.write>>3:], tmp[:(num+7)>>3])
		b.write += uint64(num)
		return nil
	}

	pending := num
	for pending > 0 {
		var (
			offset    = uint8(b.write & 7)
			available = 8 - offset
			nbits     = min(pending, available)
			remaining = pending - nbits
			chunk     = uint8(value>>remaining) & ((1 << nbits) - 1)
			shift     = available - nbits
		)
		b.buf[b.write>>3] |= chunk << shift
		b.write += uint64(nbits)
		pending -= nbits
	}
	return nil
}

// WriteBytes appends full octets continuing from the current bit position.
// Byte-aligned positions append with a single copy; otherwise each byte is
// packed through Write.
func (b *Buffer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if b.write&7 == 0 {
		b.grow(uint64(len(data)) * 8)
		copy(b.buf[b.write>>3:], data)
		b.write += uint64(len(data)) * 8
		return nil
	}
	for _, octet := range data {
		if err := b.Write(8, uint64(octet)); err != nil {
			return err
		}
	}
	return nil
}

// WriteBits copies count bits from src starting at bit offset. Output is
// identical regardless of source or destination alignment.
//
// Runs of at least two bytes split into a ragged head (bit copies up to the
// destination byte boundary), an aligned middle copied as whole bytes or
// merged with an 8-bit shift-and-or when the source offset differs, and a
// ragged tail. Shorter runs use bit copies throughout.
func (b *Buffer) WriteBits(src []byte, offset, count uint64) error {
	if count == 0 {
		return nil
	}
	if offset+count > uint64(len(src))*8 {
		return Error.New("source holds %d bits, need %d at offset %d", len(src)*8, count, offset)
	}

	if count < 16 {
		return b.writeBitsSlow(src, offset, count)
	}

	if head := (8 - b.write&7) & 7; head > 0 {
		if err := b.writeBitsSlow(src, offset, head); err != nil {
			return err
		}
		offset += head
		count -= head
	}

	if middle := count &^ 7; middle > 0 {
		b.grow(middle)
		var (
			dst    = b.buf[b.write>>3:]
			nbytes = int(middle >> 3)
		)
		if offset&7 == 0 {
			copy(dst, src[offset>>3:int(offset>>3)+nbytes])
		} else {
			var (
				k = uint(offset & 7)
				s = src[offset>>3:]
			)
			for i := 0; i < nbytes; i++ {
				dst[i] = s[i]<<k | s[i+1]>>(8-k)
			}
		}
		b.write += middle
		offset += middle
		count -= middle
	}

	return b.writeBitsSlow(src, offset, count)
}

// writeBitsSlow copies bits through Write in chunks of at most 64.
func (b *Buffer) writeBitsSlow(src []byte, offset, count uint64) error {
	for count > 0 {
		n := uint8(min(count, 64))
		if err := b.Write(n, getBits(src, offset, n)); err != nil {
			return err
		}
		offset += uint64(n)
		count -= uint64(n)
	}
	return nil
}

// SetBit sets or clears a single already-written bit without moving the
// write position.
func (b *Buffer) SetBit(pos uint64, set bool) error {
	if pos >= b.write {
		return Error.New("bit %d beyond write position %d", pos, b.write)
	}
	mask := byte(1) << (7 - pos&7)
	if set {
		b.buf[pos>>3] |= mask
	} else {
		b.buf[pos>>3] &^= mask
	}
	return nil
}

// Read consumes the next num bits and returns them right-aligned. num must
// be at most 64; num = 0 reads nothing. Reading past the write position
// fails with ErrEndOfStream.
func (b *Buffer) Read(num uint8) (uint64, error) {
	if num == 0 {
		return 0, nil
	}
	if num > 64 {
		return 0, Error.New("bit count must be between 1 and 64, got %d", num)
	}
	if b.read+uint64(num) > b.write {
		return 0, ErrEndOfStream.New("need %d bits, %d left", num, b.write-b.read)
	}
	value := getBits(b.buf, b.read, num)
	b.read += uint64(num)
	return value, nil
}

// ReadBytes consumes exactly n full octets continuing from the read
// position.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, Error.New("negative byte count %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	if b.read+uint64(n)*8 > b.write {
		return nil, ErrEndOfStream.New("need %d bytes, %d bits left", n, b.write-b.read)
	}
	if b.read&7 == 0 {
		result := make([]byte, n)
		copy(result, b.buf[b.read>>3:])
		b.read += uint64(n) * 8
		return result, nil
	}
	result := make([]byte, n)
	for i := range result {
		value, err := b.Read(8)
		if err != nil {
			return nil, err
		}
		result[i] = uint8(value)
	}
	return result, nil
}

// getBits extracts num bits (1..64) starting at bit pos. The caller
// guarantees pos+num does not run past the slice.
func getBits(buf []byte, pos uint64, num uint8) uint64 {
	if pos&7 == 0 {
		var tmp [8]byte
		copy(tmp[:(num+7)>>3], buf[pos>>3:])
		return binary.BigEndian.Uint64(tmp[:]) >> (64 - uint(num))
	}
	var (
		result  uint64
		pending = num
	)
	for pending > 0 {
		var (
			offset    = uint8(pos & 7)
			remaining = 8 - offset
			reading   = min(pending, remaining)
			mask      = uint8((1 << reading) - 1)
			shift     = remaining - reading
			bits      = (buf[pos>>3] >> shift) & mask
		)
		result = result<<reading | uint64(bits)
		pos += uint64(reading)
		pending -= reading
	}
	return result
}
