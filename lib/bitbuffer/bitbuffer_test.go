package bitbuffer

import (
	"bytes"
	"fmt"
	"testing"
)

func TestBitBuffer(t *testing.T) {
	b := New()

	// Initial state
	if b.BitLen() != 0 {
		t.Errorf("initial bit length should be 0, got %d", b.BitLen())
	}
	if b.Len() != 0 {
		t.Errorf("initial byte length should be 0, got %d", b.Len())
	}

	// Write 16 bits of 0
	for i := range 16 {
		err := b.Write(1, 0)
		if err != nil {
			t.Fatalf("Write %d failed: %v", i+1, err)
		}
	}
	if b.BitLen() != 16 {
		t.Errorf("after 16 writes, bit length should be 16, got %d", b.BitLen())
	}

	// WriteBytes([]byte{0x00})
	err := b.WriteBytes([]byte{0x00})
	if err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}
	if b.BitLen() != 24 {
		t.Errorf("after WriteBytes, bit length should be 24, got %d", b.BitLen())
	}

	// Partial final byte
	err = b.Write(1, 1)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if b.BitLen() != 25 {
		t.Errorf("after writing bit, bit length should be 25, got %d", b.BitLen())
	}
	if b.Len() != 4 {
		t.Errorf("byte length should be 4, got %d", b.Len())
	}

	// Check the buffer content
	expected := []byte{0x00, 0x00, 0x00, 0x80}
	if !bytes.Equal(b.Bytes(), expected) {
		t.Errorf("bytes should be %v, got %v", expected, b.Bytes())
	}
}

func TestWriteReadBits(t *testing.T) {
	bits := make([]uint8, 64)
	for i := range bits {
		bits[i] = uint8(i + 1)
	}

	values := []struct {
		name  string
		value func(bit uint8) uint64
	}{
		{"Counting", func(bit uint8) uint64 { return uint64(bit) }},
		{"Zero", func(bit uint8) uint64 { return 0 }},
		{"Max", func(bit uint8) uint64 { return uint64(1<<bit) - 1 }},
	}

	for _, item := range values {
		t.Run(item.name, func(t *testing.T) {
			b := New()
			// Write 1 to 64 bits
			for _, bit := range bits {
				var (
					value = item.value(bit)
					err   = b.Write(bit, value)
				)
				if err != nil {
					t.Fatalf("Write %d bits with value %d failed: %v", bit, value, err)
				}
			}
			if b.BitLen() != 2080 {
				t.Errorf("Total written bits: expected 2080, got %d", b.BitLen())
			}

			// Read back through the independent read cursor
			for _, bit := range bits {
				var (
					expected    = item.value(bit)
					actual, err = b.Read(bit)
				)
				if err != nil {
					t.Fatalf("Read %d bits failed: %v", bit, err)
				}
				if actual != expected {
					t.Errorf("Read %d bits: expected %d, got %d", bit, expected, actual)
				}
			}
			if b.NumRead() != 2080 {
				t.Errorf("Total read bits: expected 2080, got %d", b.NumRead())
			}
		})
	}
}

func TestWriteReadBytes(t *testing.T) {
	bits := make([]uint8, 64)
	for i := range bits {
		bits[i] = uint8(i + 1)
	}

	b := New()
	// Interleave unaligned bit writes with octet runs
	for _, bit := range bits {
		var (
			value = uint64(bit)
			err   = b.Write(bit, value)
		)
		if err != nil {
			t.Fatalf("Write %d bits with value %d failed: %v", bit, value, err)
		}
		var (
			length = (bit + 3) / 4
			data   = fmt.Appendf(nil, "%0*x", length, value)
		)
		err = b.WriteBytes(data)
		if err != nil {
			t.Fatalf("WriteBytes failed: %v", err)
		}
	}
	if b.BitLen() != 6432 {
		t.Errorf("Total written bits: expected 6432, got %d", b.BitLen())
	}

	for _, bit := range bits {
		var (
			expected    = uint64(bit)
			actual, err = b.Read(bit)
		)
		if err != nil {
			t.Fatalf("Read %d bits failed: %v", bit, err)
		}
		if actual != expected {
			t.Errorf("Read %d bits: expected %d, got %d", bit, expected, actual)
		}
		var (
			length = (bit + 3) / 4
			data   = fmt.Appendf(nil, "%0*x", length, expected)
		)
		content, err := b.ReadBytes(int(length))
		if err != nil {
			t.Fatalf("ReadBytes failed: %v", err)
		}
		if !bytes.Equal(content, data) {
			t.Errorf("ReadBytes: expected %v, got %v", data, content)
		}
	}
	if b.NumRead() != 6432 {
		t.Errorf("Total read bits: expected 6432, got %d", b.NumRead())
	}
}

func TestWriteBits(t *testing.T) {
	src := []byte{0xA5, 0x5A, 0xFF, 0x00, 0xC3, 0x3C, 0x81, 0x7E, 0xDE, 0xAD}

	// Every (destination offset, source offset, count) alignment
	// combination must reproduce the source bits exactly.
	for shift := uint64(0); shift < 8; shift++ {
		for offset := uint64(0); offset < 8; offset++ {
			for count := uint64(0); count <= uint64(len(src))*8-offset; count++ {
				b := New()
				if shift > 0 {
					if err := b.Write(uint8(shift), 0); err != nil {
						t.Fatalf("Write failed: %v", err)
					}
				}
				if err := b.WriteBits(src, offset, count); err != nil {
					t.Fatalf("WriteBits(offset=%d, count=%d) failed: %v", offset, count, err)
				}
				if b.BitLen() != shift+count {
					t.Fatalf("bit length: expected %d, got %d", shift+count, b.BitLen())
				}

				if shift > 0 {
					if _, err := b.Read(uint8(shift)); err != nil {
						t.Fatalf("Read failed: %v", err)
					}
				}
				for i := uint64(0); i < count; i++ {
					var (
						pos      = offset + i
						expected = uint64(src[pos>>3]>>(7-pos&7)) & 1
					)
					actual, err := b.Read(1)
					if err != nil {
						t.Fatalf("Read bit %d failed: %v", i, err)
					}
					if actual != expected {
						t.Fatalf("shift=%d offset=%d count=%d bit %d: expected %d, got %d",
							shift, offset, count, i, expected, actual)
					}
				}
			}
		}
	}
}

func TestWriteBitsShortSource(t *testing.T) {
	b := New()
	err := b.WriteBits([]byte{0xFF}, 4, 8)
	if err == nil {
		t.Error("WriteBits past the source should fail")
	}
	if !Error.Has(err) {
		t.Errorf("expected bitbuffer class error, got %v", err)
	}
}

func TestSetBit(t *testing.T) {
	b := New()
	if err := b.Write(16, 0); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := b.SetBit(0, true); err != nil {
		t.Fatalf("SetBit failed: %v", err)
	}
	if err := b.SetBit(9, true); err != nil {
		t.Fatalf("SetBit failed: %v", err)
	}
	if err := b.SetBit(15, true); err != nil {
		t.Fatalf("SetBit failed: %v", err)
	}
	expected := []byte{0x80, 0x41}
	if !bytes.Equal(b.Bytes(), expected) {
		t.Errorf("bytes should be %v, got %v", expected, b.Bytes())
	}

	if err := b.SetBit(9, false); err != nil {
		t.Fatalf("SetBit failed: %v", err)
	}
	expected = []byte{0x80, 0x01}
	if !bytes.Equal(b.Bytes(), expected) {
		t.Errorf("bytes should be %v, got %v", expected, b.Bytes())
	}

	// Patching past the write position is a usage error
	if err := b.SetBit(16, true); err == nil {
		t.Error("SetBit past the write position should fail")
	}
}

func TestEndOfStream(t *testing.T) {
	b := New()
	if err := b.WriteBytes([]byte{0xAB}); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}

	if _, err := b.Read(6); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	_, err := b.Read(3)
	if err == nil {
		t.Fatal("Read past the end should fail")
	}
	if !ErrEndOfStream.Has(err) {
		t.Errorf("expected end of stream, got %v", err)
	}

	// The failed read must not consume anything
	value, err := b.Read(2)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != 3 {
		t.Errorf("expected 3, got %d", value)
	}
}

func TestView(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	v, err := NewView(data, 29)
	if err != nil {
		t.Fatalf("NewView failed: %v", err)
	}
	if v.Remaining() != 29 {
		t.Errorf("remaining should be 29, got %d", v.Remaining())
	}

	value, err := v.Read(16)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != 0xDEAD {
		t.Errorf("expected 0xDEAD, got 0x%04X", value)
	}

	// Byte-aligned ReadBytes aliases the input
	content, err := v.ReadBytes(1)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if &content[0] != &data[2] {
		t.Error("aligned ReadBytes should not copy")
	}

	if err := v.Skip(4); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if v.Remaining() != 1 {
		t.Errorf("remaining should be 1, got %d", v.Remaining())
	}
	if _, err := v.Read(2); err == nil {
		t.Error("Read past the declared length should fail")
	}

	// Declared length cannot exceed the data
	if _, err := NewView(data, 33); err == nil {
		t.Error("NewView past the data should fail")
	}
}

func TestViewSub(t *testing.T) {
	v, err := NewView([]byte{0x12, 0x34, 0x56}, 24)
	if err != nil {
		t.Fatalf("NewView failed: %v", err)
	}
	if _, err := v.Read(4); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	sub, err := v.Sub(12)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if sub.Remaining() != 12 {
		t.Errorf("sub remaining should be 12, got %d", sub.Remaining())
	}
	value, err := sub.Read(12)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != 0x234 {
		t.Errorf("expected 0x234, got 0x%03X", value)
	}
	if _, err := sub.Read(1); err == nil {
		t.Error("Read past the window should fail")
	}

	// Parent cursor advanced past the window
	if v.Remaining() != 8 {
		t.Errorf("parent remaining should be 8, got %d", v.Remaining())
	}
	value, err = v.Read(8)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != 0x56 {
		t.Errorf("expected 0x56, got 0x%02X", value)
	}
}
