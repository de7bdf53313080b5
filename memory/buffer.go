package memory

import (
	"encoding/binary"

	"github.com/fleetmod/escadra"
)

// Buffer is a fixed-size linear memory backed by a byte slice.
type Buffer struct {
	data []byte
}

// NewBuffer returns a zeroed memory of size bytes.
func NewBuffer(size uint32) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// NewBufferFrom wraps data without copying it.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the underlying slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Size() uint32 {
	return uint32(len(b.data))
}

func (b *Buffer) span(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b.data)) {
		return nil, outOfBounds(offset, length, b.Size())
	}
	return b.data[offset:end:end], nil
}

// Read returns a view of the memory; it aliases the buffer.
func (b *Buffer) Read(offset uint32, length uint32) ([]byte, error) {
	return b.span(offset, length)
}

func (b *Buffer) Write(offset uint32, data []byte) error {
	dst, err := b.span(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

func (b *Buffer) ReadU8(offset uint32) (uint8, error) {
	d, err := b.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return d[0], nil
}

func (b *Buffer) ReadU16(offset uint32) (uint16, error) {
	d, err := b.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d), nil
}

func (b *Buffer) ReadU32(offset uint32) (uint32, error) {
	d, err := b.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d), nil
}

func (b *Buffer) ReadU64(offset uint32) (uint64, error) {
	d, err := b.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d), nil
}

func (b *Buffer) WriteU8(offset uint32, value uint8) error {
	d, err := b.span(offset, 1)
	if err != nil {
		return err
	}
	d[0] = value
	return nil
}

func (b *Buffer) WriteU16(offset uint32, value uint16) error {
	d, err := b.span(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(d, value)
	return nil
}

func (b *Buffer) WriteU32(offset uint32, value uint32) error {
	d, err := b.span(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(d, value)
	return nil
}

func (b *Buffer) WriteU64(offset uint32, value uint64) error {
	d, err := b.span(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(d, value)
	return nil
}

var _ escadra.Memory = (*Buffer)(nil)
var _ escadra.MemorySizer = (*Buffer)(nil)
