package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeDescriptor packs a descriptor into a blob of little-endian float32 values.
func EncodeDescriptor(d Descriptor) []byte {
	buf := make([]byte, len(d)*4)
	for i, v := range d {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeDescriptor unpacks a blob written by EncodeDescriptor.
// A blob whose length is not a multiple of 4 is reported as ErrCorruptRecord.
func DecodeDescriptor(blob []byte) (Descriptor, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: descriptor blob of %d bytes", ErrCorruptRecord, len(blob))
	}
	d := make(Descriptor, len(blob)/4)
	for i := range d {
		d[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return d, nil
}
