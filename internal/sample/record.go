// internal/sample/record.go
package sample

import (
	"encoding/binary"
	"errors"
)

// RecordSize is the wire size of one sample record.
//
// Layout (little-endian, no padding):
//
//	0-7   timestamp   uint64  ns since device epoch
//	8-11  temperature int32   milli-degrees
//	12-15 flags       uint32  bit0=NEW bit1=THRESHOLD_EXCEEDED
const RecordSize = 16

// ErrShortRecord is returned when a buffer cannot hold one record.
var ErrShortRecord = errors.New("sample: buffer smaller than one record")

// PutRecord encodes s into dst. dst must be at least RecordSize bytes.
func PutRecord(dst []byte, s Sample) error {
	if len(dst) < RecordSize {
		return ErrShortRecord
	}
	binary.LittleEndian.PutUint64(dst[0:8], s.Timestamp)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(s.Temperature))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(s.Flags))
	return nil
}

// AppendRecord appends the encoding of s to dst.
func AppendRecord(dst []byte, s Sample) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, s.Timestamp)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(s.Temperature))
	return binary.LittleEndian.AppendUint32(dst, uint32(s.Flags))
}

// ParseRecord decodes one record from the front of src.
func ParseRecord(src []byte) (Sample, error) {
	if len(src) < RecordSize {
		return Sample{}, ErrShortRecord
	}
	return Sample{
		Timestamp:   binary.LittleEndian.Uint64(src[0:8]),
		Temperature: int32(binary.LittleEndian.Uint32(src[8:12])),
		Flags:       Flags(binary.LittleEndian.Uint32(src[12:16])),
	}, nil
}
