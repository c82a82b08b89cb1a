package wasmtest

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates module bytes. Integers are LEB128 unless the method
// name says otherwise.
type Writer struct {
	bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

// Byte appends raw opcode or marker bytes.
func (w *Writer) Byte(b ...byte) {
	w.Write(b)
}

// WriteBytes appends a vector: length, then data.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteU32(uint32(len(data)))
	w.Write(data)
}

func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.WriteString(s)
}

func (w *Writer) WriteU32(v uint32) {
	for v >= 0x80 {
		w.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.WriteByte(byte(v))
}

func (w *Writer) WriteS32(v int32) {
	w.WriteS64(int64(v))
}

func (w *Writer) WriteS64(v int64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if done {
			w.WriteByte(b)
			return
		}
		w.WriteByte(b | 0x80)
	}
}

// WriteU32LE appends a fixed-width little-endian word, as stored in data
// segments.
func (w *Writer) WriteU32LE(v uint32) {
	w.Write(binary.LittleEndian.AppendUint32(nil, v))
}
