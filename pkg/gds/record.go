package gds

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Record types.
const (
	recHeader       uint8 = 0x00
	recBgnLib       uint8 = 0x01
	recLibName      uint8 = 0x02
	recUnits        uint8 = 0x03
	recEndLib       uint8 = 0x04
	recBgnStr       uint8 = 0x05
	recStrName      uint8 = 0x06
	recEndStr       uint8 = 0x07
	recBoundary     uint8 = 0x08
	recPath         uint8 = 0x09
	recSRef         uint8 = 0x0A
	recARef         uint8 = 0x0B
	recText         uint8 = 0x0C
	recLayer        uint8 = 0x0D
	recDatatype     uint8 = 0x0E
	recWidth        uint8 = 0x0F
	recXY           uint8 = 0x10
	recEndEl        uint8 = 0x11
	recSName        uint8 = 0x12
	recColRow       uint8 = 0x13
	recNode         uint8 = 0x15
	recTextType     uint8 = 0x16
	recPresentation uint8 = 0x17
	recString       uint8 = 0x19
	recStrans       uint8 = 0x1A
	recMag          uint8 = 0x1B
	recAngle        uint8 = 0x1C
	recPathType     uint8 = 0x21
	recElFlags      uint8 = 0x26
	recNodeType     uint8 = 0x2A
	recPropAttr     uint8 = 0x2B
	recPropValue    uint8 = 0x2C
	recBox          uint8 = 0x2D
	recBoxType      uint8 = 0x2E
	recPlex         uint8 = 0x2F
	recBgnExtn      uint8 = 0x30
	recEndExtn      uint8 = 0x31
	recStrClass     uint8 = 0x34
)

// Record data types.
const (
	dtNone   uint8 = 0
	dtBits   uint8 = 1
	dtInt16  uint8 = 2
	dtInt32  uint8 = 3
	dtReal8  uint8 = 5
	dtString uint8 = 6
)

// maxRecordData is the largest payload a record can carry.
const maxRecordData = 0xFFFF - 4

// Strans flag bits.
const (
	stransReflected uint16 = 0x8000
	stransAbsMag    uint16 = 0x0004
	stransAbsAngle  uint16 = 0x0002
)

// Record is a raw stream record kept verbatim.
type Record struct {
	Type     uint8  `json:"type"`
	DataType uint8  `json:"data_type"`
	Data     []byte `json:"data"`
}

func (r Record) int16s() []int16 {
	out := make([]int16, len(r.Data)/2)
	for i := range out {
		out[i] = int16(binary.BigEndian.Uint16(r.Data[2*i:]))
	}
	return out
}

func (r Record) int32s() []int32 {
	out := make([]int32, len(r.Data)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(r.Data[4*i:]))
	}
	return out
}

func (r Record) reals() []Real {
	out := make([]Real, len(r.Data)/8)
	for i := range out {
		out[i] = Real(binary.BigEndian.Uint64(r.Data[8*i:]))
	}
	return out
}

func (r Record) str() string {
	return strings.TrimRight(string(r.Data), "\x00")
}

func (r Record) points() []geom.Point {
	vs := r.int32s()
	out := make([]geom.Point, len(vs)/2)
	for i := range out {
		out[i] = geom.Point{X: vs[2*i], Y: vs[2*i+1]}
	}
	return out
}

// =============================================================================
// Reading
// =============================================================================

type recordReader struct {
	r      *bufio.Reader
	offset int64
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReader(r)}
}

// next returns the next record. io.EOF is returned only at a record boundary.
func (rr *recordReader) next() (Record, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(rr.r, hdr[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, errors.Wrap(errors.ErrCodeParse, err, "truncated record header at offset %d", rr.offset)
	}
	n := int(binary.BigEndian.Uint16(hdr[:2]))
	if n < 4 || n%2 != 0 {
		return Record{}, errors.New(errors.ErrCodeParse, "invalid record length %d at offset %d", n, rr.offset)
	}
	rec := Record{Type: hdr[2], DataType: hdr[3], Data: make([]byte, n-4)}
	if _, err := io.ReadFull(rr.r, rec.Data); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeParse, err, "truncated record 0x%02x at offset %d", rec.Type, rr.offset)
	}
	rr.offset += int64(n)
	return rec, nil
}

// expect reads the next record and fails unless it has type t.
func (rr *recordReader) expect(t uint8) (Record, error) {
	rec, err := rr.next()
	if err == io.EOF {
		return Record{}, errors.New(errors.ErrCodeParse, "unexpected end of stream, want record 0x%02x", t)
	}
	if err != nil {
		return Record{}, err
	}
	if rec.Type != t {
		return Record{}, errors.New(errors.ErrCodeParse,
			"unexpected record 0x%02x at offset %d, want 0x%02x", rec.Type, rr.offset, t)
	}
	return rec, nil
}

// =============================================================================
// Writing
// =============================================================================

type recordWriter struct {
	w   *bufio.Writer
	err error
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: bufio.NewWriter(w)}
}

func (rw *recordWriter) write(t, dt uint8, data []byte) {
	if rw.err != nil {
		return
	}
	if len(data) > maxRecordData {
		rw.err = errors.New(errors.ErrCodeUnrepresentableGeometry,
			"record 0x%02x carries %d bytes, limit is %d", t, len(data), maxRecordData)
		return
	}
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[:2], uint16(len(data)+4))
	hdr[2], hdr[3] = t, dt
	if _, err := rw.w.Write(hdr[:]); err != nil {
		rw.err = err
		return
	}
	if _, err := rw.w.Write(data); err != nil {
		rw.err = err
	}
}

func (rw *recordWriter) raw(rec Record) {
	rw.write(rec.Type, rec.DataType, rec.Data)
}

func (rw *recordWriter) none(t uint8) {
	rw.write(t, dtNone, nil)
}

func (rw *recordWriter) bits(t uint8, v uint16) {
	rw.write(t, dtBits, binary.BigEndian.AppendUint16(nil, v))
}

func (rw *recordWriter) int16s(t uint8, vs ...int16) {
	buf := make([]byte, 0, 2*len(vs))
	for _, v := range vs {
		buf = binary.BigEndian.AppendUint16(buf, uint16(v))
	}
	rw.write(t, dtInt16, buf)
}

func (rw *recordWriter) int32s(t uint8, vs ...int32) {
	buf := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		buf = binary.BigEndian.AppendUint32(buf, uint32(v))
	}
	rw.write(t, dtInt32, buf)
}

func (rw *recordWriter) reals(t uint8, vs ...Real) {
	buf := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		buf = binary.BigEndian.AppendUint64(buf, uint64(v))
	}
	rw.write(t, dtReal8, buf)
}

func (rw *recordWriter) str(t uint8, s string) {
	data := []byte(s)
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	rw.write(t, dtString, data)
}

func (rw *recordWriter) points(pts ...geom.Point) {
	vs := make([]int32, 0, 2*len(pts))
	for _, p := range pts {
		vs = append(vs, p.X, p.Y)
	}
	rw.int32s(recXY, vs...)
}

func (rw *recordWriter) flush() error {
	if rw.err != nil {
		return rw.err
	}
	if err := rw.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
