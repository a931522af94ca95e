package wire

import (
	"math"
	"strconv"
)

// Writer accumulates an encoded message in a growing buffer. Methods
// append a complete field (tag plus payload); the Packed variants frame
// the whole sequence as one length-delimited field.
type Writer struct {
	buf []byte
	err error
}

func NewWriter() *Writer { return &Writer{} }

// Result returns the accumulated byte sequence.
func (w *Writer) Result() []byte {
	if w.buf == nil {
		return []byte{}
	}
	return w.buf
}

func (w *Writer) Len() int { return len(w.buf) }

// Err reports the first conversion failure, if any. Wire-level appends
// cannot fail.
func (w *Writer) Err() error { return w.err }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) writeTag(num int32, wt Type) {
	w.writeVarint64(uint64(num)<<3 | uint64(wt))
}

func (w *Writer) writeVarint64(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

func (w *Writer) writeFixed32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (w *Writer) writeFixed64(v uint64) {
	w.writeFixed32(uint32(v))
	w.writeFixed32(uint32(v >> 32))
}

func (w *Writer) WriteInt32(num int32, v int32) {
	w.writeTag(num, TypeVarint)
	w.writeVarint64(uint64(int64(v)))
}

func (w *Writer) WriteUint32(num int32, v uint32) {
	w.writeTag(num, TypeVarint)
	w.writeVarint64(uint64(v))
}

func (w *Writer) WriteSint32(num int32, v int32) {
	w.writeTag(num, TypeVarint)
	w.writeVarint64(uint64(zigzagEncode32(v)))
}

func (w *Writer) WriteInt64(num int32, v int64) {
	w.writeTag(num, TypeVarint)
	w.writeVarint64(uint64(v))
}

func (w *Writer) WriteUint64(num int32, v uint64) {
	w.writeTag(num, TypeVarint)
	w.writeVarint64(v)
}

func (w *Writer) WriteSint64(num int32, v int64) {
	w.writeTag(num, TypeVarint)
	w.writeVarint64(zigzagEncode64(v))
}

// WriteInt64String writes a signed 64-bit varint from its decimal-string
// transport form.
func (w *Writer) WriteInt64String(num int32, s string) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		w.fail(err)
		return
	}
	w.WriteInt64(num, v)
}

func (w *Writer) WriteUint64String(num int32, s string) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		w.fail(err)
		return
	}
	w.WriteUint64(num, v)
}

func (w *Writer) WriteSint64String(num int32, s string) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		w.fail(err)
		return
	}
	w.WriteSint64(num, v)
}

func (w *Writer) WriteBool(num int32, v bool) {
	w.writeTag(num, TypeVarint)
	if v {
		w.writeVarint64(1)
	} else {
		w.writeVarint64(0)
	}
}

func (w *Writer) WriteEnum(num int32, v int32) {
	w.WriteInt32(num, v)
}

func (w *Writer) WriteFixed32(num int32, v uint32) {
	w.writeTag(num, TypeFixed32)
	w.writeFixed32(v)
}

func (w *Writer) WriteSfixed32(num int32, v int32) {
	w.writeTag(num, TypeFixed32)
	w.writeFixed32(uint32(v))
}

func (w *Writer) WriteFixed64(num int32, v uint64) {
	w.writeTag(num, TypeFixed64)
	w.writeFixed64(v)
}

func (w *Writer) WriteSfixed64(num int32, v int64) {
	w.writeTag(num, TypeFixed64)
	w.writeFixed64(uint64(v))
}

func (w *Writer) WriteFixed64String(num int32, s string) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		w.fail(err)
		return
	}
	w.WriteFixed64(num, v)
}

func (w *Writer) WriteSfixed64String(num int32, s string) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		w.fail(err)
		return
	}
	w.WriteSfixed64(num, v)
}

func (w *Writer) WriteFloat(num int32, v float32) {
	w.writeTag(num, TypeFixed32)
	w.writeFixed32(math.Float32bits(v))
}

func (w *Writer) WriteDouble(num int32, v float64) {
	w.writeTag(num, TypeFixed64)
	w.writeFixed64(math.Float64bits(v))
}

func (w *Writer) WriteString(num int32, s string) {
	w.writeTag(num, TypeDelimited)
	w.writeVarint64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) WriteBytes(num int32, b []byte) {
	w.writeTag(num, TypeDelimited)
	w.writeVarint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteMessage frames the output of write as a length-delimited field.
func WriteMessage[M any](w *Writer, num int32, msg M, write func(M, *Writer)) {
	var sub Writer
	write(msg, &sub)
	if sub.err != nil {
		w.fail(sub.err)
		return
	}
	w.WriteBytes(num, sub.buf)
}

func WriteRepeatedMessage[M any](w *Writer, num int32, msgs []M, write func(M, *Writer)) {
	for _, m := range msgs {
		WriteMessage(w, num, m, write)
	}
}

func writeRepeated[T any](w *Writer, num int32, vs []T, write func(int32, T)) {
	for _, v := range vs {
		write(num, v)
	}
}

func (w *Writer) WriteRepeatedInt32(num int32, vs []int32) { writeRepeated(w, num, vs, w.WriteInt32) }

func (w *Writer) WriteRepeatedUint32(num int32, vs []uint32) {
	writeRepeated(w, num, vs, w.WriteUint32)
}

func (w *Writer) WriteRepeatedSint32(num int32, vs []int32) {
	writeRepeated(w, num, vs, w.WriteSint32)
}

func (w *Writer) WriteRepeatedInt64(num int32, vs []int64) { writeRepeated(w, num, vs, w.WriteInt64) }

func (w *Writer) WriteRepeatedUint64(num int32, vs []uint64) {
	writeRepeated(w, num, vs, w.WriteUint64)
}

func (w *Writer) WriteRepeatedSint64(num int32, vs []int64) {
	writeRepeated(w, num, vs, w.WriteSint64)
}

func (w *Writer) WriteRepeatedInt64String(num int32, vs []string) {
	writeRepeated(w, num, vs, w.WriteInt64String)
}

func (w *Writer) WriteRepeatedUint64String(num int32, vs []string) {
	writeRepeated(w, num, vs, w.WriteUint64String)
}

func (w *Writer) WriteRepeatedSint64String(num int32, vs []string) {
	writeRepeated(w, num, vs, w.WriteSint64String)
}

func (w *Writer) WriteRepeatedBool(num int32, vs []bool) { writeRepeated(w, num, vs, w.WriteBool) }

func (w *Writer) WriteRepeatedEnum(num int32, vs []int32) { writeRepeated(w, num, vs, w.WriteEnum) }

func (w *Writer) WriteRepeatedFixed32(num int32, vs []uint32) {
	writeRepeated(w, num, vs, w.WriteFixed32)
}

func (w *Writer) WriteRepeatedSfixed32(num int32, vs []int32) {
	writeRepeated(w, num, vs, w.WriteSfixed32)
}

func (w *Writer) WriteRepeatedFixed64(num int32, vs []uint64) {
	writeRepeated(w, num, vs, w.WriteFixed64)
}

func (w *Writer) WriteRepeatedSfixed64(num int32, vs []int64) {
	writeRepeated(w, num, vs, w.WriteSfixed64)
}

func (w *Writer) WriteRepeatedFixed64String(num int32, vs []string) {
	writeRepeated(w, num, vs, w.WriteFixed64String)
}

func (w *Writer) WriteRepeatedSfixed64String(num int32, vs []string) {
	writeRepeated(w, num, vs, w.WriteSfixed64String)
}

func (w *Writer) WriteRepeatedFloat(num int32, vs []float32) {
	writeRepeated(w, num, vs, w.WriteFloat)
}

func (w *Writer) WriteRepeatedDouble(num int32, vs []float64) {
	writeRepeated(w, num, vs, w.WriteDouble)
}

func (w *Writer) WriteRepeatedString(num int32, vs []string) {
	writeRepeated(w, num, vs, w.WriteString)
}

func (w *Writer) WriteRepeatedBytes(num int32, vs [][]byte) {
	writeRepeated(w, num, vs, w.WriteBytes)
}

func writePacked[T any](w *Writer, num int32, vs []T, write func(*Writer, T)) {
	var sub Writer
	for _, v := range vs {
		write(&sub, v)
	}
	if sub.err != nil {
		w.fail(sub.err)
		return
	}
	w.WriteBytes(num, sub.buf)
}

func (w *Writer) WritePackedInt32(num int32, vs []int32) {
	writePacked(w, num, vs, func(sub *Writer, v int32) { sub.writeVarint64(uint64(int64(v))) })
}

func (w *Writer) WritePackedUint32(num int32, vs []uint32) {
	writePacked(w, num, vs, func(sub *Writer, v uint32) { sub.writeVarint64(uint64(v)) })
}

func (w *Writer) WritePackedSint32(num int32, vs []int32) {
	writePacked(w, num, vs, func(sub *Writer, v int32) { sub.writeVarint64(uint64(zigzagEncode32(v))) })
}

func (w *Writer) WritePackedInt64(num int32, vs []int64) {
	writePacked(w, num, vs, func(sub *Writer, v int64) { sub.writeVarint64(uint64(v)) })
}

func (w *Writer) WritePackedUint64(num int32, vs []uint64) {
	writePacked(w, num, vs, func(sub *Writer, v uint64) { sub.writeVarint64(v) })
}

func (w *Writer) WritePackedSint64(num int32, vs []int64) {
	writePacked(w, num, vs, func(sub *Writer, v int64) { sub.writeVarint64(zigzagEncode64(v)) })
}

func (w *Writer) WritePackedInt64String(num int32, vs []string) {
	writePacked(w, num, vs, func(sub *Writer, s string) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			sub.fail(err)
			return
		}
		sub.writeVarint64(uint64(v))
	})
}

func (w *Writer) WritePackedUint64String(num int32, vs []string) {
	writePacked(w, num, vs, func(sub *Writer, s string) {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			sub.fail(err)
			return
		}
		sub.writeVarint64(v)
	})
}

func (w *Writer) WritePackedSint64String(num int32, vs []string) {
	writePacked(w, num, vs, func(sub *Writer, s string) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			sub.fail(err)
			return
		}
		sub.writeVarint64(zigzagEncode64(v))
	})
}

func (w *Writer) WritePackedBool(num int32, vs []bool) {
	writePacked(w, num, vs, func(sub *Writer, v bool) {
		if v {
			sub.writeVarint64(1)
		} else {
			sub.writeVarint64(0)
		}
	})
}

func (w *Writer) WritePackedEnum(num int32, vs []int32) {
	w.WritePackedInt32(num, vs)
}

func (w *Writer) WritePackedFixed32(num int32, vs []uint32) {
	writePacked(w, num, vs, func(sub *Writer, v uint32) { sub.writeFixed32(v) })
}

func (w *Writer) WritePackedSfixed32(num int32, vs []int32) {
	writePacked(w, num, vs, func(sub *Writer, v int32) { sub.writeFixed32(uint32(v)) })
}

func (w *Writer) WritePackedFixed64(num int32, vs []uint64) {
	writePacked(w, num, vs, func(sub *Writer, v uint64) { sub.writeFixed64(v) })
}

func (w *Writer) WritePackedSfixed64(num int32, vs []int64) {
	writePacked(w, num, vs, func(sub *Writer, v int64) { sub.writeFixed64(uint64(v)) })
}

func (w *Writer) WritePackedFixed64String(num int32, vs []string) {
	writePacked(w, num, vs, func(sub *Writer, s string) {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			sub.fail(err)
			return
		}
		sub.writeFixed64(v)
	})
}

func (w *Writer) WritePackedSfixed64String(num int32, vs []string) {
	writePacked(w, num, vs, func(sub *Writer, s string) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			sub.fail(err)
			return
		}
		sub.writeFixed64(uint64(v))
	})
}

func (w *Writer) WritePackedFloat(num int32, vs []float32) {
	writePacked(w, num, vs, func(sub *Writer, v float32) { sub.writeFixed32(math.Float32bits(v)) })
}

func (w *Writer) WritePackedDouble(num int32, vs []float64) {
	writePacked(w, num, vs, func(sub *Writer, v float64) { sub.writeFixed64(math.Float64bits(v)) })
}
