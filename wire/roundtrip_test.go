package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundtrip_Varint64(t *testing.T) {
	t.Parallel()

	values := []uint64{
		0, 1, 127, 128, 150, 300, 1<<14 - 1, 1 << 14, 1<<21 - 1,
		1<<32 - 1, 1 << 32, 1 << 62, 1<<64 - 1,
	}
	for _, v := range values {
		w := NewWriter()
		w.WriteUint64(1, v)
		r := NewReader(w.Result())
		require.True(t, r.NextField())
		assert.Equal(t, v, r.ReadUint64())
		require.NoError(t, r.Err())
		assert.True(t, r.AtEnd())
	}
}

func TestRoundtrip_Int64DecimalString(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"0", "4611686018427387904", "-1", "9223372036854775807", "-9223372036854775808"} {
		w := NewWriter()
		w.WriteInt64String(1, s)
		require.NoError(t, w.Err())
		r := NewReader(w.Result())
		require.True(t, r.NextField())
		assert.Equal(t, s, r.ReadInt64String())
		require.NoError(t, r.Err())
	}
}

func TestRoundtrip_FixedAndFloat(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteFixed32(1, 0xdeadbeef)
	w.WriteSfixed32(2, -7)
	w.WriteFixed64(3, 1<<63|5)
	w.WriteSfixed64(4, -(1 << 40))
	w.WriteFloat(5, 1.5)
	w.WriteDouble(6, math.Pi)
	w.WriteDouble(7, math.Inf(-1))

	r := NewReader(w.Result())
	require.True(t, r.NextField())
	assert.Equal(t, uint32(0xdeadbeef), r.ReadFixed32())
	require.True(t, r.NextField())
	assert.Equal(t, int32(-7), r.ReadSfixed32())
	require.True(t, r.NextField())
	assert.Equal(t, uint64(1<<63|5), r.ReadFixed64())
	require.True(t, r.NextField())
	assert.Equal(t, int64(-(1 << 40)), r.ReadSfixed64())
	require.True(t, r.NextField())
	assert.Equal(t, float32(1.5), r.ReadFloat())
	require.True(t, r.NextField())
	assert.Equal(t, math.Pi, r.ReadDouble())
	require.True(t, r.NextField())
	assert.True(t, math.IsInf(r.ReadDouble(), -1))
	require.NoError(t, r.Err())
}

// message M { int32 n = 1; string s = 2; } with {n:150, s:"hi"}.
func TestScenario_ScalarMessageBytes(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteInt32(1, 150)
	w.WriteString(2, "hi")
	assert.Equal(t, []byte{0x08, 0x96, 0x01, 0x12, 0x02, 0x68, 0x69}, w.Result())

	r := NewReader(w.Result())
	require.True(t, r.NextField())
	assert.Equal(t, int32(1), r.FieldNumber())
	assert.Equal(t, int32(150), r.ReadInt32())
	require.True(t, r.NextField())
	assert.Equal(t, int32(2), r.FieldNumber())
	assert.Equal(t, "hi", r.ReadString())
	require.NoError(t, r.Err())
}

// message P { repeated int32 xs = 1; } with {xs:[1,2,3]}.
func TestScenario_PackedAndUnpacked(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WritePackedInt32(1, []int32{1, 2, 3})
	assert.Equal(t, []byte{0x0a, 0x03, 0x01, 0x02, 0x03}, w.Result())

	r := NewReader(w.Result())
	require.True(t, r.NextField())
	require.True(t, r.IsDelimited())
	assert.Equal(t, []int32{1, 2, 3}, r.ReadPackedInt32())
	require.NoError(t, r.Err())

	// The unpacked encoding of the same field decodes element-wise.
	unpacked := []byte{0x08, 0x01, 0x08, 0x02, 0x08, 0x03}
	r = NewReader(unpacked)
	var xs []int32
	for r.NextField() {
		if r.IsDelimited() {
			xs = append(xs, r.ReadPackedInt32()...)
		} else {
			xs = append(xs, r.ReadInt32())
		}
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []int32{1, 2, 3}, xs)
}

func TestScenario_EmptyMessage(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	assert.Equal(t, []byte{}, w.Result())

	r := NewReader(nil)
	assert.False(t, r.NextField())
	require.NoError(t, r.Err())
}

func TestRoundtrip_NestedMessage(t *testing.T) {
	t.Parallel()

	type inner struct{ n int32 }
	writeInner := func(m inner, w *Writer) {
		if m.n != 0 {
			w.WriteInt32(1, m.n)
		}
	}

	w := NewWriter()
	WriteMessage(w, 1, inner{n: 150}, writeInner)
	WriteRepeatedMessage(w, 2, []inner{{n: 1}, {n: 2}}, writeInner)

	r := NewReader(w.Result())
	require.True(t, r.NextField())
	var first inner
	r.ReadMessage(func(r *Reader) {
		for r.NextField() {
			switch r.FieldNumber() {
			case 1:
				first.n = r.ReadInt32()
			default:
				r.SkipField()
			}
		}
	})
	assert.Equal(t, int32(150), first.n)

	var rest []int32
	for r.NextField() {
		require.Equal(t, int32(2), r.FieldNumber())
		r.ReadMessage(func(r *Reader) {
			for r.NextField() {
				rest = append(rest, r.ReadInt32())
			}
		})
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []int32{1, 2}, rest)
}

func TestRoundtrip_RepeatedAndPackedAgree(t *testing.T) {
	t.Parallel()

	vs := []uint64{1, 1 << 40, 1<<64 - 1}

	packed := NewWriter()
	packed.WritePackedUint64(1, vs)
	unpacked := NewWriter()
	unpacked.WriteRepeatedUint64(1, vs)

	decode := func(buf []byte) []uint64 {
		r := GetReader(buf)
		defer PutReader(r)
		var out []uint64
		for r.NextField() {
			if r.IsDelimited() {
				out = append(out, r.ReadPackedUint64()...)
			} else {
				out = append(out, r.ReadUint64())
			}
		}
		require.NoError(t, r.Err())
		return out
	}

	assert.Equal(t, vs, decode(packed.Result()))
	assert.Equal(t, vs, decode(unpacked.Result()))
}

func TestWriter_BadDecimalString(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteInt64String(1, "not a number")
	assert.Error(t, w.Err())
}
