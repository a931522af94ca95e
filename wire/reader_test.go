package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Varint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want uint32
	}{
		{name: "zero", in: []byte{0x00}, want: 0},
		{name: "one byte", in: []byte{0x7f}, want: 127},
		{name: "two bytes", in: []byte{0x96, 0x01}, want: 150},
		{name: "max uint32", in: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, want: 0xffffffff},
		{
			name: "negative int32 sign extension",
			in:   []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
			want: 0xffffffff,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := NewReader(tc.in)
			got := r.ReadUint32()
			require.NoError(t, r.Err())
			assert.Equal(t, tc.want, got)
			assert.True(t, r.AtEnd())
		})
	}
}

func TestReader_VarintTooLong(t *testing.T) {
	t.Parallel()

	in := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	r := NewReader(in)
	r.ReadUint64()
	assert.ErrorIs(t, r.Err(), ErrMalformedVarint)

	r = NewReader(in)
	r.ReadUint32()
	assert.ErrorIs(t, r.Err(), ErrMalformedVarint)
}

func TestReader_VarintTruncated(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x96})
	r.ReadUint32()
	assert.ErrorIs(t, r.Err(), ErrTruncated)
}

func TestReader_Zigzag(t *testing.T) {
	t.Parallel()

	for _, v := range []int64{0, -1, 1, -2, 2, 1 << 40, -(1 << 40), 1<<62 - 1, -(1 << 62)} {
		w := NewWriter()
		w.WriteSint64(1, v)
		r := NewReader(w.Result())
		require.True(t, r.NextField())
		assert.Equal(t, v, r.ReadSint64())
		require.NoError(t, r.Err())
	}

	for _, v := range []int32{0, -1, 1, -64, 64, 1<<31 - 1, -(1 << 31)} {
		w := NewWriter()
		w.WriteSint32(1, v)
		r := NewReader(w.Result())
		require.True(t, r.NextField())
		assert.Equal(t, v, r.ReadSint32())
		require.NoError(t, r.Err())
	}
}

func TestReader_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "ascii", in: []byte("hi"), want: "hi"},
		{name: "two byte", in: []byte("héllo"), want: "héllo"},
		{name: "three byte", in: []byte("日本語"), want: "日本語"},
		{name: "astral", in: []byte("a\U0001F600b"), want: "a\U0001F600b"},
		{name: "orphan continuation skipped", in: []byte{'a', 0x80, 'b'}, want: "ab"},
		{name: "truncated tail dropped", in: []byte{'a', 0xe6}, want: "a"},
		{name: "empty", in: nil, want: ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := NewWriter()
			w.WriteBytes(1, tc.in)
			r := NewReader(w.Result())
			require.True(t, r.NextField())
			assert.Equal(t, tc.want, r.ReadString())
			require.NoError(t, r.Err())
		})
	}
}

func TestReader_BytesView(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteBytes(1, []byte{1, 2, 3})
	buf := w.Result()
	r := NewReader(buf)
	require.True(t, r.NextField())
	got := r.ReadBytes()
	require.NoError(t, r.Err())
	assert.Equal(t, []byte{1, 2, 3}, got)
	// A view, not a copy.
	buf[2] = 9
	assert.Equal(t, byte(9), got[0])
}

func TestReader_BytesBadLength(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x0a, 0x05, 0x01})
	require.True(t, r.NextField())
	r.ReadBytes()
	assert.ErrorIs(t, r.Err(), ErrInvalidLength)
}

func TestReader_SkipField(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteInt32(1, 300)
	w.WriteFixed64(2, 7)
	w.WriteString(3, "skip me")
	w.WriteFixed32(4, 5)
	w.WriteInt32(5, 42)

	r := NewReader(w.Result())
	for i := 0; i < 4; i++ {
		require.True(t, r.NextField())
		r.SkipField()
		require.NoError(t, r.Err())
	}
	require.True(t, r.NextField())
	assert.Equal(t, int32(5), r.FieldNumber())
	assert.Equal(t, int32(42), r.ReadInt32())
	assert.True(t, r.AtEnd())
	assert.False(t, r.NextField())
}

func TestReader_GroupUnsupported(t *testing.T) {
	t.Parallel()

	// Field 1, wire type 3 (start group).
	r := NewReader([]byte{0x0b})
	require.True(t, r.NextField())
	r.SkipField()
	assert.ErrorIs(t, r.Err(), ErrGroup)
}

func TestReader_InvalidTag(t *testing.T) {
	t.Parallel()

	// Field number 0.
	r := NewReader([]byte{0x00})
	assert.False(t, r.NextField())
	assert.ErrorIs(t, r.Err(), ErrInvalidTag)

	// Wire type 6.
	r = NewReader([]byte{0x0e})
	assert.False(t, r.NextField())
	assert.ErrorIs(t, r.Err(), ErrInvalidTag)
}

func TestReader_ReadMessageWindow(t *testing.T) {
	t.Parallel()

	inner := NewWriter()
	inner.WriteInt32(1, 5)
	outer := NewWriter()
	outer.WriteBytes(1, inner.Result())
	outer.WriteInt32(2, 9)

	r := NewReader(outer.Result())
	require.True(t, r.NextField())
	var got int32
	r.ReadMessage(func(r *Reader) {
		for r.NextField() {
			if r.FieldNumber() == 1 {
				got = r.ReadInt32()
			} else {
				r.SkipField()
			}
		}
	})
	require.NoError(t, r.Err())
	assert.Equal(t, int32(5), got)

	require.True(t, r.NextField())
	assert.Equal(t, int32(2), r.FieldNumber())
	assert.Equal(t, int32(9), r.ReadInt32())
}

func TestReader_Hash64(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.WriteUint64(1, 0x0807060504030201)
	r := NewReader(w.Result())
	require.True(t, r.NextField())
	assert.Equal(t, "\x01\x02\x03\x04\x05\x06\x07\x08", r.ReadHash64())
	require.NoError(t, r.Err())
}

func TestReader_Pool(t *testing.T) {
	t.Parallel()

	r := GetReader([]byte{0x08, 0x01})
	require.True(t, r.NextField())
	assert.Equal(t, int32(1), r.ReadInt32())
	PutReader(r)

	r2 := GetReader([]byte{0x10, 0x02})
	require.True(t, r2.NextField())
	assert.Equal(t, int32(2), r2.FieldNumber())
	assert.Equal(t, int32(2), r2.ReadInt32())
	require.NoError(t, r2.Err())
	PutReader(r2)
}
