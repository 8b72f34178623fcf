package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    uint32
	Score float64
	Name  string
}

func (v *sample) EncodeStream(s *Stream) {
	s.WriteUint32(v.ID)
	s.WriteFloat64(v.Score)
	s.WriteString(v.Name)
}

func (v *sample) DecodeStream(s *Stream) {
	s.ReadUint32(&v.ID)
	s.ReadFloat64(&v.Score)
	v.Name = s.ReadString()
}

func TestScalarRoundTrip(t *testing.T) {
	s := New(nil)

	WriteScalar(s, int64(-1))
	WriteScalar(s, float32(2.5))
	WriteScalar(s, true)

	assert.Equal(t, int64(-1), ReadScalar[int64](s))
	assert.Equal(t, float32(2.5), ReadScalar[float32](s))
	assert.Equal(t, true, ReadScalar[bool](s))
	require.NoError(t, s.Err())
}

func TestPeekScalar(t *testing.T) {
	s := New(nil)
	WriteScalar(s, uint64(0x1122334455667788))

	v, ok := PeekScalar[uint64](s)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1122334455667788), v)
	assert.Equal(t, 8, s.BufferedSize())

	_, ok = PeekScalar[uint16](New(nil))
	assert.False(t, ok)
}

func TestSeqRoundTrip(t *testing.T) {
	s := New(nil)
	in := []int32{-1, 0, 1, 1 << 30}

	WriteSeq(s, in)
	assert.Equal(t, 4+4*4, s.BufferedSize())
	assert.Equal(t, in, ReadSeq[int32](s))
	require.NoError(t, s.Err())
}

func TestSeqEmpty(t *testing.T) {
	s := New(nil)
	WriteSeq(s, []byte(nil))
	assert.Equal(t, 4, s.BufferedSize())
	assert.Empty(t, ReadSeq[byte](s))
	require.NoError(t, s.Err())
}

func TestSeqNegativeCount(t *testing.T) {
	s := New(nil)
	s.WriteInt32(-5)

	assert.Nil(t, ReadSeq[uint16](s))
	assert.ErrorIs(t, s.Err(), ErrDecodeMalformed)
}

func TestSeqTruncatedPayload(t *testing.T) {
	// count says 4 elements but only 2 arrive
	s := New(nil)
	s.WriteInt32(4)
	WriteScalar(s, uint32(7))
	WriteScalar(s, uint32(8))

	out := ReadSeq[uint32](s)
	assert.Equal(t, []uint32{7, 8}, out)
	assert.ErrorIs(t, s.Err(), ErrDecodeUnderflow)
}

func TestSeqHugeCountDoesNotAllocate(t *testing.T) {
	s := New(nil)
	s.WriteInt32(1 << 30)

	out := ReadSeq[uint64](s)
	assert.Empty(t, out)
	assert.ErrorIs(t, s.Err(), ErrDecodeUnderflow)
}

func TestRecordsRoundTrip(t *testing.T) {
	s := New(nil)
	in := []sample{
		{ID: 1, Score: 0.5, Name: "first"},
		{ID: 2, Score: -1.25, Name: ""},
		{ID: 3, Score: 99, Name: "third"},
	}

	WriteRecords(s, []*sample{&in[0], &in[1], &in[2]})
	out := ReadRecords[sample](s)
	require.NoError(t, s.Err())
	assert.Equal(t, in, out)
	assert.Zero(t, s.BufferedSize())
}

func TestRecordsTruncated(t *testing.T) {
	s := New(nil)
	s.WriteInt32(3)
	(&sample{ID: 1, Name: "only"}).EncodeStream(s)

	out := ReadRecords[sample](s)
	assert.Len(t, out, 1)
	assert.Equal(t, uint32(1), out[0].ID)
	assert.ErrorIs(t, s.Err(), ErrDecodeUnderflow)
}

func TestStringsRoundTrip(t *testing.T) {
	s := New(nil)
	in := []string{"alpha", "", "gamma"}

	s.WriteStrings(in)
	assert.Equal(t, in, s.ReadStrings())
	require.NoError(t, s.Err())
}

func TestSeqThroughSource(t *testing.T) {
	src := NewMemorySource()
	w := New(src)
	in := make([]float64, 300) // payload larger than one buffer
	for i := range in {
		in[i] = float64(i) / 3
	}
	WriteSeq(w, in)
	require.NoError(t, w.Flush())

	r := New(NewMemorySourceBytes(src.Bytes()))
	assert.Equal(t, in, ReadSeq[float64](r))
	require.NoError(t, r.Err())
}
