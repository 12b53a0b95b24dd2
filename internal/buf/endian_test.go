package buf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndianRoundTrip(t *testing.T) {
	b := make([]byte, 8)

	PutU16(b, 0xBEEF)
	require.Equal(t, []byte{0xEF, 0xBE}, b[:2])
	require.Equal(t, uint16(0xBEEF), U16(b))

	PutU32(b, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), U32(b))

	PutU64(b, 0x0102030405060708)
	require.Equal(t, byte(0x08), b[0])
	require.Equal(t, uint64(0x0102030405060708), U64(b))
}

func TestEndianShortInput(t *testing.T) {
	require.Zero(t, U16([]byte{1}))
	require.Zero(t, U32([]byte{1, 2, 3}))
	require.Zero(t, U64(make([]byte, 7)))
}
