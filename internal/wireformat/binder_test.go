package wireformat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	in := New(
		"name", "alice",
		"session_id", int64(42),
		"nonce", []byte{1, 2, 3, 4},
		"nested", New("inner", "value"),
	)

	packed, err := Pack(in)
	require.NoError(t, err)

	out, err := Unpack(packed)
	require.NoError(t, err)

	name, err := out.GetString("name")
	require.NoError(t, err)
	require.Equal(t, "alice", name)

	id, err := out.GetLong("session_id")
	require.NoError(t, err)
	require.EqualValues(t, 42, id)

	nonce, err := out.GetBytes("nonce")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, nonce)

	nested, err := out.GetBinder("nested")
	require.NoError(t, err)
	inner, err := nested.GetString("inner")
	require.NoError(t, err)
	require.Equal(t, "value", inner)
}

func TestGetBytesMissingKey(t *testing.T) {
	b := New("x", int64(1))
	_, err := b.GetBytes("y")
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestGetLongWrongType(t *testing.T) {
	b := New("x", "not-a-number")
	_, err := b.GetLong("x")
	require.ErrorIs(t, err, ErrWrongType)
}

func TestGetStringWrongType(t *testing.T) {
	b := New("x", int64(7))
	_, err := b.GetString("x")
	require.ErrorIs(t, err, ErrWrongType)
}
