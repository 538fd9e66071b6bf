package canon

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRightJustify(t *testing.T) {
	got := RightJustify([]byte{0x01, 0x02}, 4)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x02}, got)

	exact := []byte{0x01, 0x02, 0x03}
	assert.True(t, bytes.Equal(exact, RightJustify(exact, 3)))

	over := RightJustify([]byte{0x01, 0x02, 0x03, 0x04}, 2)
	assert.Equal(t, []byte{0x03, 0x04}, over)
}

func TestReverseInt64RoundTrip(t *testing.T) {
	v := int64(0x0102030405060708)
	assert.Equal(t, v, ReverseInt64(ReverseInt64(v)))
}

func TestReverseFloat32RoundTrip(t *testing.T) {
	v := float32(3.14159)
	assert.Equal(t, v, ReverseFloat32(ReverseFloat32(v)))
}

func TestCRC32(t *testing.T) {
	sum, err := CRC32(strings.NewReader("the quick brown fox"))
	require.NoError(t, err)
	assert.NotZero(t, sum)

	sum2, err := CRC32(strings.NewReader("the quick brown fox"))
	require.NoError(t, err)
	assert.Equal(t, sum, sum2)
}

func TestCRC32KnownAnswer(t *testing.T) {
	sum, err := CRC32(strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0D4A1185), sum)
}

func TestArmorDearmorRoundTrip(t *testing.T) {
	data := []byte("a reasonably long payload that spans more than one armor line\x00\x01\x02")
	armored := Armor(data, "TEST LABEL")
	assert.True(t, strings.HasPrefix(armored, "-----BEGIN TEST LABEL-----\n"))
	assert.True(t, strings.HasSuffix(armored, "-----END TEST LABEL-----\n"))

	decoded, err := Dearmor(armored)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestDearmorRejectsBadAlphabet(t *testing.T) {
	_, err := Dearmor("-----BEGIN X-----\n!!!!\n-----END X-----\n")
	assert.Error(t, err)
}
