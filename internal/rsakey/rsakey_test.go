package rsakey

import (
	"bytes"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/entropy"
)

func testKey(t *testing.T) *Key {
	t.Helper()
	ent, err := entropy.Open()
	require.NoError(t, err)
	cfg := GenerateConfig{Bits: MinModulusBits, Workers: 2}
	k, err := Generate(cfg, ent)
	require.NoError(t, err)
	return k
}

func TestGenerateConfigValidate(t *testing.T) {
	assert.NoError(t, GenerateConfig{Bits: 768, Workers: 1}.Validate())
	assert.Error(t, GenerateConfig{Bits: 767, Workers: 1}.Validate())
	assert.Error(t, GenerateConfig{Bits: 1000, Workers: 1}.Validate())
	assert.Error(t, GenerateConfig{Bits: 768, Workers: 0}.Validate())
}

func TestGenerateInvariants(t *testing.T) {
	k := testKey(t)

	require.True(t, k.IsPrivate())
	require.True(t, k.IsPublic())

	one := big.NewInt(1)
	n := bignum.Mul(k.P, k.Q)
	assert.Equal(t, 0, bignum.Cmp(n, k.N))

	lambda := bignum.LCM(bignum.Sub(k.P, one), bignum.Sub(k.Q, one))
	de := bignum.Mod(bignum.Mul(k.D, k.E), lambda)
	assert.Equal(t, 0, bignum.Cmp(de, one))

	assert.Equal(t, 0, bignum.Cmp(bignum.Mod(k.D, bignum.Sub(k.P, one)), k.DP))
	assert.Equal(t, 0, bignum.Cmp(bignum.Mod(k.D, bignum.Sub(k.Q, one)), k.DQ))
	assert.Equal(t, 0, bignum.Cmp(bignum.Mod(bignum.Mul(k.QInv, k.Q), k.P), one))
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	k := testKey(t)

	var buf bytes.Buffer
	require.NoError(t, k.SerializePrivate(&buf))

	got, err := Deserialize(&buf)
	require.NoError(t, err)

	assert.Equal(t, 0, bignum.Cmp(k.N, got.N))
	assert.Equal(t, 0, bignum.Cmp(k.E, got.E))
	assert.Equal(t, 0, bignum.Cmp(k.D, got.D))
	assert.Equal(t, 0, bignum.Cmp(k.P, got.P))
	assert.Equal(t, 0, bignum.Cmp(k.Q, got.Q))
	assert.Equal(t, 0, bignum.Cmp(k.DP, got.DP))
	assert.Equal(t, 0, bignum.Cmp(k.DQ, got.DQ))
	assert.Equal(t, 0, bignum.Cmp(k.QInv, got.QInv))
	assert.True(t, got.IsPrivate())
}

func TestSerializePublicOnly(t *testing.T) {
	k := testKey(t)

	var buf bytes.Buffer
	require.NoError(t, k.SerializePublic(&buf))

	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.True(t, got.IsPublic())
	assert.False(t, got.IsPrivate())
}

func TestDeserializeSkipsUnknownRecord(t *testing.T) {
	k := testKey(t)

	var buf bytes.Buffer
	require.NoError(t, k.SerializePublic(&buf))

	// Append an unknown record type with an 8-bit payload; Deserialize
	// must tolerate it rather than fail.
	buf.Write([]byte{0xEE, 0x00, 0x00, 0x00, 0x08, 0xAA})

	got, err := Deserialize(&buf)
	require.NoError(t, err)
	assert.True(t, got.IsPublic())
}

func TestWriteFilesLoadFileBinary(t *testing.T) {
	k := testKey(t)
	stem := filepath.Join(t.TempDir(), "testkey")

	pubPath, privPath, err := k.WriteFiles(stem, false)
	require.NoError(t, err)

	pub, err := LoadFile(pubPath)
	require.NoError(t, err)
	assert.True(t, pub.IsPublic())

	priv, err := LoadFile(privPath)
	require.NoError(t, err)
	assert.True(t, priv.IsPrivate())
}

func TestWriteFilesLoadFilePEM(t *testing.T) {
	k := testKey(t)
	stem := filepath.Join(t.TempDir(), "testkey")

	pubPath, privPath, err := k.WriteFiles(stem, true)
	require.NoError(t, err)

	pub, err := LoadFile(pubPath)
	require.NoError(t, err)
	assert.True(t, pub.IsPublic())

	priv, err := LoadFile(privPath)
	require.NoError(t, err)
	assert.True(t, priv.IsPrivate())

	// Re-serializing the parsed PEM key reproduces the binary record
	// stream byte for byte.
	var want, got bytes.Buffer
	require.NoError(t, k.SerializePrivate(&want))
	require.NoError(t, priv.SerializePrivate(&got))
	assert.Equal(t, want.Bytes(), got.Bytes())
}
