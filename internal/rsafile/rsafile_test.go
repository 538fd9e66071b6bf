package rsafile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/rsaforge/internal/entropy"
	"github.com/relayforge/rsaforge/internal/rsaerr"
	"github.com/relayforge/rsaforge/internal/rsakey"
)

func testKeyPair(t *testing.T) *rsakey.Key {
	t.Helper()
	ent, err := entropy.Open()
	require.NoError(t, err)
	k, err := rsakey.Generate(rsakey.GenerateConfig{Bits: rsakey.MinModulusBits, Workers: 2}, ent)
	require.NoError(t, err)
	return k
}

func testConfig(t *testing.T, k *rsakey.Key, noChinese bool) (Config, Sizing) {
	t.Helper()
	ent, err := entropy.Open()
	require.NoError(t, err)
	sizing, err := NewSizing(k.Bits)
	require.NoError(t, err)
	cfg := Config{
		Key:       k,
		Entropy:   ent,
		Latitude:  37.7749,
		Longitude: -122.4194,
		Workers:   2,
		NoChinese: noChinese,
	}
	return cfg, sizing
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	k := testKeyPair(t)
	plaintext := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 50)

	for _, noChinese := range []bool{false, true} {
		cfg, sizing := testConfig(t, k, noChinese)

		var cipher bytes.Buffer
		crc, err := Encrypt(cfg, sizing, bytes.NewReader(plaintext), int64(len(plaintext)), &cipher)
		require.NoError(t, err)
		assert.NotZero(t, crc)

		var plain bytes.Buffer
		outCrc, ok, err := Decrypt(cfg, sizing, bytes.NewReader(cipher.Bytes()), int64(cipher.Len()), &plain)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, crc, outCrc)
		assert.Equal(t, plaintext, plain.Bytes())
	}
}

func TestEncryptShortInputIsOneBlock(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)

	plaintext := []byte("hello world")
	var cipher bytes.Buffer
	crc, err := Encrypt(cfg, sizing, bytes.NewReader(plaintext), int64(len(plaintext)), &cipher)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0D4A1185), crc)
	assert.Equal(t, sizing.BlockSize, cipher.Len())
}

func TestEncryptExactCapacityEmitsNoTrailingBlock(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)

	for _, size := range []int{
		sizing.FirstBlockCapacity,
		sizing.FirstBlockCapacity + sizing.BlockCapacity,
	} {
		plaintext := bytes.Repeat([]byte{0x5A}, size)
		var cipher bytes.Buffer
		_, err := Encrypt(cfg, sizing, bytes.NewReader(plaintext), int64(size), &cipher)
		require.NoError(t, err)

		wantBlocks := 1 + (size-sizing.FirstBlockCapacity+sizing.BlockCapacity-1)/sizing.BlockCapacity
		assert.Equal(t, wantBlocks*sizing.BlockSize, cipher.Len())

		var plain bytes.Buffer
		_, ok, err := Decrypt(cfg, sizing, bytes.NewReader(cipher.Bytes()), int64(cipher.Len()), &plain)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, plaintext, plain.Bytes())
	}
}

func TestEncryptDecryptEmptyInput(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)

	var cipher bytes.Buffer
	crc, err := Encrypt(cfg, sizing, bytes.NewReader(nil), 0, &cipher)
	require.NoError(t, err)

	var plain bytes.Buffer
	outCrc, ok, err := Decrypt(cfg, sizing, bytes.NewReader(cipher.Bytes()), int64(cipher.Len()), &plain)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, crc, outCrc)
	assert.Empty(t, plain.Bytes())
}

func TestEncryptDecryptMultiBlock(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)

	// Force several blocks' worth of plaintext through the pipeline.
	plaintext := bytes.Repeat([]byte{0xAB}, sizing.BlockCapacity*3+17)

	var cipher bytes.Buffer
	_, err := Encrypt(cfg, sizing, bytes.NewReader(plaintext), int64(len(plaintext)), &cipher)
	require.NoError(t, err)

	var plain bytes.Buffer
	_, ok, err := Decrypt(cfg, sizing, bytes.NewReader(cipher.Bytes()), int64(cipher.Len()), &plain)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, plaintext, plain.Bytes())
}

func TestDecryptWrongKeyDetected(t *testing.T) {
	k1 := testKeyPair(t)
	k2 := testKeyPair(t)

	cfg1, sizing := testConfig(t, k1, false)
	plaintext := []byte("some secret content")

	var cipher bytes.Buffer
	_, err := Encrypt(cfg1, sizing, bytes.NewReader(plaintext), int64(len(plaintext)), &cipher)
	require.NoError(t, err)

	cfg2, sizing2 := testConfig(t, k2, false)
	require.Equal(t, sizing, sizing2)

	var plain bytes.Buffer
	_, _, err = Decrypt(cfg2, sizing2, bytes.NewReader(cipher.Bytes()), int64(cipher.Len()), &plain)
	require.Error(t, err)
	assert.True(t, rsaerr.Is(err, rsaerr.WrongKeyOrCorrupt))
	assert.Contains(t, err.Error(), "wrong key")
}

func TestDecryptRejectsBadBlockSize(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)

	var plain bytes.Buffer
	_, _, err := Decrypt(cfg, sizing, bytes.NewReader(make([]byte, sizing.BlockSize+1)), int64(sizing.BlockSize+1), &plain)
	assert.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)
	content := []byte("document contents to be signed")

	cfg.Time = 1700000000
	var sig bytes.Buffer
	require.NoError(t, Sign(cfg, sizing, bytes.NewReader(content), &sig))

	res, err := Verify(cfg, sizing, bytes.NewReader(content), bytes.NewReader(sig.Bytes()))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, cfg.Time, res.Time)
	assert.InDelta(t, cfg.Latitude, res.Latitude, 0.0001)
	assert.InDelta(t, cfg.Longitude, res.Longitude, 0.0001)
}

func TestVerifyDetectsSignatureTampering(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)
	content := bytes.Repeat([]byte{0x42}, 100)

	var sig bytes.Buffer
	require.NoError(t, Sign(cfg, sizing, bytes.NewReader(content), &sig))

	mangled := append([]byte(nil), sig.Bytes()...)
	mangled[50] ^= 0x08

	res, err := Verify(cfg, sizing, bytes.NewReader(content), bytes.NewReader(mangled))
	require.NoError(t, err)
	assert.False(t, res.OK)

	// Restoring the byte restores the verdict.
	mangled[50] ^= 0x08
	res, err = Verify(cfg, sizing, bytes.NewReader(content), bytes.NewReader(mangled))
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestVerifyDetectsTampering(t *testing.T) {
	k := testKeyPair(t)
	cfg, sizing := testConfig(t, k, false)
	content := []byte("document contents to be signed")

	var sig bytes.Buffer
	require.NoError(t, Sign(cfg, sizing, bytes.NewReader(content), &sig))

	tampered := append([]byte(nil), content...)
	tampered[0] ^= 0xFF

	res, err := Verify(cfg, sizing, bytes.NewReader(tampered), bytes.NewReader(sig.Bytes()))
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestTell(t *testing.T) {
	k := testKeyPair(t)
	var buf bytes.Buffer
	Tell(&buf, k)
	out := buf.String()
	assert.Contains(t, out, "n ")
	assert.Contains(t, out, "qinv")
}
