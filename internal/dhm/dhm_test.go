package dhm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/rsaforge/internal/entropy"
)

func TestExchangeAgreement(t *testing.T) {
	ent, err := entropy.Open()
	require.NoError(t, err)

	alice, err := NewSession(ent)
	require.NoError(t, err)
	bob, err := NewSession(ent)
	require.NoError(t, err)

	alicePkt, err := alice.BuildAlicePacket()
	require.NoError(t, err)
	assert.Equal(t, PackTypeAlice, alicePkt.PackType)
	assert.True(t, alicePkt.G == 3 || alicePkt.G == 5)

	bobPkt, err := bob.AcceptAlicePacket(alicePkt)
	require.NoError(t, err)
	assert.Equal(t, PackTypeBob, bobPkt.PackType)
	assert.Equal(t, alicePkt.GUID, bobPkt.GUID)

	require.NoError(t, alice.FinishAlice(bobPkt))

	assert.Equal(t, alice.Secret(), bob.Secret())
}

func TestAcceptRejectsTamperedHash(t *testing.T) {
	ent, err := entropy.Open()
	require.NoError(t, err)

	alice, err := NewSession(ent)
	require.NoError(t, err)
	bob, err := NewSession(ent)
	require.NoError(t, err)

	alicePkt, err := alice.BuildAlicePacket()
	require.NoError(t, err)
	alicePkt.Hash[0] ^= 0xFF

	_, err = bob.AcceptAlicePacket(alicePkt)
	assert.Error(t, err)
}

func TestFinishAliceRejectsWrongGUID(t *testing.T) {
	ent, err := entropy.Open()
	require.NoError(t, err)

	alice, err := NewSession(ent)
	require.NoError(t, err)
	bob, err := NewSession(ent)
	require.NoError(t, err)

	alicePkt, err := alice.BuildAlicePacket()
	require.NoError(t, err)
	bobPkt, err := bob.AcceptAlicePacket(alicePkt)
	require.NoError(t, err)

	bobPkt.GUID[0] ^= 0xFF
	err = alice.FinishAlice(bobPkt)
	assert.Error(t, err)
}

func TestPacketWireRoundTrip(t *testing.T) {
	ent, err := entropy.Open()
	require.NoError(t, err)
	alice, err := NewSession(ent)
	require.NoError(t, err)

	pkt, err := alice.BuildAlicePacket()
	require.NoError(t, err)

	wire := pkt.Marshal()
	got, err := UnmarshalAlicePacket(wire)
	require.NoError(t, err)
	assert.Equal(t, pkt, got)
}
