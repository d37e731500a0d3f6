package vaa

import (
	"encoding/hex"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addr = Address{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 4}

func TestCoreModule(t *testing.T) {
	assert.Equal(t, "01", hex.EncodeToString([]byte{CoreModule}))
}

func TestBodyContractUpgrade(t *testing.T) {
	test := BodyContractUpgrade{ChainID: 1, NewContract: addr}
	assert.Equal(t, ChainID(1), test.ChainID)
	assert.Equal(t, addr, test.NewContract)
}

func TestBodyGuardianSetUpdate(t *testing.T) {
	keys := []ethcommon.Address{
		ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaee"),
	}
	test := BodyGuardianSetUpdate{Keys: keys, NewIndex: uint32(1)}
	assert.Equal(t, keys, test.Keys)
	assert.Equal(t, uint32(1), test.NewIndex)
}

func TestBodyContractUpgradeSerialize(t *testing.T) {
	bodyContractUpgrade := BodyContractUpgrade{ChainID: 1, NewContract: addr}
	expected := "010100010000000000000000000000000000000000000000000000000000000000000004"
	assert.Equal(t, expected, hex.EncodeToString(bodyContractUpgrade.Serialize()))
}

func TestBodyGuardianSetUpdateSerialize(t *testing.T) {
	keys := []ethcommon.Address{
		ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaee"),
	}
	bodyGuardianSetUpdate := BodyGuardianSetUpdate{Keys: keys, NewIndex: uint32(1)}
	expected := "01020000000000015aaeb6053f3e94c9b9a09f33669435e7ef1beaed5aaeb6053f3e94c9b9a09f33669435e7ef1beaee"
	assert.Equal(t, expected, hex.EncodeToString(bodyGuardianSetUpdate.Serialize()))
}

func TestParseBodyGuardianSetUpdateRoundTrip(t *testing.T) {
	keys := []ethcommon.Address{
		ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"),
		ethcommon.HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaee"),
	}
	original := BodyGuardianSetUpdate{Keys: keys, NewIndex: uint32(7)}
	parsed, err := ParseBodyGuardianSetUpdate(original.Serialize())
	require.NoError(t, err)
	assert.Equal(t, original.NewIndex, parsed.NewIndex)
	assert.Equal(t, original.Keys, parsed.Keys)
}

func TestParseBodyGuardianSetUpdateRejectsWrongAction(t *testing.T) {
	upgrade := BodyContractUpgrade{ChainID: 1, NewContract: addr}
	_, err := ParseBodyGuardianSetUpdate(upgrade.Serialize())
	require.ErrorIs(t, err, ErrInvalidVAA)
}

func TestCreateGovernanceVAACarriesPayload(t *testing.T) {
	payload := BodyGuardianSetUpdate{Keys: nil, NewIndex: 1}.Serialize()
	v := CreateGovernanceVAA(testTimestamp, 0, 1, 0, payload)
	assert.Equal(t, payload, v.Payload)
	assert.Equal(t, GovernanceEmitter, v.EmitterAddress)
}
