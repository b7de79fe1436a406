package util

import (
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPebAndBack(t *testing.T) {
	peb := ToPeb(big.NewInt(10000))
	assert.Equal(t, "10000000000000000000000", peb.String())

	readable := FromPeb(peb)
	f, _ := readable.Float64()
	assert.Equal(t, float64(10000), f)

	assert.Equal(t, 0, FromPeb(nil).Sign())
	assert.Equal(t, 0, ToPeb(nil).Sign())
}

func TestStrToBigInt(t *testing.T) {
	v, err := StrToBigInt("12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), v.Int64())

	v, err = StrToBigInt("0x10")
	require.NoError(t, err)
	assert.Equal(t, int64(16), v.Int64())

	_, err = StrToBigInt("12a")
	assert.Error(t, err)
}

func TestHexToBigInt(t *testing.T) {
	for hexStr, want := range map[string]int64{
		"":     0,
		"0x":   0,
		"0xff": 255,
		"0x07": 7,
		"0X1a": 26,
	} {
		v, err := HexToBigInt(hexStr)
		require.NoError(t, err, hexStr)
		assert.Equal(t, want, v.Int64(), hexStr)
	}

	for _, hexStr := range []string{"ff", "0xzz", "0x-1", "pending"} {
		_, err := HexToBigInt(hexStr)
		assert.Error(t, err, hexStr)
	}
}

func TestSelector(t *testing.T) {
	assert.Equal(t, "a9059cbb", hex.EncodeToString(Selector("transfer(address,uint256)")))
	assert.Equal(t, "70a08231", hex.EncodeToString(Selector("balanceOf(address)")))
}

func TestReleaseTime(t *testing.T) {
	now := time.Unix(1600000000, 900*int64(time.Millisecond))
	assert.Equal(t, int64(1600000600), ReleaseTime(now, 600))
	assert.Equal(t, int64(1600000000), ReleaseTime(now, 0))
}

func TestSecondsToHuman(t *testing.T) {
	assert.Equal(t, "05s", SecondsToHuman(5))
	assert.Equal(t, "01m 05s", SecondsToHuman(65))
	assert.Equal(t, "01h 00m 01s", SecondsToHuman(3601))
	assert.Equal(t, "1d 00h 00m 00s", SecondsToHuman(86400))

	now := time.Unix(1000, 0)
	assert.Equal(t, "", Until(now, 999))
	assert.Equal(t, "10s", Until(now, 1010))
}
