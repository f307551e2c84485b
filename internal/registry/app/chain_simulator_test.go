package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
)

func TestChainSimulator_TxHashFormat(t *testing.T) {
	chain := NewChainSimulator()
	hash := chain.TxHash()
	assert.Len(t, hash, 66) // 0x + 32 bytes hex
	assert.Equal(t, "0x", hash[:2])
	assert.NotEqual(t, hash, chain.TxHash())
}

func TestChainSimulator_MintReceipt(t *testing.T) {
	chain := NewChainSimulator()
	receipt := chain.MintReceipt("0xwallet", 50)

	assert.Equal(t, ZeroAddress, receipt.From)
	assert.Equal(t, "0xwallet", receipt.To)
	assert.Equal(t, float64(50), receipt.Value)
	assert.Equal(t, domain.TxStatusSuccess, receipt.Status)
	assert.GreaterOrEqual(t, receipt.GasUsed, int64(50_000))
	assert.Less(t, receipt.GasUsed, int64(150_000))
	assert.GreaterOrEqual(t, receipt.BlockNumber, int64(18_000_000))
	assert.Less(t, receipt.BlockNumber, int64(19_000_000))
	assert.False(t, receipt.Timestamp.IsZero())
}

func TestChainSimulator_TransferReceipt(t *testing.T) {
	chain := NewChainSimulator()
	receipt := chain.TransferReceipt("0xfrom", "0xto", 10)

	assert.Equal(t, "0xfrom", receipt.From)
	assert.Equal(t, "0xto", receipt.To)
	assert.GreaterOrEqual(t, receipt.GasUsed, int64(25_000))
	assert.Less(t, receipt.GasUsed, int64(75_000))
}

func TestChainSimulator_VerificationReceipt(t *testing.T) {
	chain := NewChainSimulator()
	receipt := chain.VerificationReceipt("0xverifier")

	assert.Equal(t, "0xverifier", receipt.From)
	assert.Equal(t, "0xVerificationContract", receipt.To)
	assert.Zero(t, receipt.Value)
	assert.GreaterOrEqual(t, receipt.GasUsed, int64(40_000))
	assert.Less(t, receipt.GasUsed, int64(115_000))
}

func TestRandomWallet(t *testing.T) {
	wallet := RandomWallet()
	assert.Len(t, wallet, 42) // 0x + 20 bytes hex
	assert.Equal(t, "0x", wallet[:2])
	assert.NotEqual(t, wallet, RandomWallet())
}
