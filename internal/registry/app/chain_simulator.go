package app

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
)

// ZeroAddress is the mint source address on simulated receipts.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// verificationContract is the target address recorded on verification
// receipts.
const verificationContract = "0xVerificationContract"

// ChainSimulator produces simulated blockchain receipts for ledger
// operations. Hashes, block numbers and gas figures are generated; nothing
// touches a real chain.
type ChainSimulator struct {
	now func() time.Time
}

// NewChainSimulator creates a simulator using the wall clock.
func NewChainSimulator() *ChainSimulator {
	return &ChainSimulator{now: time.Now}
}

// TxHash returns a random 32-byte hash in 0x-prefixed hex.
func (c *ChainSimulator) TxHash() string {
	return "0x" + randomHex(32)
}

// MintReceipt records a mint of amount credits to the given wallet.
func (c *ChainSimulator) MintReceipt(toWallet string, amount float64) domain.ChainTransaction {
	return c.receipt(ZeroAddress, toWallet, amount, 50_000, 150_000)
}

// TransferReceipt records a transfer between wallets.
func (c *ChainSimulator) TransferReceipt(fromWallet, toWallet string, amount float64) domain.ChainTransaction {
	return c.receipt(fromWallet, toWallet, amount, 25_000, 75_000)
}

// VerificationReceipt records an activity verification.
func (c *ChainSimulator) VerificationReceipt(verifierWallet string) domain.ChainTransaction {
	return c.receipt(verifierWallet, verificationContract, 0, 40_000, 115_000)
}

func (c *ChainSimulator) receipt(from, to string, value float64, gasMin, gasMax int64) domain.ChainTransaction {
	return domain.ChainTransaction{
		TxHash:      c.TxHash(),
		BlockNumber: 18_000_000 + randomInt64(1_000_000),
		Status:      domain.TxStatusSuccess,
		GasUsed:     gasMin + randomInt64(gasMax-gasMin),
		Timestamp:   c.now().UTC(),
		From:        from,
		To:          to,
		Value:       value,
	}
}

// RandomWallet returns a random 20-byte address in 0x-prefixed hex, used
// when creating users without a wallet.
func RandomWallet() string {
	return "0x" + randomHex(20)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// nothing sensible to do but panic.
		panic(err)
	}
	return hex.EncodeToString(b)
}

func randomInt64(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		panic(err)
	}
	return n.Int64()
}
