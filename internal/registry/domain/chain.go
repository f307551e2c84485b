package domain

import "time"

// TxStatus is the settlement status of a simulated chain transaction.
type TxStatus string

const (
	TxStatusPending TxStatus = "pending"
	TxStatusSuccess TxStatus = "success"
	TxStatusFailed  TxStatus = "failed"
)

// ChainTransaction is a simulated blockchain receipt returned by ledger
// operations. Hashes and block numbers are generated, not sourced from a
// real chain.
type ChainTransaction struct {
	TxHash      string    `json:"txHash"`
	BlockNumber int64     `json:"blockNumber"`
	Status      TxStatus  `json:"status"`
	GasUsed     int64     `json:"gasUsed"`
	Timestamp   time.Time `json:"timestamp"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Value       float64   `json:"value"`
}
