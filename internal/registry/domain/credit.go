package domain

import "time"

// CreditStatus enumerates the credit lifecycle states. Transitions are
// monotonic: minted -> transferred -> retired, with no reverse edge.
type CreditStatus string

const (
	CreditStatusMinted      CreditStatus = "minted"
	CreditStatusTransferred CreditStatus = "transferred"
	CreditStatusRetired     CreditStatus = "retired"
)

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition.
func (s CreditStatus) CanTransitionTo(next CreditStatus) bool {
	switch s {
	case CreditStatusMinted:
		return next == CreditStatusTransferred || next == CreditStatusRetired
	case CreditStatusTransferred:
		return next == CreditStatusRetired
	}
	return false
}

// CreditMetadata is the immutable snapshot captured at mint time.
type CreditMetadata struct {
	ProjectID     string `json:"projectId"`
	ProjectName   string `json:"projectName"`
	VintagePeriod string `json:"vintagePeriod"`
	Methodology   string `json:"methodology"`
}

// Credit is a carbon credit issued against a project.
type Credit struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Amount    float64        `json:"amount"`
	TokenID   string         `json:"tokenId"`
	TxHash    string         `json:"txHash"`
	Owner     string         `json:"owner"`
	Metadata  CreditMetadata `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	Status    CreditStatus   `json:"status"`
}
