package domain

import (
	"encoding/json"
	"time"
)

// Event subjects published for registry mutations.
const (
	EventProjectCreated    = "project.created"
	EventProjectVerified   = "project.verified"
	EventActivityRecorded  = "activity.recorded"
	EventActivityVerified  = "activity.verified"
	EventCreditMinted      = "credit.minted"
	EventCreditTransferred = "credit.transferred"
	EventCreditRetired     = "credit.retired"
)

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusDead      OutboxStatus = "dead"
)

// OutboxMessage is a domain event awaiting publication. Messages are
// appended in the same store operation as the mutation they describe and
// drained by the dispatcher; delivery is retried with backoff until the
// attempt cap, after which the message is marked dead.
type OutboxMessage struct {
	ID            string          `json:"id"`
	Subject       string          `json:"subject"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	NextAttemptAt time.Time       `json:"nextAttemptAt"`
	LastError     string          `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
