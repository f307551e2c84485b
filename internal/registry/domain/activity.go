package domain

import "time"

// ActivityType enumerates the field activities recorded against a project.
type ActivityType string

const (
	ActivityTypePlanting     ActivityType = "planting"
	ActivityTypeMonitoring   ActivityType = "monitoring"
	ActivityTypeMeasurement  ActivityType = "measurement"
	ActivityTypeVerification ActivityType = "verification"
)

// ActivityData carries the free-form measurement payload submitted with an
// activity.
type ActivityData struct {
	Measurements map[string]any `json:"measurements"`
	Notes        string         `json:"notes"`
	GPS          Location       `json:"gps"`
	Timestamp    time.Time      `json:"timestamp"`
	Photos       []string       `json:"photos,omitempty"`
}

// Activity is a single field report. Verified transitions false -> true
// exactly once, recording the verifier identity and time.
type Activity struct {
	ID                string       `json:"id"`
	ProjectID         string       `json:"projectId"`
	UserID            string       `json:"userId"`
	Type              ActivityType `json:"type"`
	Data              ActivityData `json:"data"`
	Verified          bool         `json:"verified"`
	CreatedAt         time.Time    `json:"createdAt"`
	VerifiedBy        string       `json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time   `json:"verifiedAt,omitempty"`
	VerificationNotes string       `json:"verificationNotes,omitempty"`
	VerificationTx    string       `json:"verificationTx,omitempty"`
}
