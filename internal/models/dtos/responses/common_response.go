package responses

import "time"

type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
	Code      string    `json:"code,omitempty"`
	Data      *T        `json:"data,omitempty"`

	// ReconciliationRequired is set when an operation left a half-applied hand-off.
	ReconciliationRequired bool `json:"reconciliation_required,omitempty"`
}
