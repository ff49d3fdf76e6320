// Package lifecycle holds the follow-up status vocabulary and the rules for
// moving a contact between statuses. It has no storage dependencies.
package lifecycle

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status is the lifecycle status of a contact. The set is closed.
type Status string

const (
	StatusNew        Status = "nouveau"
	StatusSent       Status = "envoye"
	StatusPending    Status = "en_attente"
	StatusIntegrated Status = "integre"
	StatusRefused    Status = "refus"
)

// AllStatuses lists the closed set in display order.
var AllStatuses = []Status{StatusNew, StatusSent, StatusPending, StatusIntegrated, StatusRefused}

// StatusCode is the numeric status stored on follow-up records.
type StatusCode int

const (
	CodeSent       StatusCode = 1
	CodePending    StatusCode = 2
	CodeIntegrated StatusCode = 3
	CodeRefused    StatusCode = 4
)

var statusAliases = map[string]Status{
	"nouveau":    StatusNew,
	"new":        StatusNew,
	"envoye":     StatusSent,
	"envoyé":     StatusSent,
	"sent":       StatusSent,
	"en suivi":   StatusSent,
	"en_suivi":   StatusSent,
	"en_attente": StatusPending,
	"en attente": StatusPending,
	"pending":    StatusPending,
	"integre":    StatusIntegrated,
	"intégré":    StatusIntegrated,
	"integrated": StatusIntegrated,
	"refus":      StatusRefused,
	"refused":    StatusRefused,
}

func (s Status) String() string { return string(s) }

// Valid reports whether s belongs to the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusSent, StatusPending, StatusIntegrated, StatusRefused:
		return true
	}
	return false
}

// ParseStatus accepts the canonical values and the labels used by the web
// client ("En attente", "Intégré", ...).
func ParseStatus(raw string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := statusAliases[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Code returns the follow-up status code for s. New has no code.
func (s Status) Code() (StatusCode, bool) {
	switch s {
	case StatusSent:
		return CodeSent, true
	case StatusPending:
		return CodePending, true
	case StatusIntegrated:
		return CodeIntegrated, true
	case StatusRefused:
		return CodeRefused, true
	}
	return 0, false
}

// Valid reports whether c is one of the four follow-up codes.
func (c StatusCode) Valid() bool {
	return c >= CodeSent && c <= CodeRefused
}

// Status maps a follow-up code back to the contact status.
func (c StatusCode) Status() (Status, error) {
	switch c {
	case CodeSent:
		return StatusSent, nil
	case CodePending:
		return StatusPending, nil
	case CodeIntegrated:
		return StatusIntegrated, nil
	case CodeRefused:
		return StatusRefused, nil
	}
	return "", fmt.Errorf("unknown status code %d", int(c))
}

/* ---------- DB adapters ---------- */

// Scan implements the sql.Scanner interface
func (s *Status) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("Status: cannot scan type %T", src)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements the driver.Valuer interface. Values outside the closed
// set are refused so they never reach the store.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %q", string(s))
	}
	return string(s), nil
}
