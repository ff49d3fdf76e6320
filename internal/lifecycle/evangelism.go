package lifecycle

import (
	"fmt"
	"strings"
)

// EvangelismStatus is the outreach-side vocabulary recorded on evangelized
// contacts. It runs in parallel to Status and has no terminal value.
type EvangelismStatus string

const (
	EvangelismInProgress    EvangelismStatus = "en_cours"
	EvangelismCameToChurch  EvangelismStatus = "venu_eglise"
	EvangelismWantsVisit    EvangelismStatus = "veut_visite"
	EvangelismDoesNotPursue EvangelismStatus = "ne_souhaite_pas_continuer"
	EvangelismUnreachable   EvangelismStatus = "injoignable"
)

var evangelismLabels = map[string]EvangelismStatus{
	"en_cours":                  EvangelismInProgress,
	"en cours":                  EvangelismInProgress,
	"venu_eglise":               EvangelismCameToChurch,
	"venu à l'église":           EvangelismCameToChurch,
	"venu a l'eglise":           EvangelismCameToChurch,
	"veut_visite":               EvangelismWantsVisit,
	"veut être visité":          EvangelismWantsVisit,
	"veut etre visite":          EvangelismWantsVisit,
	"ne_souhaite_pas_continuer": EvangelismDoesNotPursue,
	"ne souhaite pas continuer": EvangelismDoesNotPursue,
	"injoignable":               EvangelismUnreachable,
}

func (s EvangelismStatus) Valid() bool {
	switch s {
	case EvangelismInProgress, EvangelismCameToChurch, EvangelismWantsVisit, EvangelismDoesNotPursue, EvangelismUnreachable:
		return true
	}
	return false
}

// ParseEvangelismStatus accepts canonical values and the French labels.
func ParseEvangelismStatus(raw string) (EvangelismStatus, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := evangelismLabels[key]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown evangelism status %q", raw)
}
