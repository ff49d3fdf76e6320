package lifecycle

// Effect is the side effect a transition requires from the caller.
type Effect int

const (
	EffectNone Effect = iota
	// EffectTransfer: the contact must be handed off to the member registry.
	EffectTransfer
	// EffectRetentionStart: the retention clock starts from the write time.
	EffectRetentionStart
	// EffectReactivate: a refused record is back in normal follow-up.
	EffectReactivate
)

func (e Effect) String() string {
	switch e {
	case EffectTransfer:
		return "transfer"
	case EffectRetentionStart:
		return "retention_start"
	case EffectReactivate:
		return "reactivate"
	}
	return "none"
}

// ValidateTransition reports whether a record in current may be moved to
// requested.
//
//   - Integrated is terminal.
//   - Refused may only stay or go back to Pending.
//   - Every other status moves freely, including into Refused or Integrated.
func ValidateTransition(current, requested Status) bool {
	if !current.Valid() || !requested.Valid() {
		return false
	}
	switch current {
	case StatusIntegrated:
		return false
	case StatusRefused:
		return requested == StatusRefused || requested == StatusPending
	}
	return true
}

// EffectOf returns the side effect of an allowed transition.
func EffectOf(current, requested Status) Effect {
	if current == requested {
		return EffectNone
	}
	switch requested {
	case StatusIntegrated:
		return EffectTransfer
	case StatusRefused:
		return EffectRetentionStart
	}
	if current == StatusRefused {
		return EffectReactivate
	}
	return EffectNone
}

// Transition validates the move and returns its effect, or a validation
// error when it is not allowed.
func Transition(current, requested Status) (Effect, error) {
	if !requested.Valid() {
		return EffectNone, NewValidationError("invalid_status", "unknown status "+string(requested))
	}
	if !ValidateTransition(current, requested) {
		return EffectNone, &Error{
			Kind:    KindValidation,
			Code:    "transition_not_allowed",
			Message: "cannot move from " + string(current) + " to " + string(requested),
		}
	}
	return EffectOf(current, requested), nil
}
