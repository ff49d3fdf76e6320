package lifecycle

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseStatus_ClosedSet(t *testing.T) {
	cases := map[string]Status{
		"nouveau":    StatusNew,
		"Envoyé":     StatusSent,
		"En suivi":   StatusSent,
		"En attente": StatusPending,
		"Intégré":    StatusIntegrated,
		" refus ":    StatusRefused,
		"integrated": StatusIntegrated,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", raw, got, want)
		}
	}

	for _, raw := range []string{"", "archived", "3", "Venu à l'église"} {
		if _, err := ParseStatus(raw); err == nil {
			t.Errorf("Expected ParseStatus(%q) to fail", raw)
		}
	}
}

func TestStatusValue_RejectsUnknown(t *testing.T) {
	if _, err := Status("archived").Value(); err == nil {
		t.Error("Expected Value() to refuse a status outside the closed set")
	}
	v, err := StatusPending.Value()
	if err != nil || v != "en_attente" {
		t.Errorf("Expected en_attente, got %v (err %v)", v, err)
	}
}

func TestStatusCodes_RoundTrip(t *testing.T) {
	for _, s := range AllStatuses {
		code, ok := s.Code()
		if s == StatusNew {
			if ok {
				t.Errorf("Expected nouveau to have no follow-up code")
			}
			continue
		}
		back, err := code.Status()
		if err != nil || back != s {
			t.Errorf("Code round trip for %s gave %s (err %v)", s, back, err)
		}
	}

	if CodeSent != 1 || CodePending != 2 || CodeIntegrated != 3 || CodeRefused != 4 {
		t.Error("Status codes must stay 1=Sent, 2=Pending, 3=Integrated, 4=Refused")
	}
	if _, err := StatusCode(5).Status(); err == nil {
		t.Error("Expected error for unknown code 5")
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusNew, StatusSent, true},
		{StatusSent, StatusPending, true},
		{StatusPending, StatusSent, true},
		{StatusPending, StatusNew, true},
		{StatusSent, StatusIntegrated, true},
		{StatusPending, StatusRefused, true},
		{StatusRefused, StatusRefused, true},
		{StatusRefused, StatusPending, true},
		{StatusRefused, StatusSent, false},
		{StatusRefused, StatusIntegrated, false},
		{StatusRefused, StatusNew, false},
		{StatusIntegrated, StatusPending, false},
		{StatusIntegrated, StatusIntegrated, false},
		{StatusSent, Status("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			if got := ValidateTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("ValidateTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestTransition_Effects(t *testing.T) {
	effect, err := Transition(StatusPending, StatusIntegrated)
	if err != nil || effect != EffectTransfer {
		t.Errorf("Expected transfer effect, got %s (err %v)", effect, err)
	}

	effect, err = Transition(StatusSent, StatusRefused)
	if err != nil || effect != EffectRetentionStart {
		t.Errorf("Expected retention_start effect, got %s (err %v)", effect, err)
	}

	effect, err = Transition(StatusRefused, StatusPending)
	if err != nil || effect != EffectReactivate {
		t.Errorf("Expected reactivate effect, got %s (err %v)", effect, err)
	}

	effect, err = Transition(StatusPending, StatusPending)
	if err != nil || effect != EffectNone {
		t.Errorf("Expected no effect, got %s (err %v)", effect, err)
	}
}

func TestReactivatedRecordMovesFreely(t *testing.T) {
	if _, err := Transition(StatusRefused, StatusSent); err == nil {
		t.Fatal("Expected refused record to be locked before reactivation")
	}
	if _, err := Transition(StatusRefused, StatusPending); err != nil {
		t.Fatalf("Expected reactivation to be allowed, got %v", err)
	}
	for _, next := range []Status{StatusSent, StatusNew, StatusIntegrated, StatusRefused} {
		if _, err := Transition(StatusPending, next); err != nil {
			t.Errorf("Expected reactivated record to move to %s, got %v", next, err)
		}
	}
}

func TestTransition_ErrorKind(t *testing.T) {
	_, err := Transition(StatusIntegrated, StatusPending)
	if !IsKind(err, KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	wrapped := fmt.Errorf("update follow-up 9: %w", err)
	if KindOf(wrapped) != KindValidation {
		t.Error("Expected kind to survive wrapping")
	}

	partial := NewPartialFailureError("member created but contact not removed", errors.New("timeout"))
	if !partial.ReconciliationRequired() {
		t.Error("Expected partial failure to require reconciliation")
	}
	if !errors.Is(partial, partial.Err) {
		t.Error("Expected partial failure to unwrap to its cause")
	}
}

func TestParseEvangelismStatus(t *testing.T) {
	got, err := ParseEvangelismStatus("Venu à l'église")
	if err != nil || got != EvangelismCameToChurch {
		t.Errorf("Expected venu_eglise, got %s (err %v)", got, err)
	}
	if _, err := ParseEvangelismStatus("integre"); err == nil {
		t.Error("Expected member-flow status to be rejected by the evangelism vocabulary")
	}
}
