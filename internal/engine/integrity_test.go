package engine

import (
	"testing"

	"github.com/alexpaac/testrh-backend/internal/model"
)

func TestTabSwitchEscalation(t *testing.T) {
	m := newIntegrityMonitor(DefaultIntegrityPolicy(), nil)

	if v := m.Observe(model.SignalTabSwitch); v != VerdictWarned {
		t.Fatalf("first tab switch = %v, want VerdictWarned", v)
	}
	if !m.Warned() {
		t.Fatal("Warned() = false after warning threshold")
	}
	if v := m.Observe(model.SignalTabSwitch); v != VerdictCancelled {
		t.Fatalf("second tab switch = %v, want VerdictCancelled", v)
	}
}

func TestNonEscalatingSignalsLogOnly(t *testing.T) {
	m := newIntegrityMonitor(DefaultIntegrityPolicy(), nil)

	for _, sig := range []model.SignalType{
		model.SignalWindowBlur,
		model.SignalFocusRegain,
		model.SignalRightClick,
		model.SignalDevTools,
	} {
		for i := 0; i < 5; i++ {
			if v := m.Observe(sig); v != VerdictLogged {
				t.Fatalf("Observe(%s) #%d = %v, want VerdictLogged", sig, i+1, v)
			}
		}
	}
	if m.Warned() {
		t.Fatal("Warned() = true without any tab switch")
	}
}

func TestMonitorRebuildsFromHistory(t *testing.T) {
	history := []model.CheatingAttempt{
		{Type: model.SignalTabSwitch, Warning: true},
		{Type: model.SignalWindowBlur},
	}
	m := newIntegrityMonitor(DefaultIntegrityPolicy(), history)

	if !m.Warned() {
		t.Fatal("resumed monitor lost its standing warning")
	}
	// The next tab switch is the second overall and must cancel.
	if v := m.Observe(model.SignalTabSwitch); v != VerdictCancelled {
		t.Fatalf("Observe = %v, want VerdictCancelled", v)
	}
}

func TestSuppressedSignals(t *testing.T) {
	if !Suppressed(model.SignalRightClick) || !Suppressed(model.SignalDevTools) {
		t.Fatal("right_click and dev_tools must be suppressed")
	}
	if Suppressed(model.SignalTabSwitch) || Suppressed(model.SignalWindowBlur) {
		t.Fatal("tab_switch and window_blur must not be suppressed")
	}
}
