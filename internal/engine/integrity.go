package engine

import "github.com/alexpaac/testrh-backend/internal/model"

// Verdict is the escalation outcome of one observed integrity signal.
type Verdict int

const (
	// VerdictLogged means the signal was recorded with no candidate-facing
	// consequence.
	VerdictLogged Verdict = iota
	// VerdictWarned means the signal crossed the warning threshold and the
	// candidate must be shown the warning banner.
	VerdictWarned
	// VerdictCancelled means the signal crossed the cancellation threshold
	// and the attempt must be terminated.
	VerdictCancelled
)

// OffenseRule sets the escalation thresholds for one signal type. A zero
// threshold disables that escalation step.
type OffenseRule struct {
	WarnAt   int
	CancelAt int
}

// IntegrityPolicy maps signal types to their escalation rules. Signals
// absent from the policy are logged only.
type IntegrityPolicy map[model.SignalType]OffenseRule

// DefaultIntegrityPolicy escalates only on tab switches: the first one
// warns, the second cancels. Every other signal is evidence, not a
// sanction.
func DefaultIntegrityPolicy() IntegrityPolicy {
	return IntegrityPolicy{
		model.SignalTabSwitch: {WarnAt: 1, CancelAt: 2},
	}
}

// Suppressed reports whether the portal should block the browser default
// for this signal in addition to reporting it.
func Suppressed(t model.SignalType) bool {
	return t == model.SignalRightClick || t == model.SignalDevTools
}

// SuppressedSignals lists the signal types the portal must suppress
// client-side. Sent once in the initial state event.
func SuppressedSignals() []model.SignalType {
	return []model.SignalType{model.SignalRightClick, model.SignalDevTools}
}

// integrityMonitor tallies offenses per signal type for one attempt and
// applies the policy. Not safe for concurrent use; the runtime serializes
// access.
type integrityMonitor struct {
	policy IntegrityPolicy
	counts map[model.SignalType]int
}

func newIntegrityMonitor(policy IntegrityPolicy, history []model.CheatingAttempt) *integrityMonitor {
	m := &integrityMonitor{
		policy: policy,
		counts: make(map[model.SignalType]int),
	}
	// Rebuild counts from the persisted log so a resumed attempt keeps its
	// standing warning.
	for _, a := range history {
		m.counts[a.Type]++
	}
	return m
}

// Observe records one signal occurrence and returns its verdict.
func (m *integrityMonitor) Observe(t model.SignalType) Verdict {
	m.counts[t]++
	rule, ok := m.policy[t]
	if !ok {
		return VerdictLogged
	}
	n := m.counts[t]
	if rule.CancelAt > 0 && n >= rule.CancelAt {
		return VerdictCancelled
	}
	if rule.WarnAt > 0 && n == rule.WarnAt {
		return VerdictWarned
	}
	return VerdictLogged
}

// Warned reports whether the warning threshold has already been reached
// for any escalating signal.
func (m *integrityMonitor) Warned() bool {
	for t, rule := range m.policy {
		if rule.WarnAt > 0 && m.counts[t] >= rule.WarnAt {
			return true
		}
	}
	return false
}
