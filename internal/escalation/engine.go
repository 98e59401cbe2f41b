// Package escalation turns escalation-flagged reason codes into a risk tier.
package escalation

import (
	"errors"

	"mortgage-triage-go/internal/types"
)

var ErrNilReasonCodes = errors.New("escalation: reason codes are nil")

type Decision struct {
	EscalationNeeded bool            `json:"escalation_needed"`
	RiskLevel        types.RiskLevel `json:"risk_level"`
}

// Evaluate counts flagged codes: two or more is HIGH, one is MEDIUM, none is LOW.
func Evaluate(codes []types.ReasonCode) (Decision, error) {
	if codes == nil {
		return Decision{}, ErrNilReasonCodes
	}
	n := 0
	for _, rc := range codes {
		if rc.IsEscalation {
			n++
		}
	}
	d := Decision{EscalationNeeded: n > 0, RiskLevel: types.RiskLow}
	switch {
	case n >= 2:
		d.RiskLevel = types.RiskHigh
	case n == 1:
		d.RiskLevel = types.RiskMedium
	}
	return d, nil
}
