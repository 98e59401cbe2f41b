// Package rules scores transcripts against keyword tables and emits reason codes.
package rules

import (
	"errors"
	"strings"

	"mortgage-triage-go/internal/types"
)

var ErrNilTranscript = errors.New("rules: transcript is nil")

const (
	phrasePoints = 2
	wordPoints   = 1
)

// Engine scores one transcript.
type Engine struct {
	rules *RuleSet
	text  string
}

func NewEngine(t *types.Transcript) (*Engine, error) {
	return NewEngineWithRules(Default(), t)
}

func NewEngineWithRules(rs *RuleSet, t *types.Transcript) (*Engine, error) {
	if t == nil {
		return nil, ErrNilTranscript
	}
	if rs == nil {
		rs = Default()
	}
	return &Engine{rules: rs, text: strings.ToLower(t.NormalizedText())}, nil
}

// Apply returns the codes scoring at or above the threshold: escalation
// codes first, then normal codes, each in table order. A phrase or word
// counts once no matter how often it occurs. A phrase that contains another
// listed phrase scores both.
func (e *Engine) Apply() []types.ReasonCode {
	out := []types.ReasonCode{}
	for _, r := range e.rules.escalation {
		if s := e.score(r); s >= e.rules.threshold {
			out = append(out, types.ReasonCode{Code: r.Code, IsEscalation: true, Score: s})
		}
	}
	for _, r := range e.rules.normal {
		if s := e.score(r); s >= e.rules.threshold {
			out = append(out, types.ReasonCode{Code: r.Code, IsEscalation: false, Score: s})
		}
	}
	return out
}

func (e *Engine) score(r Rule) int {
	points := 0
	for _, p := range r.Phrases {
		if strings.Contains(e.text, p) {
			points += phrasePoints
		}
	}
	for _, w := range r.Words {
		if strings.Contains(e.text, w) {
			points += wordPoints
		}
	}
	return points
}
