// Package report aggregates batch triage results and writes CSV and XLSX reports.
package report

import (
	"fmt"
	"slices"

	"mortgage-triage-go/internal/types"
)

// Pattern names reported by CommonPatterns, in report order.
const (
	PatternPaymentHardship      = "payment + hardship"
	PatternPaymentDispute       = "payment + dispute"
	PatternThirdPartyEscalation = "third party + escalation"
	PatternMultipleTriggers     = "multiple escalation triggers"
	PatternAbusiveNoSupervisor  = "abusive without supervisor escalation"
)

var patternOrder = []string{
	PatternPaymentHardship,
	PatternPaymentDispute,
	PatternThirdPartyEscalation,
	PatternMultipleTriggers,
	PatternAbusiveNoSupervisor,
}

// Count is a label with its number of occurrences.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Stats struct {
	Total            int      `json:"total_transcripts"`
	EscalationRate   float64  `json:"escalation_rate"`
	TopIntents       []Count  `json:"top_intents"`
	ReasonCodeCounts []Count  `json:"reason_code_counts"`
	CommonPatterns   []string `json:"common_patterns"`
}

func Summarize(results []*types.TriageResult) Stats {
	return Stats{
		Total:            len(results),
		EscalationRate:   EscalationRate(results),
		TopIntents:       TopIntents(results, 3),
		ReasonCodeCounts: CountReasonCodes(results),
		CommonPatterns:   CommonPatterns(results),
	}
}

// CountReasonCodes counts each code across results, in order of first appearance.
func CountReasonCodes(results []*types.TriageResult) []Count {
	counts := counter{}
	for _, r := range results {
		for _, rc := range r.ReasonCodes {
			counts.add(rc.GetCode())
		}
	}
	if counts.list == nil {
		return []Count{}
	}
	return counts.list
}

// EscalationRate is the percentage of escalated results; 0 for no results.
func EscalationRate(results []*types.TriageResult) float64 {
	if len(results) == 0 {
		return 0
	}
	n := 0
	for _, r := range results {
		if r.Escalate {
			n++
		}
	}
	return float64(n) / float64(len(results)) * 100
}

// TopIntents returns the n most frequent intents. Ties keep first-seen order.
func TopIntents(results []*types.TriageResult, n int) []Count {
	counts := counter{}
	for _, r := range results {
		counts.add(r.Intent)
	}
	out := counts.sorted()
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopReasonCode returns the most frequent code, or false when there are none.
func TopReasonCode(results []*types.TriageResult) (Count, bool) {
	c := CountReasonCodes(results)
	if len(c) == 0 {
		return Count{}, false
	}
	best := c[0]
	for _, x := range c[1:] {
		if x.Count > best.Count {
			best = x
		}
	}
	return best, true
}

// CommonPatterns reports recurring combinations as "<pattern> (<n> occurrences)".
// Patterns that never occur are omitted.
func CommonPatterns(results []*types.TriageResult) []string {
	hits := map[string]int{}
	for _, r := range results {
		has := map[types.Code]bool{}
		for _, rc := range r.ReasonCodes {
			has[rc.Code] = true
		}
		payment := r.Intent == string(types.PaymentIntent)

		if payment && (has[types.HardshipLanguage] || has[types.LoanModRequest]) {
			hits[PatternPaymentHardship]++
		}
		if payment && has[types.DisputeFeeOrCharge] {
			hits[PatternPaymentDispute]++
		}
		if has[types.ThirdPartyCaller] && r.Escalate {
			hits[PatternThirdPartyEscalation]++
		}
		if r.RiskLevel == types.RiskHigh {
			hits[PatternMultipleTriggers]++
		}
		if has[types.AbusiveLanguage] && !has[types.SupervisorRequest] {
			hits[PatternAbusiveNoSupervisor]++
		}
	}

	out := []string{}
	for _, p := range patternOrder {
		if n := hits[p]; n > 0 {
			out = append(out, fmt.Sprintf("%s (%d occurrences)", p, n))
		}
	}
	return out
}

// counter keeps insertion order so ties sort deterministically.
type counter struct {
	index map[string]int
	list  []Count
}

func (c *counter) add(name string) {
	if c.index == nil {
		c.index = map[string]int{}
	}
	i, ok := c.index[name]
	if !ok {
		i = len(c.list)
		c.index[name] = i
		c.list = append(c.list, Count{Name: name})
	}
	c.list[i].Count++
}

func (c *counter) sorted() []Count {
	out := slices.Clone(c.list)
	slices.SortStableFunc(out, func(a, b Count) int { return b.Count - a.Count })
	if out == nil {
		out = []Count{}
	}
	return out
}
