package types

import "encoding/json"

// TimestampLayout is the layout of Transcript.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// IntentNone is reported when no recognised reason code scores above zero.
const IntentNone = "NONE"

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Transcript is a normalized call transcript. It is read-only once built.
type Transcript struct {
	rawText        string
	normalizedText string
	speakers       []string
	timestamp      string
}

func NewTranscript(raw, normalized string, speakers []string, timestamp string) *Transcript {
	sp := make([]string, len(speakers))
	copy(sp, speakers)
	return &Transcript{
		rawText:        raw,
		normalizedText: normalized,
		speakers:       sp,
		timestamp:      timestamp,
	}
}

func (t *Transcript) RawText() string { return t.rawText }
func (t *Transcript) NormalizedText() string { return t.normalizedText }
func (t *Transcript) Timestamp() string { return t.timestamp }

// Speakers returns a copy of the speaker labels in order of first appearance.
func (t *Transcript) Speakers() []string {
	out := make([]string, len(t.speakers))
	copy(out, t.speakers)
	return out
}

type Entities struct {
	Amounts     []float64 `json:"amounts"`
	Dates       []string  `json:"dates"`
	Phones      []string  `json:"phones"`
	LoanNumbers []string  `json:"loan_numbers"`
}

// MarshalJSON renders missing lists as [] rather than null.
func (e Entities) MarshalJSON() ([]byte, error) {
	type plain Entities
	p := plain(e)
	if p.Amounts == nil {
		p.Amounts = []float64{}
	}
	if p.Dates == nil {
		p.Dates = []string{}
	}
	if p.Phones == nil {
		p.Phones = []string{}
	}
	if p.LoanNumbers == nil {
		p.LoanNumbers = []string{}
	}
	return json.Marshal(p)
}

type TriageResult struct {
	Intent        string       `json:"intent"`
	Escalate      bool         `json:"escalate"`
	RiskLevel     RiskLevel    `json:"risk_level"`
	ReasonCodes   []ReasonCode `json:"reason_codes"`
	Entities      Entities     `json:"entities"`
	SummaryBullet []string     `json:"summary_bullet"`
}

// ToMap returns the result as plain nested maps and slices for JSON and CSV writers.
func (r *TriageResult) ToMap() map[string]any {
	codes := make([]any, 0, len(r.ReasonCodes))
	for _, rc := range r.ReasonCodes {
		codes = append(codes, map[string]any{
			"code":          string(rc.Code),
			"is_escalation": rc.IsEscalation,
			"score":         rc.Score,
		})
	}
	amounts := make([]any, 0, len(r.Entities.Amounts))
	for _, a := range r.Entities.Amounts {
		if a == float64(int64(a)) {
			amounts = append(amounts, int64(a))
			continue
		}
		amounts = append(amounts, a)
	}
	bullets := make([]any, 0, len(r.SummaryBullet))
	for _, b := range r.SummaryBullet {
		bullets = append(bullets, b)
	}
	return map[string]any{
		"intent":       r.Intent,
		"escalate":     r.Escalate,
		"risk_level":   string(r.RiskLevel),
		"reason_codes": codes,
		"entities": map[string]any{
			"amounts":      amounts,
			"dates":        stringsToAny(r.Entities.Dates),
			"phones":       stringsToAny(r.Entities.Phones),
			"loan_numbers": stringsToAny(r.Entities.LoanNumbers),
		},
		"summary_bullet": bullets,
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
