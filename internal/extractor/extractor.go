// Package extractor pulls amounts, dates, phone numbers and loan numbers out
// of normalized transcript text.
package extractor

import (
	"errors"

	"github.com/dlclark/regexp2"

	"mortgage-triage-go/internal/types"
)

var (
	ErrNilTranscript = errors.New("extractor: transcript is nil")
	ErrNilText       = errors.New("extractor: text is nil")
)

const months = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`

// Evaluated in order; overlapping matches from different shapes are all kept.
var datePatterns = []*regexp2.Regexp{
	regexp2.MustCompile(`\b(?:\d{1,2}[/-]){2}\d{2,4}\b`, regexp2.IgnoreCase),
	regexp2.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`, regexp2.IgnoreCase),
	regexp2.MustCompile(`\b`+months+`[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`, regexp2.IgnoreCase),
	regexp2.MustCompile(`\b\d{1,2}\s+`+months+`[a-z]*\.?,?\s+\d{4}\b`, regexp2.IgnoreCase),
	regexp2.MustCompile(`\b\d{1,2}[ ]`+months+`[a-z]*\.?\b`, regexp2.IgnoreCase),
	regexp2.MustCompile(`\b`+months+`[a-z]*\.?\s+\d{1,2}\b`, regexp2.IgnoreCase),
}

var phoneRe = regexp2.MustCompile(
	`(?<!\w)(?:\+?1[\s.-]?)?(?:\(?\d{3}\)?[\s.-]?)\d{3}[\s.-]?\d{4}(?!\w)`,
	regexp2.None)

var (
	legacyLoanRe  = regexp2.MustCompile(`\bLN-\d{4,15}\b`, regexp2.IgnoreCase)
	contextLoanRe = regexp2.MustCompile(
		`\b(?:loan|account|reference|application|file)\s*(?:number|no\.?|#)\s*(?:is\s*)?(\d{4,20})\b`,
		regexp2.IgnoreCase)
)

// Extractor is stateless and safe for concurrent use.
type Extractor struct{}

func New() Extractor { return Extractor{} }

// Extract runs every extractor over the transcript's normalized text.
func (e Extractor) Extract(t *types.Transcript) (*types.Entities, error) {
	if t == nil {
		return nil, ErrNilTranscript
	}
	return e.extractAll(t.NormalizedText()), nil
}

// ExtractText is Extract for callers holding optional raw text.
func (e Extractor) ExtractText(text *string) (*types.Entities, error) {
	if text == nil {
		return nil, ErrNilText
	}
	return e.extractAll(*text), nil
}

func (e Extractor) extractAll(text string) *types.Entities {
	return &types.Entities{
		Amounts:     e.ExtractAmounts(text),
		Dates:       e.ExtractDates(text),
		Phones:      e.ExtractPhones(text),
		LoanNumbers: e.ExtractLoanNumbers(text),
	}
}

func (Extractor) ExtractDates(text string) []string {
	out := []string{}
	for _, re := range datePatterns {
		out = append(out, findGroup(re, text, 0)...)
	}
	return out
}

func (Extractor) ExtractPhones(text string) []string {
	return append([]string{}, findGroup(phoneRe, text, 0)...)
}

// ExtractLoanNumbers keeps numbers as strings so leading zeros survive.
func (Extractor) ExtractLoanNumbers(text string) []string {
	hits := findGroup(legacyLoanRe, text, 0)
	hits = append(hits, findGroup(contextLoanRe, text, 1)...)
	return dedupe(hits)
}

// findGroup returns the given capture group of every non-overlapping match.
func findGroup(re *regexp2.Regexp, text string, group int) []string {
	var out []string
	m, _ := re.FindStringMatch(text)
	for m != nil {
		if g := m.GroupByNumber(group); g != nil {
			out = append(out, g.String())
		}
		m, _ = re.FindNextMatch(m)
	}
	return out
}

func dedupe(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
