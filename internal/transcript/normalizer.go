package transcript

import (
	"errors"
	"strings"
	"time"

	"mortgage-triage-go/internal/types"
)

var ErrNilText = errors.New("transcript: raw text is nil")

// Normalizer builds Transcripts. Now defaults to time.Now.
type Normalizer struct {
	Now func() time.Time
}

// Normalize lowercases and collapses whitespace, collects speaker labels
// and stamps the record with the normalizer's clock.
func (n Normalizer) Normalize(raw string) *types.Transcript {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return types.NewTranscript(
		raw,
		strings.Join(strings.Fields(strings.ToLower(raw)), " "),
		speakers(raw),
		now().Format(types.TimestampLayout),
	)
}

// NormalizePtr is Normalize for callers holding optional text.
func (n Normalizer) NormalizePtr(raw *string) (*types.Transcript, error) {
	if raw == nil {
		return nil, ErrNilText
	}
	return n.Normalize(*raw), nil
}

// Normalize uses the wall clock.
func Normalize(raw string) *types.Transcript {
	return Normalizer{}.Normalize(raw)
}

func NormalizePtr(raw *string) (*types.Transcript, error) {
	return Normalizer{}.NormalizePtr(raw)
}

func speakers(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, line := range strings.FieldsFunc(raw, isLineBreak) {
		label, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}
