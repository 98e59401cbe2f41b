// Package intent picks the dominant reason code of a transcript.
package intent

import (
	"errors"

	"mortgage-triage-go/internal/types"
)

var ErrNilReasonCodes = errors.New("intent: reason codes are nil")

// Classify returns the highest scoring recognised code. Ties go to the code
// earlier in types.AllCodes. Unrecognised codes are ignored; when nothing
// scores above zero the result is types.IntentNone.
func Classify(codes []types.ReasonCode) (string, error) {
	if codes == nil {
		return "", ErrNilReasonCodes
	}

	best := map[types.Code]int{}
	for _, rc := range codes {
		if !rc.Code.Valid() {
			continue
		}
		if cur, ok := best[rc.Code]; !ok || rc.Score > cur {
			best[rc.Code] = rc.Score
		}
	}

	intent, top := types.IntentNone, 0
	for _, c := range types.AllCodes {
		if s, ok := best[c]; ok && s > top {
			intent, top = string(c), s
		}
	}
	return intent, nil
}
