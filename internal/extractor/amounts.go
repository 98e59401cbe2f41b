package extractor

import (
	"math"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	numPat    = `(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`
	prefixPat = `(?:(?:US|CA|C)?\$\s*|(?:USD|CAD)\s*)`
	suffixPat = `(?:\s*(?:USD|CAD|dollars?))\b`
	magPat    = `(?:\s*(?:k\b|m\b|b\b|bn\b|thousand\b|million\b|billion\b))`

	// Amount-ish context only. "loan number" must not yield an amount.
	amountContextPat = `(?:mortgage\s+amount|mortgage\s+balance|principal\s+balance|loan\s+amount|borrow(?:ing)?\s+amount|purchase\s+price|home\s+price|price)`
)

var (
	moneyRe = regexp2.MustCompile(
		`(?<!\w)(` +
			prefixPat + numPat + `(?:` + magPat + `)?(?:` + suffixPat + `)?` +
			`|` + numPat + magPat + `(?:` + suffixPat + `)?` +
			`|` + numPat + suffixPat +
			`)(?!\w)`,
		regexp2.IgnoreCase)

	bareAmountRe = regexp2.MustCompile(
		`\b` + amountContextPat + `\b\s*(?:is|:)?\s*(` + numPat + `)\b`,
		regexp2.IgnoreCase)

	billionRe   = regexp2.MustCompile(`\b(?:billion|bn)\b`, regexp2.None)
	millionRe   = regexp2.MustCompile(`\bmillion\b`, regexp2.None)
	thousandRe  = regexp2.MustCompile(`\bthousand\b`, regexp2.None)
	letterMagRe = regexp2.MustCompile(`\b(k|m|b)\b`, regexp2.None)

	currencyStripper = strings.NewReplacer(
		"us$", "", "ca$", "", "c$", "",
		"usd", "", "cad", "",
		"dollars", "", "dollar", "",
		"$", "",
	)

	explicitMarkers = []string{"$", "usd", "cad", "dollar", "k", "m", "b", "thousand", "million", "billion", "bn"}
)

// ExtractAmounts returns the monetary amounts mentioned in text, in order of
// first mention and without duplicates.
func (Extractor) ExtractAmounts(text string) []float64 {
	var hits []string
	hits = append(hits, findGroup(moneyRe, text, 1)...)
	hits = append(hits, findGroup(bareAmountRe, text, 1)...)

	out := []float64{}
	seen := map[float64]bool{}
	for _, h := range hits {
		v, ok := toAmount(h)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// toAmount normalizes a raw hit such as "$1,250.00", "3 million" or "850".
// Hits that do not parse (for example "500k" with no space) are dropped.
func toAmount(raw string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	s := strings.TrimSpace(currencyStripper.Replace(lower))

	mult := 1.0
	switch {
	case matches(billionRe, s):
		mult = 1e9
		s = strip(billionRe, s)
	case matches(millionRe, s):
		mult = 1e6
		s = strip(millionRe, s)
	case matches(thousandRe, s):
		mult = 1e3
		s = strip(thousandRe, s)
	default:
		if m, _ := letterMagRe.FindStringMatch(s); m != nil {
			switch m.GroupByNumber(1).String() {
			case "k":
				mult = 1e3
			case "m":
				mult = 1e6
			default:
				mult = 1e9
			}
			s = strip(letterMagRe, s)
		}
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	v := f * mult

	// Mortgage shorthand: "mortgage amount is 850" means 850,000.
	if !hasMarker(lower) && v >= 100 && v < 10000 {
		v *= 1000
	}
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		v = r
	}
	return v, true
}

func hasMarker(lower string) bool {
	for _, m := range explicitMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func matches(re *regexp2.Regexp, s string) bool {
	ok, _ := re.MatchString(s)
	return ok
}

func strip(re *regexp2.Regexp, s string) string {
	out, err := re.Replace(s, "", -1, -1)
	if err != nil {
		return s
	}
	return strings.TrimSpace(out)
}
