package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mortgage-triage-go/internal/types"
)

//go:embed rules.yaml
var defaultRules []byte

var (
	ErrUnknownCode   = errors.New("rules: unknown reason code")
	ErrWrongClass    = errors.New("rules: code listed under the wrong class")
	ErrDuplicateCode = errors.New("rules: duplicate code")
)

const defaultThreshold = 2

// Rule is the keyword evidence for one reason code.
type Rule struct {
	Code    types.Code `yaml:"code"`
	Phrases []string   `yaml:"phrases"`
	Words   []string   `yaml:"words"`
}

type file struct {
	Threshold  int    `yaml:"threshold"`
	Escalation []Rule `yaml:"escalation"`
	Normal     []Rule `yaml:"normal"`
}

// RuleSet is a validated, read-only pair of rule tables.
type RuleSet struct {
	threshold  int
	escalation []Rule
	normal     []Rule
}

var (
	defaultOnce sync.Once
	defaultSet  *RuleSet
)

// Default returns the built-in mortgage servicing tables.
func Default() *RuleSet {
	defaultOnce.Do(func() {
		rs, err := Parse(defaultRules)
		if err != nil {
			panic(fmt.Sprintf("embedded rules: %v", err))
		}
		defaultSet = rs
	})
	return defaultSet
}

// Load reads and validates a YAML rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes YAML rule tables. Every code must belong to the closed
// enumeration and sit under the table matching its class.
func Parse(data []byte) (*RuleSet, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if f.Threshold <= 0 {
		f.Threshold = defaultThreshold
	}

	seen := map[types.Code]bool{}
	check := func(rs []Rule, escalation bool) error {
		for _, r := range rs {
			if !r.Code.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownCode, r.Code)
			}
			if r.Code.IsEscalationClass() != escalation {
				return fmt.Errorf("%w: %s", ErrWrongClass, r.Code)
			}
			if seen[r.Code] {
				return fmt.Errorf("%w: %s", ErrDuplicateCode, r.Code)
			}
			seen[r.Code] = true
		}
		return nil
	}
	if err := check(f.Escalation, true); err != nil {
		return nil, err
	}
	if err := check(f.Normal, false); err != nil {
		return nil, err
	}

	return &RuleSet{
		threshold:  f.Threshold,
		escalation: lowerRules(f.Escalation),
		normal:     lowerRules(f.Normal),
	}, nil
}

func (rs *RuleSet) Threshold() int { return rs.threshold }

// Rules returns copies of the escalation and normal tables.
func (rs *RuleSet) Rules() (escalation, normal []Rule) {
	return lowerRules(rs.escalation), lowerRules(rs.normal)
}

func lowerRules(in []Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		out = append(out, Rule{
			Code:    r.Code,
			Phrases: lowerAll(r.Phrases),
			Words:   lowerAll(r.Words),
		})
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
