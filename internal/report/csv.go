package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mortgage-triage-go/internal/types"
)

var resultHeader = []string{"filename", "intent", "escalate", "risk_level", "reason_codes", "summary"}

// DefaultName is the row name used when no file name is known for result i.
func DefaultName(i int) string {
	return fmt.Sprintf("transcript_%03d.txt", i+1)
}

// WriteCSV writes a SUMMARY METRICS block, a blank line and one row per
// result. names[i] labels results[i]; missing names fall back to DefaultName.
func WriteCSV(w io.Writer, names []string, results []*types.TriageResult) error {
	cw := csv.NewWriter(w)

	for _, rec := range summaryRows(Summarize(results), results) {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	cw.Flush()
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := cw.Write(resultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		if err := cw.Write(resultRow(rowName(names, i), r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultCSV writes just the header and rows, for single-transcript output.
func WriteResultCSV(w io.Writer, names []string, results []*types.TriageResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for i, r := range results {
		if err := cw.Write(resultRow(rowName(names, i), r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryRows(s Stats, results []*types.TriageResult) [][]string {
	rows := [][]string{
		{"SUMMARY METRICS"},
		{"Total Transcripts", strconv.Itoa(s.Total)},
		{"Escalation Rate", fmt.Sprintf("%.1f%%", s.EscalationRate)},
	}
	if len(s.TopIntents) > 0 {
		top := s.TopIntents[0]
		rows = append(rows, []string{"Top Intent", fmt.Sprintf("%s (%d)", top.Name, top.Count)})
	}
	if top, ok := TopReasonCode(results); ok {
		rows = append(rows, []string{"Top Reason Code", fmt.Sprintf("%s (%d)", top.Name, top.Count)})
	}
	if len(s.CommonPatterns) > 0 {
		rows = append(rows, []string{"Common Patterns", strings.Join(s.CommonPatterns, "; ")})
	}
	return rows
}

func resultRow(name string, r *types.TriageResult) []string {
	codes := make([]string, 0, len(r.ReasonCodes))
	for _, rc := range r.ReasonCodes {
		codes = append(codes, rc.GetCode())
	}
	return []string{
		name,
		r.Intent,
		strconv.FormatBool(r.Escalate),
		string(r.RiskLevel),
		strings.Join(codes, "|"),
		strings.Join(r.SummaryBullet, " | "),
	}
}

func rowName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return DefaultName(i)
}
