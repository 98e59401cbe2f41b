package report

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"mortgage-triage-go/internal/types"
)

func result(intent string, risk types.RiskLevel, codes ...types.Code) *types.TriageResult {
	r := &types.TriageResult{Intent: intent, RiskLevel: risk, SummaryBullet: []string{"Bullet one.", "Bullet two."}}
	for _, c := range codes {
		r.ReasonCodes = append(r.ReasonCodes, types.ReasonCode{Code: c, IsEscalation: c.IsEscalationClass(), Score: 2})
		if c.IsEscalationClass() {
			r.Escalate = true
		}
	}
	return r
}

func fixtures() []*types.TriageResult {
	return []*types.TriageResult{
		result("PAYMENT_INTENT", types.RiskMedium, types.HardshipLanguage, types.PaymentIntent),
		result("PAYMENT_INTENT", types.RiskLow, types.PaymentIntent),
		result("ESCROW_QUESTION", types.RiskLow, types.EscrowQuestion),
		result("ABUSIVE_LANGUAGE", types.RiskHigh, types.AbusiveLanguage, types.ThirdPartyCaller),
	}
}

func TestCountReasonCodes(t *testing.T) {
	t.Parallel()

	got := CountReasonCodes(fixtures())
	want := []Count{
		{"HARDSHIP_LANGUAGE", 1},
		{"PAYMENT_INTENT", 2},
		{"ESCROW_QUESTION", 1},
		{"ABUSIVE_LANGUAGE", 1},
		{"THIRD_PARTY_CALLER", 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("CountReasonCodes = %v, want %v", got, want)
	}
	if got := CountReasonCodes(nil); got == nil || len(got) != 0 {
		t.Errorf("CountReasonCodes(nil) = %v, want empty", got)
	}
}

func TestEscalationRate(t *testing.T) {
	t.Parallel()

	if got := EscalationRate(nil); got != 0 {
		t.Errorf("EscalationRate(nil) = %v, want 0", got)
	}
	if got := EscalationRate(fixtures()); got != 50 {
		t.Errorf("EscalationRate = %v, want 50", got)
	}
}

func TestTopIntents(t *testing.T) {
	t.Parallel()

	got := TopIntents(fixtures(), 2)
	want := []Count{{"PAYMENT_INTENT", 2}, {"ESCROW_QUESTION", 1}}
	if !slices.Equal(got, want) {
		t.Errorf("TopIntents = %v, want %v", got, want)
	}
	if got := TopIntents(nil, 3); len(got) != 0 {
		t.Errorf("TopIntents(nil) = %v, want empty", got)
	}
}

func TestCommonPatterns(t *testing.T) {
	t.Parallel()

	results := append(fixtures(), result("PAYMENT_INTENT", types.RiskMedium, types.DisputeFeeOrCharge, types.PaymentIntent))
	got := CommonPatterns(results)
	want := []string{
		"payment + hardship (1 occurrences)",
		"payment + dispute (1 occurrences)",
		"third party + escalation (1 occurrences)",
		"multiple escalation triggers (1 occurrences)",
		"abusive without supervisor escalation (1 occurrences)",
	}
	if !slices.Equal(got, want) {
		t.Errorf("CommonPatterns = %q, want %q", got, want)
	}
	if got := CommonPatterns(fixtures()[1:3]); len(got) != 0 {
		t.Errorf("CommonPatterns(routine) = %q, want none", got)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []string{"a.txt"}, fixtures()[:2]); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := strings.Join([]string{
		"SUMMARY METRICS",
		"Total Transcripts,2",
		"Escalation Rate,50.0%",
		"Top Intent,PAYMENT_INTENT (2)",
		"Top Reason Code,PAYMENT_INTENT (2)",
		"Common Patterns,payment + hardship (1 occurrences)",
		"",
		"filename,intent,escalate,risk_level,reason_codes,summary",
		"a.txt,PAYMENT_INTENT,true,MEDIUM,HARDSHIP_LANGUAGE|PAYMENT_INTENT,Bullet one. | Bullet two.",
		"transcript_002.txt,PAYMENT_INTENT,false,LOW,PAYMENT_INTENT,Bullet one. | Bullet two.",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("WriteCSV output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "SUMMARY METRICS\nTotal Transcripts,0\nEscalation Rate,0.0%\n\nfilename,intent,escalate,risk_level,reason_codes,summary\n"
	if buf.String() != want {
		t.Errorf("WriteCSV output = %q, want %q", buf.String(), want)
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "batch.xlsx")
	results := fixtures()
	results[0].Entities.Amounts = []float64{2000, 99.5}
	if err := WriteXLSX(path, []string{"one.txt"}, results); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !slices.Equal(got, []string{"Summary", "Results"}) {
		t.Errorf("sheets = %v", got)
	}
	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(results)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(results)+1)
	}
	if rows[1][0] != "one.txt" || rows[1][6] != "2000|99.5" {
		t.Errorf("first row = %q", rows[1])
	}
	if rows[2][0] != "transcript_002.txt" {
		t.Errorf("second row name = %q", rows[2][0])
	}
	total, err := f.GetCellValue("Summary", "B2")
	if err != nil || total != "4" {
		t.Errorf("Summary!B2 = %q, %v; want 4", total, err)
	}
}
