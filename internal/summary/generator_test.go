package summary

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"mortgage-triage-go/internal/types"
)

func reason(c types.Code) types.ReasonCode {
	return types.ReasonCode{Code: c, IsEscalation: c.IsEscalationClass(), Score: 2}
}

func TestPaymentBullet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amounts []float64
		want    string
	}{
		{"none", nil, ""},
		{"single", []float64{1234.5}, "Borrower mentioned payment amount of $1,234.50"},
		{"multiple", []float64{10, 2000.1}, "Borrower discussed multiple amounts: $10.00, $2,000.10"},
		{"large", []float64{1000000}, "Borrower mentioned payment amount of $1,000,000.00"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PaymentBullet(&types.Entities{Amounts: tt.amounts}); got != tt.want {
				t.Errorf("PaymentBullet() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestBullet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		intent string
		codes  []types.ReasonCode
		want   string
	}{
		{"payment", nil, "Borrower requested to make a payment"},
		{"hardship", []types.ReasonCode{reason(types.LoanModRequest)}, "Requested loan modification due to financial hardship"},
		{"hardship", nil, "Mentioned financial difficulties affecting payments"},
		{"escrow", nil, "Asked about escrow account details"},
		{"dispute", nil, "Disputed charges or fees on account"},
		{"new-loan", nil, "Inquired about refinancing or new loan options"},
		{"unknown", nil, "General inquiry about account"},
		{"LEGAL_THREAT", nil, "General inquiry about account"},
	}
	for _, tt := range tests {
		if got := RequestBullet(tt.intent, tt.codes); got != tt.want {
			t.Errorf("RequestBullet(%q) = %q, want %q", tt.intent, got, tt.want)
		}
	}
}

func TestEscalationBullet(t *testing.T) {
	t.Parallel()

	if got := EscalationBullet([]types.ReasonCode{reason(types.PaymentIntent)}); got != "" {
		t.Errorf("normal code only: got %q, want empty", got)
	}
	if got := EscalationBullet([]types.ReasonCode{reason(types.AbusiveLanguage)}); got != "Call escalated due to: abusive language used" {
		t.Errorf("single: got %q", got)
	}
	got := EscalationBullet([]types.ReasonCode{reason(types.SupervisorRequest), reason(types.DisputeFeeOrCharge)})
	if got != "Call escalated due to: supervisor requested, fee dispute" {
		t.Errorf("multiple: got %q", got)
	}

	for code, phrase := range escalationPhrases {
		if b := EscalationBullet([]types.ReasonCode{reason(code)}); !strings.Contains(b, phrase) {
			t.Errorf("%s: bullet %q missing %q", code, b, phrase)
		}
	}
}

func TestFormatBullet(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":             "",
		"hello world":  "Hello world.",
		"hello world.": "Hello world.",
		"a":            "A.",
		"élan":         "Élan.",
	}
	for in, want := range tests {
		if got := FormatBullet(in); got != want {
			t.Errorf("FormatBullet(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		intent string
		ents   types.Entities
		codes  []types.ReasonCode
		want   []string
	}{
		{
			name:   "request only",
			intent: "escrow",
			want:   []string{"Asked about escrow account details."},
		},
		{
			name:   "all three",
			intent: "payment",
			ents:   types.Entities{Amounts: []float64{250}},
			codes:  []types.ReasonCode{reason(types.HardshipLanguage)},
			want: []string{
				"Borrower requested to make a payment.",
				"Borrower mentioned payment amount of $250.00.",
				"Call escalated due to: financial hardship mentioned.",
			},
		},
		{
			name: "no intent no evidence",
			want: []string{FallbackBullet},
		},
		{
			name: "no intent with amount",
			ents: types.Entities{Amounts: []float64{5000}},
			want: []string{"Borrower mentioned payment amount of $5,000.00."},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Generate(tt.intent, &tt.ents, tt.codes)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerate_NilEntities(t *testing.T) {
	t.Parallel()

	if _, err := Generate("payment", nil, nil); !errors.Is(err, ErrNilEntities) {
		t.Errorf("err = %v, want ErrNilEntities", err)
	}
}

func TestLabelFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"PAYMENT_INTENT":        LabelPayment,
		"HARDSHIP_LANGUAGE":     LabelHardship,
		"LOAN_MOD_REQUEST":      LabelHardship,
		"ESCROW_QUESTION":       LabelEscrow,
		"DISPUTE_FEE_OR_CHARGE": LabelDispute,
		"NEW_LOAN_INQUIRY":      LabelNewLoan,
		"LEGAL_THREAT":          "LEGAL_THREAT",
		types.IntentNone:        "",
	}
	for in, want := range tests {
		if got := LabelFor(in); got != want {
			t.Errorf("LabelFor(%q) = %q, want %q", in, got, want)
		}
	}
}
