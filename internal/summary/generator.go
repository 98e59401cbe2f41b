// Package summary writes short human-readable bullets about a triaged call.
package summary

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"mortgage-triage-go/internal/types"
)

var ErrNilEntities = errors.New("summary: entities are nil")

// Intent labels understood by RequestBullet.
const (
	LabelPayment  = "payment"
	LabelHardship = "hardship"
	LabelEscrow   = "escrow"
	LabelDispute  = "dispute"
	LabelNewLoan  = "new-loan"
)

const (
	FallbackBullet   = "Customer contacted regarding account inquiry."
	escalationPrefix = "Call escalated due to: "
)

var escalationPhrases = map[types.Code]string{
	types.HardshipLanguage:   "financial hardship mentioned",
	types.LoanModRequest:     "loan modification requested",
	types.BankruptcyOrLawyer: "bankruptcy or legal counsel referenced",
	types.LegalThreat:        "legal action threatened",
	types.DisputeFeeOrCharge: "fee dispute",
	types.SupervisorRequest:  "supervisor requested",
	types.AbusiveLanguage:    "abusive language used",
	types.ThirdPartyCaller:   "third party caller (unauthorized)",
}

var money = message.NewPrinter(language.English)

// LabelFor maps a reason code name to the label vocabulary used by
// RequestBullet. Codes without a label of their own pass through unchanged
// and NONE maps to the empty label.
func LabelFor(intent string) string {
	switch types.Code(intent) {
	case types.PaymentIntent:
		return LabelPayment
	case types.HardshipLanguage, types.LoanModRequest:
		return LabelHardship
	case types.EscrowQuestion:
		return LabelEscrow
	case types.DisputeFeeOrCharge:
		return LabelDispute
	case types.NewLoanInquiry:
		return LabelNewLoan
	}
	if intent == types.IntentNone {
		return ""
	}
	return intent
}

// Generate returns up to three bullets (request, payment, escalation) or the
// fallback bullet. An empty intent label produces no request bullet.
func Generate(intent string, ents *types.Entities, codes []types.ReasonCode) ([]string, error) {
	if ents == nil {
		return nil, ErrNilEntities
	}
	var bullets []string
	if intent != "" {
		bullets = append(bullets, FormatBullet(RequestBullet(intent, codes)))
	}
	if b := PaymentBullet(ents); b != "" {
		bullets = append(bullets, FormatBullet(b))
	}
	if b := EscalationBullet(codes); b != "" {
		bullets = append(bullets, FormatBullet(b))
	}
	if len(bullets) == 0 {
		return []string{FallbackBullet}, nil
	}
	return bullets, nil
}

func RequestBullet(intent string, codes []types.ReasonCode) string {
	switch intent {
	case LabelPayment:
		return "Borrower requested to make a payment"
	case LabelHardship:
		for _, rc := range codes {
			if rc.Code == types.LoanModRequest {
				return "Requested loan modification due to financial hardship"
			}
		}
		return "Mentioned financial difficulties affecting payments"
	case LabelEscrow:
		return "Asked about escrow account details"
	case LabelDispute:
		return "Disputed charges or fees on account"
	case LabelNewLoan:
		return "Inquired about refinancing or new loan options"
	default:
		return "General inquiry about account"
	}
}

// PaymentBullet returns "" when no amounts were found.
func PaymentBullet(ents *types.Entities) string {
	switch len(ents.Amounts) {
	case 0:
		return ""
	case 1:
		return "Borrower mentioned payment amount of " + FormatMoney(ents.Amounts[0])
	}
	parts := make([]string, 0, len(ents.Amounts))
	for _, a := range ents.Amounts {
		parts = append(parts, FormatMoney(a))
	}
	return "Borrower discussed multiple amounts: " + strings.Join(parts, ", ")
}

// EscalationBullet lists one clause per escalation code present, in input order.
func EscalationBullet(codes []types.ReasonCode) string {
	var clauses []string
	seen := map[types.Code]bool{}
	for _, rc := range codes {
		phrase, ok := escalationPhrases[rc.Code]
		if !ok || seen[rc.Code] {
			continue
		}
		seen[rc.Code] = true
		clauses = append(clauses, phrase)
	}
	if len(clauses) == 0 {
		return ""
	}
	return escalationPrefix + strings.Join(clauses, ", ")
}

// FormatMoney renders 1234.5 as "$1,234.50".
func FormatMoney(v float64) string {
	return money.Sprintf("$%.2f", v)
}

// FormatBullet capitalises the first letter and ends the sentence with a period.
func FormatBullet(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
