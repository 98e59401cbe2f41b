package types

// Code names a reason code produced by the rule engine.
type Code string

const (
	HardshipLanguage   Code = "HARDSHIP_LANGUAGE"
	LoanModRequest     Code = "LOAN_MOD_REQUEST"
	BankruptcyOrLawyer Code = "BANKRUPTCY_OR_LAWYER"
	LegalThreat        Code = "LEGAL_THREAT"
	DisputeFeeOrCharge Code = "DISPUTE_FEE_OR_CHARGE"
	SupervisorRequest  Code = "SUPERVISOR_REQUEST"
	AbusiveLanguage    Code = "ABUSIVE_LANGUAGE"
	ThirdPartyCaller   Code = "THIRD_PARTY_CALLER"
	PaymentIntent      Code = "PAYMENT_INTENT"
	EscrowQuestion     Code = "ESCROW_QUESTION"
	NewLoanInquiry     Code = "NEW_LOAN_INQUIRY"
)

// EscalationCodes are the codes whose presence calls for escalation, in priority order.
var EscalationCodes = []Code{
	HardshipLanguage,
	LoanModRequest,
	BankruptcyOrLawyer,
	LegalThreat,
	DisputeFeeOrCharge,
	SupervisorRequest,
	AbusiveLanguage,
	ThirdPartyCaller,
}

// NormalCodes describe routine intents.
var NormalCodes = []Code{
	PaymentIntent,
	EscrowQuestion,
	NewLoanInquiry,
}

// AllCodes is the fixed priority order used for intent tie-breaks.
var AllCodes = append(append([]Code{}, EscalationCodes...), NormalCodes...)

func (c Code) Valid() bool {
	for _, k := range AllCodes {
		if k == c {
			return true
		}
	}
	return false
}

func (c Code) IsEscalationClass() bool {
	for _, k := range EscalationCodes {
		if k == c {
			return true
		}
	}
	return false
}

type ReasonCode struct {
	Code         Code `json:"code"`
	IsEscalation bool `json:"is_escalation"`
	Score        int  `json:"score"`
}

func (r ReasonCode) GetCode() string { return string(r.Code) }
func (r ReasonCode) GetScore() int { return r.Score }
func (r ReasonCode) GetIsEscalation() bool { return r.IsEscalation }
