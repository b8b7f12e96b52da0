package shared

// LoanEventType categorizes audit trail events emitted by the lending flows
type LoanEventType string

const (
	LoanEventPaymentApplied LoanEventType = "PAYMENT_APPLIED"
	LoanEventLoanApproved   LoanEventType = "LOAN_APPROVED"
	LoanEventLoanRejected   LoanEventType = "LOAN_REJECTED"
	LoanEventLoanRepaid     LoanEventType = "LOAN_REPAID"
	LoanEventFundApproved   LoanEventType = "FUND_APPROVED"
	LoanEventFundRejected   LoanEventType = "FUND_REJECTED"
)
