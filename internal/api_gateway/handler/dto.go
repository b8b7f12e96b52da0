package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/fund"
	"github.com/fundflow-lending-core/internal/domain/loan"
	"github.com/fundflow-lending-core/internal/domain/payment"
	"github.com/fundflow-lending-core/internal/domain/rateconfig"
)

// ContributeFundRequest represents a request to contribute lendable capital
type ContributeFundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// FundResponse represents a fund contribution in API responses
type FundResponse struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ApplyLoanRequest represents a loan application
type ApplyLoanRequest struct {
	Principal  decimal.Decimal `json:"principal"`
	TermMonths int             `json:"term_months"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID                  string                `json:"id"`
	CustomerID          string                `json:"customer_id"`
	Principal           string                `json:"principal"`
	TermMonths          int                   `json:"term_months"`
	InterestRatePercent string                `json:"interest_rate_percent"`
	StartDate           string                `json:"start_date,omitempty"`
	EndDate             string                `json:"end_date,omitempty"`
	RemainingBalance    string                `json:"remaining_balance"`
	Status              string                `json:"status"`
	SophisticatedEMI    string                `json:"sophisticated_emi,omitempty"`
	Schedule            []InstallmentResponse `json:"payment_schedule,omitempty"`
	CreatedAt           string                `json:"created_at"`
	UpdatedAt           string                `json:"updated_at"`
}

// InstallmentResponse represents one schedule row in API responses
type InstallmentResponse struct {
	Installment      int    `json:"installment"`
	DueDate          string `json:"due_date"`
	TotalInstallment string `json:"total_installment"`
	PrincipalPayment string `json:"principal_payment"`
	InterestPayment  string `json:"interest_payment"`
	RemainingBalance string `json:"remaining_balance"`
}

// DecisionRequest represents an approval decision on a loan or fund
type DecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// ApplyPaymentRequest represents a payment against a loan
type ApplyPaymentRequest struct {
	LoanID          string          `json:"loan_id" binding:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

// PaymentResponse represents an applied payment in API responses
type PaymentResponse struct {
	ID               string `json:"id"`
	LoanID           string `json:"loan_id"`
	Amount           string `json:"amount"`
	PaymentDate      string `json:"payment_date"`
	ReferenceNumber  string `json:"reference_number"`
	RemainingBalance string `json:"remaining_balance,omitempty"`
}

// RateConfigRequest represents an update of the active rate configuration
type RateConfigRequest struct {
	MinAmount           decimal.Decimal `json:"min_amount"`
	MaxAmount           decimal.Decimal `json:"max_amount"`
	InterestRatePercent decimal.Decimal `json:"interest_rate_percent"`
	DurationMonths      int             `json:"duration_months" binding:"required,min=1"`
	CompoundFrequency   string          `json:"compound_frequency" binding:"required,oneof=MONTHLY QUARTERLY ANNUALLY"`
}

// RateConfigResponse represents the active rate configuration in API responses
type RateConfigResponse struct {
	MinAmount           string `json:"min_amount"`
	MaxAmount           string `json:"max_amount"`
	InterestRatePercent string `json:"interest_rate_percent"`
	DurationMonths      int    `json:"duration_months"`
	CompoundFrequency   string `json:"compound_frequency"`
	UpdatedAt           string `json:"updated_at"`
}

// EstimateRequest represents a loan calculator request
type EstimateRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months" binding:"required,min=1"`
}

// EstimateResponse represents the loan calculator result
type EstimateResponse struct {
	Installment      string `json:"installment"`
	TotalPayment     string `json:"total_payment"`
	TotalInterest    string `json:"total_interest"`
	SophisticatedEMI string `json:"sophisticated_emi,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// mapFundToResponse maps a fund contribution entity to a response DTO
func mapFundToResponse(c *fund.Contribution) FundResponse {
	return FundResponse{
		ID:         c.ID.String(),
		ProviderID: c.ProviderID.String(),
		Amount:     c.Amount.StringFixed(2),
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

// mapLoanToResponse maps a loan entity to a response DTO. The sophisticated
// EMI is attached by the caller when a rate configuration exists.
func mapLoanToResponse(l *loan.Loan, sophisticatedEMI *decimal.Decimal) LoanResponse {
	response := LoanResponse{
		ID:                  l.ID.String(),
		CustomerID:          l.CustomerID.String(),
		Principal:           l.Principal.StringFixed(2),
		TermMonths:          l.TermMonths,
		InterestRatePercent: l.InterestRatePercent.String(),
		RemainingBalance:    l.RemainingBalance.StringFixed(2),
		Status:              string(l.Status),
		Schedule:            mapScheduleToResponse(l.Schedule),
		CreatedAt:           l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           l.UpdatedAt.Format(time.RFC3339),
	}

	if l.StartDate != nil {
		response.StartDate = l.StartDate.Format(time.RFC3339)
	}
	if l.EndDate != nil {
		response.EndDate = l.EndDate.Format(time.RFC3339)
	}
	if sophisticatedEMI != nil {
		response.SophisticatedEMI = sophisticatedEMI.StringFixed(2)
	}

	return response
}

// mapScheduleToResponse maps an amortization schedule to response DTOs
func mapScheduleToResponse(schedule []loan.Installment) []InstallmentResponse {
	if len(schedule) == 0 {
		return nil
	}

	rows := make([]InstallmentResponse, 0, len(schedule))
	for _, installment := range schedule {
		rows = append(rows, InstallmentResponse{
			Installment:      installment.Index,
			DueDate:          installment.DueDate.Format(time.RFC3339),
			TotalInstallment: installment.TotalAmount.StringFixed(2),
			PrincipalPayment: installment.PrincipalPortion.StringFixed(2),
			InterestPayment:  installment.InterestPortion.StringFixed(2),
			RemainingBalance: installment.RemainingBalanceAfter.StringFixed(2),
		})
	}
	return rows
}

// mapPaymentToResponse maps a payment entity to a response DTO
func mapPaymentToResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID.String(),
		LoanID:          p.LoanID.String(),
		Amount:          p.Amount.StringFixed(2),
		PaymentDate:     p.PaymentDate.Format(time.RFC3339),
		ReferenceNumber: p.ReferenceNumber,
	}
}

// mapRateConfigToResponse maps the rate configuration to a response DTO
func mapRateConfigToResponse(cfg *rateconfig.RateConfig) RateConfigResponse {
	return RateConfigResponse{
		MinAmount:           cfg.MinAmount.StringFixed(2),
		MaxAmount:           cfg.MaxAmount.StringFixed(2),
		InterestRatePercent: cfg.InterestRatePercent.String(),
		DurationMonths:      cfg.DurationMonths,
		CompoundFrequency:   string(cfg.CompoundFrequency),
		UpdatedAt:           cfg.UpdatedAt.Format(time.RFC3339),
	}
}
