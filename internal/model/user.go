package model

// User is the authenticated account as supplied by the identity provider.
// CreditBalance is only ever changed by the credit ledger.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	PlanTier      string `json:"plan_tier"`
	CreditBalance int    `json:"credit_balance"`
}
