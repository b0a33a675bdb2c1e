package model

// Expense is one ledger record. ExpenseDate is a calendar date in YYYY-MM-DD
// form with no time component; a user's records for a date are replaced
// wholesale, never patched.
type Expense struct {
	ID          int64   `json:"id"`
	UserID      string  `json:"user_id"`
	ExpenseDate string  `json:"expense_date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Notes       string  `json:"notes"`
}

// CategoryTotal is one row of a per-category spending summary.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}
