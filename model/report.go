package model

import "github.com/shopspring/decimal"

// ReportStats is the aggregate view served to the admin reports page.
// All loan-derived numbers are computed from the loan ledger for the
// requested date range.
type ReportStats struct {
	TotalLoans    int64           `json:"totalLoans"`
	ActiveLoans   int64           `json:"activeLoans"`
	ReturnedLoans int64           `json:"returnedLoans"`
	OverdueLoans  int64           `json:"overdueLoans"`
	TotalFines    decimal.Decimal `json:"totalFines"`
	NewMembers    int64           `json:"newMembers"`
	ActiveMembers int64           `json:"activeMembers"`

	PopularBooks   []PopularBook    `json:"popularBooks"`
	CategoryStats  []CategoryCount  `json:"categoryStats"`
	MemberActivity []MemberActivity `json:"memberActivity"`
}

type PopularBook struct {
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	Count  int64  `json:"count" db:"count"`
}

type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int64  `json:"count" db:"count"`
}

type MemberActivity struct {
	Name       string `json:"name" db:"name"`
	MemberCode string `json:"memberCode" db:"member_code"`
	LoanCount  int64  `json:"loanCount" db:"loan_count"`
}
