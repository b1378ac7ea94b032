package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Circulation policy. The rates and periods are fixed library policy,
// not operator configuration.
const (
	LoanPeriod  = 14 * 24 * time.Hour
	MaxRenewals = 2
)

// FinePerDay is the overdue fine per full day, in ₫.
var FinePerDay = decimal.NewFromInt(5000)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"

	// LoanOverdue is derived from the due date at read time and is
	// never written to storage.
	LoanOverdue LoanStatus = "overdue"
)

type Loan struct {
	ID         int64      `json:"id" db:"id"`
	MemberID   int64      `json:"memberId" db:"member_id"`
	BookID     int64      `json:"bookId" db:"book_id"`
	BookCopyID int64      `json:"bookCopyId" db:"book_copy_id"`
	BorrowDate time.Time  `json:"borrowDate" db:"borrow_date"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time `json:"returnDate,omitempty" db:"return_date"`

	Status       LoanStatus      `json:"status" db:"status"`
	RenewalCount int             `json:"renewalCount" db:"renewal_count"`
	MaxRenewals  int             `json:"maxRenewals" db:"max_renewals"`
	FineAmount   decimal.Decimal `json:"fineAmount" db:"fine_amount"`
}

// StatusAt reports the loan status as observed at now. A stored
// "active" loan past its due date reads as overdue.
func (l *Loan) StatusAt(now time.Time) LoanStatus {
	if l.Status == LoanReturned {
		return LoanReturned
	}
	if now.After(l.DueDate) {
		return LoanOverdue
	}
	return LoanActive
}

// Returned reports whether the loan has reached its terminal state.
func (l *Loan) Returned() bool { return l.Status == LoanReturned }

// FineFor computes the overdue fine for a loan due at dueDate and
// returned at returnedAt: 5,000 ₫ per full day late, zero when the
// return is on or before the due date. There is no cap.
func FineFor(dueDate, returnedAt time.Time) decimal.Decimal {
	if !returnedAt.After(dueDate) {
		return decimal.Zero
	}
	days := int64(returnedAt.Sub(dueDate) / (24 * time.Hour))
	return FinePerDay.Mul(decimal.NewFromInt(days))
}
