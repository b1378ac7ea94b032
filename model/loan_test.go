package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFineFor(t *testing.T) {
	due := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		returnedAt time.Time
		want       int64
	}{
		{"early", due.Add(-48 * time.Hour), 0},
		{"exactly on due", due, 0},
		{"one second late", due.Add(time.Second), 0},
		{"23h59m late", due.Add(24*time.Hour - time.Minute), 0},
		{"exactly one day", due.Add(24 * time.Hour), 5000},
		{"one and a half days", due.Add(36 * time.Hour), 5000},
		{"five days", due.Add(5 * 24 * time.Hour), 25000},
		{"one hundred days", due.Add(100 * 24 * time.Hour), 500000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FineFor(due, tc.returnedAt)
			require.True(t, got.Equal(decimal.NewFromInt(tc.want)),
				"got %s want %d", got, tc.want)
		})
	}
}

func TestFineFor_Monotonic(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	prev := decimal.Zero
	for d := 0; d <= 30; d++ {
		fine := FineFor(due, due.Add(time.Duration(d)*24*time.Hour))
		require.True(t, fine.GreaterThanOrEqual(prev), "fine decreased at day %d", d)
		prev = fine
	}
}

func TestStatusAt(t *testing.T) {
	due := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	l := &Loan{Status: LoanActive, DueDate: due}

	require.Equal(t, LoanActive, l.StatusAt(due.Add(-time.Hour)))
	require.Equal(t, LoanActive, l.StatusAt(due))
	require.Equal(t, LoanOverdue, l.StatusAt(due.Add(time.Second)))

	ret := due.Add(-24 * time.Hour)
	l.Status = LoanReturned
	l.ReturnDate = &ret
	require.Equal(t, LoanReturned, l.StatusAt(due.Add(48*time.Hour)))
}

func TestDefaultBorrowLimit(t *testing.T) {
	require.Equal(t, 5, MemberStudent.DefaultBorrowLimit())
	require.Equal(t, 10, MemberTeacher.DefaultBorrowLimit())
	require.Equal(t, 3, MemberPublic.DefaultBorrowLimit())
}
