package circulationsvc

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"libraryms/model"
	loanrepo "libraryms/repository/loan"
)

// errors used by controllers

type ErrCode string

const (
	ErrMemberNotFound      ErrCode = "MEMBER_NOT_FOUND"
	ErrMembershipInactive  ErrCode = "MEMBERSHIP_INACTIVE"
	ErrBorrowLimitExceeded ErrCode = "BORROW_LIMIT_EXCEEDED"
	ErrCopyNotFound        ErrCode = "COPY_NOT_FOUND"
	ErrCopyUnavailable     ErrCode = "COPY_UNAVAILABLE"
	ErrNoActiveLoan        ErrCode = "NO_ACTIVE_LOAN"
	ErrLoanNotFound        ErrCode = "LOAN_NOT_FOUND"
	ErrRenewalLimit        ErrCode = "RENEWAL_LIMIT_EXCEEDED"
	ErrLoanOverdue         ErrCode = "LOAN_OVERDUE"
	ErrLoanReturned        ErrCode = "LOAN_ALREADY_RETURNED"
	ErrConflict            ErrCode = "CONFLICT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Checkout lends the copy with the given barcode to the member
	// with the given code, due 14 days from now.
	Checkout(ctx context.Context, memberCode, barcode string, now time.Time) (*model.Loan, error)

	// Return closes the unreturned loan on the copy with the given
	// barcode, charging any overdue fine to the member.
	Return(ctx context.Context, barcode string, now time.Time) (*model.Loan, error)

	// Renew extends a loan's due date by 14 days, at most twice and
	// never once the loan is overdue.
	Renew(ctx context.Context, loanID int64, now time.Time) (*model.Loan, error)

	LoansForMember(ctx context.Context, memberID int64, now time.Time) ([]model.Loan, error)
	ActiveLoanByBarcode(ctx context.Context, barcode string, now time.Time) (*loanrepo.ActiveLoanInfo, error)
}

type service struct {
	store loanrepo.Store
}

func New(store loanrepo.Store) Service { return &service{store: store} }

// Checkout validates in a fixed order, first failure wins: member
// exists, membership active, borrow limit, copy exists, copy
// available. All writes happen after the last check, inside one
// transaction, with the member and copy rows locked throughout.
func (s *service) Checkout(ctx context.Context, memberCode, barcode string, now time.Time) (*model.Loan, error) {
	var out *model.Loan
	err := s.store.InTx(ctx, func(tx loanrepo.Tx) error {
		m, err := tx.MemberByCodeForUpdate(ctx, memberCode)
		if err != nil {
			if errors.Is(err, loanrepo.ErrNotFound) {
				return makeErr(ErrMemberNotFound)
			}
			return err
		}
		if m.MembershipStatus != model.MembershipActive {
			return makeErr(ErrMembershipInactive)
		}
		if m.CurrentBorrowCount >= m.MaxBorrowLimit {
			return makeErr(ErrBorrowLimitExceeded)
		}

		c, err := tx.CopyByBarcodeForUpdate(ctx, barcode)
		if err != nil {
			if errors.Is(err, loanrepo.ErrNotFound) {
				return makeErr(ErrCopyNotFound)
			}
			return err
		}
		if c.Status != model.CopyAvailable {
			return makeErr(ErrCopyUnavailable)
		}

		l := &model.Loan{
			MemberID:    m.ID,
			BookID:      c.BookID,
			BookCopyID:  c.ID,
			BorrowDate:  now,
			DueDate:     now.Add(model.LoanPeriod),
			Status:      model.LoanActive,
			MaxRenewals: model.MaxRenewals,
			FineAmount:  decimal.Zero,
		}
		if err := tx.InsertLoan(ctx, l); err != nil {
			return err
		}
		if err := tx.SetCopyStatus(ctx, c.ID, model.CopyBorrowed); err != nil {
			return err
		}
		if err := tx.AdjustBorrowCount(ctx, m.ID, +1); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

func (s *service) Return(ctx context.Context, barcode string, now time.Time) (*model.Loan, error) {
	var out *model.Loan
	err := s.store.InTx(ctx, func(tx loanrepo.Tx) error {
		c, err := tx.CopyByBarcodeForUpdate(ctx, barcode)
		if err != nil {
			if errors.Is(err, loanrepo.ErrNotFound) {
				return makeErr(ErrCopyNotFound)
			}
			return err
		}

		l, err := tx.ActiveLoanByCopyForUpdate(ctx, c.ID)
		if err != nil {
			if errors.Is(err, loanrepo.ErrNotFound) {
				return makeErr(ErrNoActiveLoan)
			}
			return err
		}

		fine := model.FineFor(l.DueDate, now)
		if err := tx.CompleteLoan(ctx, l.ID, now, fine); err != nil {
			return err
		}
		if err := tx.SetCopyStatus(ctx, c.ID, model.CopyAvailable); err != nil {
			return err
		}
		if err := tx.AdjustBorrowCount(ctx, l.MemberID, -1); err != nil {
			return err
		}
		if err := tx.AddFine(ctx, l.MemberID, fine); err != nil {
			return err
		}

		returned := now
		l.Status = model.LoanReturned
		l.ReturnDate = &returned
		l.FineAmount = fine
		out = l
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

// Renew checks the renewal cap before the overdue check, so a loan
// that is both exhausted and overdue reports the cap violation.
func (s *service) Renew(ctx context.Context, loanID int64, now time.Time) (*model.Loan, error) {
	var out *model.Loan
	err := s.store.InTx(ctx, func(tx loanrepo.Tx) error {
		l, err := tx.LoanByIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, loanrepo.ErrNotFound) {
				return makeErr(ErrLoanNotFound)
			}
			return err
		}

		if l.Returned() {
			return makeErr(ErrLoanReturned)
		}
		if l.RenewalCount >= l.MaxRenewals {
			return makeErr(ErrRenewalLimit)
		}
		if now.After(l.DueDate) {
			return makeErr(ErrLoanOverdue)
		}

		due := l.DueDate.Add(model.LoanPeriod)
		renewals := l.RenewalCount + 1
		if err := tx.ExtendLoan(ctx, l.ID, due, renewals); err != nil {
			return err
		}

		l.DueDate = due
		l.RenewalCount = renewals
		out = l
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

func (s *service) LoansForMember(ctx context.Context, memberID int64, now time.Time) ([]model.Loan, error) {
	loans, err := s.store.LoansForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	for i := range loans {
		loans[i].Status = loans[i].StatusAt(now)
	}
	return loans, nil
}

func (s *service) ActiveLoanByBarcode(ctx context.Context, barcode string, now time.Time) (*loanrepo.ActiveLoanInfo, error) {
	info, err := s.store.ActiveLoanByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, loanrepo.ErrNotFound) {
			return nil, makeErr(ErrNoActiveLoan)
		}
		return nil, err
	}
	info.Loan.Status = info.Loan.StatusAt(now)
	return info, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, loanrepo.ErrConflict) {
		return makeErr(ErrConflict)
	}
	return err
}
