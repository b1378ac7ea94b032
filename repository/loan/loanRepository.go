package loanrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libraryms/model"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals that concurrent transactions collided; the
	// caller may retry the whole operation once.
	ErrConflict = errors.New("concurrent mutation detected")
)

// Store is the transactional surface of the loan ledger. Every
// circulation mutation runs inside InTx so the read-validate-write
// sequence is atomic, with the touched member and copy rows locked.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	LoansForMember(ctx context.Context, memberID int64) ([]model.Loan, error)
	ActiveLoanByBarcode(ctx context.Context, barcode string) (*ActiveLoanInfo, error)
}

// Tx exposes the row-locked reads and writes available inside one
// circulation transaction.
type Tx interface {
	MemberByCodeForUpdate(ctx context.Context, code string) (*model.Member, error)
	MemberByIDForUpdate(ctx context.Context, id int64) (*model.Member, error)
	CopyByBarcodeForUpdate(ctx context.Context, barcode string) (*model.BookCopy, error)
	ActiveLoanByCopyForUpdate(ctx context.Context, copyID int64) (*model.Loan, error)
	LoanByIDForUpdate(ctx context.Context, id int64) (*model.Loan, error)

	InsertLoan(ctx context.Context, l *model.Loan) error
	CompleteLoan(ctx context.Context, loanID int64, returnedAt time.Time, fine decimal.Decimal) error
	ExtendLoan(ctx context.Context, loanID int64, due time.Time, renewals int) error
	SetCopyStatus(ctx context.Context, copyID int64, status model.CopyStatus) error
	AdjustBorrowCount(ctx context.Context, memberID int64, delta int) error
	AddFine(ctx context.Context, memberID int64, amount decimal.Decimal) error
}

// ActiveLoanInfo is the joined snapshot the return desk shows before
// confirming a return.
type ActiveLoanInfo struct {
	Loan   model.Loan     `json:"loan"`
	Member model.Member   `json:"member"`
	Book   model.Book     `json:"book"`
	Copy   model.BookCopy `json:"copy"`
}

type store struct{ db *sqlx.DB }

func New(db *sqlx.DB) Store { return &store{db: db} }

func (s *store) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&pgTx{tx: tx}); err != nil {
		return mapConflict(err)
	}
	err = mapConflict(tx.Commit())
	return err
}

// mapConflict translates serialization and deadlock failures into
// ErrConflict so callers can distinguish "retry" from "reject".
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrConflict
		case pgerrcode.UniqueViolation:
			// The partial unique index on unreturned loans fires when
			// two checkouts race on one copy.
			return ErrConflict
		}
	}
	return err
}

type pgTx struct{ tx *sqlx.Tx }

func (t *pgTx) MemberByCodeForUpdate(ctx context.Context, code string) (*model.Member, error) {
	var m model.Member
	err := t.tx.GetContext(ctx, &m,
		`SELECT * FROM members WHERE member_code = $1 FOR UPDATE`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *pgTx) MemberByIDForUpdate(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	err := t.tx.GetContext(ctx, &m,
		`SELECT * FROM members WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *pgTx) CopyByBarcodeForUpdate(ctx context.Context, barcode string) (*model.BookCopy, error) {
	var c model.BookCopy
	err := t.tx.GetContext(ctx, &c,
		`SELECT * FROM book_copies WHERE barcode = $1 FOR UPDATE`, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *pgTx) ActiveLoanByCopyForUpdate(ctx context.Context, copyID int64) (*model.Loan, error) {
	var l model.Loan
	err := t.tx.GetContext(ctx, &l,
		`SELECT * FROM loans WHERE book_copy_id = $1 AND status = 'active' FOR UPDATE`, copyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *pgTx) LoanByIDForUpdate(ctx context.Context, id int64) (*model.Loan, error) {
	var l model.Loan
	err := t.tx.GetContext(ctx, &l,
		`SELECT * FROM loans WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *pgTx) InsertLoan(ctx context.Context, l *model.Loan) error {
	const q = `
		INSERT INTO loans (member_id, book_id, book_copy_id, borrow_date, due_date,
		                   status, renewal_count, max_renewals, fine_amount)
		VALUES ($1,$2,$3,$4,$5,'active',0,$6,0)
		RETURNING id`
	return t.tx.QueryRowContext(ctx, q,
		l.MemberID, l.BookID, l.BookCopyID, l.BorrowDate, l.DueDate, l.MaxRenewals,
	).Scan(&l.ID)
}

func (t *pgTx) CompleteLoan(ctx context.Context, loanID int64, returnedAt time.Time, fine decimal.Decimal) error {
	const q = `
		UPDATE loans
		SET status = 'returned', return_date = $2, fine_amount = $3
		WHERE id = $1
		AND status = 'active'`
	res, err := t.tx.ExecContext(ctx, q, loanID, returnedAt, fine)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) ExtendLoan(ctx context.Context, loanID int64, due time.Time, renewals int) error {
	const q = `
		UPDATE loans
		SET due_date = $2, renewal_count = $3
		WHERE id = $1
		AND status = 'active'`
	res, err := t.tx.ExecContext(ctx, q, loanID, due, renewals)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) SetCopyStatus(ctx context.Context, copyID int64, status model.CopyStatus) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE book_copies SET status = $2 WHERE id = $1`, copyID, status)
	return err
}

// AdjustBorrowCount floors at zero so a stray double-return can never
// drive the counter negative.
func (t *pgTx) AdjustBorrowCount(ctx context.Context, memberID int64, delta int) error {
	const q = `
		UPDATE members
		SET current_borrow_count = GREATEST(current_borrow_count + $2, 0)
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, memberID, delta)
	return err
}

func (t *pgTx) AddFine(ctx context.Context, memberID int64, amount decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE members SET total_fines = total_fines + $2 WHERE id = $1`, memberID, amount)
	return err
}

func (s *store) LoansForMember(ctx context.Context, memberID int64) ([]model.Loan, error) {
	loans := []model.Loan{}
	err := s.db.SelectContext(ctx, &loans,
		`SELECT * FROM loans WHERE member_id = $1 ORDER BY borrow_date DESC, id DESC`, memberID)
	return loans, err
}

func (s *store) ActiveLoanByBarcode(ctx context.Context, barcode string) (*ActiveLoanInfo, error) {
	const q = `
		SELECT l.*,
		       m.id AS "member.id", m.member_code AS "member.member_code",
		       m.full_name AS "member.full_name", m.email AS "member.email",
		       m.phone AS "member.phone",
		       m.membership_type AS "member.membership_type",
		       m.membership_status AS "member.membership_status",
		       m.max_borrow_limit AS "member.max_borrow_limit",
		       m.current_borrow_count AS "member.current_borrow_count",
		       m.total_fines AS "member.total_fines",
		       m.registration_date AS "member.registration_date",
		       bc.id AS "copy.id", bc.book_id AS "copy.book_id",
		       bc.barcode AS "copy.barcode", bc.status AS "copy.status",
		       bc.location AS "copy.location", bc.condition AS "copy.condition",
		       bc.acquired_date AS "copy.acquired_date",
		       b.id AS "book.id", b.title AS "book.title", b.author AS "book.author",
		       b.isbn AS "book.isbn", b.publisher AS "book.publisher",
		       b.publish_year AS "book.publish_year", b.category AS "book.category",
		       b.description AS "book.description",
		       b.created_at AS "book.created_at", b.updated_at AS "book.updated_at"
		FROM loans l
		JOIN members m      ON m.id = l.member_id
		JOIN book_copies bc ON bc.id = l.book_copy_id
		JOIN books b        ON b.id = l.book_id
		WHERE bc.barcode = $1
		AND l.status = 'active'`

	var row struct {
		model.Loan
		Member model.Member   `db:"member"`
		Copy   model.BookCopy `db:"copy"`
		Book   model.Book     `db:"book"`
	}
	err := s.db.GetContext(ctx, &row, q, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ActiveLoanInfo{
		Loan:   row.Loan,
		Member: row.Member,
		Book:   row.Book,
		Copy:   row.Copy,
	}, nil
}
