package memberrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libraryms/model"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrOverpayment is returned when a fine payment would push the
	// member's balance below zero.
	ErrOverpayment = errors.New("payment exceeds outstanding fines")
)

type Repo interface {
	Create(ctx context.Context, m *model.Member) error
	Update(ctx context.Context, m *model.Member) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*model.Member, error)
	ByCode(ctx context.Context, code string) (*model.Member, error)
	List(ctx context.Context, query string, f model.Filters) ([]model.Member, model.Metadata, error)

	// PayFine subtracts amount from total_fines; the update is guarded
	// so a payment can never exceed the outstanding balance.
	PayFine(ctx context.Context, memberID int64, amount decimal.Decimal) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, m *model.Member) error {
	const q = `
		INSERT INTO members (member_code, full_name, email, phone, membership_type,
		                     membership_status, max_borrow_limit)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, current_borrow_count, total_fines, registration_date`
	return r.db.QueryRowContext(ctx, q,
		m.MemberCode, m.FullName, m.Email, m.Phone, m.MembershipType,
		m.MembershipStatus, m.MaxBorrowLimit,
	).Scan(&m.ID, &m.CurrentBorrowCount, &m.TotalFines, &m.RegistrationDate)
}

func (r *repo) Update(ctx context.Context, m *model.Member) error {
	const q = `
		UPDATE members
		SET full_name=$1, email=$2, phone=$3, membership_type=$4,
		    membership_status=$5, max_borrow_limit=$6
		WHERE id=$7
		RETURNING member_code, current_borrow_count, total_fines, registration_date`
	err := r.db.QueryRowContext(ctx, q,
		m.FullName, m.Email, m.Phone, m.MembershipType,
		m.MembershipStatus, m.MaxBorrowLimit, m.ID,
	).Scan(&m.MemberCode, &m.CurrentBorrowCount, &m.TotalFines, &m.RegistrationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id=$1`, id)
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

func (r *repo) ByID(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	err := r.db.GetContext(ctx, &m, `SELECT * FROM members WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) ByCode(ctx context.Context, code string) (*model.Member, error) {
	var m model.Member
	err := r.db.GetContext(ctx, &m, `SELECT * FROM members WHERE member_code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, query string, f model.Filters) ([]model.Member, model.Metadata, error) {
	const q = `
		SELECT COUNT(*) OVER() AS total, *
		FROM members
		WHERE ($1 = '' OR full_name ILIKE '%'||$1||'%' OR email ILIKE '%'||$1||'%'
		       OR member_code = $1)
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, q, query, f.Limit(), f.Offset())
	if err != nil {
		return nil, model.Metadata{}, err
	}
	defer rows.Close()

	total := 0
	members := []model.Member{}
	for rows.Next() {
		var row struct {
			Total int `db:"total"`
			model.Member
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, model.Metadata{}, err
		}
		total = row.Total
		members = append(members, row.Member)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Metadata{}, err
	}
	return members, model.CalculateMetadata(total, f.Page, f.PageSize), nil
}

// PayFine relies on the WHERE guard instead of read-then-write so a
// concurrent fine accrual cannot be lost between check and update.
func (r *repo) PayFine(ctx context.Context, memberID int64, amount decimal.Decimal) error {
	const q = `
		UPDATE members
		SET total_fines = total_fines - $2
		WHERE id = $1
		AND total_fines >= $2`
	res, err := r.db.ExecContext(ctx, q, memberID, amount)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrOverpayment
	}
	return nil
}
