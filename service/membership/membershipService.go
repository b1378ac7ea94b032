package membershipsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"libraryms/model"
	memberrepo "libraryms/repository/member"
)

type ErrCode string

const (
	ErrMemberNotFound ErrCode = "MEMBER_NOT_FOUND"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrEmailTaken     ErrCode = "EMAIL_TAKEN"
	ErrCodeTaken      ErrCode = "MEMBER_CODE_TAKEN"
	ErrOverpayment    ErrCode = "PAYMENT_EXCEEDS_FINES"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Register creates a member. The member code is generated, and the
	// borrow limit defaults by membership type when not given.
	Register(ctx context.Context, m *model.Member) error
	Update(ctx context.Context, m *model.Member) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*model.Member, error)
	ByCode(ctx context.Context, code string) (*model.Member, error)
	List(ctx context.Context, query string, f model.Filters) ([]model.Member, model.Metadata, error)
	PayFine(ctx context.Context, memberID int64, amount decimal.Decimal) (*model.Member, error)
}

type service struct{ r memberrepo.Repo }

func New(r memberrepo.Repo) Service { return &service{r: r} }

func (s *service) Register(ctx context.Context, m *model.Member) error {
	m.FullName = strings.TrimSpace(m.FullName)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	if m.FullName == "" || m.Email == "" {
		return makeErr(ErrBadInput)
	}
	if !m.MembershipType.Valid() {
		return makeErr(ErrBadInput)
	}
	if m.MembershipStatus == "" {
		m.MembershipStatus = model.MembershipActive
	}
	if !m.MembershipStatus.Valid() {
		return makeErr(ErrBadInput)
	}
	if m.MaxBorrowLimit == 0 {
		m.MaxBorrowLimit = m.MembershipType.DefaultBorrowLimit()
	}
	if m.MaxBorrowLimit <= 0 {
		return makeErr(ErrBadInput)
	}
	if m.MemberCode == "" {
		m.MemberCode = newMemberCode()
	}

	if err := s.r.Create(ctx, m); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return derr
		}
		return err
	}
	return nil
}

func newMemberCode() string {
	return "M-" + strings.ToUpper(uuid.NewString()[:8])
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		if strings.Contains(cn, "member_code") {
			return makeErr(ErrCodeTaken)
		}
		if strings.Contains(cn, "email") {
			return makeErr(ErrEmailTaken)
		}
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) Update(ctx context.Context, m *model.Member) error {
	if !m.MembershipType.Valid() || !m.MembershipStatus.Valid() || m.MaxBorrowLimit <= 0 {
		return makeErr(ErrBadInput)
	}
	if err := s.r.Update(ctx, m); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return makeErr(ErrMemberNotFound)
		}
		if derr := mapDuplicateErr(err); derr != nil {
			return derr
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.r.Delete(ctx, id)
	if errors.Is(err, memberrepo.ErrNotFound) {
		return makeErr(ErrMemberNotFound)
	}
	return err
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Member, error) {
	m, err := s.r.ByID(ctx, id)
	if errors.Is(err, memberrepo.ErrNotFound) {
		return nil, makeErr(ErrMemberNotFound)
	}
	return m, err
}

func (s *service) ByCode(ctx context.Context, code string) (*model.Member, error) {
	m, err := s.r.ByCode(ctx, code)
	if errors.Is(err, memberrepo.ErrNotFound) {
		return nil, makeErr(ErrMemberNotFound)
	}
	return m, err
}

func (s *service) List(ctx context.Context, query string, f model.Filters) ([]model.Member, model.Metadata, error) {
	return s.r.List(ctx, query, f.Normalize())
}

func (s *service) PayFine(ctx context.Context, memberID int64, amount decimal.Decimal) (*model.Member, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, makeErr(ErrBadInput)
	}
	if _, err := s.ByID(ctx, memberID); err != nil {
		return nil, err
	}
	if err := s.r.PayFine(ctx, memberID, amount); err != nil {
		switch {
		case errors.Is(err, memberrepo.ErrOverpayment):
			return nil, makeErr(ErrOverpayment)
		case errors.Is(err, memberrepo.ErrNotFound):
			return nil, makeErr(ErrMemberNotFound)
		}
		return nil, err
	}
	return s.ByID(ctx, memberID)
}
