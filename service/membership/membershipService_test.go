package membershipsvc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"libraryms/model"
	memberrepo "libraryms/repository/member"
	membershipsvc "libraryms/service/membership"
)

type repoMock struct {
	createFn  func(ctx context.Context, m *model.Member) error
	updateFn  func(ctx context.Context, m *model.Member) error
	deleteFn  func(ctx context.Context, id int64) error
	byIDFn    func(ctx context.Context, id int64) (*model.Member, error)
	byCodeFn  func(ctx context.Context, code string) (*model.Member, error)
	listFn    func(ctx context.Context, query string, f model.Filters) ([]model.Member, model.Metadata, error)
	payFineFn func(ctx context.Context, memberID int64, amount decimal.Decimal) error
}

var _ memberrepo.Repo = (*repoMock)(nil)

func (m *repoMock) Create(ctx context.Context, mm *model.Member) error { return m.createFn(ctx, mm) }
func (m *repoMock) Update(ctx context.Context, mm *model.Member) error { return m.updateFn(ctx, mm) }
func (m *repoMock) Delete(ctx context.Context, id int64) error         { return m.deleteFn(ctx, id) }
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Member, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ByCode(ctx context.Context, code string) (*model.Member, error) {
	return m.byCodeFn(ctx, code)
}
func (m *repoMock) List(ctx context.Context, query string, f model.Filters) ([]model.Member, model.Metadata, error) {
	return m.listFn(ctx, query, f)
}
func (m *repoMock) PayFine(ctx context.Context, memberID int64, amount decimal.Decimal) error {
	return m.payFineFn(ctx, memberID, amount)
}

func TestRegister_DefaultsByType(t *testing.T) {
	var saved *model.Member
	m := &repoMock{
		createFn: func(ctx context.Context, mm *model.Member) error {
			saved = mm
			return nil
		},
	}
	svc := membershipsvc.New(m)

	cases := []struct {
		typ   model.MembershipType
		limit int
	}{
		{model.MemberStudent, 5},
		{model.MemberTeacher, 10},
		{model.MemberPublic, 3},
	}
	for _, tc := range cases {
		mm := &model.Member{FullName: "A", Email: "a@example.com", MembershipType: tc.typ}
		require.NoError(t, svc.Register(context.Background(), mm))
		require.Equal(t, tc.limit, saved.MaxBorrowLimit, "type %s", tc.typ)
		require.Equal(t, model.MembershipActive, saved.MembershipStatus)
		require.True(t, strings.HasPrefix(saved.MemberCode, "M-"), "code %q", saved.MemberCode)
	}
}

func TestRegister_ExplicitLimitKept(t *testing.T) {
	var saved *model.Member
	m := &repoMock{
		createFn: func(ctx context.Context, mm *model.Member) error {
			saved = mm
			return nil
		},
	}
	svc := membershipsvc.New(m)

	mm := &model.Member{
		FullName: "A", Email: "a@example.com",
		MembershipType: model.MemberPublic, MaxBorrowLimit: 7,
	}
	require.NoError(t, svc.Register(context.Background(), mm))
	require.Equal(t, 7, saved.MaxBorrowLimit)
}

func TestRegister_BadInput(t *testing.T) {
	svc := membershipsvc.New(&repoMock{})
	ctx := context.Background()

	err := svc.Register(ctx, &model.Member{Email: "a@b.c", MembershipType: model.MemberPublic})
	require.Equal(t, membershipsvc.ErrBadInput, membershipsvc.Code(err))

	err = svc.Register(ctx, &model.Member{FullName: "A", Email: "a@b.c", MembershipType: "vip"})
	require.Equal(t, membershipsvc.ErrBadInput, membershipsvc.Code(err))
}

func TestUpdate_NotFound(t *testing.T) {
	m := &repoMock{
		updateFn: func(ctx context.Context, mm *model.Member) error { return memberrepo.ErrNotFound },
	}
	svc := membershipsvc.New(m)

	err := svc.Update(context.Background(), &model.Member{
		ID: 4, MembershipType: model.MemberPublic,
		MembershipStatus: model.MembershipActive, MaxBorrowLimit: 3,
	})
	require.Equal(t, membershipsvc.ErrMemberNotFound, membershipsvc.Code(err))
}

func TestPayFine_Success(t *testing.T) {
	balance := decimal.NewFromInt(25000)
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Member, error) {
			return &model.Member{ID: id, TotalFines: balance}, nil
		},
		payFineFn: func(ctx context.Context, memberID int64, amount decimal.Decimal) error {
			balance = balance.Sub(amount)
			return nil
		},
	}
	svc := membershipsvc.New(m)

	mm, err := svc.PayFine(context.Background(), 1, decimal.NewFromInt(10000))
	require.NoError(t, err)
	require.True(t, mm.TotalFines.Equal(decimal.NewFromInt(15000)))
}

func TestPayFine_Overpayment(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Member, error) {
			return &model.Member{ID: id, TotalFines: decimal.NewFromInt(5000)}, nil
		},
		payFineFn: func(ctx context.Context, memberID int64, amount decimal.Decimal) error {
			return memberrepo.ErrOverpayment
		},
	}
	svc := membershipsvc.New(m)

	_, err := svc.PayFine(context.Background(), 1, decimal.NewFromInt(10000))
	require.Equal(t, membershipsvc.ErrOverpayment, membershipsvc.Code(err))
}

func TestPayFine_Validation(t *testing.T) {
	svc := membershipsvc.New(&repoMock{})

	_, err := svc.PayFine(context.Background(), 1, decimal.Zero)
	require.Equal(t, membershipsvc.ErrBadInput, membershipsvc.Code(err))

	_, err = svc.PayFine(context.Background(), 1, decimal.NewFromInt(-50))
	require.Equal(t, membershipsvc.ErrBadInput, membershipsvc.Code(err))
}

func TestPayFine_MemberMissing(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Member, error) {
			return nil, memberrepo.ErrNotFound
		},
	}
	svc := membershipsvc.New(m)

	_, err := svc.PayFine(context.Background(), 42, decimal.NewFromInt(100))
	require.Equal(t, membershipsvc.ErrMemberNotFound, membershipsvc.Code(err))
}
