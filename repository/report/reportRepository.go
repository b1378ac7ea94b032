package reportrepo

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"libraryms/model"
)

const dialect = "postgres"

type Repo interface {
	// Stats aggregates the loan ledger and member base over the given
	// window. A nil bound leaves that side of the window open.
	Stats(ctx context.Context, from, to *time.Time, now time.Time) (*model.ReportStats, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

// rangeWhere filters a dataset by a timestamp column. Reports slice
// the ledger by when the loan was created, matching the admin UI.
func rangeWhere(ds *goqu.SelectDataset, col string, from, to *time.Time) *goqu.SelectDataset {
	if from != nil {
		ds = ds.Where(goqu.I(col).Gte(*from))
	}
	if to != nil {
		ds = ds.Where(goqu.I(col).Lt(*to))
	}
	return ds
}

func (r *repo) Stats(ctx context.Context, from, to *time.Time, now time.Time) (*model.ReportStats, error) {
	stats := &model.ReportStats{
		TotalFines:     decimal.Zero,
		PopularBooks:   []model.PopularBook{},
		CategoryStats:  []model.CategoryCount{},
		MemberActivity: []model.MemberActivity{},
	}

	type loanTotals struct {
		Total    int64           `db:"total"`
		Active   int64           `db:"active"`
		Returned int64           `db:"returned"`
		Overdue  int64           `db:"overdue"`
		Fines    decimal.Decimal `db:"fines"`
	}

	// Overdue is derived against now, never read from a stored status.
	totalsDS := rangeWhere(goqu.Dialect(dialect).From("loans"), "borrow_date", from, to).Select(
		goqu.COUNT("*").As("total"),
		goqu.COUNT(goqu.Case().When(goqu.And(
			goqu.C("status").Eq("active"),
			goqu.C("due_date").Gte(now),
		), 1)).As("active"),
		goqu.COUNT(goqu.Case().When(goqu.C("status").Eq("returned"), 1)).As("returned"),
		goqu.COUNT(goqu.Case().When(goqu.And(
			goqu.C("status").Eq("active"),
			goqu.C("due_date").Lt(now),
		), 1)).As("overdue"),
		goqu.COALESCE(goqu.SUM("fine_amount"), 0).As("fines"),
	)
	totalsSQL, totalsArgs, err := totalsDS.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var totals loanTotals
	if err := r.db.GetContext(ctx, &totals, totalsSQL, totalsArgs...); err != nil {
		return nil, err
	}
	stats.TotalLoans = totals.Total
	stats.ActiveLoans = totals.Active
	stats.ReturnedLoans = totals.Returned
	stats.OverdueLoans = totals.Overdue
	stats.TotalFines = totals.Fines

	newMembersDS := rangeWhere(goqu.Dialect(dialect).From("members"), "registration_date", from, to).
		Select(goqu.COUNT("*"))
	newSQL, newArgs, err := newMembersDS.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.NewMembers, newSQL, newArgs...); err != nil {
		return nil, err
	}

	activeSQL, activeArgs, err := goqu.Dialect(dialect).From("members").
		Where(goqu.C("membership_status").Eq("active")).
		Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.ActiveMembers, activeSQL, activeArgs...); err != nil {
		return nil, err
	}

	popularDS := rangeWhere(
		goqu.Dialect(dialect).From(goqu.T("loans").As("l")).
			Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("l.book_id")})),
		"l.borrow_date", from, to,
	).Select(
		goqu.I("b.title").As("title"),
		goqu.I("b.author").As("author"),
		goqu.COUNT("*").As("count"),
	).GroupBy(goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author")).
		Order(goqu.I("count").Desc()).
		Limit(5)
	popularSQL, popularArgs, err := popularDS.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &stats.PopularBooks, popularSQL, popularArgs...); err != nil {
		return nil, err
	}

	categoryDS := rangeWhere(
		goqu.Dialect(dialect).From(goqu.T("loans").As("l")).
			Join(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("l.book_id")})),
		"l.borrow_date", from, to,
	).Select(
		goqu.I("b.category").As("category"),
		goqu.COUNT("*").As("count"),
	).GroupBy(goqu.I("b.category")).
		Order(goqu.I("count").Desc())
	categorySQL, categoryArgs, err := categoryDS.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &stats.CategoryStats, categorySQL, categoryArgs...); err != nil {
		return nil, err
	}

	activityDS := rangeWhere(
		goqu.Dialect(dialect).From(goqu.T("loans").As("l")).
			Join(goqu.T("members").As("m"), goqu.On(goqu.Ex{"m.id": goqu.I("l.member_id")})),
		"l.borrow_date", from, to,
	).Select(
		goqu.I("m.full_name").As("name"),
		goqu.I("m.member_code").As("member_code"),
		goqu.COUNT("*").As("loan_count"),
	).GroupBy(goqu.I("m.id"), goqu.I("m.full_name"), goqu.I("m.member_code")).
		Order(goqu.I("loan_count").Desc()).
		Limit(5)
	activitySQL, activityArgs, err := activityDS.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &stats.MemberActivity, activitySQL, activityArgs...); err != nil {
		return nil, err
	}

	return stats, nil
}
