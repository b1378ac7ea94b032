package reportsvc

import (
	"context"
	"errors"
	"time"

	"libraryms/model"
	reportrepo "libraryms/repository/report"
)

type ErrCode string

const ErrInvalidRange ErrCode = "INVALID_RANGE"

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Range names the date windows offered by the reports page.
type Range string

const (
	RangeThisMonth Range = "this-month"
	RangeLastMonth Range = "last-month"
	RangeThisYear  Range = "this-year"
	RangeAllTime   Range = "all-time"
)

type Service interface {
	Stats(ctx context.Context, r Range, now time.Time) (*model.ReportStats, error)
}

type service struct{ r reportrepo.Repo }

func New(r reportrepo.Repo) Service { return &service{r: r} }

func (s *service) Stats(ctx context.Context, rng Range, now time.Time) (*model.ReportStats, error) {
	from, to, err := Window(rng, now)
	if err != nil {
		return nil, err
	}
	return s.r.Stats(ctx, from, to, now)
}

// Window resolves a named range to [from, to) bounds in UTC. All-time
// returns open bounds.
func Window(rng Range, now time.Time) (from, to *time.Time, err error) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	switch rng {
	case RangeThisMonth:
		return &monthStart, nil, nil
	case RangeLastMonth:
		prevStart := monthStart.AddDate(0, -1, 0)
		return &prevStart, &monthStart, nil
	case RangeThisYear:
		return &yearStart, nil, nil
	case RangeAllTime, "":
		return nil, nil, nil
	}
	return nil, nil, codedError{code: ErrInvalidRange}
}
