package echoServer_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"libraryms/app/echoServer"
	"libraryms/app/echoServer/controller/auth"
	bookctrl "libraryms/app/echoServer/controller/book"
	copyctrl "libraryms/app/echoServer/controller/copy"
	loanctrl "libraryms/app/echoServer/controller/loan"
	memberctrl "libraryms/app/echoServer/controller/member"
	reportctrl "libraryms/app/echoServer/controller/report"
	"libraryms/model"
	loanrepo "libraryms/repository/loan"
	circulationsvc "libraryms/service/circulation"
	jwtutil "libraryms/util/jwt"
)

type circMock struct{}

var _ circulationsvc.Service = (*circMock)(nil)

func (m *circMock) Checkout(ctx context.Context, memberCode, barcode string, now time.Time) (*model.Loan, error) {
	return nil, nil
}
func (m *circMock) Return(ctx context.Context, barcode string, now time.Time) (*model.Loan, error) {
	return nil, nil
}
func (m *circMock) Renew(ctx context.Context, loanID int64, now time.Time) (*model.Loan, error) {
	return nil, nil
}
func (m *circMock) LoansForMember(ctx context.Context, memberID int64, now time.Time) ([]model.Loan, error) {
	return []model.Loan{}, nil
}
func (m *circMock) ActiveLoanByBarcode(ctx context.Context, barcode string, now time.Time) (*loanrepo.ActiveLoanInfo, error) {
	return nil, loanrepo.ErrNotFound
}

const testSecret = "test-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	v := validator.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	echoServer.Register(e, echoServer.C{
		Auth:      &auth.Controller{V: v, Log: log},
		Book:      &bookctrl.Controller{V: v, Log: log},
		Copy:      &copyctrl.Controller{V: v, Log: log},
		Member:    &memberctrl.Controller{V: v, Log: log},
		Loan:      &loanctrl.Controller{Svc: &circMock{}, V: v, Log: log},
		Report:    &reportctrl.Controller{Log: log},
		JWTSecret: testSecret,
	})
	return e
}

func doGet(e *echo.Echo, target, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_BearerHeaderAccepted(t *testing.T) {
	e := newServer(t)
	tok, err := jwtutil.Issue(testSecret, 7, string(model.RoleLibrarian), time.Hour)
	require.NoError(t, err)

	rec := doGet(e, "/v1/loans?memberId=7", "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
}

func TestAuthMiddleware_RawTokenRejected(t *testing.T) {
	e := newServer(t)
	tok, err := jwtutil.Issue(testSecret, 7, string(model.RoleLibrarian), time.Hour)
	require.NoError(t, err)

	// a bare token without the Bearer prefix is not a valid header
	rec := doGet(e, "/v1/loans?memberId=7", tok)
	require.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
}

func TestAuthMiddleware_MissingHeaderRejected(t *testing.T) {
	e := newServer(t)

	rec := doGet(e, "/v1/loans?memberId=7", "")
	require.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
}

func TestAuthMiddleware_BadTokenRejected(t *testing.T) {
	e := newServer(t)

	rec := doGet(e, "/v1/loans?memberId=7", "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_WrongKeyRejected(t *testing.T) {
	e := newServer(t)
	tok, err := jwtutil.Issue("other-secret", 7, string(model.RoleLibrarian), time.Hour)
	require.NoError(t, err)

	rec := doGet(e, "/v1/loans?memberId=7", "Bearer "+tok)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
