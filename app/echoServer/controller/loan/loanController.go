package loanctrl

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryms/model"
	circulationsvc "libraryms/service/circulation"
)

type Controller struct {
	Svc circulationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return model.Role(role).Staff()
}

// POST /v1/loans/checkout  (staff)
func (h *Controller) Checkout(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	var req CheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	l, err := h.Svc.Checkout(c.Request().Context(), req.MemberCode, req.Barcode, time.Now().UTC())
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

// POST /v1/loans/return  (staff)
func (h *Controller) Return(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	l, err := h.Svc.Return(c.Request().Context(), req.Barcode, time.Now().UTC())
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// POST /v1/loans/:id/renew  (staff)
func (h *Controller) Renew(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}

	l, err := h.Svc.Renew(c.Request().Context(), id, time.Now().UTC())
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// GET /v1/loans?memberId=...
func (h *Controller) List(c echo.Context) error {
	memberID, err := strconv.ParseInt(c.QueryParam("memberId"), 10, 64)
	if err != nil || memberID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "memberId required"})
	}

	loans, err := h.Svc.LoansForMember(c.Request().Context(), memberID, time.Now().UTC())
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": loans})
}

// GET /v1/loans/active?barcode=...
func (h *Controller) Active(c echo.Context) error {
	barcode := c.QueryParam("barcode")
	if barcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "barcode required"})
	}

	info, err := h.Svc.ActiveLoanByBarcode(c.Request().Context(), barcode, time.Now().UTC())
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (h *Controller) writeErr(c echo.Context, err error) error {
	code := circulationsvc.Code(err)
	switch code {
	case circulationsvc.ErrMemberNotFound,
		circulationsvc.ErrCopyNotFound,
		circulationsvc.ErrLoanNotFound,
		circulationsvc.ErrNoActiveLoan:
		return c.JSON(http.StatusNotFound, echo.Map{"code": string(code), "message": message(code)})
	case circulationsvc.ErrMembershipInactive,
		circulationsvc.ErrBorrowLimitExceeded,
		circulationsvc.ErrCopyUnavailable,
		circulationsvc.ErrRenewalLimit,
		circulationsvc.ErrLoanOverdue,
		circulationsvc.ErrLoanReturned,
		circulationsvc.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"code": string(code), "message": message(code)})
	default:
		h.Log.Error("loan op", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": "INTERNAL", "message": "internal error"})
	}
}

func message(code circulationsvc.ErrCode) string {
	switch code {
	case circulationsvc.ErrMemberNotFound:
		return "member not found"
	case circulationsvc.ErrMembershipInactive:
		return "membership is not active"
	case circulationsvc.ErrBorrowLimitExceeded:
		return "member has reached the borrow limit"
	case circulationsvc.ErrCopyNotFound:
		return "book copy not found"
	case circulationsvc.ErrCopyUnavailable:
		return "book copy is not available"
	case circulationsvc.ErrNoActiveLoan:
		return "no active loan on this copy"
	case circulationsvc.ErrLoanNotFound:
		return "loan not found"
	case circulationsvc.ErrRenewalLimit:
		return "renewal limit reached"
	case circulationsvc.ErrLoanOverdue:
		return "overdue loans cannot be renewed"
	case circulationsvc.ErrLoanReturned:
		return "loan is already returned"
	case circulationsvc.ErrConflict:
		return "concurrent update, retry"
	}
	return "internal error"
}
