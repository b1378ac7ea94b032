package memberctrl

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryms/model"
	membershipsvc "libraryms/service/membership"
)

type Controller struct {
	Svc membershipsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return model.Role(role).Staff()
}

// POST /v1/members  (staff)
func (h *Controller) Create(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	var req MemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	m := req.toModel()
	if err := h.Svc.Register(c.Request().Context(), m); err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// PUT /v1/members/:id  (staff)
func (h *Controller) Update(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	var req MemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	current, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, err)
	}
	m := req.toModel()
	m.ID = id
	m.MemberCode = current.MemberCode
	if m.MembershipStatus == "" {
		m.MembershipStatus = current.MembershipStatus
	}
	if m.MaxBorrowLimit == 0 {
		m.MaxBorrowLimit = current.MaxBorrowLimit
	}
	if err := h.Svc.Update(c.Request().Context(), m); err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DELETE /v1/members/:id  (staff)
func (h *Controller) Delete(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/members/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	m, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// GET /v1/members?memberCode=...&query=...&page=&pageSize=
func (h *Controller) List(c echo.Context) error {
	if code := c.QueryParam("memberCode"); code != "" {
		m, err := h.Svc.ByCode(c.Request().Context(), code)
		if err != nil {
			return h.writeErr(c, err)
		}
		return c.JSON(http.StatusOK, m)
	}

	var f model.Filters
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	members, meta, err := h.Svc.List(c.Request().Context(), c.QueryParam("query"), f)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": members, "metadata": meta})
}

// POST /v1/members/:id/fines/pay  (staff)
func (h *Controller) PayFine(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	var req PayFineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	m, err := h.Svc.PayFine(c.Request().Context(), id, req.Amount)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (r MemberReq) toModel() *model.Member {
	return &model.Member{
		FullName:         r.FullName,
		Email:            r.Email,
		Phone:            r.Phone,
		MembershipType:   model.MembershipType(r.MembershipType),
		MembershipStatus: model.MembershipStatus(r.MembershipStatus),
		MaxBorrowLimit:   r.MaxBorrowLimit,
	}
}

func (h *Controller) writeErr(c echo.Context, err error) error {
	switch membershipsvc.Code(err) {
	case membershipsvc.ErrMemberNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": string(membershipsvc.ErrMemberNotFound), "message": "member not found"})
	case membershipsvc.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"code": string(membershipsvc.ErrEmailTaken), "message": "email already registered"})
	case membershipsvc.ErrCodeTaken:
		return c.JSON(http.StatusConflict, echo.Map{"code": string(membershipsvc.ErrCodeTaken), "message": "member code already in use"})
	case membershipsvc.ErrOverpayment:
		return c.JSON(http.StatusConflict, echo.Map{"code": string(membershipsvc.ErrOverpayment), "message": "payment exceeds outstanding fines"})
	case membershipsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"code": string(membershipsvc.ErrBadInput), "message": "bad input"})
	default:
		h.Log.Error("member op", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": "INTERNAL", "message": "internal error"})
	}
}
