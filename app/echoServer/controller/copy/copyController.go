package copyctrl

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"libraryms/model"
	catalogsvc "libraryms/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isStaff(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return model.Role(role).Staff()
}

// POST /v1/books/:id/copies  (staff)
func (h *Controller) Create(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	var req CopyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	cp := &model.BookCopy{
		BookID:    bookID,
		Barcode:   req.Barcode,
		Status:    model.CopyStatus(req.Status),
		Location:  req.Location,
		Condition: model.CopyCondition(req.Condition),
	}
	if err := h.Svc.AddCopy(c.Request().Context(), cp); err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, cp)
}

// GET /v1/books/:id/copies
func (h *Controller) ListForBook(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	copies, err := h.Svc.ListCopiesForBook(c.Request().Context(), bookID)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": copies})
}

// GET /v1/book-copies?barcode=...
func (h *Controller) ByBarcode(c echo.Context) error {
	barcode := c.QueryParam("barcode")
	if barcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "barcode required"})
	}
	cp, err := h.Svc.CopyByBarcode(c.Request().Context(), barcode)
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, cp)
}

// PATCH /v1/book-copies/:id/status  (staff)
func (h *Controller) MarkStatus(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	var req MarkStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	cp, err := h.Svc.MarkCopy(c.Request().Context(), id, model.CopyStatus(req.Status))
	if err != nil {
		return h.writeErr(c, err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *Controller) writeErr(c echo.Context, err error) error {
	switch catalogsvc.Code(err) {
	case catalogsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": string(catalogsvc.ErrBookNotFound), "message": "book not found"})
	case catalogsvc.ErrCopyNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": string(catalogsvc.ErrCopyNotFound), "message": "copy not found"})
	case catalogsvc.ErrCopyBorrowed:
		return c.JSON(http.StatusConflict, echo.Map{"code": string(catalogsvc.ErrCopyBorrowed), "message": "copy is currently borrowed"})
	case catalogsvc.ErrStatusReserved:
		return c.JSON(http.StatusConflict, echo.Map{"code": string(catalogsvc.ErrStatusReserved), "message": "borrowed status is set by circulation only"})
	case catalogsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"code": string(catalogsvc.ErrBadInput), "message": "bad input"})
	default:
		h.Log.Error("copy op", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": "INTERNAL", "message": "internal error"})
	}
}
