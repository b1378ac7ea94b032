package book

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

// POST /v1/books  (staff)
func (h *Controller) Create(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	b := req.toModel()
	if err := h.Svc.CreateBook(c.Request().Context(), b); err != nil {
		h.Log.Error("book create", "err", err)
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id  (staff)
func (h *Controller) Update(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "VALIDATION_ERROR", "message": "validation error", "errors": err.Error()})
	}

	b := req.toModel()
	b.ID = id
	if err := h.Svc.UpdateBook(c.Request().Context(), b); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id  (staff)
func (h *Controller) Delete(c echo.Context) error {
	if !isStaff(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"code": "FORBIDDEN", "message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	if err := h.Svc.DeleteBook(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid id"})
	}
	b, err := h.Svc.GetBook(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/books?search=&page=&pageSize=
func (h *Controller) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))

	books, meta, err := h.Svc.ListBooks(c.Request().Context(), c.QueryParam("search"),
		model.Filters{Page: page, PageSize: pageSize})
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": "INTERNAL", "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books, "metadata": meta})
}

func writeErr(c echo.Context, err error) error {
	switch catalogsvc.Code(err) {
	case catalogsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": string(catalogsvc.ErrBookNotFound), "message": "book not found"})
	case catalogsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"code": string(catalogsvc.ErrBadInput), "message": "bad input"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": "INTERNAL", "message": "internal error"})
	}
}
