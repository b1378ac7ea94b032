package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	authsvc "libraryms/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/auth/register
func (h *Controller) Register(c echo.Context) error {
	var req RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"code":    "VALIDATION_ERROR",
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, token, err := h.Svc.Register(c.Request().Context(), authsvc.RegisterReq{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, errBody(err))
		case authsvc.ErrEmailTaken, authsvc.ErrUsernameTaken:
			return c.JSON(http.StatusConflict, errBody(err))
		default:
			h.Log.Error("register", "err", err)
			return c.JSON(http.StatusInternalServerError, internalErr)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// POST /v1/auth/login
func (h *Controller) Login(c echo.Context) error {
	var req LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "BAD_REQUEST", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"code":    "VALIDATION_ERROR",
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, token, err := h.Svc.Login(c.Request().Context(), authsvc.LoginReq{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadInput, authsvc.ErrInvalidCreds:
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"code":    string(authsvc.ErrInvalidCreds),
				"message": "invalid credentials",
			})
		default:
			h.Log.Error("login", "err", err)
			return c.JSON(http.StatusInternalServerError, internalErr)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

var internalErr = echo.Map{"code": "INTERNAL", "message": "internal error"}

func errBody(err error) echo.Map {
	return echo.Map{"code": string(authsvc.Code(err)), "message": err.Error()}
}
