package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"libraryms/app/echoServer/controller/auth"
	bookctrl "libraryms/app/echoServer/controller/book"
	copyctrl "libraryms/app/echoServer/controller/copy"
	loanctrl "libraryms/app/echoServer/controller/loan"
	memberctrl "libraryms/app/echoServer/controller/member"
	reportctrl "libraryms/app/echoServer/controller/report"
	"libraryms/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	Book      *bookctrl.Controller
	Copy      *copyctrl.Controller
	Member    *memberctrl.Controller
	Loan      *loanctrl.Controller
	Report    *reportctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	api := e.Group("/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		// clients send "Authorization: Bearer <JWT>"; the prefix is
		// stripped before the token reaches the parser
		TokenLookup: "header:Authorization:Bearer ",
	}))
	// user_id and role extraction for the handlers below
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"code": "UNAUTHORIZED", "message": "unauthorized"})
			}
			role, err := jwtx.RoleFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"code": "UNAUTHORIZED", "message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			ctx.Set("role", string(role))
			return next(ctx)
		}
	})

	// Books and copies
	api.GET("/books", c.Book.List)
	api.GET("/books/:id", c.Book.Detail)
	api.POST("/books", c.Book.Create)
	api.PUT("/books/:id", c.Book.Update)
	api.DELETE("/books/:id", c.Book.Delete)
	api.POST("/books/:id/copies", c.Copy.Create)
	api.GET("/books/:id/copies", c.Copy.ListForBook)
	api.GET("/book-copies", c.Copy.ByBarcode)
	api.PATCH("/book-copies/:id/status", c.Copy.MarkStatus)

	// Members
	api.GET("/members", c.Member.List)
	api.GET("/members/:id", c.Member.Detail)
	api.POST("/members", c.Member.Create)
	api.PUT("/members/:id", c.Member.Update)
	api.DELETE("/members/:id", c.Member.Delete)
	api.POST("/members/:id/fines/pay", c.Member.PayFine)

	// Circulation
	api.POST("/loans/checkout", c.Loan.Checkout)
	api.POST("/loans/return", c.Loan.Return)
	api.POST("/loans/:id/renew", c.Loan.Renew)
	api.GET("/loans", c.Loan.List)
	api.GET("/loans/active", c.Loan.Active)

	// Reports
	api.GET("/reports", c.Report.Stats)
}
