// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     catalog, membership, circulation and reports.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libraryms/app/echoServer"
	authctrl "libraryms/app/echoServer/controller/auth"
	bookctrl "libraryms/app/echoServer/controller/book"
	copyctrl "libraryms/app/echoServer/controller/copy"
	loanctrl "libraryms/app/echoServer/controller/loan"
	memberctrl "libraryms/app/echoServer/controller/member"
	reportctrl "libraryms/app/echoServer/controller/report"
	"libraryms/config"
	catalogrepo "libraryms/repository/catalog"
	loanrepo "libraryms/repository/loan"
	memberrepo "libraryms/repository/member"
	reportrepo "libraryms/repository/report"
	userrepo "libraryms/repository/user"
	authsvc "libraryms/service/auth"
	catalogsvc "libraryms/service/catalog"
	circulationsvc "libraryms/service/circulation"
	membershipsvc "libraryms/service/membership"
	reportsvc "libraryms/service/report"
	"libraryms/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sqlx.DB over pgx
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Error("schema migration failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	cr := catalogrepo.New(db)
	mr := memberrepo.New(db)
	lr := loanrepo.New(db)
	rr := reportrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	cs := catalogsvc.New(cr)
	ms := membershipsvc.New(mr)
	ls := circulationsvc.New(lr)
	rs := reportsvc.New(rr)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := as.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Error("admin bootstrap failed", "err", err)
			os.Exit(1)
		}
	}

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: cs, V: v, Log: log}
	copyC := &copyctrl.Controller{Svc: cs, V: v, Log: log}
	memberC := &memberctrl.Controller{Svc: ms, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}
	reportC := &reportctrl.Controller{Svc: rs, Log: log}

	// echo
	e := echo.New()
	e.JSONSerializer = echoServer.JSONSerializer{}
	echoServer.RegisterMiddlewares(e)
	e.Validator = echoServer.NewValidator(v)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Book:   bookC,
		Copy:   copyC,
		Member: memberC,
		Loan:   loanC,
		Report: reportC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
