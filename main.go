// Package main Nexus Library API.
//
// @title           Nexus Library API
// @version         1.0
// @description     Library management service (catalog, borrowing, reservations, fines).
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

	"github.com/DharaPatel007/NexusLibrary/app/echoServer"
	authctrl "github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/auth"
	catalogctrl "github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/catalog"
	explorectrl "github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/explore"
	libraryctrl "github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/library"
	"github.com/DharaPatel007/NexusLibrary/app/echoServer/validation"
	"github.com/DharaPatel007/NexusLibrary/config"
	borrowrepo "github.com/DharaPatel007/NexusLibrary/repository/borrow"
	catalogrepo "github.com/DharaPatel007/NexusLibrary/repository/catalog"
	mailerrepo "github.com/DharaPatel007/NexusLibrary/repository/mailer"
	profilerepo "github.com/DharaPatel007/NexusLibrary/repository/profile"
	reservationrepo "github.com/DharaPatel007/NexusLibrary/repository/reservation"
	userrepo "github.com/DharaPatel007/NexusLibrary/repository/user"
	authsvc "github.com/DharaPatel007/NexusLibrary/service/auth"
	catalogsvc "github.com/DharaPatel007/NexusLibrary/service/catalog"
	explorersvc "github.com/DharaPatel007/NexusLibrary/service/explorer"
	librarysvc "github.com/DharaPatel007/NexusLibrary/service/library"
	"github.com/DharaPatel007/NexusLibrary/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db.SQL)
	pr := profilerepo.New(db.SQL)
	cr := catalogrepo.New(db.SQL)
	br := borrowrepo.New(db.SQL)
	rr := reservationrepo.New(db.SQL)
	mr := mailerrepo.NewHTTP(cfg.MailRelayURL, cfg.MailAPIKey, cfg.MailFrom)

	// services
	as := authsvc.New(ur, pr, cfg.JWTSecret)
	cs := catalogsvc.New(cr)
	ls := librarysvc.New(db.SQL, cr, pr, br, rr, mr, log)
	es := explorersvc.New(cr, br, pr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cs, V: v, Log: log}
	libraryC := &libraryctrl.Controller{Svc: ls, V: v, Log: log}
	exploreC := &explorectrl.Controller{Svc: es, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Catalog:   catalogC,
		Library:   libraryC,
		Explore:   exploreC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
