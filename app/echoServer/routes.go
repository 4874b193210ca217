package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/auth"
	"github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/catalog"
	"github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/explore"
	"github.com/DharaPatel007/NexusLibrary/app/echoServer/controller/library"
	"github.com/DharaPatel007/NexusLibrary/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	Catalog   *catalog.Controller
	Library   *library.Controller
	Explore   *explore.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	authGrp := e.Group("/v1")
	authGrp.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction
	authGrp.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Me
	authGrp.GET("/me/profile", c.Library.MyProfile)
	authGrp.GET("/me/history", c.Library.MyHistory)

	// Catalog
	authGrp.GET("/items/:kind/:id", c.Catalog.Detail)
	// Admin endpoints
	authGrp.POST("/items/:kind", c.Catalog.Create)

	// Browsing
	authGrp.GET("/home", c.Explore.Home)
	authGrp.GET("/explore/genres", c.Explore.Genres)
	authGrp.GET("/explore", c.Explore.Explore)
	authGrp.GET("/search", c.Explore.Search)

	// Circulation
	authGrp.POST("/borrow/:kind/:id", c.Library.Borrow)
	authGrp.POST("/return/:kind/:id", c.Library.Return)
	authGrp.POST("/reserve/:id", c.Library.Reserve)
	authGrp.POST("/papers/:id/request", c.Library.RequestPaper)
}
