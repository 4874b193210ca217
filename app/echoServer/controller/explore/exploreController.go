package explore

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	explorersvc "github.com/DharaPatel007/NexusLibrary/service/explorer"
)

type Controller struct {
	Svc explorersvc.Service
	Log *slog.Logger
}

// GET /v1/home
func (h *Controller) Home(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	data, err := h.Svc.Home(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("home", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, data)
}

// GET /v1/explore/genres
func (h *Controller) Genres(c echo.Context) error {
	genres, err := h.Svc.Genres(c.Request().Context())
	if err != nil {
		h.Log.Error("genres", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"genres": genres})
}

// GET /v1/explore?genre=
func (h *Controller) Explore(c echo.Context) error {
	genre := c.QueryParam("genre")
	if genre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "genre is required"})
	}
	uid, _ := c.Get("user_id").(int64)

	books, err := h.Svc.Explore(c.Request().Context(), uid, genre)
	if err != nil {
		h.Log.Error("explore", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"genre": genre, "books": books})
}

// GET /v1/search?q=&type=keyword|genre|author
func (h *Controller) Search(c echo.Context) error {
	q := c.QueryParam("q")
	mode := c.QueryParam("type")
	if mode == "" {
		mode = "keyword"
	}
	uid, _ := c.Get("user_id").(int64)

	results, err := h.Svc.Search(c.Request().Context(), uid, q, mode)
	if err != nil {
		h.Log.Error("search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"query": q, "type": mode, "results": results})
}
