package catalog

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/DharaPatel007/NexusLibrary/model"
	catalogsvc "github.com/DharaPatel007/NexusLibrary/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create a catalog item
// @Summary      Add an item to the catalog (admin)
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        kind     path  string         true  "ebook|printedbook|researchpaper|audiobook"
// @Param        payload  body  CreateItemReq  true  "Item payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Security     BearerAuth
// @Router       /v1/items/{kind} [post]
func (h *Controller) Create(c echo.Context) error {
	kind, ok := model.ParseItemKind(c.Param("kind"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid item type."})
	}

	var req CreateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	pub, err := time.Parse("2006-01-02", req.PublicationDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid publication_date"})
	}

	it := &model.Item{
		Kind:            kind,
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationDate: pub,
		FileURL:         req.FileURL,
		FileSizeMB:      req.FileSizeMB,
		ISBN:            req.ISBN,
		CopiesAvailable: req.CopiesAvailable,
		DOI:             req.DOI,
		AccessLevel:     req.AccessLevel,
		DurationSeconds: req.DurationSeconds,
		Narrator:        req.Narrator,
	}

	id, err := h.Svc.Create(c.Request().Context(), it)
	if err != nil {
		if errors.Is(err, catalogsvc.ErrBadItem) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing kind-specific fields"})
		}
		h.Log.Error("item create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"kind": kind, "id": id})
}

// Item detail
// @Summary      Fetch one catalog item by (kind, id)
// @Tags         catalog
// @Produce      json
// @Param        kind  path  string  true  "item kind"
// @Param        id    path  int     true  "item id"
// @Success      200  {object}  model.Item
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /v1/items/{kind}/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	kind, ok := model.ParseItemKind(c.Param("kind"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid item type."})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	it, err := h.Svc.Detail(c.Request().Context(), model.ItemRef{Kind: kind, ID: id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not found."})
		}
		h.Log.Error("item detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, it)
}
