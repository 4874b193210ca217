package library

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/DharaPatel007/NexusLibrary/model"
	ls "github.com/DharaPatel007/NexusLibrary/service/library"
)

type Controller struct {
	Svc ls.Service
	V   *validator.Validate
	Log *slog.Logger
}

func statusFor(code ls.ErrCode) int {
	switch code {
	case ls.ErrNotEligible, ls.ErrPaperAccess:
		return http.StatusForbidden
	case ls.ErrAlreadyBorrowed, ls.ErrNoCopies, ls.ErrAlreadyReserved, ls.ErrCopiesAvailable:
		return http.StatusConflict
	case ls.ErrNoOpenBorrow, ls.ErrItemNotFound:
		return http.StatusNotFound
	case ls.ErrUnknownKind:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := ls.Code(err)
	if code == "" {
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(statusFor(code), echo.Map{"success": false, "message": err.Error()})
}

func itemRef(c echo.Context) (model.ItemRef, bool) {
	kind, ok := model.ParseItemKind(c.Param("kind"))
	if !ok {
		return model.ItemRef{}, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return model.ItemRef{}, false
	}
	return model.ItemRef{Kind: kind, ID: id}, true
}

// Borrow an item
// @Summary      Borrow an item
// @Tags         library
// @Produce      json
// @Param        kind  path  string  true  "ebook|printedbook|researchpaper|audiobook"
// @Param        id    path  int     true  "item id"
// @Success      201  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Security     BearerAuth
// @Router       /v1/borrow/{kind}/{id} [post]
func (h *Controller) Borrow(c echo.Context) error {
	ref, ok := itemRef(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid item type."})
	}
	uid, _ := c.Get("user_id").(int64)

	msg, err := h.Svc.Borrow(c.Request().Context(), uid, ref)
	if err != nil {
		return h.fail(c, "borrow", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": msg})
}

// Return an item
// @Summary      Return a borrowed item
// @Tags         library
// @Accept       json
// @Produce      json
// @Param        kind  path  string  true  "item kind"
// @Param        id    path  int     true  "item id"
// @Param        payload  body  ReturnReq  false  "optional explicit return date"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Security     BearerAuth
// @Router       /v1/return/{kind}/{id} [post]
func (h *Controller) Return(c echo.Context) error {
	ref, ok := itemRef(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid item type."})
	}
	uid, _ := c.Get("user_id").(int64)

	var req ReturnReq
	if err := c.Bind(&req); err != nil && err != echo.ErrUnsupportedMediaType {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid JSON"})
	}
	var returnDate *time.Time
	if req.ReturnDate != "" {
		d, err := time.Parse("2006-01-02", req.ReturnDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid return_date"})
		}
		returnDate = &d
	}

	msg, err := h.Svc.Return(c.Request().Context(), uid, ref, returnDate)
	if err != nil {
		return h.fail(c, "return", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg})
}

// Reserve a printed book
// @Summary      Reserve a fully checked-out printed book
// @Tags         library
// @Produce      json
// @Param        id  path  int  true  "printed book id"
// @Success      201  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Security     BearerAuth
// @Router       /v1/reserve/{id} [post]
func (h *Controller) Reserve(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	msg, err := h.Svc.Reserve(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "reserve", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": msg})
}

// Request research paper access
// @Summary      Request access to a research paper
// @Tags         library
// @Produce      json
// @Param        id  path  int  true  "research paper id"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Security     BearerAuth
// @Router       /v1/papers/{id}/request [post]
func (h *Controller) RequestPaper(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	msg, err := h.Svc.RequestPaperAccess(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "paper request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg})
}

// GET /v1/me/history
func (h *Controller) MyHistory(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyHistory(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/me/profile
func (h *Controller) MyProfile(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	role, err := h.Svc.RoleOf(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("profile", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_type":       role,
		"borrow_limit":    role.BorrowLimit(),
		"borrow_duration": role.BorrowDuration(),
	})
}
