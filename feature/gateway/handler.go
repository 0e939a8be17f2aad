package gateway

import (
	"bytes"
	"net/url"

	"objectfs/core/logger"
	"objectfs/core/storage"
	"objectfs/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the storage engine.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the gateway routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/describe", h.HandleDescribe)
	app.Get("/objects", h.HandleList)
	app.Get("/stat/*", h.HandleStat)
	app.Get("/objects/*", h.HandleRead)
	app.Put("/objects/*", h.HandleWrite)
	app.Delete("/objects/*", h.HandleRemove)
}

// DescribeResponse is the body of GET /describe.
type DescribeResponse struct {
	Description string `json:"description"`
}

func keyParam(c *fiber.Ctx) (string, error) {
	key, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return "", storage.NewError("request", c.Params("*"), storage.ErrInvalidArgument, err)
	}
	return key, nil
}

// HandleDescribe returns the backend description.
// @Summary Describe Backend
// @Description Returns a human readable description of the storage backend. No I/O is performed.
// @Tags storage
// @Produce json
// @Success 200 {object} DescribeResponse
// @Router /describe [get]
func (h *Handler) HandleDescribe(c *fiber.Ctx) error {
	return c.JSON(DescribeResponse{Description: h.service.Describe()})
}

// HandleList lists objects.
// @Summary List Objects
// @Description Lists objects under a prefix in lexical order, one page at a time.
// @Tags storage
// @Produce json
// @Param prefix query string false "Key prefix"
// @Param marker query string false "Return keys strictly after this key"
// @Param limit query int false "Page size" default(10)
// @Param all query boolean false "Return every object, ignoring limit"
// @Success 200 {object} storage.Page
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /objects [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	limit, err := utils.ToInt64(c.Query("limit"), storage.DefaultListLimit)
	if err != nil {
		return writeError(c, storage.NewError("list", "", storage.ErrInvalidArgument, err))
	}
	page, err := h.service.List(c.UserContext(), c.Query("prefix"), c.Query("marker"), limit, utils.ToBool(c.Query("all")))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("List failed", zap.Error(err))
		return writeError(c, err)
	}
	return c.JSON(page)
}

// HandleStat returns object metadata.
// @Summary Stat Object
// @Description Returns the metadata of one key.
// @Tags storage
// @Produce json
// @Param key path string true "Object key"
// @Success 200 {object} storage.Object
// @Failure 404 {object} ErrorResponse
// @Router /stat/{key} [get]
func (h *Handler) HandleStat(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return writeError(c, err)
	}
	obj, err := h.service.Stat(c.UserContext(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(obj)
}

// HandleRead streams object bytes.
// @Summary Read Object
// @Description Streams the bytes of one key, optionally restricted to a range.
// @Tags storage
// @Produce octet-stream
// @Param key path string true "Object key"
// @Param offset query int false "First byte" default(0)
// @Param limit query int false "Maximum bytes, -1 for the rest" default(-1)
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /objects/{key} [get]
func (h *Handler) HandleRead(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if key == "" {
		return h.HandleList(c)
	}
	offset, err := utils.ToInt64(c.Query("offset"), 0)
	if err != nil {
		return writeError(c, storage.NewError("read", key, storage.ErrInvalidArgument, err))
	}
	limit, err := utils.ToInt64(c.Query("limit"), -1)
	if err != nil {
		return writeError(c, storage.NewError("read", key, storage.ErrInvalidArgument, err))
	}

	r, n, err := h.service.Open(c.UserContext(), key, offset, limit)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	// fasthttp closes r once the body is sent.
	return c.SendStream(r, int(n))
}

// HandleWrite replaces an object with the request body.
// @Summary Write Object
// @Description Writes the request body to a key. The previous content stays visible until the write completes.
// @Tags storage
// @Accept octet-stream
// @Produce json
// @Param key path string true "Object key"
// @Success 201 {object} storage.Object
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /objects/{key} [put]
func (h *Handler) HandleWrite(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return writeError(c, err)
	}
	l := logger.WithRayID(h.service.logger, c)

	obj, err := h.service.Put(c.UserContext(), key, bytes.NewReader(c.Body()))
	if err != nil {
		l.Error("Write failed", zap.String("key", key), zap.Error(err))
		return writeError(c, err)
	}
	l.Info("Object written", zap.String("key", key), zap.Int64("size", obj.Size))
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// HandleRemove deletes an object.
// @Summary Remove Object
// @Description Removes a key. Removing a missing key succeeds unless strict remove is configured.
// @Tags storage
// @Param key path string true "Object key"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /objects/{key} [delete]
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.service.Remove(c.UserContext(), key); err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Remove failed", zap.String("key", key), zap.Error(err))
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
