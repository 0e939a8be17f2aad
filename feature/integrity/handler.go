package integrity

import (
	"errors"
	"strings"

	"objectfs/core/logger"
	"objectfs/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/roundtrip", h.HandleRoundTripCheck)
	group.Get("/pagination", h.HandlePaginationCheck)
	group.Get("/schema", h.HandleSchemaCheck)
}

func splitDirs(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func section(report any, err error) any {
	switch {
	case errors.Is(err, ErrSkipped):
		return fiber.Map{"status": "skipped"}
	case err != nil:
		return fiber.Map{"status": "error", "error": err.Error()}
	default:
		return report
	}
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Structure, RoundTrip, Pagination, Schema).
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.UserContext()
	report := make(map[string]any)

	structure, err := h.service.CheckStructure(ctx, splitDirs(c.Query("dirs")))
	report["structure"] = section(structure, err)

	roundTrip, err := h.service.CheckRoundTrip(ctx)
	report["roundtrip"] = section(roundTrip, err)

	pagination, err := h.service.CheckPagination(ctx, c.Query("prefix"), 0)
	report["pagination"] = section(pagination, err)

	schema, err := h.service.CheckSchema()
	report["schema"] = section(schema, err)

	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes structure.
// @Summary Check Structure
// @Description Checks that the storage root is reachable and the listed directories exist. Optionally creates them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param dirs query string false "Comma separated directory keys"
// @Param fix query boolean false "Create the root and missing directories"
// @Success 200 {object} checks.StructureReport "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	report, err := h.service.CheckStructure(c.UserContext(), splitDirs(c.Query("dirs")))
	if err != nil && !fix {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err != nil || len(report.Missing) > 0 {
		l.Warn("Structure incomplete", zap.Strings("missing", report.Missing))

		if fix {
			l.Info("Attempting to fix structure")
			if err := h.service.FixStructure(c.UserContext(), report.Missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": report.Missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  report.Missing,
			})
		}
	}

	return c.JSON(report)
}

// HandleRoundTripCheck runs the round trip probe.
// @Summary Check Round Trip
// @Description Writes a probe object, reads it back whole and by range, then removes it.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.RoundTripReport "Round Trip Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/roundtrip [get]
func (h *Handler) HandleRoundTripCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckRoundTrip(c.UserContext())
	if errors.Is(err, ErrSkipped) {
		return c.JSON(fiber.Map{"status": "skipped"})
	}
	if err != nil {
		l.Error("Round trip check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Round trip mismatch", zap.Strings("problems", report.Problems))
	}
	return c.JSON(report)
}

// HandlePaginationCheck compares paged and full listings.
// @Summary Check Pagination
// @Description Pages through a prefix and verifies that no key is lost or repeated.
// @Tags integrity
// @Produce json
// @Param prefix query string false "Key prefix"
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} checks.PaginationReport "Pagination Report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/pagination [get]
func (h *Handler) HandlePaginationCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	pageSize, err := utils.ToInt64(c.Query("page_size"), 0)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.service.CheckPagination(c.UserContext(), c.Query("prefix"), pageSize)
	if err != nil {
		l.Error("Pagination check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Pagination check completed",
		zap.Int("pages", report.Pages),
		zap.Int("keys", report.Listed),
		zap.Bool("matched", report.Matched))
	return c.JSON(report)
}

// HandleSchemaCheck checks the blob table schema.
// @Summary Check Blob Table Schema
// @Description Checks that the SQL blob table matches the expected columns. Skipped for non SQL backends.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if errors.Is(err, ErrSkipped) {
		return c.JSON(fiber.Map{"status": "skipped"})
	}
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
