package correction

import (
	"errors"

	"db-corrector/core/logger"
	"db-corrector/core/reconcile"
	"db-corrector/core/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the correction feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = report.Report{}
	return &Handler{service: service}
}

// RegisterRoutes registers the correction routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/correction")
	group.Get("/tables", h.HandleTables)
	group.Get("/schema", h.HandleSchema)
	group.Post("/run", h.HandleRun)
	group.Get("/reports", h.HandleReports)
	group.Get("/reports/:id", h.HandleReport)
}

// HandleTables lists the configured tables.
// @Summary List Tables
// @Description Returns the configured tables and their key columns, in run order.
// @Tags correction
// @Produce json
// @Success 200 {array} reconcile.TableSpec "Configured tables"
// @Router /correction/tables [get]
func (h *Handler) HandleTables(c *fiber.Ctx) error {
	tables := h.service.Tables()
	if tables == nil {
		tables = []reconcile.TableSpec{}
	}
	return c.JSON(tables)
}

// HandleSchema compares the configured tables across both databases.
// @Summary Compare Schemas
// @Description Inspects every configured table on the reference and target databases and reports key presence and missing columns.
// @Tags correction
// @Produce json
// @Success 200 {array} TableSchema "Schema comparison"
// @Failure 503 {object} map[string]string "Database unavailable"
// @Router /correction/schema [get]
func (h *Handler) HandleSchema(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	schema, err := h.service.Schema(c.Context())
	if err != nil {
		l.Error("Schema inspection failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(schema)
}

// HandleRun triggers a reconciliation run.
// @Summary Run Reconciliation
// @Description Reconciles every configured table, inserting missing rows and updating mismatched ones in the target. Only one run may be active at a time.
// @Tags correction
// @Produce json
// @Param dry_run query boolean false "Compute actions without committing them"
// @Success 200 {object} report.Report "Run report"
// @Failure 403 {object} map[string]string "Runs disabled"
// @Failure 409 {object} map[string]string "Run already in progress"
// @Failure 503 {object} map[string]string "Database unavailable"
// @Router /correction/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	dryRun := c.Query("dry_run") == "true"

	rep, err := h.service.Run(c.Context(), dryRun, l)
	switch {
	case errors.Is(err, ErrRunsDisabled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconcile.ErrConnection):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}

// HandleReports lists stored run reports.
// @Summary List Reports
// @Description Returns the run ids of stored reports, newest first.
// @Tags correction
// @Produce json
// @Success 200 {array} string "Run ids"
// @Failure 404 {object} map[string]string "Storage disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /correction/reports [get]
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	ids, err := h.service.Reports(c.Context())
	if errors.Is(err, ErrStorageDisabled) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Failed to list reports", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(ids)
}

// HandleReport returns one stored run report.
// @Summary Get Report
// @Description Returns the stored report of a run.
// @Tags correction
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} report.Report "Run report"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /correction/reports/{id} [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id := c.Params("id")

	data, err := h.service.Report(c.Context(), id)
	if err != nil {
		l.Warn("Report lookup failed", zap.String("run_id", id), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}
