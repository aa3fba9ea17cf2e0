package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "goldengate/internal/log"
	"goldengate/internal/services"
)

type ReportHandler struct {
	Reports *services.ReportService
}

var contentTypes = map[string]string{
	services.FormatCSV:  "text/csv; charset=utf-8",
	services.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// GET /dashboard/reports
func (h *ReportHandler) Page(c *fiber.Ctx) error {
	return render(c, fiber.Map{
		"reports": services.ReportKinds,
		"formats": []string{services.FormatCSV, services.FormatXLSX},
	})
}

// GET /dashboard/reports/:kind/:format
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	kind := services.ReportKind(c.Params("kind"))
	format := strings.ToLower(c.Params("format"))

	body, name, err := h.Reports.Render(kind, format)
	switch {
	case errors.Is(err, services.ErrEmptyReport):
		applog.Info(c, "report.export.empty", map[string]any{"kind": kind})
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, services.ErrUnknownReport):
		return fail(c, fiber.StatusNotFound, "not found")
	case err != nil:
		applog.Error(c, "report.export.fail", err, map[string]any{"kind": kind, "format": format})
		return err
	}

	applog.Audit(c, "report.export", map[string]any{"kind": kind, "format": format})
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentTypes[format])
	return c.Send(body)
}
