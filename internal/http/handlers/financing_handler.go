package handlers

import (
	"github.com/gofiber/fiber/v2"

	"goldengate/internal/domain"
	applog "goldengate/internal/log"
	"goldengate/internal/services"
	"goldengate/internal/validate"
)

type FinancingHandler struct {
	Fin  *services.FinancingService
	Gate *services.Gate
}

type financingForm struct {
	Customer   string  `json:"customer" form:"customer" validate:"min=3"`
	Item       string  `json:"item" form:"item" validate:"min=3"`
	TotalPrice float64 `json:"totalPrice" form:"totalPrice" validate:"min=1"`
	Paid       float64 `json:"paid" form:"paid" validate:"min=0,ltefield=TotalPrice"`
	DueDate    string  `json:"dueDate" form:"dueDate" validate:"isodate"`
	Status     string  `json:"status" form:"status" validate:"financing_status"`
}

var financingMessages = validate.Messages{
	"customer":      "El nombre debe tener al menos 3 caracteres.",
	"item":          "El artículo debe tener al menos 3 caracteres.",
	"totalPrice":    "El precio debe ser mayor a 0.",
	"paid.min":      "El pago no puede ser negativo.",
	"paid.ltefield": "El monto pagado no puede ser mayor al precio total.",
	"dueDate":       "Fecha inválida.",
	"status":        "Estado inválido.",
}

func (f financingForm) fields() services.FinancingFields {
	return services.FinancingFields{
		Customer: f.Customer, Item: f.Item,
		TotalPrice: f.TotalPrice, Paid: f.Paid,
		DueDate: f.DueDate, Status: domain.FinancingStatus(f.Status),
	}
}

func parseFinancing(c *fiber.Ctx) (financingForm, bool, error) {
	var in financingForm
	if err := c.BodyParser(&in); err != nil {
		return in, false, fail(c, fiber.StatusBadRequest, "invalid input")
	}
	if errs := validate.Struct(in, financingMessages); errs != nil {
		return in, false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": errs})
	}
	return in, true, nil
}

// GET /dashboard/financing
func (h *FinancingHandler) Page(c *fiber.Ctx) error {
	return render(c, fiber.Map{
		"records":   h.Fin.List(),
		"statuses":  domain.FinancingStatuses,
		"canDelete": services.Authorize(h.Gate.Current(), services.ResourceDeleteRecord),
	})
}

// GET /api/v1/financing
func (h *FinancingHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.Fin.List())
}

// POST /api/v1/financing
func (h *FinancingHandler) Create(c *fiber.Ctx) error {
	in, ok, err := parseFinancing(c)
	if !ok {
		return err
	}
	rec, err := h.Fin.Create(c.UserContext(), in.fields())
	if err != nil {
		applog.Error(c, "financing.create.fail", err, nil)
		return err
	}
	applog.Audit(c, "financing.create", map[string]any{"id": rec.ID, "customer": rec.Customer})
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// PUT /api/v1/financing/:id
func (h *FinancingHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid id")
	}
	in, ok, err := parseFinancing(c)
	if !ok {
		return err
	}
	rec, found, err := h.Fin.Update(c.UserContext(), id, in.fields())
	if err != nil {
		applog.Error(c, "financing.update.fail", err, map[string]any{"id": id})
		return err
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "not found")
	}
	applog.Audit(c, "financing.update", map[string]any{"id": id, "status": rec.Status})
	return c.JSON(rec)
}

// DELETE /api/v1/financing/:id
func (h *FinancingHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid id")
	}
	removed, err := h.Fin.Delete(c.UserContext(), id)
	if err != nil {
		applog.Error(c, "financing.delete.fail", err, map[string]any{"id": id})
		return err
	}
	if !removed {
		return fail(c, fiber.StatusNotFound, "not found")
	}
	applog.Audit(c, "financing.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
