package handlers

import (
	"github.com/gofiber/fiber/v2"

	"goldengate/internal/domain"
	applog "goldengate/internal/log"
	"goldengate/internal/services"
	"goldengate/internal/validate"
)

type InventoryHandler struct {
	Inv  *services.InventoryService
	Gate *services.Gate
}

type inventoryForm struct {
	Name     string   `json:"name" form:"name" validate:"min=3"`
	Category string   `json:"category" form:"category" validate:"min=2"`
	Type     string   `json:"type" form:"type" validate:"min=2"`
	Stock    int      `json:"stock" form:"stock" validate:"min=0"`
	Price    float64  `json:"price" form:"price" validate:"min=1"`
	Karats   *float64 `json:"karats" form:"karats"`
	Grams    *float64 `json:"grams" form:"grams"`
	ImageURL string   `json:"imageUrl" form:"imageUrl" validate:"omitempty,url"`
}

var inventoryMessages = validate.Messages{
	"name":     "El nombre debe tener al menos 3 caracteres.",
	"category": "La categoría es requerida.",
	"type":     "El tipo es requerido.",
	"stock":    "Las existencias no pueden ser negativas.",
	"price":    "El precio debe ser mayor a 0.",
	"imageUrl": "Por favor, introduce una URL de imagen válida.",
}

func (f inventoryForm) fields() services.InventoryFields {
	return services.InventoryFields{
		Name: f.Name, Category: f.Category, Type: f.Type,
		Stock: f.Stock, Price: f.Price,
		Karats: f.Karats, Grams: f.Grams,
		ImageURL: f.ImageURL,
	}
}

// parseInventory binds and validates the item form; it writes the error
// response itself and returns ok=false when the request must stop.
func parseInventory(c *fiber.Ctx) (inventoryForm, bool, error) {
	var in inventoryForm
	if err := c.BodyParser(&in); err != nil {
		return in, false, fail(c, fiber.StatusBadRequest, "invalid input")
	}
	if errs := validate.Struct(in, inventoryMessages); errs != nil {
		return in, false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": errs})
	}
	return in, true, nil
}

// GET /dashboard/inventory
func (h *InventoryHandler) Page(c *fiber.Ctx) error {
	items := h.Inv.List()
	protected := make([]string, 0, len(domain.ProtectedInventoryIDs))
	for _, it := range items {
		if !h.Inv.Deletable(it.ID) {
			protected = append(protected, it.ID)
		}
	}
	return render(c, fiber.Map{
		"items":     items,
		"protected": protected,
		"canDelete": services.Authorize(h.Gate.Current(), services.ResourceDeleteRecord),
	})
}

// GET /api/v1/inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.Inv.List())
}

// POST /api/v1/inventory
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	in, ok, err := parseInventory(c)
	if !ok {
		return err
	}
	item, err := h.Inv.Create(c.UserContext(), in.fields())
	if err != nil {
		applog.Error(c, "inventory.create.fail", err, nil)
		return err
	}
	applog.Audit(c, "inventory.create", map[string]any{"id": item.ID, "name": item.Name})
	return c.Status(fiber.StatusCreated).JSON(item)
}

// PUT /api/v1/inventory/:id
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid id")
	}
	in, ok, err := parseInventory(c)
	if !ok {
		return err
	}
	item, found, err := h.Inv.Update(c.UserContext(), id, in.fields())
	if err != nil {
		applog.Error(c, "inventory.update.fail", err, map[string]any{"id": id})
		return err
	}
	if !found {
		return fail(c, fiber.StatusNotFound, "not found")
	}
	applog.Audit(c, "inventory.update", map[string]any{"id": id})
	return c.JSON(item)
}

// DELETE /api/v1/inventory/:id
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid id")
	}
	if _, found := h.Inv.Get(id); !found {
		return fail(c, fiber.StatusNotFound, "not found")
	}
	if !h.Inv.Deletable(id) {
		applog.Security(c, "inventory.delete.protected", map[string]any{"id": id})
		return fail(c, fiber.StatusConflict, "Este material no se puede eliminar.")
	}
	if _, err := h.Inv.Delete(c.UserContext(), id); err != nil {
		applog.Error(c, "inventory.delete.fail", err, map[string]any{"id": id})
		return err
	}
	applog.Audit(c, "inventory.delete", map[string]any{"id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
