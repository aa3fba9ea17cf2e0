package handlers

import (
	"github.com/gofiber/fiber/v2"

	"goldengate/internal/services"
	"goldengate/internal/workspace"
)

type Deps struct {
	Gate             *services.Gate
	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	InventoryHandler *InventoryHandler
	FinancingHandler *FinancingHandler
	ReportHandler    *ReportHandler
}

func NewDeps(ws *workspace.Workspace) *Deps {
	return &Deps{
		Gate:             ws.Gate,
		AuthHandler:      &AuthHandler{Gate: ws.Gate},
		DashboardHandler: &DashboardHandler{Dash: ws.Dashboard, Gate: ws.Gate},
		InventoryHandler: &InventoryHandler{Inv: ws.Inventory, Gate: ws.Gate},
		FinancingHandler: &FinancingHandler{Fin: ws.Financing, Gate: ws.Gate},
		ReportHandler:    &ReportHandler{Reports: ws.Reports},
	}
}

// Mount registers every route. loginLimiter throttles POST /login; nil
// disables throttling.
func (d *Deps) Mount(app fiber.Router, loginLimiter fiber.Handler) {
	guard := Guard(d.Gate)

	// Screens
	app.Get("/", guard)
	app.Get("/login", guard, d.AuthHandler.LoginForm)
	app.Get("/dashboard", guard, d.DashboardHandler.Home)
	app.Get("/dashboard/inventory", guard, d.InventoryHandler.Page)
	app.Get("/dashboard/financing", guard, d.FinancingHandler.Page)
	app.Get("/dashboard/reports", guard, d.ReportHandler.Page)
	app.Get("/dashboard/reports/:kind/:format", guard, d.ReportHandler.Download)

	// Auth
	if loginLimiter != nil {
		app.Post("/login", loginLimiter, d.AuthHandler.Login)
	} else {
		app.Post("/login", d.AuthHandler.Login)
	}
	app.Post("/logout", d.AuthHandler.Logout)

	// API
	api := app.Group("/api/v1")
	api.Get("/session", d.AuthHandler.Session)

	user := RequireUser(d.Gate)
	admin := RequireAdmin(d.Gate)

	inv := api.Group("/inventory", user)
	inv.Get("/", d.InventoryHandler.List)
	inv.Post("/", d.InventoryHandler.Create)
	inv.Put("/:id", d.InventoryHandler.Update)
	inv.Delete("/:id", admin, d.InventoryHandler.Delete)

	fin := api.Group("/financing", user)
	fin.Get("/", d.FinancingHandler.List)
	fin.Post("/", d.FinancingHandler.Create)
	fin.Put("/:id", d.FinancingHandler.Update)
	fin.Delete("/:id", admin, d.FinancingHandler.Delete)
}
