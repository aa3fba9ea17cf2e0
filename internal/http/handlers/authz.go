package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "goldengate/internal/log"
	"goldengate/internal/services"
)

// Guard applies the gate's navigation decision to a screen request.
func Guard(gate *services.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nav := gate.Navigate(c.Path())
		if nav.Wait {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
		sess := gate.Current()
		if nav.Redirect != "" {
			if sess != nil && !services.Authorize(sess, services.ResourceFor(c.Path())) {
				applog.Security(c, "access.denied.screen", map[string]any{"email": sess.Email, "role": sess.Role})
			}
			return c.Redirect(nav.Redirect)
		}
		if sess != nil {
			c.Locals("user", *sess)
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(gate *services.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := gate.Current()
		if sess == nil {
			return c.Redirect(services.PathLogin)
		}
		c.Locals("user", *sess)
		return c.Next()
	}
}

// RequireAdmin guards record deletion and other admin-only actions.
func RequireAdmin(gate *services.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := gate.Current()
		if sess == nil {
			return c.Redirect(services.PathLogin)
		}
		if !services.Authorize(sess, services.ResourceDeleteRecord) {
			applog.Security(c, "access.denied.admin", map[string]any{"email": sess.Email, "role": sess.Role})
			return fail(c, fiber.StatusForbidden, "Acceso denegado")
		}
		c.Locals("user", *sess)
		return c.Next()
	}
}
