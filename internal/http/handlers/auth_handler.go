package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"goldengate/internal/log"
	"goldengate/internal/services"
	"goldengate/internal/validate"
)

type AuthHandler struct {
	Gate *services.Gate
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, fiber.Map{"screen": "login", "error": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginForm
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid input")
	}
	if _, ok := validate.Email(in.Email); !ok || in.Password == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return fail(c, fiber.StatusUnauthorized, services.LoginFailedMessage)
	}

	sess, next, err := h.Gate.Login(c.UserContext(), in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return fail(c, fiber.StatusUnauthorized, services.LoginFailedMessage)
	}
	if err != nil {
		return err
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": sess.Email, "role": sess.Role})
	return c.Redirect(next)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	prev := h.Gate.Current()
	next, err := h.Gate.Logout(c.UserContext())
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if prev != nil {
		fields["email"] = prev.Email
	}
	log.Audit(c, "auth.logout", fields)
	return c.Redirect(next)
}

// Session reports the gate state and the sidebar for the current user.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess := h.Gate.Current()
	return c.JSON(fiber.Map{
		"state":   h.Gate.State().String(),
		"session": sess,
		"nav":     services.NavItems(sess),
	})
}
