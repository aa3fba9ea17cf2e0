package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"goldengate/internal/feed"
	"goldengate/internal/http/handlers"
	applog "goldengate/internal/log"
	"goldengate/internal/repos"
	"goldengate/internal/workspace"
)

// Minimal app with the real routes over an in-memory sqlite slot store
func newApp(t *testing.T, loginMax int) (*fiber.App, *workspace.Workspace) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bus := feed.NewBus()
	t.Cleanup(func() { _ = bus.Close() })

	ws, err := workspace.New(workspace.Options{Slots: repos.NewSlotRepo(db), Feed: bus})
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(ws.Close)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())

	var loginLimiter fiber.Handler
	if loginMax > 0 {
		loginLimiter = limiter.New(limiter.Config{
			Max:        loginMax,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.login.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts"})
			},
		})
	}
	handlers.NewDeps(ws).Mount(app, loginLimiter)
	return app, ws
}

func send(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func login(t *testing.T, app *fiber.App, email string) {
	t.Helper()
	resp := send(t, app, "POST", "/login", map[string]string{"email": email, "password": "1234"})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login %s: expected 302, got %d", email, resp.StatusCode)
	}
}

// captureLogs swaps the process logger for an observer for the rest of the test.
func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	restore := applog.SetLogger(zap.New(core))
	t.Cleanup(restore)
	return logs
}
