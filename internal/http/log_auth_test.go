package handlers_test

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

// auth logging on success and failure
func TestAuthLogging(t *testing.T) {
	app, _ := newApp(t, 0)
	logs := captureLogs(t)

	_ = send(t, app, "POST", "/login", map[string]string{"email": "admin@goldengate.com", "password": "nope"})
	fail := logs.FilterMessage("auth.login.fail").All()
	if len(fail) != 1 {
		t.Fatalf("want 1 auth.login.fail entry, got %d", len(fail))
	}
	if fail[0].Level != zapcore.WarnLevel {
		t.Fatalf("login failure should log at warn, got %s", fail[0].Level)
	}
	fields, _ := fail[0].ContextMap()["fields"].(map[string]any)
	if _, ok := fields["email"]; !ok {
		t.Fatal("auth.login.fail missing email field")
	}

	login(t, app, "admin@goldengate.com")
	ok := logs.FilterMessage("auth.login.success").All()
	if len(ok) != 1 {
		t.Fatalf("want 1 auth.login.success entry, got %d", len(ok))
	}
	ctx := ok[0].ContextMap()
	if ctx["audit"] != true {
		t.Fatal("login success should be an audit entry")
	}
	if rid, _ := ctx["req_id"].(string); rid == "" {
		t.Fatal("missing request id")
	}

	_ = send(t, app, "POST", "/logout", nil)
	if logs.FilterMessage("auth.logout").Len() != 1 {
		t.Fatal("logout not audited")
	}
}

func TestMutationsAreAudited(t *testing.T) {
	app, _ := newApp(t, 0)
	logs := captureLogs(t)
	login(t, app, "admin@goldengate.com")

	_ = send(t, app, "POST", "/api/v1/financing", map[string]any{
		"customer": "Lucía Torres", "item": "Pulsera", "totalPrice": 1000, "paid": 0,
		"dueDate": "2024-12-01", "status": "Activo",
	})
	_ = send(t, app, "DELETE", "/api/v1/financing/fin-002", nil)

	for _, action := range []string{"financing.create", "financing.delete"} {
		if logs.FilterMessage(action).Len() != 1 {
			t.Fatalf("%s not audited", action)
		}
	}
}
