package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

// SR-AUTHZ-01: dashboard routes pass only approved vendors
func TestDashboardGate(t *testing.T) {
	cases := []struct {
		name     string
		userID   string
		status   int
		redirect string
	}{
		{"anonymous", "", fiber.StatusFound, "/login"},
		{"waiting vendor", "u-pending", fiber.StatusFound, "/waiting-approval"},
		{"rejected vendor", "u-rejected", fiber.StatusFound, "/waiting-approval"},
		{"shopper", "u-shopper", fiber.StatusFound, "/not-authorized"},
		{"admin", "u-admin", fiber.StatusFound, "/not-authorized"},
		{"accepted vendor", "u-vendor", fiber.StatusOK, ""},
	}
	env := newTestApp(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sid := ""
			if tc.userID != "" {
				sid = env.signIn(t, tc.userID)
			}
			for _, path := range []string{"/dashboard", "/dashboard/products", "/dashboard/product-upload"} {
				resp := env.get(t, path, sid)
				if resp.StatusCode != tc.status {
					t.Fatalf("%s: expected %d, got %d", path, tc.status, resp.StatusCode)
				}
				if got := location(resp); got != tc.redirect {
					t.Fatalf("%s: expected redirect %q, got %q", path, tc.redirect, got)
				}
			}
		})
	}
}

func TestUnknownSessionRedirectsToLogin(t *testing.T) {
	env := newTestApp(t)
	resp := env.get(t, "/dashboard", "forged-session")
	if resp.StatusCode != fiber.StatusFound || location(resp) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %s", resp.StatusCode, location(resp))
	}
}

// SR-AUTHZ-02: admin area is role gated
func TestAdminAreaRequiresAdmin(t *testing.T) {
	env := newTestApp(t)

	resp := env.get(t, "/admin", env.signIn(t, "u-admin"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin: expected 200, got %d", resp.StatusCode)
	}

	var entries []logEntry
	entries = captureLogs(t, func() {
		resp = env.get(t, "/admin", env.signIn(t, "u-vendor"))
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("vendor: expected 403, got %d", resp.StatusCode)
	}
	e, ok := findLog(entries, "access.denied.admin")
	if !ok {
		t.Fatal("access.denied.admin not logged")
	}
	if e.Level != "warn" || e.UserID != "u-vendor" {
		t.Fatalf("unexpected log entry: %+v", e)
	}
}

func TestGateDenialIsLogged(t *testing.T) {
	env := newTestApp(t)
	sid := env.signIn(t, "u-pending")
	entries := captureLogs(t, func() {
		env.get(t, "/dashboard", sid)
	})
	e, ok := findLog(entries, "access.denied.gate")
	if !ok {
		t.Fatal("access.denied.gate not logged")
	}
	if e.Fields["reason"] != "not_approved" {
		t.Fatalf("unexpected reason: %v", e.Fields["reason"])
	}
}

func TestWaitingRoomRequiresSession(t *testing.T) {
	env := newTestApp(t)
	if got := location(env.get(t, "/waiting-approval", "")); got != "/login" {
		t.Fatalf("expected /login, got %q", got)
	}
	resp := env.get(t, "/waiting-approval", env.signIn(t, "u-pending"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
