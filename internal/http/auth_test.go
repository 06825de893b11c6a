package handlers_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"vendorhub/internal/repos"
	"vendorhub/internal/storage"
)

// SR-AUTH-01: seeded passwords are stored as bcrypt hashes
func TestSeededPasswordsAreHashed(t *testing.T) {
	env := newTestApp(t)
	var hashes []string
	if err := env.db.Select(&hashes, `SELECT password_hash FROM credentials`); err != nil {
		t.Fatal(err)
	}
	if len(hashes) == 0 {
		t.Fatal("no seeded credentials")
	}
	for _, h := range hashes {
		if h == repos.SeedPassword || !strings.HasPrefix(h, "$2") {
			t.Fatalf("credential not hashed: %q", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte(repos.SeedPassword)); err != nil {
			t.Fatalf("seed hash does not verify: %v", err)
		}
	}
}

// SR-AUTH-02: generic failure message, no account enumeration
func TestLoginFailureIsGeneric(t *testing.T) {
	env := newTestApp(t)
	tok := env.csrfToken(t)

	for _, email := range []string{"vendor@vendorhub.test", "nobody@vendorhub.test"} {
		resp := env.postForm(t, "/login", "", tok, url.Values{"email": {email}, "password": {"wrong-Passw0rd!"}})
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", email, resp.StatusCode)
		}
		if body := bodyString(t, resp); !strings.Contains(body, "Invalid email or password") {
			t.Fatalf("%s: generic message missing", email)
		}
	}
}

// SR-AUTH-03: landing page follows role and approval
func TestLoginLandsByApproval(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"vendor@vendorhub.test", "/dashboard"},
		{"pending@vendorhub.test", "/waiting-approval"},
		{"admin@vendorhub.test", "/admin"},
	}
	env := newTestApp(t)
	tok := env.csrfToken(t)
	for _, tc := range cases {
		resp := env.postForm(t, "/login", "", tok, url.Values{"email": {tc.email}, "password": {repos.SeedPassword}})
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("%s: expected 302, got %d", tc.email, resp.StatusCode)
		}
		if got := location(resp); got != tc.want {
			t.Fatalf("%s: expected redirect to %s, got %s", tc.email, tc.want, got)
		}
		if extractCookie(resp, "sid") == "" {
			t.Fatalf("%s: session cookie not set", tc.email)
		}
	}
}

// SR-AUTH-04: login attempts are throttled
func TestLoginThrottled(t *testing.T) {
	env := newTestApp(t)
	tok := env.csrfToken(t)
	last := 0
	for i := 0; i < 6; i++ {
		resp := env.postForm(t, "/login", "", tok, url.Values{"email": {"vendor@vendorhub.test"}, "password": {"nope"}})
		last = resp.StatusCode
	}
	if last != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated attempts, got %d", last)
	}
}

func TestLogoutUnbindsSession(t *testing.T) {
	env := newTestApp(t)
	sid := env.signIn(t, "u-vendor")
	tok := env.csrfToken(t)

	resp := env.postForm(t, "/logout", sid, tok, url.Values{})
	if resp.StatusCode != fiber.StatusFound || location(resp) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %s", resp.StatusCode, location(resp))
	}
	resp = env.get(t, "/dashboard", sid)
	if location(resp) != "/login" {
		t.Fatalf("session still valid after logout: %s", location(resp))
	}
}

func signupFields(email string) map[string][]string {
	return map[string][]string{
		"name":       {"Asha Traders"},
		"email":      {email},
		"phone":      {"+91 98765 43210"},
		"password":   {"Str0ng!pass"},
		"terms":      {"on"},
		"optional_1": {"Asha Traders LLP"},
	}
}

var businessDoc = testFile{field: "document", name: "licence.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 test")}

func TestSignupRequiresTermsBeforeDocument(t *testing.T) {
	env := newTestApp(t)
	tok := env.csrfToken(t)

	fields := signupFields("asha@example.com")
	delete(fields, "terms")
	resp := env.postMultipart(t, "/signup", "", tok, fields, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := bodyString(t, resp); !strings.Contains(body, "terms and conditions") {
		t.Fatal("terms message missing")
	}

	resp = env.postMultipart(t, "/signup", "", tok, signupFields("asha@example.com"), nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := bodyString(t, resp); !strings.Contains(body, "business document") {
		t.Fatal("document message missing")
	}

	var n int
	_ = env.db.Get(&n, `SELECT COUNT(*) FROM users WHERE email = ?`, "asha@example.com")
	if n != 0 {
		t.Fatal("account created despite validation failure")
	}
}

func TestSignupCreatesWaitingVendor(t *testing.T) {
	env := newTestApp(t)
	tok := env.csrfToken(t)

	var entries []logEntry
	var sid string
	entries = captureLogs(t, func() {
		resp := env.postMultipart(t, "/signup", "", tok, signupFields("asha@example.com"), []testFile{businessDoc})
		if resp.StatusCode != fiber.StatusFound {
			t.Fatalf("expected 302, got %d: %s", resp.StatusCode, bodyString(t, resp))
		}
		if got := location(resp); got != "/waiting-approval" {
			t.Fatalf("expected /waiting-approval, got %s", got)
		}
		sid = extractCookie(resp, "sid")
	})
	if _, ok := findLog(entries, "auth.signup.success"); !ok {
		t.Fatal("auth.signup.success not logged")
	}

	var row struct {
		ID       string `db:"user_id"`
		Role     string `db:"user_role"`
		Approved string `db:"approved"`
		FileURL  string `db:"file_url"`
	}
	if err := env.db.Get(&row, `SELECT user_id, user_role, approved, file_url FROM users WHERE email = ?`, "asha@example.com"); err != nil {
		t.Fatalf("user row: %v", err)
	}
	if row.Role != "vendor" || row.Approved != "Waiting" {
		t.Fatalf("unexpected role/approval: %+v", row)
	}
	prefix := "/media/" + storage.BucketVendorDocuments + "/"
	if !strings.HasPrefix(row.FileURL, prefix+row.ID+"/") || !strings.HasSuffix(row.FileURL, ".pdf") {
		t.Fatalf("unexpected document url %q", row.FileURL)
	}
	ok, err := env.store.Exists(context.Background(), storage.BucketVendorDocuments, strings.TrimPrefix(row.FileURL, prefix))
	if err != nil || !ok {
		t.Fatalf("document not stored: %v", err)
	}

	// The new session lands in the waiting room, not the dashboard.
	if sid == "" {
		t.Fatal("signup did not set a session")
	}
	if got := location(env.get(t, "/dashboard", sid)); got != "/waiting-approval" {
		t.Fatalf("waiting vendor reached dashboard: %s", got)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestApp(t)
	tok := env.csrfToken(t)
	resp := env.postMultipart(t, "/signup", "", tok, signupFields("vendor@vendorhub.test"), []testFile{businessDoc})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if body := bodyString(t, resp); !strings.Contains(body, "already exists") {
		t.Fatal("duplicate message missing")
	}
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	env := newTestApp(t)
	tok := env.csrfToken(t)
	fields := signupFields("weak@example.com")
	fields["password"] = []string{"password"}
	resp := env.postMultipart(t, "/signup", "", tok, fields, []testFile{businessDoc})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
