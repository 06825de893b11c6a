package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"vendorhub/internal/config"
	"vendorhub/internal/http/handlers"
	applog "vendorhub/internal/log"
	"vendorhub/internal/repos"
	"vendorhub/internal/storage"
)

type testEnv struct {
	app   *fiber.App
	db    *sqlx.DB
	store *storage.Store
	deps  *handlers.Deps
}

// newTestApp wires the real routes over an in-memory database and object store.
func newTestApp(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.ApprovalPollInterval = 10 * time.Millisecond
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := storage.NewMemory("/media")
	t.Cleanup(func() { _ = store.Close(); _ = db.Close() })

	deps := handlers.NewDeps(db, cfg, store)
	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, BodyLimit: 1 << 20, ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Use(handlers.AttachUser(deps.Auth))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax", ContextKey: "csrf", ErrorHandler: handlers.CSRFFailed}))
	deps.Mount(app)
	return &testEnv{app: app, db: db, store: store, deps: deps}
}

// signIn binds a fresh session to userID, bypassing the throttled login route.
func (e *testEnv) signIn(t *testing.T, userID string) string {
	t.Helper()
	sid := "sid-" + userID
	if err := e.deps.Auth.Sessions.Bind(context.Background(), sid, userID, time.Now().Unix()); err != nil {
		t.Fatalf("bind session: %v", err)
	}
	return sid
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (e *testEnv) csrfToken(t *testing.T) string {
	t.Helper()
	resp, err := e.app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	sid         string
	csrf        string
}

func (e *testEnv) do(t *testing.T, r request) *http.Response {
	t.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: r.sid})
	}
	if r.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: r.csrf})
	}
	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", r.method, r.path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path, sid string) *http.Response {
	t.Helper()
	return e.do(t, request{method: "GET", path: path, sid: sid})
}

func (e *testEnv) postForm(t *testing.T, path, sid, tok string, vals url.Values) *http.Response {
	t.Helper()
	vals.Set("csrf", tok)
	return e.do(t, request{
		method:      "POST",
		path:        path,
		body:        strings.NewReader(vals.Encode()),
		contentType: "application/x-www-form-urlencoded",
		sid:         sid,
		csrf:        tok,
	})
}

type testFile struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string][]string, files []testFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func (e *testEnv) postMultipart(t *testing.T, path, sid, tok string, fields map[string][]string, files []testFile) *http.Response {
	t.Helper()
	fields["csrf"] = []string{tok}
	body, ct := multipartBody(t, fields, files)
	return e.do(t, request{method: "POST", path: path, body: body, contentType: ct, sid: sid, csrf: tok})
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func location(resp *http.Response) string { return resp.Header.Get("Location") }

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs redirects the structured logger while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	restore := applog.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	fn()
	restore()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
