package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/demo"
	"github.com/JonMunkholm/datagrid/internal/metrics"
	"github.com/JonMunkholm/datagrid/internal/source"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Table:  config.TableConfig{SearchDebounce: 300 * time.Millisecond},
		Export: config.ExportConfig{MaxConcurrent: 2, MaxWaitTime: time.Second},
		Session: config.SessionConfig{
			TTL:        time.Minute,
			CookieName: "datagrid_session",
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

// newTestServer registers the demo tables and returns a server over them.
func newTestServer(t *testing.T, cfg *config.Config) (*Server, *source.Slice[demo.Person]) {
	t.Helper()
	core.Clear()
	people := demo.Register(demo.Options{Rows: 40, Seed: 7, PageSize: 10})
	s := NewServer(cfg, metrics.New("test"))
	t.Cleanup(func() {
		s.sessions.Close()
		if s.limiter != nil {
			s.limiter.stop()
		}
		core.Clear()
	})
	return s, people
}

// client replays the session cookie like a browser.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, s *Server) *client {
	return &client{t: t, h: s.Router()}
}

func (c *client) do(method, path string, form url.Values, header ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func (c *client) get(path string, header ...string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil, header...)
}

func (c *client) htmx(method, path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return c.do(method, path, form, "HX-Request", "true")
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := newClient(t, s).get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "People (virtualized)")
	assert.Contains(t, body, `href="/tables/people-paged"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var got healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 3, got.Tables)
	assert.Equal(t, 1, got.Sessions)
	assert.Equal(t, 2, got.Exports.MaxConcurrent)
}

func TestTablePage_StartsSession(t *testing.T) {
	s, people := newTestServer(t, testConfig())
	c := newClient(t, s)

	rec := c.get("/tables/people")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, c.cookies, 1)
	assert.Equal(t, "datagrid_session", c.cookies[0].Name)
	assert.True(t, c.cookies[0].HttpOnly)

	body := rec.Body.String()
	assert.Contains(t, body, `id="grid-people"`)
	assert.Contains(t, body, templ.EscapeString(people.Rows()[0].LastName))
	assert.Contains(t, body, "Page 1 of 4")
	assert.Contains(t, body, "40 row(s)")

	// The same session is reused
	c.get("/tables/people/grid")
	assert.Equal(t, 1, s.sessions.Len())
}

func TestUnknownTable(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := newClient(t, s).get("/tables/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

func TestStateChange_RequiresSession(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := newClient(t, s).htmx(http.MethodPost, "/tables/people/global", url.Values{"q": {"x"}})

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "#modal", rec.Header().Get("HX-Retarget"))
	assert.Equal(t, 0, s.sessions.Len())
}

func TestGlobalFilter(t *testing.T) {
	s, people := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	name := people.Rows()[3].LastName
	rec := c.htmx(http.MethodPost, "/tables/people/global", url.Values{"q": {name}})
	require.Equal(t, http.StatusOK, rec.Code)
	escaped := templ.EscapeString(name)
	assert.Contains(t, rec.Body.String(), `value="`+escaped+`"`)
	assert.Contains(t, rec.Body.String(), "Reset")

	// Filter state survives in the session
	assert.Contains(t, c.get("/tables/people/grid").Body.String(), `value="`+escaped+`"`)

	rec = c.htmx(http.MethodPost, "/tables/people/global", url.Values{"q": {""}})
	assert.Contains(t, rec.Body.String(), "40 row(s)")
}

func TestColumnFilter(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodPost, "/tables/people/filter/age", url.Values{"min": {"500"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No results.")
	assert.Contains(t, body, `class="floating-bar"`)
	assert.Contains(t, body, "Clear filters")

	rec = c.htmx(http.MethodPost, "/tables/people/filter/age/clear", nil)
	assert.Contains(t, rec.Body.String(), "40 row(s)")

	rec = c.htmx(http.MethodPost, "/tables/people/filter/age", url.Values{"min": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.htmx(http.MethodPost, "/tables/people/filter/nope", url.Values{"value": {"x"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSortAndPage(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodPost, "/tables/people/sort/firstName", url.Values{"multi": {"false"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&#9650;")

	rec = c.htmx(http.MethodPost, "/tables/people/sort/age", url.Values{"multi": {"true"}})
	assert.Contains(t, rec.Body.String(), "<sup>2</sup>")

	rec = c.htmx(http.MethodPost, "/tables/people/sort/address", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "address cannot be sorted")

	rec = c.htmx(http.MethodPost, "/tables/people/page", url.Values{"index": {"2"}})
	assert.Contains(t, rec.Body.String(), "Page 3 of 4")

	rec = c.htmx(http.MethodPost, "/tables/people/page", url.Values{"size": {"20"}})
	assert.Contains(t, rec.Body.String(), "of 2</span>")

	rec = c.htmx(http.MethodPost, "/tables/people/page", url.Values{"size": {"-1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestColumnLayout(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodPost, "/tables/people/pin/status", url.Values{"side": {"left"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, regexp.MustCompile(`<th class="pinned[^"]*"[^>]*data-col="status"`), rec.Body.String())

	rec = c.htmx(http.MethodPost, "/tables/people/visibility/address", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `data-col="address"`)

	rec = c.htmx(http.MethodPost, "/tables/people/move", url.Values{"active": {"age"}, "over": {"firstName"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, `data-col="age"`), strings.Index(body, `data-col="firstName"`))
}

func TestColumnOrder(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodPost, "/tables/people/order", url.Values{"col": {"status", "age"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, `data-col="status"`), strings.Index(body, `data-col="age"`))
	assert.Less(t, strings.Index(body, `data-col="age"`), strings.Index(body, `data-col="firstName"`))

	rec = c.htmx(http.MethodPost, "/tables/people/order", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Less(t, strings.Index(body, `data-col="firstName"`), strings.Index(body, `data-col="status"`))

	rec = c.htmx(http.MethodPost, "/tables/people/order", url.Values{"col": {"nope"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "#modal", rec.Header().Get("HX-Retarget"))
}

func TestSelectionAndDelete(t *testing.T) {
	s, people := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodPost, "/tables/people/selection-mode", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0 of 40 row(s) selected.")

	rec = c.htmx(http.MethodPost, "/tables/people/select-page", url.Values{"selected": {"true"}})
	assert.Contains(t, rec.Body.String(), "10 of 40 row(s) selected.")
	assert.Contains(t, rec.Body.String(), "Delete selected")

	rec = c.htmx(http.MethodPost, "/tables/people/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := regexp.MustCompile(`/delete/([0-9a-f-]{36})`).FindStringSubmatch(rec.Body.String())
	require.Len(t, token, 2)
	assert.Contains(t, rec.Body.String(), "all selected rows")

	rec = c.htmx(http.MethodPost, "/tables/people/delete/"+token[1], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0 of 30 row(s) selected.")
	assert.Equal(t, 30, people.Len())

	// Tokens are single use
	rec = c.htmx(http.MethodPost, "/tables/people/delete/"+token[1], nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_Cancel(t *testing.T) {
	s, people := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	id := people.Rows()[0].ID
	rec := c.htmx(http.MethodGet, "/tables/people/menu/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edit")
	assert.Contains(t, rec.Body.String(), "Log to server")

	rec = c.htmx(http.MethodPost, "/tables/people/delete", url.Values{"row": {id}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "the selected row")
	token := regexp.MustCompile(`/delete/([0-9a-f-]{36})`).FindStringSubmatch(rec.Body.String())
	require.Len(t, token, 2)

	rec = c.htmx(http.MethodDelete, "/tables/people/delete/"+token[1], nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 40, people.Len())

	rec = c.htmx(http.MethodPost, "/tables/people/delete/"+token[1], nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRowActions(t *testing.T) {
	s, people := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")
	id := people.Rows()[1].ID

	rec := c.htmx(http.MethodPost, "/tables/people/click/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.htmx(http.MethodPost, "/tables/people/action/"+id+"/log", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.htmx(http.MethodPost, "/tables/people/action/"+id+"/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.htmx(http.MethodPost, "/tables/people/click/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForms(t *testing.T) {
	s, people := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodGet, "/tables/people/form/add", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add person")
	assert.Contains(t, rec.Body.String(), `name="firstName"`)

	rec = c.htmx(http.MethodPost, "/tables/people/rows", url.Values{"firstName": {"A"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)
	assert.Contains(t, rec.Body.String(), `value="A"`, "submitted values are kept")
	assert.Equal(t, 40, people.Len())

	valid := url.Values{
		"firstName":  {"Ada"},
		"lastName":   {"Lovelace"},
		"gender":     {"female"},
		"jobType":    {"Analyst"},
		"locality":   {"Spain"},
		"lastUpdate": {"2025-06-01"},
		"status":     {demo.StatusSingle},
	}
	rec = c.htmx(http.MethodPost, "/tables/people/rows", valid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#grid-people", rec.Header().Get("HX-Retarget"))
	assert.Contains(t, rec.Body.String(), "41 row(s)")
	assert.Contains(t, rec.Body.String(), `hx-swap-oob="true"`)
	assert.Equal(t, 41, people.Len())

	id := people.Rows()[0].ID
	rec = c.htmx(http.MethodGet, "/tables/people/form/edit/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Edit person")
	assert.Contains(t, rec.Body.String(), templ.EscapeString(people.Rows()[0].FirstName))

	valid.Set("firstName", "Grace")
	rec = c.htmx(http.MethodPost, "/tables/people/rows/"+id, valid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grace", people.Rows()[0].FirstName)
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.get("/tables/people/export?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=exampleExport.csv`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 41)
	assert.Contains(t, lines[0], "First Name")

	rec = c.get("/tables/people/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "exampleExport.xlsx")
	assert.Equal(t, "PK", rec.Body.String()[:2])

	rec = c.get("/tables/people/export?format=pdf", "Accept", "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing is selected yet
	rec = c.get("/tables/people/export?scope=selected", "Accept", "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Code)
}

func TestExport_HTMX(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.do(http.MethodGet, "/tables/people/export?format=csv&scope=all", nil, "HX-Request", "true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/tables/people/export?format=csv&scope=all", rec.Header().Get("HX-Redirect"))
	assert.Empty(t, rec.Body.String())

	// Nothing is selected yet
	rec = c.do(http.MethodGet, "/tables/people/export?format=csv&scope=selected", nil, "HX-Request", "true")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "#modal", rec.Header().Get("HX-Retarget"))
	assert.Empty(t, rec.Header().Get("HX-Redirect"))
	assert.Contains(t, rec.Body.String(), `role="alert"`)

	rec = c.do(http.MethodGet, "/tables/people/export?format=pdf", nil, "HX-Request", "true")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "#modal", rec.Header().Get("HX-Retarget"))
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

func TestExportColumns(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)
	c.get("/tables/people")

	rec := c.htmx(http.MethodPost, "/tables/people/export/columns/age", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-post="/tables/people/export/columns/age"`)

	rec = c.get("/tables/people/export?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	header, _, _ := strings.Cut(rec.Body.String(), "\n")
	assert.Contains(t, header, "First Name")
	assert.NotContains(t, header, "Age")

	c.htmx(http.MethodPost, "/tables/people/export/columns/age", nil)
	rec = c.get("/tables/people/export?format=csv")
	header, _, _ = strings.Cut(rec.Body.String(), "\n")
	assert.Contains(t, header, "Age")

	rec = c.htmx(http.MethodPost, "/tables/people/export/columns/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPagedTable_Loads(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)

	rec := c.get("/tables/people-paged")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page 1 of 4")

	rec = c.htmx(http.MethodPost, "/tables/people-paged/page", url.Values{"index": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		body := c.get("/tables/people-paged/grid").Body.String()
		return strings.Contains(body, "Page 2 of 4") && !strings.Contains(body, "load delay:")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestVirtualWindow(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	c := newClient(t, s)

	rec := c.get("/tables/people-virtual")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="scroll-people-virtual"`)
	assert.Contains(t, body, `data-index="0"`)
	assert.NotContains(t, body, `data-index="39"`)

	rec = c.htmx(http.MethodGet, "/tables/people-virtual/window?offset=1000&viewport=200&measured=0:40,1:40", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, `data-index="31"`)
	assert.NotContains(t, body, `data-index="0"`)

	rec = c.htmx(http.MethodGet, "/tables/people/window", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s, _ := newTestServer(t, cfg)
	c := newClient(t, s)

	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)
	rec := c.get("/healthz", "Accept", "application/json")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s, _ := newTestServer(t, cfg)
	c := newClient(t, s)

	assert.Equal(t, http.StatusUnauthorized, c.get("/").Code)
	assert.Equal(t, http.StatusForbidden, c.get("/", "X-API-Key", "wrong").Code)
	assert.Equal(t, http.StatusOK, c.get("/", "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code, "health is not behind auth")
}

func TestSessionStore_Sweep(t *testing.T) {
	store := NewSessionStore(config.SessionConfig{TTL: time.Minute, CookieName: "sid"}, nil)
	defer store.Close()
	now := time.Now()
	store.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	_, err := store.Session(rec, httptest.NewRequest(http.MethodGet, "/", nil), true)
	require.NoError(t, err)
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(cookie)
	_, err = store.Session(httptest.NewRecorder(), req, false)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Session(httptest.NewRecorder(), req, false)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestParseScroll(t *testing.T) {
	ts := &tableState{viewportY: 500, viewportX: 900}
	r := httptest.NewRequest(http.MethodGet, "/?offset=120&xoffset=40&measured=3:50,bad,4:x,7:61", nil)

	sc := parseScroll(r, ts)
	assert.Equal(t, 120, sc.offset)
	assert.Equal(t, 500, sc.viewport)
	assert.Equal(t, 40, sc.xoffset)
	assert.Equal(t, 900, sc.xviewport)
	assert.Equal(t, map[int]int{3: 50, 7: 61}, sc.measured)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrSessionNotFound, http.StatusGone},
		{core.ErrTableNotFound, http.StatusNotFound},
		{core.ErrInvalidFilter, http.StatusBadRequest},
		{core.ErrTooManyExports, http.StatusServiceUnavailable},
		{errRateLimited, http.StatusTooManyRequests},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
