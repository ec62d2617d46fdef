package main

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimiolaniyan/gomotors/auth"
	"github.com/jimiolaniyan/gomotors/config"
)

const secret = "route-test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.JWTSecret = secret
	cfg.BcryptCost = 4
	cfg.PublicDir = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.PublicDir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.PublicDir, "css", "styles.css"), []byte("body{}"), 0o644))

	log, _ := test.NewNullLogger()
	st, err := openStores(t.Context(), cfg, log)
	require.NoError(t, err)

	h, err := newServer(cfg, st, log)
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// noRedirects stops at the first response so redirects can be asserted.
func noRedirects(c *http.Client) *http.Client {
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func body(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func withToken(t *testing.T, srv *httptest.Server, c *http.Client, role auth.Role) {
	t.Helper()
	token, err := auth.NewTokenCodec([]byte(secret), config.DefaultConfig().TokenTTL).
		Issue(auth.Claim{ID: 1, FirstName: "Ada", Email: "ada@x.com", Role: role})
	require.NoError(t, err)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c.Jar.SetCookies(u, []*http.Cookie{{Name: auth.TokenCookieName, Value: token, Path: "/"}})
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{path: "/", status: http.StatusOK, contains: ">Sedan</a>"},
		{path: "/inv/all", status: http.StatusOK, contains: "Batmobile"},
		{path: "/inv/type/1", status: http.StatusOK, contains: "Custom vehicles"},
		{path: "/inv/detail/1", status: http.StatusOK, contains: "2007 Batmobile Custom"},
		{path: "/inv/search", status: http.StatusOK},
		{path: "/account/login", status: http.StatusOK},
		{path: "/account/register", status: http.StatusOK},
		{path: "/no/such/page", status: http.StatusNotFound, contains: "lost that page"},
		{path: "/error/trigger", status: http.StatusInternalServerError, contains: "Oh no! There was a crash."},
		{path: "/css/styles.css", status: http.StatusOK, contains: "body{}"},
	}

	for _, tt := range tests {
		res, err := c.Get(srv.URL + tt.path)
		require.NoError(t, err, tt.path)

		b := body(t, res)
		assert.Equal(t, tt.status, res.StatusCode, tt.path)
		assert.Contains(t, b, tt.contains, tt.path)
	}
}

func TestGates(t *testing.T) {
	tests := []struct {
		name     string
		role     *auth.Role
		path     string
		wantCode int
		wantLoc  string
	}{
		{name: "anonymous management", path: "/inv", wantCode: http.StatusSeeOther, wantLoc: auth.LoginPath},
		{name: "customer management", role: roleOf(auth.Customer), path: "/inv/add-vehicle", wantCode: http.StatusSeeOther, wantLoc: auth.LoginPath},
		{name: "employee management", role: roleOf(auth.Employee), path: "/inv", wantCode: http.StatusOK},
		{name: "admin add classification", role: roleOf(auth.Admin), path: "/inv/add-classification", wantCode: http.StatusOK},
		{name: "anonymous account", path: "/account", wantCode: http.StatusSeeOther, wantLoc: auth.LoginPath},
		{name: "customer account", role: roleOf(auth.Customer), path: "/account", wantCode: http.StatusOK},
		{name: "anonymous logout", path: "/account/logout", wantCode: http.StatusSeeOther, wantLoc: auth.LoginPath},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := noRedirects(newClient(t))
			if tt.role != nil {
				withToken(t, srv, c, *tt.role)
			}

			res, err := c.Get(srv.URL + tt.path)
			require.NoError(t, err)
			res.Body.Close()

			assert.Equal(t, tt.wantCode, res.StatusCode)
			assert.Equal(t, tt.wantLoc, res.Header.Get("Location"))
		})
	}
}

func roleOf(r auth.Role) *auth.Role { return &r }

func TestMetricsUseRoutePatterns(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	for _, path := range []string{"/inv/detail/1", "/inv/detail/2"} {
		res, err := c.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
	}

	res, err := c.Get(srv.URL + "/metrics")
	require.NoError(t, err)

	assert.Contains(t, body(t, res), `gomotors_http_requests_total{method="GET",route="/inv/detail/:invId",status="200"} 2`)
}

func TestAccountJourney(t *testing.T) {
	Convey("Given a visitor with a browser", t, func() {
		srv := newTestServer(t)
		c := newClient(t)
		post := func(path string, form url.Values) (*http.Response, error) {
			return c.PostForm(srv.URL+path, form)
		}

		Convey("When they register", func() {
			res, err := post("/account/register", url.Values{
				"account_firstname": {"Ada"},
				"account_lastname":  {"Lovelace"},
				"account_email":     {"ada@example.com"},
				"account_password":  {"Str0ng!Pass"},
			})
			So(err, ShouldBeNil)

			Convey("Then they land on the login page with the registration notice", func() {
				So(res.Request.URL.Path, ShouldEqual, auth.LoginPath)
				So(body(t, res), ShouldContainSubstring, "Congratulations, you are registered. Please log in.")
			})

			Convey("And when they log in", func() {
				res.Body.Close()
				res, err := post(auth.LoginPath, url.Values{
					"account_email":    {"ada@example.com"},
					"account_password": {"Str0ng!Pass"},
				})
				So(err, ShouldBeNil)

				Convey("Then the account page greets them", func() {
					So(res.StatusCode, ShouldEqual, http.StatusOK)
					So(res.Request.URL.Path, ShouldEqual, "/account")
					So(body(t, res), ShouldContainSubstring, "Welcome Ada")
				})

				Convey("And when they log out the account page is closed again", func() {
					res.Body.Close()
					res, err := c.Get(srv.URL + "/account/logout")
					So(err, ShouldBeNil)
					So(res.Request.URL.Path, ShouldEqual, "/")
					So(body(t, res), ShouldContainSubstring, "You have been logged out.")

					res, err = noRedirects(c).Get(srv.URL + "/account")
					So(err, ShouldBeNil)
					res.Body.Close()
					So(res.StatusCode, ShouldEqual, http.StatusSeeOther)
				})
			})
		})

		Convey("When they log in with an unknown email", func() {
			res, err := post(auth.LoginPath, url.Values{
				"account_email":    {"nobody@example.com"},
				"account_password": {"Str0ng!Pass"},
			})
			So(err, ShouldBeNil)

			Convey("Then the form is shown again with a credentials notice", func() {
				So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(strings.Contains(body(t, res), "Please check your credentials and try again."), ShouldBeTrue)
			})
		})
	})
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "gomotors version dev\n", out.String())
}
