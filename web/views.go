// Package web renders the site's pages and carries the HTTP plumbing shared
// by every handler: request logging, panic recovery and metrics.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jimiolaniyan/gomotors/session"
	"github.com/jimiolaniyan/gomotors/validation"
)

//go:embed templates
var templateFS embed.FS

// NavLink is one classification entry in the site navigation.
type NavLink struct {
	ID   int
	Name string
}

// NavSource lists the classifications shown in the navigation bar.
type NavSource interface {
	NavLinks(ctx context.Context) ([]NavLink, error)
}

// ViewerFunc reports the current viewer for the page header.
type ViewerFunc func(ctx context.Context) (viewer interface{}, loggedIn bool)

// Page is the data bag handed to a template.
type Page struct {
	Title string
	// Message is shown above the content. When empty, the session's pending
	// flash message is shown instead.
	Message string
	Errors  validation.Outcome
	Form    map[string]string
	Content interface{}

	Nav      []NavLink
	LoggedIn bool
	Viewer   interface{}
}

// Value returns a previously submitted form value.
func (p Page) Value(field string) string {
	return p.Form[field]
}

// Renderer is what handlers need from Views.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page)
	Error(w http.ResponseWriter, r *http.Request, err error)
	NotFound(w http.ResponseWriter, r *http.Request)
}

type Views struct {
	pages  map[string]*template.Template
	nav    NavSource
	viewer ViewerFunc
	log    logrus.FieldLogger
}

// NewViews parses the embedded templates. Every page template is combined
// with the shared layout and addressed by its path without extension, for
// example "inventory/detail".
func NewViews(nav NavSource, viewer ViewerFunc, log logrus.FieldLogger) (*Views, error) {
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", "templates/partials.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := map[string]*template.Template{}
	err = fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || p == "templates/layout.tmpl" || p == "templates/partials.tmpl" {
			return err
		}

		t, err := template.Must(layout.Clone()).ParseFS(templateFS, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), path.Ext(p))
		pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Views{pages: pages, nav: nav, viewer: viewer, log: log}, nil
}

// Render writes the named page with status.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	ctx := r.Context()

	links, err := v.nav.NavLinks(ctx)
	if err != nil {
		v.Error(w, r, fmt.Errorf("build navigation: %w", err))
		return
	}
	p.Nav = links
	v.fill(ctx, &p)
	v.write(w, r, status, name, p)
}

// Error logs err and renders the generic server error page.
func (v *Views) Error(w http.ResponseWriter, r *http.Request, err error) {
	v.log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")

	p := Page{Title: "Server Error", Message: "Oh no! There was a crash. Maybe try a different route?"}
	if links, navErr := v.nav.NavLinks(r.Context()); navErr == nil {
		p.Nav = links
	}
	v.fill(r.Context(), &p)
	v.write(w, r, http.StatusInternalServerError, "error", p)
}

// NotFound renders the 404 page.
func (v *Views) NotFound(w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusNotFound, "error", Page{
		Title:   "404",
		Message: "Sorry, we appear to have lost that page.",
	})
}

func (v *Views) fill(ctx context.Context, p *Page) {
	if v.viewer != nil {
		p.Viewer, p.LoggedIn = v.viewer(ctx)
	}
	if p.Message == "" {
		p.Message = session.Consume(ctx)
	}
}

func (v *Views) write(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := v.pages[name]
	if !ok {
		v.log.WithField("view", name).Error("unknown view")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		v.log.WithError(err).WithFields(logrus.Fields{"view": name, "path": r.URL.Path}).Error("template failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
