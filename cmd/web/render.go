package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/handlers"
	mw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/nav"
	"ecocycle.app/storefront/internal/observability"
)

// templateSet holds one clone of the shared layout per page plus the shared
// set itself for fragments.
type templateSet struct {
	shared *template.Template
	pages  map[string]*template.Template
}

func (a *app) funcMap() template.FuncMap {
	return template.FuncMap{
		"now":         time.Now,
		"placeholder": a.resolver.PlaceholderURL,
		"resolveImage": func(ref string) string {
			return a.resolver.Resolve(ref)
		},
		"dict": dict,
		"badgeClass": func(tone string) string {
			if tone == "" {
				tone = "gray"
			}
			return "badge badge-" + tone
		},
	}
}

// dict builds a map from alternating keys and values for passing several
// arguments to a nested template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

// parseTemplates discovers every .tmpl under dir. Files under pages/ each get
// their own clone of the layouts and partials so they can all define "content".
func parseTemplates(dir string, funcs template.FuncMap) (*templateSet, error) {
	var shared, pages []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) == "pages" {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(shared) == 0 || len(pages) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}

	base, err := template.New("_root").Funcs(funcs).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	set := &templateSet{shared: base, pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		set.pages[strings.TrimSuffix(filepath.Base(page), ".tmpl")] = clone
	}
	return set, nil
}

func (a *app) loadTemplates() (*templateSet, error) {
	if a.devMode || a.templates == nil {
		return parseTemplates(a.templatesDir, a.funcMap())
	}
	return a.templates, nil
}

// newPage fills the fields every page shares.
func (a *app) newPage(r *http.Request, title string) handlers.PageData {
	sess := mw.GetSession(r)
	user := sess.User()
	if !sess.Authenticated() {
		user = nil
	}
	return handlers.PageData{
		Title:       title,
		Lang:        mw.Lang(r),
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path, user != nil),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path, ""),
		User:        user,
		CSRFToken:   mw.CSRFToken(r),
		Flash:       sess.PopFlash(),
		Placeholder: a.resolver.PlaceholderURL(),
		Environment: a.environment,
		Debug:       !a.production,
	}
}

// renderPage executes the base layout with page's content block. The body is
// buffered so template failures never produce half-written pages.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, vm handlers.PageData) {
	set, err := a.loadTemplates()
	if err != nil {
		a.templateFailure(w, r, err)
		return
	}
	t, ok := set.pages[page]
	if !ok {
		a.templateFailure(w, r, fmt.Errorf("page template %q not found", page))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", vm); err != nil {
		a.templateFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderTemplate executes a named shared template, used for htmx fragments.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	set, err := a.loadTemplates()
	if err != nil {
		a.templateFailure(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := set.shared.ExecuteTemplate(&buf, name, data); err != nil {
		a.templateFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *app) templateFailure(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("template render failed", zap.Error(err))
	http.Error(w, "template error", http.StatusInternalServerError)
}

// renderBackendError shows the inline error panel for a failed backend call.
// Rejected tokens are dropped from the session.
func (a *app) renderBackendError(w http.ResponseWriter, r *http.Request, vm handlers.PageData, err error) {
	panel := handlers.NewErrorPanel(err, r.URL.RequestURI(), mw.LoginURL(r))
	if panel.Status == http.StatusUnauthorized {
		mw.GetSession(r).SignOut()
		vm.User = nil
		vm.Nav = nav.Build(r.URL.Path, false)
	}
	vm.Error = panel
	if vm.Title == "" {
		vm.Title = panel.Title
	}
	a.renderPage(w, r, panel.Status, "error", vm)
}

func (a *app) renderNotFound(w http.ResponseWriter, r *http.Request) {
	vm := a.newPage(r, "Not found")
	vm.Error = &handlers.ErrorPanel{
		Status:    http.StatusNotFound,
		Title:     "Page not found",
		Message:   "The page you asked for does not exist.",
		ActionURL: "/products",
		Action:    "Back to products",
	}
	a.renderPage(w, r, http.StatusNotFound, "error", vm)
}
