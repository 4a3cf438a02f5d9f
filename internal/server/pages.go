package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"

	"github.com/aithlete/aithlete/internal/models"
)

// pages holds the page templates keyed by file name. Each page is a clone of
// the layout so every page can define its own "content".
type pages struct {
	byName map[string]*template.Template
}

var pageFuncs = template.FuncMap{
	"selected": func(values []string, v string) bool { return slices.Contains(values, v) },
}

// loadPages parses templates/layout.html and every other templates/*.html from webFS.
func loadPages(webFS fs.FS) (*pages, error) {
	base, err := template.New("base").Funcs(pageFuncs).ParseFS(webFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	files, err := fs.Glob(webFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	p := &pages{byName: map[string]*template.Template{}}
	for _, f := range files {
		name := path.Base(f)
		if name == "layout.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(webFS, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		p.byName[name] = clone
	}
	return p, nil
}

// render executes the named page into a buffer before writing the status.
func (p *pages) render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("executing %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

type planPage struct {
	Title    string
	Options  models.FormOptions
	Form     models.PlanRequest
	Error    string
	PlanJSON string
}

type advicePage struct {
	Title    string
	Question string
	Answer   string
	Error    string
}
