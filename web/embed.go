// Package web bundles the page templates and static assets into the binary.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template. Each file is registered under its base name
// ("index.html", "fragment.html"); shared blocks are named with {{define}}.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for start-up code.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Static serves the files under static/ (app.js, styles.css).
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
