// Package views holds the html templates and public assets, compiled into the binary.
package views

import (
  "embed"
  "html/template"
  "io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed public
var public embed.FS

func Templates() (*template.Template, error) {
  return template.New("").ParseFS(templates, "templates/*.html")
}

func Public() (fs.FS, error) {
  return fs.Sub(public, "public")
}
