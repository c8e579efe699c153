package web

import (
	"embed"
	"html/template"
	"time"

	"book-catalog/internal/shared/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format(validate.DateLayout)
	},
	"optDate": func(t *time.Time) string {
		if t == nil {
			return "unknown"
		}
		return t.Format(validate.DateLayout)
	},
}

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}
