package rest

import (
	"embed"
	"html/template"

	"github.com/dfryer1193/quill/blog/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	// safe marks a post body as trusted HTML; bodies are only ever written by admins
	"safe": func(s string) template.HTML {
		return template.HTML(s)
	},
	"link": func(title string) string {
		return domain.BlogPath(domain.Slugify(title))
	},
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
