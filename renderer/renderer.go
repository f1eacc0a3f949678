// Package renderer renders index results as markdown and exports histories as
// spreadsheets.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/rpi"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates holds the markdown templates, by file name.
var templates, _ = fs.Sub(templatesFS, "templates")

// funcs are the helpers available in every template.
var funcs = template.FuncMap{
	"share": func(f float64) string { return fmt.Sprintf("%.1f%%", 100*f) },
}

// RenderResult renders a basket index Result to a markdown string.
func RenderResult(r *rpi.Result) string {
	partials := map[string]string{
		"result_title":         "result_title.md",
		"result_contributions": "result_contributions.md",
		"result_exclusions":    "result_exclusions.md",
	}
	return renderTemplate("result", "result.md", partials, r)
}

// ItemReport is the inflation of a single item.
type ItemReport struct {
	Name         string
	Contribution *rpi.Contribution
}

// RenderItem renders the inflation of a single item to a markdown string.
func RenderItem(name string, c *rpi.Contribution) string {
	return renderTemplate("item", "item.md", nil, ItemReport{Name: name, Contribution: c})
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
