package plotpage

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Template names under templates/.
const (
	pageTemplate    = "page.html"
	headerTemplate  = "header.html"
	sectionTemplate = "section.html"
	scriptsTemplate = "scripts.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// parsedTemplates parses the embedded templates on first use.
var parsedTemplates = sync.OnceValues(func() (*template.Template, error) {
	tmpl, err := template.New("plotpage").
		Funcs(template.FuncMap{"odd": isOdd}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	return tmpl, nil
})

// isOdd stripes alternate hint rows.
func isOdd(i int) bool {
	return i%2 == 1
}

// execute renders one embedded template into trusted HTML.
func execute(name string, data any) (template.HTML, error) {
	tmpl, err := parsedTemplates()
	if err != nil {
		return "", err
	}

	var out strings.Builder

	execErr := tmpl.ExecuteTemplate(&out, name, data)
	if execErr != nil {
		return "", fmt.Errorf("execute %s: %w", name, execErr)
	}

	return template.HTML(out.String()), nil //nolint:gosec // output of html/template.
}

type pageData struct {
	Title       string
	Description string
	Brand       string
	DarkMode    bool
	Theme       ThemeConfig
	Stylesheet  template.CSS
	Header      template.HTML
	Sections    template.HTML
	Scripts     template.HTML
}

type headerData struct {
	Brand       string
	Subtitle    string
	Title       string
	Description string
	ThemeToggle bool
}

type sectionData struct {
	Title    string
	Subtitle string
	Chart    template.HTML
	Hint     *hintData
}

type hintData struct {
	Title string
	Items []string
}

// newHintData returns nil for a hint without items so the box is omitted.
func newHintData(h Hint) *hintData {
	if len(h.Items) == 0 {
		return nil
	}

	return &hintData{Title: h.Title, Items: append([]string(nil), h.Items...)}
}
