// Package plotpage renders standalone HTML report pages made of go-echarts
// charts grouped in titled sections.
package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const styleTagLen = len("</style>")

// Style defines chart dimensions.
type Style struct {
	Width  string
	Height string
}

// DefaultStyle returns the default chart style.
func DefaultStyle() Style {
	return Style{
		Width:  "100%",
		Height: "600px",
	}
}

// Hint contains interpretive guidance for a chart section.
type Hint struct {
	Title string
	Items []string
}

// Section represents a chart section within a page.
type Section struct {
	Title    string
	Subtitle string
	Hint     Hint
	Chart    Renderable
}

// Page represents a complete report page.
type Page struct {
	Title           string
	Description     string
	ProjectName     string
	ProjectSubtitle string
	ShowThemeToggle bool
	Style           Style
	Theme           Theme
	Sections        []Section
}

// NewPage creates a new report page.
func NewPage(title, description string) *Page {
	return &Page{
		Title:           title,
		Description:     description,
		ProjectName:     "Kartlytics",
		ProjectSubtitle: "Race Analysis",
		ShowThemeToggle: true,
		Style:           DefaultStyle(),
		Theme:           ThemeDark,
	}
}

// WithTheme sets the theme for the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, p)
}

// Renderable is the interface for chart components.
type Renderable interface {
	Render(w io.Writer) error
}

// HTMLRenderer renders pages as HTML.
type HTMLRenderer struct {
	ExtraCSS string
}

// Render writes the page as HTML to the writer.
func (r HTMLRenderer) Render(w io.Writer, page *Page) error {
	header, err := execute(headerTemplate, headerData{
		Brand:       page.ProjectName,
		Subtitle:    page.ProjectSubtitle,
		Title:       page.Title,
		Description: page.Description,
		ThemeToggle: page.ShowThemeToggle,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	var sectionsHTML bytes.Buffer

	for _, section := range page.Sections {
		sectionHTML, sectionErr := r.renderSection(section)
		if sectionErr != nil {
			return fmt.Errorf("render section %q: %w", section.Title, sectionErr)
		}

		sectionsHTML.WriteString(string(sectionHTML))
	}

	scripts, err := execute(scriptsTemplate, nil)
	if err != nil {
		return fmt.Errorf("render scripts: %w", err)
	}

	html, err := execute(pageTemplate, pageData{
		Title:       page.Title,
		Description: page.Description,
		Brand:       page.ProjectName,
		DarkMode:    page.Theme == ThemeDark,
		Theme:       GetThemeConfig(page.Theme),
		Stylesheet:  template.CSS(r.ExtraCSS), //nolint:gosec // caller supplied stylesheet.
		Header:      header,
		Sections:    template.HTML(sectionsHTML.String()), //nolint:gosec // rendered from our templates.
		Scripts:     scripts,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func (r HTMLRenderer) renderSection(section Section) (template.HTML, error) {
	chartHTML, err := renderChart(section.Chart)
	if err != nil {
		return "", err
	}

	return execute(sectionTemplate, sectionData{
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Chart:    template.HTML(chartHTML), //nolint:gosec // go-echarts output.
		Hint:     newHintData(section.Hint),
	})
}

func renderChart(chart Renderable) (string, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	return extractChartContent(buf.String()), nil
}

// extractChartContent strips the standalone page go-echarts renders down to
// the chart container and its script.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
