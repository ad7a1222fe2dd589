package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateEngine renders the embedded HTML email templates. Values are
// escaped on interpolation; only campaign content is injected as raw HTML.
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the embedded template set.
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email templates")
	}

	return &TemplateEngine{templates: tmpl}, nil
}

// Render executes the named template with the given data. The ".html"
// suffix is optional.
func (e *TemplateEngine) Render(name string, data map[string]any) (string, error) {
	name = normalizeTemplateName(name)
	if !e.Has(name) {
		return "", errors.Newf("unknown email template: %s", name)
	}

	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render template %s", name)
	}

	return buf.String(), nil
}

// Has reports whether the named template exists. The ".html" suffix is
// optional.
func (e *TemplateEngine) Has(name string) bool {
	return e.templates.Lookup(normalizeTemplateName(name)) != nil
}

// Names returns the available template names, sorted.
func (e *TemplateEngine) Names() []string {
	var names []string
	for _, tmpl := range e.templates.Templates() {
		if strings.HasSuffix(tmpl.Name(), ".html") {
			names = append(names, tmpl.Name())
		}
	}
	sort.Strings(names)

	return names
}

func normalizeTemplateName(name string) string {
	if !strings.HasSuffix(name, ".html") {
		return name + ".html"
	}

	return name
}

// templateFuncs are tolerant of missing map keys: every func accepts any
// and renders absent values as empty strings.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(v any) template.HTML {
			return template.HTML(toString(v)) //nolint:gosec // campaign content is trusted operator input
		},
		"safeURL": func(v any) template.URL {
			return template.URL(toString(v)) //nolint:gosec // voucher QR codes are data URIs built by the portal
		},
		"formatDate": formatDate,
		"titleCase":  titleCase,
		"humanize":   humanize,
		"money":      money,
	}
}

// formatDate keeps the date portion of an ISO 8601 timestamp.
func formatDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}

	s := toString(v)
	if len(s) > 10 {
		return s[:10]
	}

	return s
}

// titleCase upper-cases the first letter of each word.
func titleCase(v any) string {
	words := strings.Fields(toString(v))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}

// humanize turns an identifier like "security_alert" into "Security Alert".
func humanize(v any) string {
	return titleCase(strings.ReplaceAll(toString(v), "_", " "))
}

// money renders a numeric value with two decimals.
func money(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", n)
	case float32:
		return fmt.Sprintf("%.2f", n)
	case int:
		return fmt.Sprintf("%.2f", float64(n))
	case int64:
		return fmt.Sprintf("%.2f", float64(n))
	default:
		return toString(v)
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
