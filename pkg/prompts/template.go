// Package prompts renders agent instructions against the run Context.
package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llmutils"
)

// Template is a parsed instructions template.
// Plain text without actions is returned as is.
type Template struct {
	text string
	tmpl *template.Template
}

// NewTemplate parses the text as a Go template with sprig functions.
func NewTemplate(name, text string) (*Template, error) {
	t := &Template{text: text}
	if !strings.Contains(text, "{{") {
		return t, nil
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(funcMap()).
		Parse(text)
	if err != nil {
		return nil, chatmodel.WrapConfigurationError(err, "invalid template %s", name)
	}
	t.tmpl = tmpl
	return t, nil
}

// Text returns the template source
func (t *Template) Text() string {
	return t.text
}

// IsStatic returns true if the template has no actions
func (t *Template) IsStatic() bool {
	return t.tmpl == nil
}

// Render executes the template with data.
// A missing key in data is reported as ContextError.
func (t *Template) Render(data map[string]any) (string, error) {
	if t.tmpl == nil {
		return t.text, nil
	}

	var b strings.Builder
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", chatmodel.NewContextError("unable to render %s: %s", t.tmpl.Name(), err.Error())
	}
	return b.String(), nil
}

// Render parses and executes the text with data
func Render(name, text string, data map[string]any) (string, error) {
	t, err := NewTemplate(name, text)
	if err != nil {
		return "", err
	}
	return t.Render(data)
}

func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["json"] = func(v any) string {
		return llmutils.ToJSON(v)
	}
	fm["yaml"] = func(v any) string {
		return llmutils.ToYAML(v)
	}
	return fm
}
