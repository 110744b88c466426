package receipt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed default_template.yaml
var defaultTemplateYAML []byte

var ErrNoSections = errors.New("receipt template has no sections")

// Template describes the wording of a receipt. Addressee, Body and
// Signature are text/template strings evaluated against Fields; Body is
// Markdown.
type Template struct {
	Title         string    `yaml:"title"`
	Payer         string    `yaml:"payer"`
	Receiver      string    `yaml:"receiver"`
	SourceAccount string    `yaml:"source_account"`
	TargetAccount string    `yaml:"target_account"`
	Sections      []Section `yaml:"sections"`

	compiled []compiledSection
}

type Section struct {
	Addressee string `yaml:"addressee"`
	Body      string `yaml:"body"`
	Signature string `yaml:"signature"`
}

type compiledSection struct {
	addressee, body, signature *template.Template
}

// Fields is the data available to section templates.
type Fields struct {
	Index         int
	Department    string
	Year          int
	Month         int
	MonthPadded   string
	Amount        string
	DueDate       string
	Payer         string
	Receiver      string
	SourceAccount string
	TargetAccount string
}

// DefaultTemplate returns the built-in three-part receipt.
func DefaultTemplate() (*Template, error) {
	return ParseTemplate(defaultTemplateYAML)
}

// LoadTemplate reads a YAML template from path. An empty path selects
// the built-in template.
func LoadTemplate(path string) (*Template, error) {
	if path == "" {
		return DefaultTemplate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read receipt template: %w", err)
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes YAML and compiles every section.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	if len(t.Sections) == 0 {
		return nil, ErrNoSections
	}

	for i, s := range t.Sections {
		var cs compiledSection
		var err error
		if cs.addressee, err = compile(fmt.Sprintf("section%d.addressee", i), s.Addressee); err != nil {
			return nil, err
		}
		if cs.body, err = compile(fmt.Sprintf("section%d.body", i), s.Body); err != nil {
			return nil, err
		}
		if cs.signature, err = compile(fmt.Sprintf("section%d.signature", i), s.Signature); err != nil {
			return nil, err
		}
		t.compiled = append(t.compiled, cs)
	}
	return &t, nil
}

func compile(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, f Fields) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, f); err != nil {
		return "", fmt.Errorf("execute %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(sb.String()), nil
}
