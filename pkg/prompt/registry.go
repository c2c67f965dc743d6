package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prompt is a text template with {name} placeholders and optional
// default parameter values.
type Prompt struct {
	template string
	defaults map[string]string
}

// Format substitutes placeholders with params, falling back to the
// prompt's defaults for any parameter not supplied.
func (p *Prompt) Format(params map[string]string) string {
	pairs := make([]string, 0, 2*(len(params)+len(p.defaults)))
	for name, value := range p.defaults {
		if _, ok := params[name]; !ok {
			pairs = append(pairs, "{"+name+"}", value)
		}
	}
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(p.template)
}

// Registry holds the prompt templates loaded from disk.
type Registry struct {
	prompts map[string]*Prompt
}

// required templates; Load fails fast if any is missing so a broken
// deployment is caught at startup instead of mid-conversation.
var requiredPrompts = []string{"system", "query_transform", "qa", "refine"}

// systemDefaults mirror the assistant's standing configuration and can
// be overridden per call.
var systemDefaults = map[string]string{
	"language":     "English",
	"specialties":  "general medicine, cardiology, endocrinology",
	"data_sources": "the patient's medical records and PubMed literature",
}

// Load reads every .txt file in dir as a prompt named after the file.
func Load(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt directory %s: %w", dir, err)
	}

	prompts := make(map[string]*Prompt)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".txt")
		p := &Prompt{template: string(content)}
		if name == "system" {
			p.defaults = systemDefaults
		}
		prompts[name] = p
	}

	for _, name := range requiredPrompts {
		if _, ok := prompts[name]; !ok {
			return nil, fmt.Errorf("missing required prompt template: %s.txt", name)
		}
	}

	return &Registry{prompts: prompts}, nil
}

// Get returns the named prompt or nil if it was not loaded.
func (r *Registry) Get(name string) *Prompt {
	return r.prompts[name]
}

// MustGet returns the named prompt and panics if it is absent. Only for
// the required templates verified at Load time.
func (r *Registry) MustGet(name string) *Prompt {
	p := r.prompts[name]
	if p == nil {
		panic(fmt.Sprintf("prompt %s not loaded", name))
	}
	return p
}
