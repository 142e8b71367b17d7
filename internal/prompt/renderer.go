package prompt

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ufilesorg/promptly/internal/strapi"
)

const (
	// DefaultModel is used when a template names no model
	DefaultModel = "gpt-4o"

	// DefaultLang is forced into every render context unless overridden
	DefaultLang = "Persian"

	// maxUserLength is a hard cap against runaway prompt size
	maxUserLength = 40000
)

// Rendered is the outcome of rendering a template with variables
type Rendered struct {
	System    string
	User      string
	ModelName string
}

// MissingVariableError is returned when a placeholder in the template
// text has no resolved value. Defaulting should prevent this; the
// formatting step still fails loudly rather than dropping text.
type MissingVariableError struct {
	Key      string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %q references unresolved variable %q", e.Key, e.Variable)
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Fields returns the placeholder names referenced in a piece of
// template text
func Fields(text string) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(escaped(text), -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			fields = append(fields, match[1])
		}
	}
	sort.Strings(fields)
	return fields
}

// escaped hides doubled braces so they are not mistaken for slots
func escaped(text string) string {
	text = strings.ReplaceAll(text, "{{", "\x00")
	return strings.ReplaceAll(text, "}}", "\x01")
}

// format substitutes every placeholder with its value; doubled braces
// render as literal braces
func format(key, text string, vars map[string]string) (string, error) {
	var missing *MissingVariableError
	out := placeholderPattern.ReplaceAllStringFunc(escaped(text), func(slot string) string {
		name := slot[1 : len(slot)-1]
		value, ok := vars[name]
		if !ok {
			if missing == nil {
				missing = &MissingVariableError{Key: key, Variable: name}
			}
			return slot
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	out = strings.ReplaceAll(out, "\x00", "{")
	out = strings.ReplaceAll(out, "\x01", "}")
	return out, nil
}

// Store is the template source consumed by the renderer
type Store interface {
	FetchTemplate(ctx context.Context, key string) (*strapi.Template, error)
}

// Renderer resolves templates and fills in their variables
type Renderer struct {
	store Store
}

// New creates a new renderer backed by the given template store
func New(store Store) *Renderer {
	return &Renderer{store: store}
}

// Render fetches the template for key, defaults every unresolved
// placeholder to the empty string, forces lang to Persian unless the
// caller overrode it, and substitutes all placeholders. The user text
// is truncated to 40000 characters.
func (r *Renderer) Render(ctx context.Context, key string, vars map[string]string) (*Rendered, error) {
	template, err := r.store.FetchTemplate(ctx, key)
	if err != nil {
		return nil, err
	}
	return RenderTemplate(template, vars)
}

// TemplateFields returns the placeholder names of the template for key
func (r *Renderer) TemplateFields(ctx context.Context, key string) ([]string, error) {
	template, err := r.store.FetchTemplate(ctx, key)
	if err != nil {
		return nil, err
	}
	fields := Fields(template.System + " " + template.User)
	return fields, nil
}

// RenderTemplate renders an already-fetched template
func RenderTemplate(template *strapi.Template, vars map[string]string) (*Rendered, error) {
	resolved := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		resolved[k] = v
	}
	if _, ok := resolved["lang"]; !ok {
		resolved["lang"] = DefaultLang
	}
	for _, name := range Fields(template.System) {
		if _, ok := resolved[name]; !ok {
			resolved[name] = ""
		}
	}
	for _, name := range Fields(template.User) {
		if _, ok := resolved[name]; !ok {
			resolved[name] = ""
		}
	}

	system, err := format(template.Key, template.System, resolved)
	if err != nil {
		return nil, err
	}
	user, err := format(template.Key, template.User, resolved)
	if err != nil {
		return nil, err
	}
	// cap is in characters, not bytes; Persian text is two bytes per rune
	if len(user) > maxUserLength {
		if runes := []rune(user); len(runes) > maxUserLength {
			user = string(runes[:maxUserLength])
		}
	}

	modelName := template.ModelName
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Rendered{System: system, User: user, ModelName: modelName}, nil
}
