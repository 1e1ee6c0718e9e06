// Package plush implements sieve.Renderer with the plush template engine.
//
// Filter expressions mark template values with {{ ... }} delimiters; this
// renderer translates them to plush's <%= ... %> form and exposes every
// item field as a template variable, so a condition like
//
//	path={{ directory }}/*
//
// resolves the pattern per item before glob matching.
package plush

import (
	"fmt"
	"strings"

	"github.com/gobuffalo/plush"

	"github.com/moorhen/sieve"
)

// Renderer renders deferred template atoms against items.
type Renderer struct {
	helpers map[string]any
}

// New creates a Renderer with no extra helpers.
func New() *Renderer {
	return &Renderer{helpers: map[string]any{}}
}

// Helper registers a function available to templates, e.g. a pathbase or
// subst formatter.
func (r *Renderer) Helper(name string, fn any) {
	r.helpers[name] = fn
}

// Render implements sieve.Renderer.
func (r *Renderer) Render(template string, it sieve.Item) (string, error) {
	ctx := plush.NewContext()
	for k, v := range it {
		ctx.Set(k, v)
	}
	ctx.Set("item", map[string]any(it))
	for name, fn := range r.helpers {
		ctx.Set(name, fn)
	}

	out, err := plush.Render(translate(template), ctx)
	if err != nil {
		return "", fmt.Errorf("rendering %q: %w", template, err)
	}
	return out, nil
}

// translate rewrites the filter grammar's {{ ... }} delimiters to plush's.
func translate(template string) string {
	s := strings.ReplaceAll(template, "{{", "<%=")
	return strings.ReplaceAll(s, "}}", "%>")
}
