package sieve

import (
	"github.com/sirupsen/logrus"
)

// Renderer renders a template expression against an item, producing the
// final match pattern for a deferred template atom. The plush subpackage
// provides the default implementation.
type Renderer interface {
	Render(template string, it Item) (string, error)
}

// evalContext carries the per-predicate evaluation collaborators. It is
// read-only after Compile.
type evalContext struct {
	renderer Renderer
	logger   logrus.FieldLogger
	strict   bool
}

// evaluate walks the tree for a single item, short-circuiting boolean
// composition: And stops at the first false child, Or at the first true
// child. Errors can only originate from template atoms in strict mode.
func evaluate(n Node, ec *evalContext, it Item) (bool, error) {
	switch t := n.(type) {
	case *AndNode:
		for _, c := range t.Children {
			ok, err := evaluate(c, ec, it)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case *OrNode:
		for _, c := range t.Children {
			ok, err := evaluate(c, ec, it)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case *NotNode:
		ok, err := evaluate(t.Child, ec, it)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case *AtomNode:
		return t.match(ec, it)
	default:
		return false, nil
	}
}

func (n *AtomNode) match(ec *evalContext, it Item) (bool, error) {
	if n.template == "" {
		return n.matcher(n.Field.Get(it)), nil
	}

	// Deferred template atom: render the pattern against this item, then
	// match like an ordinary string atom.
	matcher, err := n.deferredMatcher(ec, it)
	if err != nil {
		if ec.strict {
			return false, err
		}
		ec.logger.WithError(err).WithField("template", n.template).
			Warn("template atom failed to render; treating as non-match")
		return false, nil
	}
	return matcher(n.Field.Get(it)), nil
}

func (n *AtomNode) deferredMatcher(ec *evalContext, it Item) (func(any) bool, error) {
	if ec.renderer == nil {
		return nil, RenderError{Template: n.template, Cause: errNoRenderer}
	}
	rendered, err := ec.renderer.Render(n.template, it)
	if err != nil {
		return nil, RenderError{Template: n.template, Cause: err}
	}
	matcher, err := compileStringPattern(rendered, n.Negated)
	if err != nil {
		return nil, RenderError{Template: n.template, Cause: err}
	}
	return matcher, nil
}

type noRendererError struct{}

func (noRendererError) Error() string {
	return "no template renderer configured (see sieve.WithRenderer)"
}

var errNoRenderer = noRendererError{}
