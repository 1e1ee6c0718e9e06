package sieve

import (
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sirupsen/logrus"
)

// Engine compiles condition strings into reusable predicates against a
// field registry.
type Engine struct {
	registry *Registry
	opts     engineOptions
}

type engineOptions struct {
	renderer Renderer
	logger   logrus.FieldLogger
	now      func() time.Time
	strict   bool
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithRenderer sets the template renderer used by deferred template atoms
// ({{ ... }} values). Without a renderer, template atoms fail to render.
func WithRenderer(r Renderer) Option {
	return func(o *engineOptions) { o.renderer = r }
}

// WithLogger sets the logger used to report degraded template renders.
// Default: logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithNow sets the clock used to resolve relative time deltas at compile
// time. Mainly for tests. Default: time.Now.
func WithNow(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

// WithStrictTemplates makes a failed template render abort the evaluation
// pass instead of counting as a non-match for the offending item.
// Default: off.
func WithStrictTemplates(strict bool) Option {
	return func(o *engineOptions) { o.strict = strict }
}

// NewEngine creates an engine over the registry. A nil registry gets the
// built-in field table.
func NewEngine(registry *Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	e := &Engine{
		registry: registry,
		opts: engineOptions{
			logger: logrus.StandardLogger(),
			now:    time.Now,
		},
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

// Registry returns the engine's field registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Compile turns one or more condition strings into a Predicate. Multiple
// conditions are implicitly ANDed, exactly as if they were space-joined.
// Each condition is split shell-style, so values with spaces can be quoted.
//
// Compile seals the registry: field and alias registration must be finished
// before the first Compile. All syntax, field and value errors surface
// here; no partial predicate is ever returned.
func (e *Engine) Compile(conditions ...string) (*Predicate, error) {
	e.registry.Seal()

	toks, err := tokenize(conditions)
	if err != nil {
		return nil, err
	}
	root, err := parse(toks, e.registry, &compileContext{now: e.opts.now()})
	if err != nil {
		return nil, err
	}
	return &Predicate{
		root:       root,
		conditions: append([]string(nil), conditions...),
		ec: evalContext{
			renderer: e.opts.renderer,
			logger:   e.opts.logger,
			strict:   e.opts.strict,
		},
	}, nil
}

// Predicate is a compiled, reusable boolean test over items. It is
// immutable and safe for concurrent use by multiple evaluation passes.
type Predicate struct {
	root       Node
	conditions []string
	ec         evalContext
}

// Root returns the root of the compiled expression tree.
func (p *Predicate) Root() Node { return p.root }

// Fields returns the distinct canonical field names the predicate touches,
// sorted. The transport layer can use this to fetch only the fields a
// query needs.
func (p *Predicate) Fields() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, a := range atoms(p.root) {
		if !seen[a.Field.Name] {
			seen[a.Field.Name] = true
			out = append(out, a.Field.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Match evaluates the predicate against a single item. The only possible
// error is a template render failure with strict templates enabled; by
// default a failed render is logged and the item does not match.
func (p *Predicate) Match(it Item) (bool, error) {
	return evaluate(p.root, &p.ec, it)
}

// Apply filters a sequence of items, preserving input order. The result is
// lazy: items are matched as they are pulled, so large collections are not
// materialized twice, and abandoning the result stops evaluation. The
// result is restartable only if the input sequence is. With strict
// templates, a render failure logs and ends the sequence early; use Filter
// to observe the error.
func (p *Predicate) Apply(items iter.Seq[Item]) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for it := range items {
			ok, err := p.Match(it)
			if err != nil {
				p.ec.logger.WithError(err).Error("aborting filter pass")
				return
			}
			if ok && !yield(it) {
				return
			}
		}
	}
}

// Filter is the slice convenience around Apply. It returns the matching
// items in input order, and the first evaluation error (strict templates
// only).
func (p *Predicate) Filter(items []Item) ([]Item, error) {
	var out []Item
	for _, it := range items {
		ok, err := p.Match(it)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// String renders a summary table of the predicate's atoms.
func (p *Predicate) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nFILTER: " + strings.Join(p.conditions, " ") + "\n")
	tw.AppendHeader(table.Row{"Field", "Kind", "Negated", "Value", "Deferred"})
	for _, a := range atoms(p.root) {
		tw.AppendRow(table.Row{
			a.Field.Name,
			a.Field.Kind.String(),
			yesNo(a.Negated),
			a.Value,
			yesNo(a.template != ""),
		})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

// Tree returns a box-drawing representation of the expression tree.
//
// Example output:
//
//	AND
//	├── OR
//	│   ├── tagged=foo
//	│   └── tagged=bar
//	└── name=*2024*
func (p *Predicate) Tree() string {
	var sb strings.Builder
	sb.WriteString(label(p.root))
	sb.WriteString("\n")
	buildTree(p.root, &sb, "", 0)
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
