package sieve

import (
	"errors"
	"testing"
	"time"
)

func compileTree(t *testing.T, conditions ...string) Node {
	t.Helper()
	toks, err := tokenize(conditions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, err := parse(toks, NewRegistry(), &compileContext{now: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return root
}

func parseErr(conditions ...string) error {
	toks, err := tokenize(conditions)
	if err != nil {
		return err
	}
	_, err = parse(toks, NewRegistry(), &compileContext{now: time.Now()})
	return err
}

// Tree shapes are checked through the canonical String form, which
// parenthesizes composite children.
func TestParserShapes(t *testing.T) {
	cases := map[string]string{
		"name=a":                           "name=a",
		"name=a name=b":                    "name=a name=b",
		"name=a OR name=b":                 "name=a OR name=b",
		"name=a name=b OR name=c":          "( name=a name=b ) OR name=c",
		"name=a OR name=b name=c":          "name=a OR ( name=b name=c )",
		"( name=a OR name=b ) name=c":      "( name=a OR name=b ) name=c",
		"NOT name=a name=b":                "( NOT name=a ) name=b",
		"NOT ( name=a OR name=b )":         "NOT ( name=a OR name=b )",
		"NOT NOT name=a":                   "NOT ( NOT name=a )",
		"name=a,b,c":                       "name=a OR name=b OR name=c",
		"!name=a,b":                        "!name=a OR !name=b",
		"foo*":                             "name=foo*",
		"NOT ( name=a OR NOT ( name=b size=1 ) )": "NOT ( name=a OR ( NOT ( name=b size=1 ) ) )",
	}

	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			root := compileTree(t, in)
			if got := root.String(); got != want {
				t.Errorf("parse(%q).String() = %q, want %q", in, got, want)
			}
		})
	}
}

func TestParserPrecedence(t *testing.T) {
	// AND binds tighter than OR: a b OR c == (a AND b) OR c.
	root := compileTree(t, "name=a name=b OR name=c")
	or, ok := root.(*OrNode)
	if !ok {
		t.Fatalf("root is %T, want *OrNode", root)
	}
	if len(or.Children) != 2 {
		t.Fatalf("got %d OR children, want 2", len(or.Children))
	}
	if _, ok := or.Children[0].(*AndNode); !ok {
		t.Errorf("first OR child is %T, want *AndNode", or.Children[0])
	}
	if _, ok := or.Children[1].(*AtomNode); !ok {
		t.Errorf("second OR child is %T, want *AtomNode", or.Children[1])
	}
}

func TestParserErrors(t *testing.T) {
	cases := map[string][]string{
		"unmatched close":        {"name=a )"},
		"unmatched open":         {"( name=a"},
		"empty group":            {"( )"},
		"dangling or":            {"name=a OR"},
		"leading or":             {"OR name=a"},
		"double or":              {"name=a OR OR name=b"},
		"dangling not":           {"NOT"},
		"not before or":          {"NOT OR name=a"},
		"empty atom":             {"!"},
		"bad comma":              {"name=a,,b"},
		"across conditions":      {"name=a OR", "name=b )"},
	}

	var syntaxErr SyntaxError
	for name, conds := range cases {
		t.Run(name, func(t *testing.T) {
			err := parseErr(conds...)
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
		})
	}
}

func TestParserUnknownField(t *testing.T) {
	var unknown UnknownFieldError
	err := parseErr("bogusfield=x")
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if unknown.Name != "bogusfield" {
		t.Errorf("got field %q, want %q", unknown.Name, "bogusfield")
	}
}

func TestParserValueErrorsAreEager(t *testing.T) {
	var valueErr ValueError
	cases := []string{
		"size=notanumber",
		"loaded=3d2w1m",
		"is_open=maybe",
		"name=/(/",
		"tagged={{item.name}}", // templates apply to string fields only
	}
	for _, in := range cases {
		if err := parseErr(in); !errors.As(err, &valueErr) {
			t.Errorf("%q: expected ValueError at compile time, got %v", in, err)
		}
	}
}

func TestParserTemplateAtomDeferred(t *testing.T) {
	root := compileTree(t, "path={{item.name}}*")
	atom, ok := root.(*AtomNode)
	if !ok {
		t.Fatalf("root is %T, want *AtomNode", root)
	}
	if atom.template == "" {
		t.Error("template atom should keep its raw pattern")
	}
	if atom.matcher != nil {
		t.Error("template atom must not precompile a matcher")
	}
}
