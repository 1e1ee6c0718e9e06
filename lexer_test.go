package sieve

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := map[string]struct {
		conditions []string
		want       []token
	}{
		"single atom": {
			conditions: []string{"name=foo*"},
			want:       []token{{tokenAtom, "name=foo*"}},
		},
		"operators and groups": {
			conditions: []string{"( tagged=foo OR tagged=bar ) name=*2024*"},
			want: []token{
				{tokenLParen, "("},
				{tokenAtom, "tagged=foo"},
				{tokenOr, "OR"},
				{tokenAtom, "tagged=bar"},
				{tokenRParen, ")"},
				{tokenAtom, "name=*2024*"},
			},
		},
		"multiple conditions concatenate": {
			conditions: []string{"up=+0", "up=-10240"},
			want:       []token{{tokenAtom, "up=+0"}, {tokenAtom, "up=-10240"}},
		},
		"lowercase or is a pattern": {
			conditions: []string{"or"},
			want:       []token{{tokenAtom, "or"}},
		},
		"quoted values keep spaces": {
			conditions: []string{`message="tracker down"`},
			want:       []token{{tokenAtom, "message=tracker down"}},
		},
		"NOT before group": {
			conditions: []string{"NOT ( is_open=yes )"},
			want: []token{
				{tokenNot, "NOT"},
				{tokenLParen, "("},
				{tokenAtom, "is_open=yes"},
				{tokenRParen, ")"},
			},
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := tokenize(c.conditions)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %d tokens, want %d: %v", len(got), len(c.want), got)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("token %d: got %v %q, want %v %q", i, got[i].typ, got[i].text, c.want[i].typ, c.want[i].text)
				}
			}
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	var syntaxErr SyntaxError
	if _, err := tokenize(nil); !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if _, err := tokenize([]string{"", "   "}); !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestSplitAtom(t *testing.T) {
	cases := map[string]struct {
		in   string
		want atomParts
	}{
		"plain":                 {"name=foo", atomParts{field: "name", value: "foo"}},
		"default field":         {"foo*", atomParts{field: "name", value: "foo*"}},
		"negated field":         {"!name=foo", atomParts{field: "name", negated: true, value: "foo"}},
		"negated value":         {"name=!foo", atomParts{field: "name", negated: true, value: "foo"}},
		"double negation":       {"!name=!foo", atomParts{field: "name", value: "foo"}},
		"value keeps equals":    {"tracker=http://a/b?x=1", atomParts{field: "tracker", value: "http://a/b?x=1"}},
		"escaped equals":        {`name=a\=b`, atomParts{field: "name", value: "a=b"}},
		"default field escaped": {`a\=b`, atomParts{field: "name", value: "a=b"}},
		"empty value":           {"tagged=", atomParts{field: "tagged", value: ""}},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := splitAtom(c.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("splitAtom(%q) = %+v, want %+v", c.in, got, c.want)
			}
		})
	}
}

func TestSplitAtomErrors(t *testing.T) {
	var syntaxErr SyntaxError
	for _, in := range []string{"", "!", "=foo", "!=foo"} {
		if _, err := splitAtom(in); !errors.As(err, &syntaxErr) {
			t.Errorf("splitAtom(%q): expected SyntaxError, got %v", in, err)
		}
	}
}

func TestSplitAlternatives(t *testing.T) {
	alts, err := splitAlternatives(atomParts{field: "name", value: "a,b,c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alts) != 3 || alts[0] != "a" || alts[1] != "b" || alts[2] != "c" {
		t.Fatalf("got %v", alts)
	}

	// Commas inside regex and template values are not separators.
	for _, v := range []string{"/a{1,2}/", "{{ item.name }},x"} {
		alts, err := splitAlternatives(atomParts{field: "name", value: v})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(alts) != 1 || alts[0] != v {
			t.Fatalf("value %q: got %v", v, alts)
		}
	}

	var syntaxErr SyntaxError
	if _, err := splitAlternatives(atomParts{field: "name", value: "a,,b"}); !errors.As(err, &syntaxErr) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}
