package sieve

import (
	"strings"

	"github.com/google/shlex"
)

type tokenType int

const (
	tokenAtom tokenType = iota
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenAtom:
		return "ATOM"
	case tokenOr:
		return "OR"
	case tokenNot:
		return "NOT"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	default:
		return "ILLEGAL"
	}
}

type token struct {
	typ  tokenType
	text string
}

// tokenize splits the condition strings into a single token stream.
// Each condition is split shell-style first, so quoted values survive
// intact; concatenating the streams is equivalent to space-joining the
// conditions, which gives the implicit top-level AND.
//
// OR is case-sensitive uppercase; a lowercase "or" is a name pattern, not
// an operator. Parentheses must be standalone words.
func tokenize(conditions []string) ([]token, error) {
	var toks []token
	for _, cond := range conditions {
		words, err := shlex.Split(cond)
		if err != nil {
			return nil, SyntaxError{Message: err.Error(), Token: cond}
		}
		for _, w := range words {
			switch w {
			case "OR":
				toks = append(toks, token{typ: tokenOr, text: w})
			case "NOT":
				toks = append(toks, token{typ: tokenNot, text: w})
			case "(":
				toks = append(toks, token{typ: tokenLParen, text: w})
			case ")":
				toks = append(toks, token{typ: tokenRParen, text: w})
			default:
				toks = append(toks, token{typ: tokenAtom, text: w})
			}
		}
	}
	if len(toks) == 0 {
		return nil, SyntaxError{Message: "empty filter expression"}
	}
	return toks, nil
}

// atomParts is a condition atom split into its constituents, before value
// compilation.
type atomParts struct {
	field   string
	negated bool
	value   string
}

// splitAtom splits an atom token of the form [!]field[=value] on the first
// unescaped '='. Without a '=' the whole token is the value and the field
// defaults to "name". A leading '!' on the field or on the value portion
// toggles negation.
func splitAtom(text string) (atomParts, error) {
	a := atomParts{}
	s := text
	if strings.HasPrefix(s, "!") {
		a.negated = true
		s = s[1:]
	}
	if s == "" {
		return a, SyntaxError{Message: "empty filter atom", Token: text}
	}

	i := indexUnescaped(s, '=')
	if i < 0 {
		a.field = "name"
		a.value = unescape(s)
	} else {
		a.field = s[:i]
		a.value = s[i+1:]
		if a.field == "" {
			return a, SyntaxError{Message: "missing field name", Token: text}
		}
		if strings.HasPrefix(a.value, "!") {
			a.negated = !a.negated
			a.value = a.value[1:]
		}
		a.value = unescape(a.value)
	}
	return a, nil
}

// indexUnescaped returns the index of the first c in s not preceded by a
// backslash, or -1.
func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case c:
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	if !strings.Contains(s, `\=`) {
		return s
	}
	return strings.ReplaceAll(s, `\=`, "=")
}

// splitAlternatives expands the comma-separated value list of an atom.
// Regex and template values keep their commas: a comma inside /a{1,2}/ or
// {{ ... }} is part of the pattern, not an alternative separator.
func splitAlternatives(a atomParts) ([]string, error) {
	if !strings.Contains(a.value, ",") || isRegex(a.value) || isTemplate(a.value) {
		return []string{a.value}, nil
	}
	alts := strings.Split(a.value, ",")
	for _, alt := range alts {
		if alt == "" {
			return nil, SyntaxError{Message: "empty alternative in value list", Token: a.field + "=" + a.value}
		}
	}
	return alts, nil
}

func isRegex(value string) bool {
	return len(value) >= 2 && strings.HasPrefix(value, "/") && strings.HasSuffix(value, "/")
}

func isTemplate(value string) bool {
	return strings.HasPrefix(value, "{{") || strings.HasSuffix(value, "}}")
}
