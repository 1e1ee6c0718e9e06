package sieve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

// compileContext carries compile-time state shared by all atoms of one
// predicate. The reference instant is captured once per Compile so that
// time atoms are deterministic across an evaluation pass.
type compileContext struct {
	now time.Time
}

// compileAtom builds the atom node for one field/value pair, selecting the
// value grammar by the field's kind. All grammars are compiled eagerly so
// that malformed values fail Compile; a template value on a string field is
// the sole deferred case.
func compileAtom(f *Field, value string, negated bool, cc *compileContext) (*AtomNode, error) {
	n := &AtomNode{Field: f, Negated: negated, Value: value}

	if isTemplate(value) {
		if _, ok := f.Kind.(String); !ok {
			return nil, ValueError{Field: f.Name, Value: value, Reason: "template values apply to string fields only"}
		}
		n.template = value
		return n, nil
	}

	var (
		m   func(any) bool
		err error
	)
	switch f.Kind.(type) {
	case String:
		m, err = compileStringPattern(value, negated)
	case Number:
		m, err = compileNumber(value, negated)
	case Time:
		m, err = compileTime(value, negated, cc.now)
	case List:
		m, err = compileTags(value, negated)
	case Bool:
		m, err = compileBool(value, negated)
	default:
		err = fmt.Errorf("unsupported kind %s", f.Kind)
	}
	if err != nil {
		if ve, ok := err.(ValueError); ok {
			ve.Field = f.Name
			return nil, ve
		}
		return nil, ValueError{Field: f.Name, Value: value, Reason: err.Error()}
	}
	n.matcher = m
	return n, nil
}

// compileStringPattern compiles a string value. A value wrapped in slashes
// is a case-insensitive regular expression with contains semantics; any
// other value is a glob that must match the whole field value. Globs are
// case-insensitive, so patterns and values are matched in lower case.
func compileStringPattern(value string, negated bool) (func(any) bool, error) {
	if isRegex(value) {
		re, err := regexp.Compile("(?i)" + value[1:len(value)-1])
		if err != nil {
			return nil, ValueError{Value: value, Reason: "bad regex", Cause: err}
		}
		return func(v any) bool {
			return re.MatchString(asString(v)) != negated
		}, nil
	}

	g, err := glob.Compile(strings.ToLower(value))
	if err != nil {
		return nil, ValueError{Value: value, Reason: "bad glob pattern", Cause: err}
	}
	return func(v any) bool {
		return g.Match(strings.ToLower(asString(v))) != negated
	}, nil
}

// compileNumber compiles a numeric value. A leading '+' means strictly
// greater than, '-' strictly less than, no sign means equality. Values may
// carry human byte-size suffixes (340M, 1.5GiB).
func compileNumber(value string, negated bool) (func(any) bool, error) {
	op, rest := splitSign(value)
	want, err := parseNumber(rest)
	if err != nil {
		return nil, ValueError{Value: value, Reason: "not a number or byte size", Cause: err}
	}
	return func(v any) bool {
		n := asNumber(v)
		var match bool
		switch op {
		case '+':
			match = n > want
		case '-':
			match = n < want
		default:
			match = n == want
		}
		return match != negated
	}, nil
}

func splitSign(value string) (byte, string) {
	if len(value) > 0 && (value[0] == '+' || value[0] == '-') {
		return value[0], value[1:]
	}
	return 0, value
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n, nil
	}
	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return float64(b), nil
}

// compileTime compiles a time value. The sign selects the comparison
// against the resolved instant: '+' matches events at or before it (older),
// '-' matches events at or since it (younger), no sign matches the instant
// itself (to second precision).
func compileTime(value string, negated bool, now time.Time) (func(any) bool, error) {
	op, rest := splitSign(value)
	ref, err := parseTimeValue(rest, now)
	if err != nil {
		return nil, err
	}
	return func(v any) bool {
		t := asTime(v)
		var match bool
		switch op {
		case '+':
			match = !t.After(ref)
		case '-':
			match = !t.Before(ref)
		default:
			match = t.Unix() == ref.Unix()
		}
		return match != negated
	}, nil
}

// timeUnits lists the relative-delta units in descending magnitude. The
// rank enforces the order requirement: 1m2w3d is valid, 3d2w1m is not.
var timeUnits = []struct {
	unit byte
	secs int64
}{
	{'y', 365 * 24 * 3600},
	{'m', 30 * 24 * 3600},
	{'w', 7 * 24 * 3600},
	{'d', 24 * 3600},
	{'h', 3600},
	{'i', 60},
	{'s', 1},
}

func unitRank(c byte) int {
	c = lowerByte(c)
	for i, u := range timeUnits {
		if u.unit == c {
			return i
		}
	}
	return -1
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// parseTimeValue resolves a time value (without its sign) to an instant,
// trying the three grammars in order: relative delta, absolute date with
// optional time, bare UNIX epoch seconds.
func parseTimeValue(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, ValueError{Value: s, Reason: "empty time value"}
	}
	if d, ok, err := parseDelta(s); err != nil {
		return time.Time{}, err
	} else if ok {
		return now.Add(-d), nil
	}
	if t, err := parseAbsolute(s); err == nil {
		return t, nil
	}
	if isDigits(s) {
		epoch, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, ValueError{Value: s, Reason: "bad epoch timestamp", Cause: err}
		}
		return time.Unix(epoch, 0), nil
	}
	return time.Time{}, ValueError{Value: s, Reason: "not a time delta, date or epoch timestamp"}
}

// parseDelta parses a relative delta of concatenated <n><unit> components
// (units y m w d h i s, case-insensitive). Components must appear in
// strictly descending magnitude order. Returns ok=false when the string is
// not shaped like a delta at all, so the caller can try the next grammar.
func parseDelta(s string) (time.Duration, bool, error) {
	var total int64
	lastRank := -1
	i := 0
	for i < len(s) {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i || i == len(s) {
			return 0, false, nil // no digits, or digits without a unit
		}
		rank := unitRank(s[i])
		if rank < 0 {
			return 0, false, nil
		}
		if rank <= lastRank {
			return 0, false, ValueError{Value: s, Reason: "time delta units must be in descending order (y m w d h i s)"}
		}
		lastRank = rank
		n, err := strconv.ParseInt(s[start:i], 10, 64)
		if err != nil {
			return 0, false, ValueError{Value: s, Reason: "bad time delta", Cause: err}
		}
		total += n * timeUnits[rank].secs
		i++
	}
	return time.Duration(total) * time.Second, true, nil
}

// dateLayouts covers ISO, American and European date order, with an
// optional time of day separated by space or 'T'. Unpadded layout elements
// accept padded input too.
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2.1.2006",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

func parseAbsolute(s string) (time.Time, error) {
	date := s
	clock := ""
	if i := strings.IndexAny(s, " T"); i >= 0 {
		date, clock = s[:i], s[i+1:]
	}
	for _, dl := range dateLayouts {
		if clock == "" {
			if t, err := time.ParseInLocation(dl, date, time.Local); err == nil {
				return t, nil
			}
			continue
		}
		for _, cl := range clockLayouts {
			if t, err := time.ParseInLocation(dl+" "+cl, date+" "+clock, time.Local); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// compileTags compiles a tag-set value. The value is split on whitespace
// into required tags; the field matches when its own tag set contains every
// required tag (word containment, not substring). An empty value matches
// items with no tags at all.
func compileTags(value string, negated bool) (func(any) bool, error) {
	want := strings.Fields(value)
	return func(v any) bool {
		have := asList(v)
		var match bool
		if len(want) == 0 {
			match = len(have) == 0
		} else {
			set := make(map[string]bool, len(have))
			for _, tag := range have {
				set[tag] = true
			}
			match = true
			for _, tag := range want {
				if !set[tag] {
					match = false
					break
				}
			}
		}
		return match != negated
	}, nil
}

// compileBool compiles a true/false value.
func compileBool(value string, negated bool) (func(any) bool, error) {
	var want bool
	switch strings.ToLower(value) {
	case "1", "yes", "true", "on":
		want = true
	case "0", "no", "false", "off":
		want = false
	default:
		return nil, ValueError{Value: value, Reason: "not a truth value (yes/no/true/false/1/0/on/off)"}
	}
	return func(v any) bool {
		return (asBool(v) == want) != negated
	}, nil
}
