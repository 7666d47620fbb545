package resolve

import (
	"regexp"
	"strconv"
	"strings"
)

// Operator is a version comparison operator in a requirement expression.
type Operator string

const (
	OpEq  Operator = "=="
	OpGte Operator = ">="
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpLt  Operator = "<"
)

// operatorTokens is the ordered list of operator prefixes tried during
// parsing. Longer tokens must precede shorter ones so ">=" is never read
// as ">" followed by "=".
var operatorTokens = []string{">=", "<=", "==", ">", "<", "="}

// Constraint is a parsed runtime-version requirement: a comparison operator
// applied to a 2-or-3 segment dotted numeric version.
type Constraint struct {
	Op      Operator
	Version string
}

// ParseConstraint parses a requirement expression of the form "op? version".
// The operator defaults to "==" when absent, and "=" is accepted as an alias
// for it. Pre-release or otherwise non-numeric version segments are rejected.
func ParseConstraint(requirement string) (Constraint, error) {
	s := strings.TrimSpace(requirement)

	op := OpEq
	for _, token := range operatorTokens {
		if strings.HasPrefix(s, token) {
			if token != "=" {
				op = Operator(token)
			}
			s = strings.TrimSpace(s[len(token):])
			break
		}
	}

	if _, err := parseVersion(s); err != nil {
		return Constraint{}, err
	}

	return Constraint{Op: op, Version: s}, nil
}

// Matches evaluates the constraint against a concrete runtime version using
// component-wise numeric ordering. An actual version that is not in dotted
// numeric form is an evaluation error; the caller treats it as disqualifying
// the enclosing candidate only.
func (c Constraint) Matches(actual string) (bool, error) {
	have, err := parseVersion(actual)
	if err != nil {
		return false, err
	}
	want, err := parseVersion(c.Version)
	if err != nil {
		return false, err
	}

	cmp := compareSegments(have, want)
	switch c.Op {
	case OpEq:
		return cmp == 0, nil
	case OpGte:
		return cmp >= 0, nil
	case OpLte:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	case OpLt:
		return cmp < 0, nil
	default:
		return false, &ParseError{Input: string(c.Op), Reason: "unknown operator"}
	}
}

// cpTagPattern matches compact interpreter tags such as "cp310": one major
// digit followed by the remaining minor digits.
var cpTagPattern = regexp.MustCompile(`^cp(\d)(\d+)$`)

// RuntimeRequirement derives the dotted runtime requirement for a release.
// A compact "cp<major><minor>" tag translates directly to "<major>.<minor>";
// any other tag (the generic "py3" family) falls back to the release's own
// declared requirement expression. The second return value is false when the
// release is unconstrained and matches every runtime.
func RuntimeRequirement(runtimeTag, declaredRequirement string) (string, bool) {
	if m := cpTagPattern.FindStringSubmatch(runtimeTag); m != nil {
		return m[1] + "." + m[2], true
	}
	if declaredRequirement != "" {
		return declaredRequirement, true
	}
	return "", false
}

// parseVersion parses a 2-or-3 segment dotted numeric version.
func parseVersion(s string) ([]int, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, &ParseError{Input: s, Reason: "expected 2 or 3 dotted segments"}
	}
	return parseSegments(s, parts)
}

// parseVersionLoose parses any number of dotted numeric segments. Index
// version keys are not limited to the major.minor[.patch] shape.
func parseVersionLoose(s string) ([]int, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 {
		return nil, &ParseError{Input: s, Reason: "empty version"}
	}
	return parseSegments(s, parts)
}

func parseSegments(s string, parts []string) ([]int, error) {
	segments := make([]int, len(parts))
	for i, part := range parts {
		if !allDigits(part) {
			return nil, &ParseError{Input: s, Reason: "non-numeric version segment"}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, &ParseError{Input: s, Reason: "non-numeric version segment"}
		}
		segments[i] = n
	}
	return segments, nil
}

// compareSegments orders two parsed versions component-wise, treating
// missing trailing segments as zero.
func compareSegments(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		switch {
		case av > bv:
			return 1
		case av < bv:
			return -1
		}
	}
	return 0
}
