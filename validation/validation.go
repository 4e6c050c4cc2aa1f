// Package validation provides the rule-combinator framework the grant and
// revoke flows run their business checks through, plus the domain rule
// libraries built on it.
//
// A Rule inspects already-loaded data and either passes (nil) or returns a
// Failure that appends one or more structured errors to an ErrorBuilder.
// Rules never perform I/O and never short-circuit: Validate reports every
// violated rule at once.
package validation

import (
	"fmt"
	"strings"
)

// Rule is a deferred check. It returns nil on pass, or a Failure carrying
// the error contributions of the check.
type Rule func() Failure

// Failure appends one or more structured errors to the builder.
type Failure func(*ErrorBuilder)

// All evaluates every rule and combines every failure. It returns nil only
// when no rule failed. Evaluation never stops at the first failure; the
// caller sees all violations at once.
//
// A nil rule is a programming error and panics.
func All(rules ...Rule) Rule {
	mustRules(rules)
	return func() Failure {
		var failures []Failure
		for _, r := range rules {
			if f := r(); f != nil {
				failures = append(failures, f)
			}
		}
		return combine(failures)
	}
}

// Any evaluates every rule and passes if at least one passed. Only when all
// rules fail does it return a combined Failure reporting every failure.
// When some rules fail but one passes, the failures are not surfaced;
// callers rely on this asymmetry.
//
// A nil rule is a programming error and panics.
func Any(rules ...Rule) Rule {
	mustRules(rules)
	return func() Failure {
		var failures []Failure
		for _, r := range rules {
			if f := r(); f != nil {
				failures = append(failures, f)
			}
		}
		if len(failures) < len(rules) {
			return nil
		}
		return combine(failures)
	}
}

// Validate runs all rules, applies any failures to a fresh builder, and
// returns the built problem, or nil when every rule passed. Expected domain
// violations never panic; only contract violations (nil rule, empty
// parameter name in a factory) do.
func Validate(rules ...Rule) *Problem {
	f := All(rules...)()
	if f == nil {
		return nil
	}
	b := NewErrorBuilder()
	f(b)
	return b.Build()
}

func combine(failures []Failure) Failure {
	if len(failures) == 0 {
		return nil
	}
	return func(b *ErrorBuilder) {
		for _, f := range failures {
			f(b)
		}
	}
}

func mustRules(rules []Rule) {
	for i, r := range rules {
		if r == nil {
			panic(fmt.Sprintf("validation: rule %d is nil", i))
		}
	}
}

// mustParam guards rule factories against an empty parameter name, which is
// a caller bug rather than a validation outcome.
func mustParam(param string) {
	if strings.TrimSpace(param) == "" {
		panic("validation: parameter name is required")
	}
}

// fail builds a single-error Failure.
func fail(code Code, path, detail string) Failure {
	return func(b *ErrorBuilder) {
		b.Add(code, path, detail)
	}
}
