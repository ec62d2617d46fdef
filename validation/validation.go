// Package validation runs declarative field rules against submitted forms.
//
// A Validator holds an ordered list of rules. Every rule is evaluated, store
// backed checks included, and every failure is collected so a visitor can fix
// all of them in one round-trip.
package validation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Outcome is the ordered list of failures for one submitted form. An empty
// Outcome means the submission may proceed.
type Outcome []FieldError

func (o Outcome) Valid() bool {
	return len(o) == 0
}

// Messages returns the failure messages in rule order.
func (o Outcome) Messages() []string {
	msgs := make([]string, 0, len(o))
	for _, fe := range o {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

// For returns the messages recorded against field.
func (o Outcome) For(field string) []string {
	var msgs []string
	for _, fe := range o {
		if fe.Field == field {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

func (o Outcome) Error() string {
	return strings.Join(o.Messages(), " ")
}

// Check reports whether value passes. form holds the whole submission for
// rules that compare fields. A non-nil error means the check itself could not
// run (for example a store lookup failed) and aborts validation.
type Check func(ctx context.Context, value string, form url.Values) (bool, error)

// Rule binds a Check to a field and the message shown when it fails.
type Rule struct {
	Field   string
	Message string
	Check   Check
}

type Validator struct {
	Name string
	// Trim lists fields whose surrounding whitespace is removed before the
	// rules run and before the handler sees them.
	Trim  []string
	Rules []Rule
}

func New(name string, rules ...Rule) *Validator {
	return &Validator{Name: name, Rules: rules}
}

// Trimming sets the fields to trim and returns v.
func (v *Validator) Trimming(fields ...string) *Validator {
	v.Trim = append(v.Trim, fields...)
	return v
}

// Sanitize trims the configured fields of form in place.
func (v *Validator) Sanitize(form url.Values) {
	for _, field := range v.Trim {
		vals, ok := form[field]
		if !ok {
			continue
		}
		for i := range vals {
			vals[i] = strings.TrimSpace(vals[i])
		}
	}
}

// Validate evaluates every rule against form. Rules do not depend on each
// other, so they run concurrently; the outcome keeps declaration order.
func (v *Validator) Validate(ctx context.Context, form url.Values) (Outcome, error) {
	g, ctx := errgroup.WithContext(ctx)
	passed := make([]bool, len(v.Rules))

	for i, rule := range v.Rules {
		i, rule := i, rule
		g.Go(func() error {
			ok, err := rule.Check(ctx, form.Get(rule.Field), form)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", v.Name, rule.Field, err)
			}
			passed[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out Outcome
	for i, ok := range passed {
		if !ok {
			out = append(out, FieldError{Field: v.Rules[i].Field, Message: v.Rules[i].Message})
		}
	}
	return out, nil
}

// FailureFunc renders the originating form again for a rejected submission.
type FailureFunc func(w http.ResponseWriter, r *http.Request, out Outcome)

// ErrorFunc handles a check that could not run.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Guard parses and validates the posted form before next runs. A rejected
// submission goes to fail and never reaches next.
func (v *Validator) Guard(next http.Handler, fail FailureFunc, onErr ErrorFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			fail(w, r, Outcome{{Message: "The submitted form could not be read."}})
			return
		}

		v.Sanitize(r.PostForm)
		out, err := v.Validate(r.Context(), r.PostForm)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if !out.Valid() {
			fail(w, r, out)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Echo copies the submitted values for re-rendering, leaving out omit.
func Echo(form url.Values, omit ...string) map[string]string {
	skip := make(map[string]bool, len(omit))
	for _, f := range omit {
		skip[f] = true
	}

	echoed := make(map[string]string, len(form))
	for field := range form {
		if skip[field] {
			continue
		}
		echoed[field] = form.Get(field)
	}
	return echoed
}
