package revset

import (
	"context"
	"fmt"
	"strings"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// Call is a parsed predicate invocation
type Call struct {
	Name string
	Args []string
	spec Spec
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(c.Args, ", "))
}

// Executor evaluates predicate calls against the revision graph
type Executor struct {
	registry *Registry
	env      *Env
}

// NewExecutor creates an executor using the predicates of registry
func NewExecutor(registry *Registry, env *Env) *Executor {
	return &Executor{registry: registry, env: env}
}

// Parse parses and validates an expression of the form name(arg, ...)
func (e *Executor) Parse(expr string) (Call, error) {
	expr = strings.TrimSpace(expr)
	open := strings.IndexByte(expr, '(')
	if open <= 0 || !strings.HasSuffix(expr, ")") {
		return Call{}, pushlogerrors.NewValidationError("", fmt.Sprintf("invalid expression %q: expected name(args)", expr))
	}

	name := strings.TrimSpace(expr[:open])
	spec, ok := e.registry.Lookup(name)
	if !ok {
		return Call{}, pushlogerrors.NewValidationError("", fmt.Sprintf("unknown predicate %q", name))
	}

	args, err := splitArgs(expr[open+1 : len(expr)-1])
	if err != nil {
		return Call{}, pushlogerrors.NewValidationError(name, err.Error())
	}
	if err := spec.Validate(args); err != nil {
		return Call{}, err
	}
	return Call{Name: name, Args: args, spec: spec}, nil
}

// splitArgs splits on commas outside quotes and strips surrounding quotes
func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var (
		args    []string
		current strings.Builder
		quote   rune
		quoted  bool
	)
	flush := func() {
		arg := current.String()
		if !quoted {
			arg = strings.TrimSpace(arg)
		}
		args = append(args, arg)
		current.Reset()
		quoted = false
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			if strings.TrimSpace(current.String()) != "" {
				return nil, fmt.Errorf("unexpected quote in %q", s)
			}
			current.Reset()
			quote = r
			quoted = true
		case r == ',':
			flush()
		case quoted:
			if r != ' ' && r != '\t' {
				return nil, fmt.Errorf("unexpected %q after quoted argument", r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	flush()
	return args, nil
}

// Eval evaluates expr against subset
func (e *Executor) Eval(ctx context.Context, expr string, subset RevSet) (RevSet, error) {
	call, err := e.Parse(expr)
	if err != nil {
		return nil, err
	}
	return e.EvalCall(ctx, call, subset)
}

// EvalCall evaluates a parsed call against subset
func (e *Executor) EvalCall(ctx context.Context, call Call, subset RevSet) (RevSet, error) {
	return call.spec.Fn(ctx, e.env, subset, call.Args)
}

// Query returns the revisions matching every include expression and none of
// the exclude expressions, parents before children. All expressions are
// validated before any is evaluated.
func (e *Executor) Query(ctx context.Context, include, exclude []string) (RevSet, error) {
	includes, err := e.parseAll(include)
	if err != nil {
		return nil, err
	}
	excludes, err := e.parseAll(exclude)
	if err != nil {
		return nil, err
	}

	nodes, err := e.env.Graph.All()
	if err != nil {
		return nil, err
	}
	all := RevSet(nodes)

	result := all
	for _, call := range includes {
		if result, err = e.EvalCall(ctx, call, result); err != nil {
			return nil, err
		}
	}
	for _, call := range excludes {
		excluded, err := e.EvalCall(ctx, call, result)
		if err != nil {
			return nil, err
		}
		result = result.Difference(excluded)
	}
	return result, nil
}

func (e *Executor) parseAll(exprs []string) ([]Call, error) {
	calls := make([]Call, 0, len(exprs))
	for _, expr := range exprs {
		call, err := e.Parse(expr)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}
