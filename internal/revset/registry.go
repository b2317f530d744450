package revset

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// Predicate evaluates a query function against subset. Unless documented
// otherwise the result keeps the order of subset.
type Predicate func(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error)

// ArgKind describes how an argument is checked before evaluation
type ArgKind int

const (
	// StringArg accepts any value
	StringArg ArgKind = iota
	// IntArg requires an integer
	IntArg
	// DateArg requires a date spec
	DateArg
)

// Spec describes a registered predicate
type Spec struct {
	Name string
	// Args lists the argument kinds; Optional arguments come last
	Args     []ArgKind
	Optional int
	Usage    string
	Doc      string
	Fn       Predicate
	// Index marks predicates that read the local pushlog index
	Index bool
}

// Validate checks the arity and argument kinds of a call
func (s Spec) Validate(args []string) error {
	minArgs := len(s.Args) - s.Optional
	if len(args) < minArgs || len(args) > len(s.Args) {
		if len(s.Args) == 0 {
			return pushlogerrors.NewValidationError(s.Name, "does not take any arguments")
		}
		return pushlogerrors.NewValidationError(s.Name, fmt.Sprintf("takes %s; usage: %s", arity(minArgs, len(s.Args)), s.Usage))
	}
	for i, arg := range args {
		switch s.Args[i] {
		case IntArg:
			if _, err := strconv.Atoi(arg); err != nil {
				return pushlogerrors.NewValidationError(s.Name, "requires an integer argument")
			}
		case DateArg:
			if _, err := ParseDateSpec(arg, time.Now(), time.UTC); err != nil {
				return pushlogerrors.NewValidationError(s.Name, err.Error())
			}
		case StringArg:
			if arg == "" {
				return pushlogerrors.NewValidationError(s.Name, "requires a string argument")
			}
		}
	}
	return nil
}

func arity(minArgs, maxArgs int) string {
	switch {
	case minArgs == maxArgs && maxArgs == 1:
		return "one argument"
	case minArgs == maxArgs:
		return fmt.Sprintf("%d arguments", maxArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", minArgs, maxArgs)
	}
}

// Registry maps predicate names to their implementation
type Registry struct {
	specs map[string]Spec
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a predicate. Names must be unique.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" || spec.Fn == nil {
		return fmt.Errorf("predicate needs a name and a function")
	}
	if _, ok := r.specs[spec.Name]; ok {
		return fmt.Errorf("predicate %s is already registered", spec.Name)
	}
	r.specs[spec.Name] = spec
	return nil
}

// Lookup returns the predicate registered under name
func (r *Registry) Lookup(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Specs returns every registered predicate sorted by name
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// DefaultRegistry returns the built-in predicates. Predicates reading the
// pushlog index are left out when the index is disabled.
func DefaultRegistry(indexEnabled bool) *Registry {
	r := NewRegistry()
	for _, spec := range builtins() {
		if spec.Index && !indexEnabled {
			continue
		}
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
	return r
}
