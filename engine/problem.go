package engine

import (
	"fmt"

	"github.com/samsarahq/go/oops"
)

// Kind tags the taxonomy of user-visible problems a Problem can carry (§7).
type Kind int

const (
	BadQuery Kind = iota
	FieldNotFound
	TypeMismatch
	UnknownType
	UnsupportedType
	NarrowingFailed
	NullabilityViolation
	TooManyResults
	EmptyResult
	Deferral
	EnvLookupFailed
	SchemaValidation
)

func (k Kind) String() string {
	switch k {
	case BadQuery:
		return "BadQuery"
	case FieldNotFound:
		return "FieldNotFound"
	case TypeMismatch:
		return "TypeMismatch"
	case UnknownType:
		return "UnknownType"
	case UnsupportedType:
		return "UnsupportedType"
	case NarrowingFailed:
		return "NarrowingFailed"
	case NullabilityViolation:
		return "NullabilityViolation"
	case TooManyResults:
		return "TooManyResults"
	case EmptyResult:
		return "EmptyResult"
	case Deferral:
		return "Deferral"
	case EnvLookupFailed:
		return "EnvLookupFailed"
	case SchemaValidation:
		return "SchemaValidation"
	default:
		return "Unknown"
	}
}

// Location is a GraphQL source position, carried through when the
// originating query node recorded one.
type Location struct {
	Line int
	Col  int
}

// Problem is the user-visible error entry of §6/§7: a message plus
// optional locations and a response path. Problem implements error so it
// composes with oops-wrapped internal errors.
type Problem struct {
	Kind      Kind
	Message   string
	Locations []Location
	Path      []string
}

func (p *Problem) Error() string {
	return p.Message
}

// WrapInternal annotates a non-Problem internal error (e.g. a SQL driver
// failure deep inside a Mapping's Cursor implementation) with oops
// context before it is surfaced as a Problem, matching the teacher's
// "samsarahq/go/oops" wrapping convention used throughout its federation
// package.
func WrapInternal(ctx Context, kind Kind, err error, format string, args ...interface{}) *Problem {
	wrapped := oops.Wrapf(err, format, args...)
	p := NewProblem(kind, "%s", wrapped.Error())
	p.Path = PathFromContext(ctx)
	return p
}

// NewProblem builds a Problem with no path or locations; call sites that
// have a Context use ProblemAt instead so Path is populated from it.
func NewProblem(kind Kind, format string, args ...interface{}) *Problem {
	return &Problem{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ProblemAt builds a Problem whose Path is derived from ctx.ResultPath
// (reversed to root-first, as GraphQL response paths are conventionally
// rendered) plus any extra trailing segments (e.g. a list index, which
// the schema path itself never encodes).
func ProblemAt(ctx Context, kind Kind, extra []string, format string, args ...interface{}) *Problem {
	p := NewProblem(kind, format, args...)
	p.Path = PathFromContext(ctx, extra...)
	return p
}

// PathFromContext renders ctx.ResultPath root-first and appends extra.
func PathFromContext(ctx Context, extra ...string) []string {
	path := make([]string, 0, len(ctx.ResultPath)+len(extra))
	for i := len(ctx.ResultPath) - 1; i >= 0; i-- {
		path = append(path, ctx.ResultPath[i])
	}
	path = append(path, extra...)
	return path
}

// resultState discriminates the three-valued Result of §7/§9 (isomorphic
// to These<Errors, A>).
type resultState int

const (
	stateSuccess resultState = iota
	stateWarnings
	stateFailure
)

// Result is the effect value threaded through runRoot/runFields/runValue:
// Success(value), Failure(problems), or Warnings(problems, value) — a
// value recovered alongside non-fatal problems.
type Result[T any] struct {
	state    resultState
	value    T
	problems []*Problem
}

// Succeed lifts a plain value into a problem-free Result.
func Succeed[T any](v T) Result[T] {
	return Result[T]{state: stateSuccess, value: v}
}

// Fail produces a Result with no usable value, carrying one or more
// problems. Fail panics if given zero problems: a Failure must always be
// non-empty (§7 "nonEmptyChainOfProblems").
func Fail[T any](problems ...*Problem) Result[T] {
	if len(problems) == 0 {
		panic("engine: Fail requires at least one problem")
	}
	return Result[T]{state: stateFailure, problems: problems}
}

// Warn produces a Result carrying both a usable value and non-fatal
// problems — the "Both" case of §5's ordering guarantees.
func Warn[T any](v T, problems ...*Problem) Result[T] {
	if len(problems) == 0 {
		return Succeed(v)
	}
	return Result[T]{state: stateWarnings, value: v, problems: problems}
}

func (r Result[T]) IsFailure() bool { return r.state == stateFailure }
func (r Result[T]) IsSuccess() bool { return r.state == stateSuccess }

// Value returns the carried value and whether one is present (Success or
// Warnings); a Failure's zero value is meaningless and ok is false.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.state != stateFailure
}

// Problems returns the accumulated problems, empty for a pure Success.
func (r Result[T]) Problems() []*Problem {
	return r.problems
}

// MapResult transforms a Result's value, leaving its state and problems
// untouched; a Failure propagates without invoking f.
func MapResult[T, U any](r Result[T], f func(T) U) Result[U] {
	switch r.state {
	case stateFailure:
		return Result[U]{state: stateFailure, problems: r.problems}
	default:
		return Result[U]{state: r.state, value: f(r.value), problems: r.problems}
	}
}

// FlatMapResult sequences two effectful steps, additively combining
// problems (the monadic bind of §7: "propagates problems additively").
func FlatMapResult[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.state == stateFailure {
		return Result[U]{state: stateFailure, problems: r.problems}
	}
	next := f(r.value)
	problems := append(append([]*Problem{}, r.problems...), next.problems...)
	state := next.state
	if len(r.problems) > 0 && state == stateSuccess {
		state = stateWarnings
	}
	return Result[U]{state: state, value: next.value, problems: problems}
}

// CombineResults runs each Result, collecting every value that succeeded
// or warned (in order) and every problem from every branch — the
// "Both" combine of §5: one sibling's Failure does not suppress another
// sibling's data.
func CombineResults[T any](rs []Result[T]) ([]T, []*Problem) {
	values := make([]T, 0, len(rs))
	var problems []*Problem
	for _, r := range rs {
		if v, ok := r.Value(); ok {
			values = append(values, v)
		}
		problems = append(problems, r.problems...)
	}
	return values, problems
}
