package domain

import (
	"errors"
	"fmt"
)

// ResultStatus tags the variant held by a Result.
type ResultStatus int

const (
	ResultLoading ResultStatus = iota
	ResultSuccess
	ResultError
)

func (s ResultStatus) String() string {
	switch s {
	case ResultLoading:
		return "loading"
	case ResultSuccess:
		return "success"
	case ResultError:
		return "error"
	default:
		return fmt.Sprintf("ResultStatus(%d)", int(s))
	}
}

// ErrorKind classifies a failed asynchronous operation.
type ErrorKind string

const (
	ErrorKindValidation   ErrorKind = "validation"
	ErrorKindServer       ErrorKind = "server"
	ErrorKindConnectivity ErrorKind = "connectivity"
	ErrorKindParse        ErrorKind = "parse"
)

// Code maps the kind onto the code reported to shells. Parse failures are
// displayed as server errors.
func (k ErrorKind) Code() ErrorCode {
	switch k {
	case ErrorKindValidation:
		return ErrorCodeValidation
	case ErrorKindConnectivity:
		return ErrorCodeConnectivity
	default:
		return ErrorCodeServer
	}
}

// Failure is the error variant of a Result. Message is safe to show to the
// user; Cause is kept for diagnostics only.
type Failure struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return f.Message
	}
	return fmt.Sprintf("%s: %v", f.Message, f.Cause)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// AsFailure extracts a *Failure from err, if any.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

// Result is the tri-state outcome of an asynchronous operation.
type Result[T any] struct {
	Status ResultStatus
	Data   T
	Err    *Failure
}

func Loading[T any]() Result[T] {
	return Result[T]{Status: ResultLoading}
}

func Success[T any](data T) Result[T] {
	return Result[T]{Status: ResultSuccess, Data: data}
}

func Failed[T any](failure *Failure) Result[T] {
	return Result[T]{Status: ResultError, Err: failure}
}

// Terminal reports whether the result is Success or Error.
func (r Result[T]) Terminal() bool {
	return r.Status == ResultSuccess || r.Status == ResultError
}

// Match dispatches on the variant. Every branch must be supplied.
func (r Result[T]) Match(onLoading func(), onSuccess func(T), onError func(*Failure)) {
	switch r.Status {
	case ResultLoading:
		onLoading()
	case ResultSuccess:
		onSuccess(r.Data)
	case ResultError:
		onError(r.Err)
	default:
		panic(fmt.Sprintf("domain: unknown result status %d", int(r.Status)))
	}
}

// Unpack converts a terminal result into the (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	switch r.Status {
	case ResultSuccess:
		return r.Data, nil
	case ResultError:
		var zero T
		return zero, r.Err
	default:
		var zero T
		return zero, errors.New("result is still loading")
	}
}

// Await drains results and returns the last one seen. Callers that only need
// the terminal outcome use it instead of ranging over the channel.
func Await[T any](results <-chan Result[T]) Result[T] {
	last := Loading[T]()
	for r := range results {
		last = r
	}
	return last
}
